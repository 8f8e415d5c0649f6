package store

import (
	"context"
	"database/sql"

	"shiftdesk/internal/domain"
)

func (s Store) LoadTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := s.Load(ctx, CollectionTasks, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s Store) LoadTasksTx(ctx context.Context, tx *sql.Tx) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := s.LoadTx(ctx, tx, CollectionTasks, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s Store) SaveTasks(ctx context.Context, tx *sql.Tx, tasks []domain.Task) error {
	return s.Save(ctx, tx, CollectionTasks, tasks)
}

// TaskIndex scans the collection for an id match.
func TaskIndex(tasks []domain.Task, id string) (int, bool) {
	for i, t := range tasks {
		if t.ID == id {
			return i, true
		}
	}
	return -1, false
}
