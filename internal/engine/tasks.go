package engine

import (
	"context"
	"errors"

	"shiftdesk/internal/domain"
	"shiftdesk/internal/ledger"
	"shiftdesk/internal/store"
)

// CreateTask records a new task owned by the actor, stamped with the creation
// day and the actor's shift. Any authenticated user may create tasks.
func (e Engine) CreateTask(ctx context.Context, actor domain.User, title, description string) (domain.Task, error) {
	if title == "" {
		return domain.Task{}, errors.New("title is required")
	}
	if description == "" {
		return domain.Task{}, errors.New("description is required")
	}
	now := e.now()

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer tx.Rollback()

	tasks, err := e.Store.LoadTasksTx(ctx, tx)
	if err != nil {
		return domain.Task{}, err
	}
	t := domain.Task{
		ID:          newID(),
		UserID:      actor.ID,
		Title:       title,
		Description: description,
		Completed:   false,
		Date:        now.Format(dateLayout),
		Shift:       actor.Shift,
		EditHistory: []domain.EditEvent{},
	}
	tasks = append(tasks, t)
	if err := e.Store.SaveTasks(ctx, tx, tasks); err != nil {
		return domain.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// EditTask replaces a task's title and description and appends the matching
// edit event in the same transaction: the field change and its audit entry
// are never observable independently. Reason is mandatory.
func (e Engine) EditTask(ctx context.Context, actor domain.User, taskID, title, description, reason string) (domain.Task, error) {
	if title == "" {
		return domain.Task{}, errors.New("title is required")
	}
	if description == "" {
		return domain.Task{}, errors.New("description is required")
	}
	if reason == "" {
		return domain.Task{}, errors.New("reason is required")
	}

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer tx.Rollback()

	tasks, err := e.Store.LoadTasksTx(ctx, tx)
	if err != nil {
		return domain.Task{}, err
	}
	i, found := store.TaskIndex(tasks, taskID)
	if !found {
		return domain.Task{}, ErrNotFound
	}
	tasks[i].Title = title
	tasks[i].Description = description
	tasks[i].EditHistory = append(tasks[i].EditHistory, ledger.NewEvent(actor, ledger.ActionEdit, reason, e.now()))
	if err := e.Store.SaveTasks(ctx, tx, tasks); err != nil {
		return domain.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return tasks[i], nil
}

// ToggleTask flips a task's completed flag, appending a complete or
// uncomplete event. Toggles carry no reason.
func (e Engine) ToggleTask(ctx context.Context, actor domain.User, taskID string) (domain.Task, error) {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer tx.Rollback()

	tasks, err := e.Store.LoadTasksTx(ctx, tx)
	if err != nil {
		return domain.Task{}, err
	}
	i, found := store.TaskIndex(tasks, taskID)
	if !found {
		return domain.Task{}, ErrNotFound
	}
	action := ledger.ActionComplete
	if tasks[i].Completed {
		action = ledger.ActionUncomplete
	}
	tasks[i].Completed = !tasks[i].Completed
	tasks[i].EditHistory = append(tasks[i].EditHistory, ledger.NewEvent(actor, action, "", e.now()))
	if err := e.Store.SaveTasks(ctx, tx, tasks); err != nil {
		return domain.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return tasks[i], nil
}

// Tasks returns the full task board.
func (e Engine) Tasks(ctx context.Context) ([]domain.Task, error) {
	return e.Store.LoadTasks(ctx)
}

// GetTask looks up a task by id.
func (e Engine) GetTask(ctx context.Context, taskID string) (domain.Task, error) {
	tasks, err := e.Store.LoadTasks(ctx)
	if err != nil {
		return domain.Task{}, err
	}
	i, found := store.TaskIndex(tasks, taskID)
	if !found {
		return domain.Task{}, ErrNotFound
	}
	return tasks[i], nil
}
