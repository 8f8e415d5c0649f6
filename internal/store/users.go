package store

import (
	"context"
	"database/sql"

	"shiftdesk/internal/domain"
)

func (s Store) LoadUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := s.Load(ctx, CollectionUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s Store) LoadUsersTx(ctx context.Context, tx *sql.Tx) ([]domain.User, error) {
	var users []domain.User
	if err := s.LoadTx(ctx, tx, CollectionUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s Store) SaveUsers(ctx context.Context, tx *sql.Tx, users []domain.User) error {
	return s.Save(ctx, tx, CollectionUsers, users)
}

// UserByUsername scans the collection for a username match.
func UserByUsername(users []domain.User, username string) (domain.User, bool) {
	for _, u := range users {
		if u.Username == username {
			return u, true
		}
	}
	return domain.User{}, false
}

// UserByID scans the collection for an id match.
func UserByID(users []domain.User, id string) (domain.User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return domain.User{}, false
}
