package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shiftdesk/internal/config"
	"shiftdesk/internal/domain"
	"shiftdesk/internal/engine/auth"
	"shiftdesk/internal/store"
)

// Engine runs every domain operation as a load-entire-collection, mutate,
// save-entire-collection cycle inside one transaction. The acting user is
// passed explicitly into each mutation; there is no ambient identity.
type Engine struct {
	DB     *sql.DB
	Store  store.Store
	Config *config.Config
	Now    func() time.Time
}

func New(db *sql.DB, cfg *config.Config) Engine {
	return Engine{
		DB:     db,
		Store:  store.Store{DB: db},
		Config: cfg,
		Now:    time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func newID() string {
	return uuid.New().String()
}

// Bootstrap seeds the users collection with the configured manager account if
// no users blob has ever been written. This is the only privileged path into
// a fresh workspace; later runs are no-ops.
func (e Engine) Bootstrap(ctx context.Context) (bool, error) {
	if e.Config == nil {
		return false, errors.New("config not loaded")
	}
	exists, err := e.Store.Exists(ctx, store.CollectionUsers)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	b := e.Config.Bootstrap
	seed := []domain.User{{
		ID:             newID(),
		Username:       b.Username,
		PasswordDigest: auth.HashPassword(b.Password),
		Name:           b.Name,
		Role:           domain.RoleManager,
		Shift:          b.Shift,
	}}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()
	if err := e.Store.SaveUsers(ctx, tx, seed); err != nil {
		return false, fmt.Errorf("seed users: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// Authenticate resolves credentials to a user. A missing username or digest
// mismatch yields ok=false, not an error; corrupt storage is still an error.
func (e Engine) Authenticate(ctx context.Context, username, password string) (domain.User, bool, error) {
	users, err := e.Store.LoadUsers(ctx)
	if err != nil {
		return domain.User{}, false, err
	}
	u, found := store.UserByUsername(users, username)
	if !found || !auth.VerifyPassword(password, u.PasswordDigest) {
		return domain.User{}, false, nil
	}
	return u, true, nil
}

// GetUser looks up a user by id.
func (e Engine) GetUser(ctx context.Context, id string) (domain.User, error) {
	users, err := e.Store.LoadUsers(ctx)
	if err != nil {
		return domain.User{}, err
	}
	u, found := store.UserByID(users, id)
	if !found {
		return domain.User{}, ErrNotFound
	}
	return u, nil
}

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("not found")
