package engine

import (
	"context"
	"errors"
	"fmt"

	"shiftdesk/internal/domain"
	"shiftdesk/internal/engine/auth"
	"shiftdesk/internal/store"
)

// AddUserOptions are parameters for creating an account.
type AddUserOptions struct {
	Username string
	Password string
	Name     string
	Role     domain.Role
	Shift    int
}

// AddUser creates an account. Only managers hold the manage-users capability;
// everyone else gets a rejection and the users collection stays unchanged.
func (e Engine) AddUser(ctx context.Context, actor domain.User, opts AddUserOptions) (domain.User, error) {
	if err := auth.Require(actor, auth.CapManageUsers); err != nil {
		return domain.User{}, err
	}
	if opts.Username == "" {
		return domain.User{}, errors.New("username is required")
	}
	if opts.Password == "" {
		return domain.User{}, errors.New("password is required")
	}
	if opts.Name == "" {
		return domain.User{}, errors.New("name is required")
	}
	if !domain.ValidRole(opts.Role) {
		return domain.User{}, fmt.Errorf("invalid role %q", opts.Role)
	}
	if e.Config.ShiftStart(opts.Shift) == "" {
		return domain.User{}, fmt.Errorf("invalid shift %d", opts.Shift)
	}

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.User{}, err
	}
	defer tx.Rollback()

	users, err := e.Store.LoadUsersTx(ctx, tx)
	if err != nil {
		return domain.User{}, err
	}
	if _, exists := store.UserByUsername(users, opts.Username); exists {
		return domain.User{}, fmt.Errorf("username %s already taken", opts.Username)
	}
	u := domain.User{
		ID:             newID(),
		Username:       opts.Username,
		PasswordDigest: auth.HashPassword(opts.Password),
		Name:           opts.Name,
		Role:           opts.Role,
		Shift:          opts.Shift,
	}
	users = append(users, u)
	if err := e.Store.SaveUsers(ctx, tx, users); err != nil {
		return domain.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// ChangePassword replaces the actor's own password digest after verifying the
// current password. A mismatch rejects the change with no side effect.
func (e Engine) ChangePassword(ctx context.Context, actor domain.User, currentPassword, newPassword string) error {
	if newPassword == "" {
		return errors.New("new password is required")
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	users, err := e.Store.LoadUsersTx(ctx, tx)
	if err != nil {
		return err
	}
	found := false
	for i, u := range users {
		if u.ID != actor.ID {
			continue
		}
		if !auth.VerifyPassword(currentPassword, u.PasswordDigest) {
			return errors.New("current password incorrect")
		}
		users[i].PasswordDigest = auth.HashPassword(newPassword)
		found = true
		break
	}
	if !found {
		return ErrNotFound
	}
	if err := e.Store.SaveUsers(ctx, tx, users); err != nil {
		return err
	}
	return tx.Commit()
}

// ListUsers returns all accounts; gated by the manage-users capability.
func (e Engine) ListUsers(ctx context.Context, actor domain.User) ([]domain.User, error) {
	if err := auth.Require(actor, auth.CapManageUsers); err != nil {
		return nil, err
	}
	return e.Store.LoadUsers(ctx)
}
