package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hieplq/barber-queue/internal/model"
)

// UserRepo touches the narrow slice of user accounts this service owns: the
// credit balance. Account lifecycle and authentication live in the external
// auth system.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Get loads a user by id, for the profile endpoint. Returns ErrUserNotFound
// when no such user exists.
func (r *UserRepo) Get(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT id, name, role, credits FROM users WHERE id = ?`
	var u model.User
	err := r.db.QueryRowContext(ctx, q, id).Scan(&u.ID, &u.Name, &u.Role, &u.Credits)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AddCreditsTx increments a user's credit balance inside the caller's
// transaction. Used by top-up settlement (order.credits) and by ticket
// settlement (one loyalty credit for a primary-service visit).
func (r *UserRepo) AddCreditsTx(ctx context.Context, tx *sql.Tx, userID uint64, delta int64) error {
	const q = `UPDATE users SET credits = credits + ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, delta, userID)
	return err
}
