package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hieplq/barber-queue/internal/model"
)

// BarberRepo provides access to the staff roster. Busy-flag writes only ever
// happen inside the same transaction as the ticket write that justifies them;
// a barber must never appear free while still attached to an active ticket.
type BarberRepo struct {
	db *sql.DB
}

// NewBarberRepo returns a new BarberRepo bound to the given database.
func NewBarberRepo(db *sql.DB) *BarberRepo { return &BarberRepo{db: db} }

func scanBarber(row interface{ Scan(...any) error }) (*model.Barber, error) {
	var b model.Barber
	var userID sql.NullInt64
	if err := row.Scan(&b.ID, &userID, &b.Name, &b.Active, &b.Busy); err != nil {
		return nil, err
	}
	if userID.Valid {
		v := uint64(userID.Int64)
		b.UserID = &v
	}
	return &b, nil
}

// ListFreeTx returns the barbers available for pairing (on shift and not
// busy) ordered by name, with their rows locked. The deterministic order and
// the locks are what make a concurrent pairing pass impossible to double-book.
func (r *BarberRepo) ListFreeTx(ctx context.Context, tx *sql.Tx) ([]*model.Barber, error) {
	const q = `SELECT id, user_id, name, active, busy FROM barbers
		WHERE active = 1 AND busy = 0
		ORDER BY name ASC FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var barbers []*model.Barber
	for rows.Next() {
		b, err := scanBarber(rows)
		if err != nil {
			return nil, err
		}
		barbers = append(barbers, b)
	}
	return barbers, rows.Err()
}

// GetTx loads a barber by id with the row locked. Returns ErrBarberNotFound
// when no such barber exists.
func (r *BarberRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Barber, error) {
	const q = `SELECT id, user_id, name, active, busy FROM barbers WHERE id = ? FOR UPDATE`
	b, err := scanBarber(tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBarberNotFound
	}
	return b, err
}

// SetBusyTx flips a barber's busy flag inside the caller's transaction.
func (r *BarberRepo) SetBusyTx(ctx context.Context, tx *sql.Tx, id uint64, busy bool) error {
	const q = `UPDATE barbers SET busy = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, busy, id)
	return err
}

// CountActive returns how many barbers are on shift today. The wait-time
// estimator divides the queue load by this number.
func (r *BarberRepo) CountActive(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM barbers WHERE active = 1`
	var n int
	if err := r.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// List returns the full roster ordered by name, for the admin screen.
func (r *BarberRepo) List(ctx context.Context) ([]*model.Barber, error) {
	const q = `SELECT id, user_id, name, active, busy FROM barbers ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	barbers := make([]*model.Barber, 0)
	for rows.Next() {
		b, err := scanBarber(rows)
		if err != nil {
			return nil, err
		}
		barbers = append(barbers, b)
	}
	return barbers, rows.Err()
}

// SetActive puts a barber on or off shift. Taking a barber off shift does not
// touch the busy flag: an in-progress haircut still finishes, the barber just
// stops receiving new pairings.
func (r *BarberRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	const q = `UPDATE barbers SET active = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, active, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBarberNotFound
	}
	return nil
}
