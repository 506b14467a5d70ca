package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hieplq/barber-queue/internal/model"
)

// OrderRepo provides access to credit top-up orders. Settlement always pairs
// an order write with a user credit write, so those methods are Tx variants.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

func scanOrder(row interface{ Scan(...any) error }) (*model.PaymentOrder, error) {
	var o model.PaymentOrder
	var paidAt sql.NullTime
	if err := row.Scan(&o.ID, &o.Code, &o.UserID, &o.Amount, &o.Credits, &o.Status, &paidAt); err != nil {
		return nil, err
	}
	if paidAt.Valid {
		v := paidAt.Time
		o.PaidAt = &v
	}
	return &o, nil
}

// Create inserts a new PENDING order.
func (r *OrderRepo) Create(ctx context.Context, o *model.PaymentOrder) error {
	const q = `INSERT INTO payment_orders (id, code, user_id, amount, credits, status)
		VALUES (?, ?, ?, ?, ?, 'PENDING')`
	_, err := r.db.ExecContext(ctx, q, o.ID, o.Code, o.UserID, o.Amount, o.Credits)
	return err
}

// GetByCode loads an order by its reconciliation code, for client polling.
func (r *OrderRepo) GetByCode(ctx context.Context, code string) (*model.PaymentOrder, error) {
	const q = `SELECT id, code, user_id, amount, credits, status, paid_at
		FROM payment_orders WHERE code = ?`
	o, err := scanOrder(r.db.QueryRowContext(ctx, q, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// GetPendingByCodeTx resolves a PENDING order by exact code with its row
// locked, so a redelivered webhook cannot settle the same order twice.
func (r *OrderRepo) GetPendingByCodeTx(ctx context.Context, tx *sql.Tx, code string) (*model.PaymentOrder, error) {
	const q = `SELECT id, code, user_id, amount, credits, status, paid_at
		FROM payment_orders WHERE code = ? AND status = 'PENDING' FOR UPDATE`
	o, err := scanOrder(tx.QueryRowContext(ctx, q, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// MarkPaidTx settles an order inside the caller's transaction. The status
// guard keeps the operation idempotent under webhook redelivery.
func (r *OrderRepo) MarkPaidTx(ctx context.Context, tx *sql.Tx, id string, paidAt time.Time) error {
	const q = `UPDATE payment_orders SET status = 'PAID', paid_at = ? WHERE id = ? AND status = 'PENDING'`
	res, err := tx.ExecContext(ctx, q, paidAt.UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}
