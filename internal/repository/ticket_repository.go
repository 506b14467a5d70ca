package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/hieplq/barber-queue/internal/model"
)

// TicketRepo provides access to tickets and their service line items. All
// mutations are exposed as ...Tx variants operating inside a caller-owned
// transaction: ticket writes always travel together with barber writes, and
// the two must commit atomically. Timestamps are stored in UTC.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// DB exposes the underlying handle so orchestrating services can open the
// transaction that spans several repositories.
func (r *TicketRepo) DB() *sql.DB { return r.db }

const ticketColumns = `id, ticket_number, day, status, owner_id, barber_id, total_price,
	amount_paid, is_paid, payment_method, joined_at, actual_start_time, completed_at, paid_at`

func scanTicket(row interface{ Scan(...any) error }) (*model.Ticket, error) {
	var t model.Ticket
	var ownerID, barberID sql.NullInt64
	var method sql.NullString
	var started, completed, paid sql.NullTime
	if err := row.Scan(
		&t.ID, &t.TicketNumber, &t.Day, &t.Status, &ownerID, &barberID, &t.TotalPrice,
		&t.AmountPaid, &t.IsPaid, &method, &t.JoinedAt, &started, &completed, &paid,
	); err != nil {
		return nil, err
	}
	if ownerID.Valid {
		v := uint64(ownerID.Int64)
		t.OwnerID = &v
	}
	if barberID.Valid {
		v := uint64(barberID.Int64)
		t.BarberID = &v
	}
	if method.Valid {
		m := method.String
		t.PaymentMethod = &m
	}
	if started.Valid {
		v := started.Time
		t.ActualStartTime = &v
	}
	if completed.Valid {
		v := completed.Time
		t.CompletedAt = &v
	}
	if paid.Valid {
		v := paid.Time
		t.PaidAt = &v
	}
	return &t, nil
}

// NextNumberTx returns the next ticket number for the day. The aggregate runs
// with FOR UPDATE so two concurrent creations serialize on the day's rows and
// cannot both observe the same maximum; together with the UNIQUE(day,
// ticket_number) index this keeps the sequence contiguous and gap-free.
func (r *TicketRepo) NextNumberTx(ctx context.Context, tx *sql.Tx, day string) (int, error) {
	const q = `SELECT COALESCE(MAX(ticket_number), 0) + 1 FROM tickets WHERE day = ? FOR UPDATE`
	var next int
	if err := tx.QueryRowContext(ctx, q, day).Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

// CountActiveTx counts the day's tickets that still occupy capacity,
// everything except CANCELLED, PAID and SKIPPED.
func (r *TicketRepo) CountActiveTx(ctx context.Context, tx *sql.Tx, day string) (int, error) {
	const q = `SELECT COUNT(*) FROM tickets WHERE day = ? AND status NOT IN ('CANCELLED','PAID','SKIPPED')`
	var n int
	if err := tx.QueryRowContext(ctx, q, day).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CreateTx inserts a ticket and its service line snapshots. The caller must
// have assigned ID, TicketNumber, Day, Status, TotalPrice and JoinedAt.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	const q = `INSERT INTO tickets
		(id, ticket_number, day, status, owner_id, total_price, amount_paid, is_paid, joined_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?)`
	var owner any
	if t.OwnerID != nil {
		owner = *t.OwnerID
	}
	if _, err := tx.ExecContext(ctx, q, t.ID, t.TicketNumber, t.Day, t.Status, owner, t.TotalPrice, t.JoinedAt.UTC()); err != nil {
		return err
	}
	if len(t.Services) == 0 {
		return nil
	}
	query := `INSERT INTO ticket_services (ticket_id, service_id, price_snapshot) VALUES `
	args := make([]any, 0, len(t.Services)*3)
	for i, line := range t.Services {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, t.ID, line.ServiceID, line.PriceSnapshot)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// GetByIDTx loads a ticket by id with its row locked for the remainder of the
// transaction. Returns ErrTicketNotFound when no such ticket exists.
func (r *TicketRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (*model.Ticket, error) {
	q := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = ? FOR UPDATE`
	t, err := scanTicket(tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	return t, err
}

// GetUnpaidByNumberTx resolves a ticket by its day-scoped number, skipping
// settled tickets, with the row locked. Day scoping is what keeps a webhook
// arriving after midnight from crediting the previous day's ticket with the
// same number.
func (r *TicketRepo) GetUnpaidByNumberTx(ctx context.Context, tx *sql.Tx, day string, number int) (*model.Ticket, error) {
	q := `SELECT ` + ticketColumns + ` FROM tickets
		WHERE day = ? AND ticket_number = ? AND is_paid = 0 FOR UPDATE`
	t, err := scanTicket(tx.QueryRowContext(ctx, q, day, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	return t, err
}

// GetByNumberForDay loads a ticket by day-scoped number together with its
// service lines, for the customer-facing ticket view.
func (r *TicketRepo) GetByNumberForDay(ctx context.Context, day string, number int) (*model.Ticket, error) {
	q := `SELECT ` + ticketColumns + ` FROM tickets WHERE day = ? AND ticket_number = ?`
	t, err := scanTicket(r.db.QueryRowContext(ctx, q, day, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadServices(ctx, []*model.Ticket{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// ListWaitingTx returns up to limit WAITING tickets for the day in ticket
// number order with their rows locked. FIFO order here is a customer-facing
// fairness guarantee: the earliest ticket is always paired first.
func (r *TicketRepo) ListWaitingTx(ctx context.Context, tx *sql.Tx, day string, limit int) ([]*model.Ticket, error) {
	if limit <= 0 {
		return nil, nil
	}
	q := `SELECT ` + ticketColumns + ` FROM tickets
		WHERE day = ? AND status = 'WAITING'
		ORDER BY ticket_number ASC LIMIT ? FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, day, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tickets []*model.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// ListActiveByDay returns the day's tickets still on the queue board (every
// status except CANCELLED, PAID, SKIPPED and COMPLETED) in ticket number
// order, with service lines populated in a single follow-up query.
func (r *TicketRepo) ListActiveByDay(ctx context.Context, day string) ([]*model.Ticket, error) {
	q := `SELECT ` + ticketColumns + ` FROM tickets
		WHERE day = ? AND status NOT IN ('CANCELLED','PAID','SKIPPED','COMPLETED')
		ORDER BY ticket_number ASC`
	rows, err := r.db.QueryContext(ctx, q, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tickets []*model.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadServices(ctx, tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// loadServices populates the Services slices of the given tickets with one
// IN query joined against the catalog for working durations.
func (r *TicketRepo) loadServices(ctx context.Context, tickets []*model.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	index := make(map[string]*model.Ticket, len(tickets))
	ids := make([]any, 0, len(tickets))
	placeholders := make([]string, 0, len(tickets))
	for _, t := range tickets {
		index[t.ID] = t
		ids = append(ids, t.ID)
		placeholders = append(placeholders, "?")
	}
	q := `SELECT ts.ticket_id, ts.service_id, ts.price_snapshot, s.duration_work_min
		FROM ticket_services ts
		JOIN services s ON s.id = ts.service_id
		WHERE ts.ticket_id IN (` + strings.Join(placeholders, ",") + `)
		ORDER BY ts.ticket_id, ts.service_id`
	rows, err := r.db.QueryContext(ctx, q, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var ticketID string
		var line model.ServiceLine
		if err := rows.Scan(&ticketID, &line.ServiceID, &line.PriceSnapshot, &line.DurationWork); err != nil {
			return err
		}
		if t, ok := index[ticketID]; ok {
			t.Services = append(t.Services, line)
		}
	}
	return rows.Err()
}

// AssignTx moves a WAITING ticket to SERVING with its barber and start time,
// as one half of a scheduler pairing. The status guard in the WHERE clause
// makes the update a no-op if the ticket changed under us.
func (r *TicketRepo) AssignTx(ctx context.Context, tx *sql.Tx, ticketID string, barberID uint64, startedAt time.Time) error {
	const q = `UPDATE tickets
		SET status = 'SERVING', barber_id = ?, actual_start_time = ?
		WHERE id = ? AND status = 'WAITING'`
	res, err := tx.ExecContext(ctx, q, barberID, startedAt.UTC(), ticketID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// StatusUpdateTx captures the column changes of one status transition.
// Pointer fields are applied only when non-nil so a transition touches
// exactly the columns the state machine says it should.
type StatusUpdateTx struct {
	Status          string
	BarberID        *uint64
	ActualStartTime *time.Time
	CompletedAt     *time.Time
	PaidAt          *time.Time
	MarkPaid        bool
	PaymentMethod   *string
}

// UpdateStatusTx applies a transition's column changes to a ticket row.
func (r *TicketRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id string, u StatusUpdateTx) error {
	sets := []string{"status = ?"}
	args := []any{u.Status}
	if u.BarberID != nil {
		sets = append(sets, "barber_id = ?")
		args = append(args, *u.BarberID)
	}
	if u.ActualStartTime != nil {
		sets = append(sets, "actual_start_time = ?")
		args = append(args, u.ActualStartTime.UTC())
	}
	if u.CompletedAt != nil {
		sets = append(sets, "completed_at = ?")
		args = append(args, u.CompletedAt.UTC())
	}
	if u.PaidAt != nil {
		sets = append(sets, "paid_at = ?")
		args = append(args, u.PaidAt.UTC())
	}
	if u.MarkPaid {
		sets = append(sets, "is_paid = 1")
	}
	if u.PaymentMethod != nil {
		sets = append(sets, "payment_method = ?")
		args = append(args, *u.PaymentMethod)
	}
	args = append(args, id)
	q := `UPDATE tickets SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

// AddPaymentTx records a partial payment: the accumulator grows, nothing else
// changes. The WHERE clause refuses to shrink the amount so redelivered or
// reordered webhooks can never make amount_paid go backwards.
func (r *TicketRepo) AddPaymentTx(ctx context.Context, tx *sql.Tx, id string, newAmountPaid int64) error {
	const q = `UPDATE tickets SET amount_paid = ? WHERE id = ? AND amount_paid <= ?`
	_, err := tx.ExecContext(ctx, q, newAmountPaid, id, newAmountPaid)
	return err
}

// SettleTx marks a ticket fully paid by bank transfer: the final accumulator
// value (overpay included), PAID status, payment method and timestamps all in
// one statement.
func (r *TicketRepo) SettleTx(ctx context.Context, tx *sql.Tx, id string, amountPaid int64, paidAt time.Time) error {
	const q = `UPDATE tickets
		SET amount_paid = ?, is_paid = 1, status = 'PAID', payment_method = ?, paid_at = ?, completed_at = COALESCE(completed_at, ?)
		WHERE id = ? AND is_paid = 0`
	res, err := tx.ExecContext(ctx, q, amountPaid, model.PaymentMethodBankTransfer, paidAt.UTC(), paidAt.UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyPaid
	}
	return nil
}
