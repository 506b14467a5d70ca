package payment

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hieplq/barber-queue/internal/model"
	"github.com/hieplq/barber-queue/internal/repository"
)

var ticketColumns = []string{
	"id", "ticket_number", "day", "status", "owner_id", "barber_id", "total_price",
	"amount_paid", "is_paid", "payment_method", "joined_at", "actual_start_time", "completed_at", "paid_at",
}

func newMockReconciler(t *testing.T) (*Reconciler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &Reconciler{
		db:       db,
		tickets:  repository.NewTicketRepo(db),
		orders:   repository.NewOrderRepo(db),
		users:    repository.NewUserRepo(db),
		services: repository.NewServiceRepo(db),
		barbers:  repository.NewBarberRepo(db),
		loc:      time.UTC,
		now:      func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) },
	}, mock
}

// Settling a ticket that already left the chair must not touch the busy
// flag: barber_id stays on a COMPLETED ticket while the barber may be
// serving someone else, and freeing them here would let the scheduler
// double-book. Expectations are ordered, so a stray barbers update between
// the settle statement and the commit fails the test.
func TestProcessSettleCompletedTicketLeavesBarberAlone(t *testing.T) {
	r, mock := newMockReconciler(t)
	joined := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("is_paid = 0 FOR UPDATE").
		WithArgs("2024-03-10", 7).
		WillReturnRows(sqlmock.NewRows(ticketColumns).AddRow(
			"t1", 7, "2024-03-10", model.StatusCompleted, nil, 3, int64(150000),
			int64(0), false, nil, joined, joined, joined, nil))
	mock.ExpectExec("UPDATE tickets").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := r.Process(context.Background(), "BARBER 7", 150000)
	require.NoError(t, err)
	assert.True(t, res.Settled)
	assert.Equal(t, int64(150000), res.AmountPaid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The inverse case: a ticket settled mid-service does free its barber, in
// the same transaction as the settle statement.
func TestProcessSettleServingTicketFreesBarber(t *testing.T) {
	r, mock := newMockReconciler(t)
	joined := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("is_paid = 0 FOR UPDATE").
		WithArgs("2024-03-10", 7).
		WillReturnRows(sqlmock.NewRows(ticketColumns).AddRow(
			"t1", 7, "2024-03-10", model.StatusServing, nil, 3, int64(150000),
			int64(50000), false, nil, joined, joined, nil, nil))
	mock.ExpectExec("UPDATE tickets").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE barbers SET busy").
		WithArgs(false, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := r.Process(context.Background(), "BARBER 7", 100000)
	require.NoError(t, err)
	assert.True(t, res.Settled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A transfer naming a number with no unpaid ticket today is acknowledged as
// unmatched without writing anything.
func TestProcessUnmatchedTicketNumber(t *testing.T) {
	r, mock := newMockReconciler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("is_paid = 0 FOR UPDATE").
		WithArgs("2024-03-10", 99).
		WillReturnRows(sqlmock.NewRows(ticketColumns))
	mock.ExpectRollback()

	res, err := r.Process(context.Background(), "BARBER 99", 50000)
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.False(t, res.Settled)
	assert.NoError(t, mock.ExpectationsWereMet())
}
