package ticketing

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hieplq/barber-queue/internal/model"
	"github.com/hieplq/barber-queue/internal/repository"
	"github.com/hieplq/barber-queue/internal/scheduler"
)

var ticketColumns = []string{
	"id", "ticket_number", "day", "status", "owner_id", "barber_id", "total_price",
	"amount_paid", "is_paid", "payment_method", "joined_at", "actual_start_time", "completed_at", "paid_at",
}

var barberColumns = []string{"id", "user_id", "name", "active", "busy"}

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &Service{
		db:      db,
		tickets: repository.NewTicketRepo(db),
		barbers: repository.NewBarberRepo(db),
		catalog: repository.NewServiceRepo(db),
		sched:   scheduler.New(db, nil, nil, time.UTC),
		loc:     time.UTC,
		now:     func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) },
	}, mock
}

func ticketRow(status string, barberID any) *sqlmock.Rows {
	joined := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(ticketColumns).AddRow(
		"t1", 7, "2024-03-10", status, nil, barberID, int64(150000),
		int64(0), false, nil, joined, nil, nil, nil)
}

// Cash-settling a ticket that already left the chair must not touch the busy
// flag: the attached barber may be serving someone else by then.
// Expectations are ordered, so a stray barbers update fails the test.
func TestSetStatusPayCompletedLeavesBarberAlone(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM tickets WHERE id").
		WithArgs("t1").
		WillReturnRows(ticketRow(model.StatusCompleted, 3))
	mock.ExpectExec("UPDATE tickets SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ticket, err := svc.SetStatus(context.Background(), "t1", model.StatusPaid, nil)
	require.NoError(t, err)
	assert.True(t, ticket.IsPaid)
	assert.Equal(t, model.StatusPaid, ticket.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Leaving SERVING for a terminal status does free the barber, in the same
// transaction as the ticket update.
func TestSetStatusCompleteServingFreesBarber(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM tickets WHERE id").
		WithArgs("t1").
		WillReturnRows(ticketRow(model.StatusServing, 3))
	mock.ExpectExec("UPDATE barbers SET busy").
		WithArgs(false, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE tickets SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ticket, err := svc.SetStatus(context.Background(), "t1", model.StatusCompleted, nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, ticket.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Cancelling a ticket in its unattended phase must not free anyone either:
// the barber was already released on entering PROCESSING.
func TestSetStatusCancelProcessingLeavesBarberAlone(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM tickets WHERE id").
		WithArgs("t1").
		WillReturnRows(ticketRow(model.StatusProcessing, 3))
	mock.ExpectExec("UPDATE tickets SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ticket, err := svc.SetStatus(context.Background(), "t1", model.StatusCancelled, nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, ticket.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Attaching a barber who is already busy with another ticket is rejected
// inside the transaction; nothing is written.
func TestSetStatusServeRejectsBusyBarber(t *testing.T) {
	svc, mock := newMockService(t)
	barberID := uint64(5)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM tickets WHERE id").
		WithArgs("t1").
		WillReturnRows(ticketRow(model.StatusWaiting, nil))
	mock.ExpectQuery("FROM barbers WHERE id").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(barberColumns).AddRow(5, nil, "An", true, true))
	mock.ExpectRollback()

	_, err := svc.SetStatus(context.Background(), "t1", model.StatusServing, &barberID)
	assert.ErrorIs(t, err, repository.ErrBarberBusy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Returning to hands-on work from PROCESSING re-occupies the attached
// barber, but only if the scheduler has not paired them elsewhere meanwhile.
func TestSetStatusFinishFromProcessingRejectsPoachedBarber(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM tickets WHERE id").
		WithArgs("t1").
		WillReturnRows(ticketRow(model.StatusProcessing, 3))
	mock.ExpectQuery("FROM barbers WHERE id").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(barberColumns).AddRow(3, nil, "Binh", true, true))
	mock.ExpectRollback()

	_, err := svc.SetStatus(context.Background(), "t1", model.StatusFinishing, nil)
	assert.ErrorIs(t, err, repository.ErrBarberBusy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatusFinishFromProcessingReoccupiesFreeBarber(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM tickets WHERE id").
		WithArgs("t1").
		WillReturnRows(ticketRow(model.StatusProcessing, 3))
	mock.ExpectQuery("FROM barbers WHERE id").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(barberColumns).AddRow(3, nil, "Binh", true, false))
	mock.ExpectExec("UPDATE barbers SET busy").
		WithArgs(true, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE tickets SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ticket, err := svc.SetStatus(context.Background(), "t1", model.StatusFinishing, nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFinishing, ticket.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// From SERVING the barber already holds this ticket: FINISHING keeps them
// busy without touching the roster at all.
func TestSetStatusFinishFromServingSkipsRoster(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM tickets WHERE id").
		WithArgs("t1").
		WillReturnRows(ticketRow(model.StatusServing, 3))
	mock.ExpectExec("UPDATE tickets SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ticket, err := svc.SetStatus(context.Background(), "t1", model.StatusFinishing, nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFinishing, ticket.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
