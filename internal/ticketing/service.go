// Package ticketing owns the ticket lifecycle: creation under the capacity
// and shop-open checks, the status state machine with its barber side
// effects, and the queue views derived from the day's ledger.
package ticketing

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/hieplq/barber-queue/internal/database"
	"github.com/hieplq/barber-queue/internal/model"
	"github.com/hieplq/barber-queue/internal/repository"
	"github.com/hieplq/barber-queue/internal/scheduler"
	"github.com/hieplq/barber-queue/internal/settings"
	"github.com/hieplq/barber-queue/internal/waittime"
)

// maxRetries bounds retries of the creation transaction when two concurrent
// creations collide on the day's ticket-number rows.
const maxRetries = 3

// Service orchestrates ticket operations. Every multi-row effect (ticket +
// line items, ticket + barber flag) runs in a single transaction.
type Service struct {
	db       *sql.DB
	tickets  *repository.TicketRepo
	barbers  *repository.BarberRepo
	catalog  *repository.ServiceRepo
	settings *settings.Store
	sched    *scheduler.Scheduler
	loc      *time.Location
	now      func() time.Time

	// onCreated, when set, runs after a creation commits (event publishing).
	onCreated func(*model.Ticket)
}

// NewService wires a ticketing Service.
func NewService(db *sql.DB, tickets *repository.TicketRepo, barbers *repository.BarberRepo,
	catalog *repository.ServiceRepo, st *settings.Store, sched *scheduler.Scheduler,
	loc *time.Location) *Service {
	return &Service{
		db:       db,
		tickets:  tickets,
		barbers:  barbers,
		catalog:  catalog,
		settings: st,
		sched:    sched,
		loc:      loc,
		now:      time.Now,
	}
}

// OnCreated registers a callback invoked after each committed creation.
func (s *Service) OnCreated(fn func(*model.Ticket)) { s.onCreated = fn }

// Create draws a new ticket for today. Preconditions: the shop is open, at
// least one valid active service is selected, and the daily cap (when
// configured) is not exhausted. The ticket number is assigned inside the
// transaction so the day's sequence stays contiguous under concurrency, and
// a scheduler pass is triggered once the creation commits.
func (s *Service) Create(ctx context.Context, ownerID *uint64, serviceIDs []uint64) (*model.Ticket, error) {
	unique := make([]uint64, 0, len(serviceIDs))
	seen := make(map[uint64]struct{})
	for _, id := range serviceIDs {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return nil, repository.ErrNoServices
	}

	setting, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !setting.IsShopOpen {
		return nil, repository.ErrShopClosed
	}

	services, err := s.catalog.GetActiveByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(services) != len(unique) {
		return nil, repository.ErrNoServices
	}

	lines := make([]model.ServiceLine, 0, len(services))
	var total int64
	for _, svc := range services {
		price := svc.EffectivePrice()
		total += price
		lines = append(lines, model.ServiceLine{
			ServiceID:     svc.ID,
			PriceSnapshot: price,
			DurationWork:  svc.DurationWork,
		})
	}

	var ticket *model.Ticket
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		ticket, lastErr = s.createOnce(ctx, ownerID, lines, total, setting.MaxDailyTickets)
		if lastErr == nil || !database.IsRetryable(lastErr) {
			break
		}
		log.Printf("ticketing: retrying create after conflict (attempt %d): %v", attempt+1, lastErr)
	}
	if lastErr != nil {
		if database.IsRetryable(lastErr) {
			return nil, repository.ErrConflict
		}
		return nil, lastErr
	}

	s.sched.Trigger()
	if s.onCreated != nil {
		s.onCreated(ticket)
	}
	return ticket, nil
}

func (s *Service) createOnce(ctx context.Context, ownerID *uint64, lines []model.ServiceLine, total int64, maxDaily int) (*model.Ticket, error) {
	now := s.now().UTC()
	day := model.DayKey(now, s.loc)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// NextNumberTx locks the day's rows, so the capacity count that follows
	// cannot race another creation of the same day.
	number, err := s.tickets.NextNumberTx(ctx, tx, day)
	if err != nil {
		return nil, err
	}
	if maxDaily > 0 {
		active, err := s.tickets.CountActiveTx(ctx, tx, day)
		if err != nil {
			return nil, err
		}
		if active >= maxDaily {
			return nil, repository.ErrCapacityExceeded
		}
	}

	ticket := &model.Ticket{
		ID:           uuid.NewString(),
		TicketNumber: number,
		Day:          day,
		Status:       model.StatusWaiting,
		OwnerID:      ownerID,
		Services:     lines,
		TotalPrice:   total,
		JoinedAt:     now,
	}
	if err := s.tickets.CreateTx(ctx, tx, ticket); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return ticket, nil
}

// SetStatus applies one state-machine transition with its barber side
// effects, atomically:
//
//   - SERVING attaches a barber, stamps the start time and marks the barber
//     busy; an already-busy barber is rejected with ErrBarberBusy;
//   - PROCESSING frees the attached barber without detaching them from the
//     ticket (unattended treatment phase);
//   - FINISHING from PROCESSING re-occupies the attached barber, rejecting
//     with ErrBarberBusy if the scheduler paired them elsewhere meanwhile;
//   - COMPLETED, PAID, CANCELLED and SKIPPED stamp completion and free the
//     barber, but only when the ticket leaves SERVING or FINISHING: those
//     are the statuses in which this ticket is what keeps the barber busy
//     (PAID additionally stamps payment; this is the cash settlement path,
//     so no payment method is recorded).
//
// Transitions that free a barber trigger a scheduler pass after commit.
func (s *Service) SetStatus(ctx context.Context, ticketID, newStatus string, barberID *uint64) (*model.Ticket, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ticket, err := s.tickets.GetByIDTx(ctx, tx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsPaid && !model.Terminal(newStatus) {
		return nil, repository.ErrAlreadyPaid
	}
	if !model.ValidTransition(ticket.Status, newStatus) {
		return nil, repository.ErrInvalidTransition
	}

	now := s.now().UTC()
	update := repository.StatusUpdateTx{Status: newStatus}
	freed := false

	switch {
	case newStatus == model.StatusServing:
		attach := ticket.BarberID
		if barberID != nil {
			attach = barberID
		}
		if attach == nil {
			return nil, repository.ErrBarberNotFound
		}
		// the ticket does not occupy the attached barber before SERVING
		// (WAITING, CALLING, PROCESSING), so a busy flag here means another
		// ticket holds them
		b, err := s.barbers.GetTx(ctx, tx, *attach)
		if err != nil {
			return nil, err
		}
		if b.Busy {
			return nil, repository.ErrBarberBusy
		}
		update.BarberID = attach
		if ticket.ActualStartTime == nil {
			update.ActualStartTime = &now
		}
		if err := s.barbers.SetBusyTx(ctx, tx, *attach, true); err != nil {
			return nil, err
		}
	case newStatus == model.StatusFinishing:
		// from SERVING the barber already holds this ticket and stays busy;
		// re-entering hands-on work from PROCESSING must re-occupy them, and
		// the scheduler may have paired them with someone else in between
		if ticket.BarberID != nil && ticket.Status == model.StatusProcessing {
			b, err := s.barbers.GetTx(ctx, tx, *ticket.BarberID)
			if err != nil {
				return nil, err
			}
			if b.Busy {
				return nil, repository.ErrBarberBusy
			}
			if err := s.barbers.SetBusyTx(ctx, tx, *ticket.BarberID, true); err != nil {
				return nil, err
			}
		}
	case model.FreesBarber(newStatus):
		// free the barber only when this ticket is what keeps them busy; a
		// COMPLETED or PROCESSING ticket still carries barber_id while the
		// barber may be serving someone else
		if ticket.BarberID != nil && model.OccupiesBarber(ticket.Status) {
			if err := s.barbers.SetBusyTx(ctx, tx, *ticket.BarberID, false); err != nil {
				return nil, err
			}
			freed = true
		}
		// PROCESSING frees the barber but the visit itself continues
		if newStatus != model.StatusProcessing {
			update.CompletedAt = &now
		}
		if newStatus == model.StatusPaid {
			update.PaidAt = &now
			update.MarkPaid = true
		}
	}

	if err := s.tickets.UpdateStatusTx(ctx, tx, ticket.ID, update); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	if freed {
		s.sched.Trigger()
	}

	ticket.Status = newStatus
	if update.BarberID != nil {
		ticket.BarberID = update.BarberID
	}
	if update.ActualStartTime != nil {
		ticket.ActualStartTime = update.ActualStartTime
	}
	if update.CompletedAt != nil {
		ticket.CompletedAt = update.CompletedAt
	}
	if update.PaidAt != nil {
		ticket.PaidAt = update.PaidAt
		ticket.IsPaid = true
	}
	return ticket, nil
}

// QueueEntry is one row of the queue board.
type QueueEntry struct {
	Ticket   *model.Ticket `json:"ticket"`
	Position int           `json:"position"`
}

// QueueSnapshot is the polled queue view: the day's active tickets with
// their positions, the active staffing level and the general wait estimate
// (nil when no barbers are on shift; the caller must special-case "no
// estimate available").
type QueueSnapshot struct {
	Day           string       `json:"day"`
	Tickets       []QueueEntry `json:"tickets"`
	ActiveBarbers int          `json:"active_barbers"`
	EstimateMin   *int         `json:"estimate_min,omitempty"`
}

// Snapshot builds the queue board for today.
func (s *Service) Snapshot(ctx context.Context) (*QueueSnapshot, error) {
	day := model.DayKey(s.now(), s.loc)
	tickets, err := s.tickets.ListActiveByDay(ctx, day)
	if err != nil {
		return nil, err
	}
	active, err := s.barbers.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	snap := &QueueSnapshot{Day: day, Tickets: make([]QueueEntry, 0, len(tickets)), ActiveBarbers: active}
	for _, t := range tickets {
		snap.Tickets = append(snap.Tickets, QueueEntry{
			Ticket:   t,
			Position: waittime.Position(tickets, t.TicketNumber),
		})
	}
	if min, ok := waittime.Estimate(tickets, active); ok {
		snap.EstimateMin = &min
	}
	return snap, nil
}

// TicketView is the customer-facing view of one ticket: its state, the
// outstanding balance to re-render a payment QR for, and the personal wait
// estimate over the tickets ahead of it.
type TicketView struct {
	Ticket      *model.Ticket `json:"ticket"`
	Position    int           `json:"position"`
	Remaining   int64         `json:"remaining"`
	EstimateMin *int          `json:"estimate_min,omitempty"`
}

// View loads today's ticket with the given number.
func (s *Service) View(ctx context.Context, number int) (*TicketView, error) {
	day := model.DayKey(s.now(), s.loc)
	ticket, err := s.tickets.GetByNumberForDay(ctx, day, number)
	if err != nil {
		return nil, err
	}
	active, err := s.barbers.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListActiveByDay(ctx, day)
	if err != nil {
		return nil, err
	}
	view := &TicketView{
		Ticket:    ticket,
		Position:  waittime.Position(tickets, number),
		Remaining: ticket.Remaining(),
	}
	if min, ok := waittime.Personal(tickets, number, active); ok {
		view.EstimateMin = &min
	}
	return view, nil
}

// GeneralEstimate returns the wait a prospective new customer should expect,
// over the full active queue. ok is false when no barbers are on shift.
func (s *Service) GeneralEstimate(ctx context.Context) (int, bool, error) {
	day := model.DayKey(s.now(), s.loc)
	tickets, err := s.tickets.ListActiveByDay(ctx, day)
	if err != nil {
		return 0, false, err
	}
	active, err := s.barbers.CountActive(ctx)
	if err != nil {
		return 0, false, err
	}
	min, ok := waittime.Estimate(tickets, active)
	return min, ok, nil
}
