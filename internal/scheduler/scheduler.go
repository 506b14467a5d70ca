// Package scheduler pairs free barbers with the longest-waiting tickets. The
// pairing pass is greedy and FIFO: no priority classes, the earliest ticket
// number is always served first. Passes are pull-triggered by the events that
// can create a new pairing opportunity (ticket created, barber freed, payment
// settled) and coalesced through a one-slot channel consumed by a worker
// goroutine, so request latency is decoupled from pairing work.
package scheduler

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/hieplq/barber-queue/internal/database"
	"github.com/hieplq/barber-queue/internal/model"
	"github.com/hieplq/barber-queue/internal/repository"
)

// maxRetries bounds how often a pass is retried after losing its row locks
// to a concurrent transaction before giving up with ErrConflict.
const maxRetries = 3

// Assignment records one barber/ticket pairing made by a pass.
type Assignment struct {
	TicketID     string
	TicketNumber int
	BarberID     uint64
	BarberName   string
}

// Scheduler runs pairing passes over the ticket ledger and staff roster.
type Scheduler struct {
	db      *sql.DB
	tickets *repository.TicketRepo
	barbers *repository.BarberRepo
	loc     *time.Location
	now     func() time.Time

	trigger chan struct{}

	// notify, when set, is called once per successful assignment after the
	// pass commits (event publishing, board refresh).
	notify func(Assignment)
}

// New returns a Scheduler over the given repositories. loc is the shop
// timezone used to derive the business day.
func New(db *sql.DB, tickets *repository.TicketRepo, barbers *repository.BarberRepo, loc *time.Location) *Scheduler {
	return &Scheduler{
		db:      db,
		tickets: tickets,
		barbers: barbers,
		loc:     loc,
		now:     time.Now,
		trigger: make(chan struct{}, 1),
	}
}

// OnAssign registers a callback invoked after each committed assignment.
func (s *Scheduler) OnAssign(fn func(Assignment)) { s.notify = fn }

// Trigger requests a pairing pass. The one-slot buffer coalesces bursts: if
// a pass is already pending, additional triggers are dropped because the
// pending pass will observe their effects anyway.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run consumes triggers until ctx is cancelled. Intended to run as a single
// worker goroutine started from main.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.trigger:
			if _, err := s.RunPass(ctx); err != nil {
				log.Printf("scheduler: pass failed: %v", err)
			}
		}
	}
}

// Pair zips free barbers with waiting tickets positionally. Both slices must
// already be in their deterministic orders (barbers by name, tickets by
// number); the shorter list bounds the result.
func Pair(barbers []*model.Barber, tickets []*model.Ticket) []Assignment {
	n := len(barbers)
	if len(tickets) < n {
		n = len(tickets)
	}
	assignments := make([]Assignment, 0, n)
	for i := 0; i < n; i++ {
		assignments = append(assignments, Assignment{
			TicketID:     tickets[i].ID,
			TicketNumber: tickets[i].TicketNumber,
			BarberID:     barbers[i].ID,
			BarberName:   barbers[i].Name,
		})
	}
	return assignments
}

// RunPass executes one pairing pass in a single transaction: lock the free
// barbers and the earliest waiting tickets, zip them, move each ticket to
// SERVING with its barber and mark the barber busy, commit. An empty side
// makes the pass a no-op. Deadlocks and lock timeouts are retried a bounded
// number of times; exhaustion surfaces repository.ErrConflict.
func (s *Scheduler) RunPass(ctx context.Context) ([]Assignment, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		assignments, err := s.runPassOnce(ctx)
		if err == nil {
			for _, a := range assignments {
				if s.notify != nil {
					s.notify(a)
				}
			}
			return assignments, nil
		}
		if !database.IsRetryable(err) {
			return nil, err
		}
		lastErr = err
		log.Printf("scheduler: retrying pass after conflict (attempt %d): %v", attempt+1, err)
	}
	log.Printf("scheduler: giving up after %d conflicts: %v", maxRetries, lastErr)
	return nil, repository.ErrConflict
}

func (s *Scheduler) runPassOnce(ctx context.Context) ([]Assignment, error) {
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

	free, err := s.barbers.ListFreeTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(free) == 0 {
		committed = true
		return nil, tx.Commit()
	}
	waiting, err := s.tickets.ListWaitingTx(ctx, tx, day, len(free))
	if err != nil {
		return nil, err
	}
	assignments := Pair(free, waiting)
	for _, a := range assignments {
		if err := s.tickets.AssignTx(ctx, tx, a.TicketID, a.BarberID, now); err != nil {
			return nil, err
		}
		if err := s.barbers.SetBusyTx(ctx, tx, a.BarberID, true); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return assignments, nil
}
