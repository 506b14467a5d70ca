package payment

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/hieplq/barber-queue/internal/database"
	"github.com/hieplq/barber-queue/internal/model"
	"github.com/hieplq/barber-queue/internal/repository"
)

// maxRetries bounds retries after losing row locks to concurrent
// transactions (a webhook can race the scheduler over the same ticket row).
const maxRetries = 3

// Result describes the outcome of processing one webhook event. Business
// outcomes (unmatched content, underpaid top-up) are results, not errors:
// the gateway gets an acknowledgement either way because the transfer
// already happened.
type Result struct {
	Kind    string // MatchTicket, MatchTopUp or MatchUnrecognized
	Matched bool   // a ticket or order was found for the content

	// ticket path
	TicketID     string
	TicketNumber int
	AmountPaid   int64
	Remaining    int64
	Settled      bool

	// top-up path
	OrderCode      string
	CreditsGranted int64
	Rejected       bool // transfer below the order amount, nothing changed
}

// Reconciler applies webhook events to the payment ledger. Every path runs
// in a single transaction: a ticket marked paid with its barber left busy
// must be impossible.
type Reconciler struct {
	db       *sql.DB
	tickets  *repository.TicketRepo
	orders   *repository.OrderRepo
	users    *repository.UserRepo
	services *repository.ServiceRepo
	barbers  *repository.BarberRepo
	loc      *time.Location
	now      func() time.Time

	// onSettled, when set, runs after a ticket settlement commits; wiring
	// uses it to trigger a scheduler pass and publish the settled event.
	onSettled func(Result)
}

// NewReconciler returns a Reconciler over the given repositories.
func NewReconciler(db *sql.DB, tickets *repository.TicketRepo, orders *repository.OrderRepo,
	users *repository.UserRepo, services *repository.ServiceRepo, barbers *repository.BarberRepo,
	loc *time.Location) *Reconciler {
	return &Reconciler{
		db:       db,
		tickets:  tickets,
		orders:   orders,
		users:    users,
		services: services,
		barbers:  barbers,
		loc:      loc,
		now:      time.Now,
	}
}

// OnSettled registers a callback invoked after each committed ticket
// settlement.
func (r *Reconciler) OnSettled(fn func(Result)) { r.onSettled = fn }

// Process matches a transfer's content against the ledger and applies it.
// The returned error is reserved for internal failures; every business
// outcome is encoded in Result. Redelivered events are safe: ticket matching
// skips settled tickets, order settlement guards on PENDING.
func (r *Reconciler) Process(ctx context.Context, content string, transferAmount int64) (Result, error) {
	match := ParseTransferContent(content)
	switch match.Kind {
	case MatchTicket:
		return r.processWithRetry(ctx, func(ctx context.Context) (Result, error) {
			return r.processTicket(ctx, match.TicketNumber, transferAmount)
		})
	case MatchTopUp:
		return r.processWithRetry(ctx, func(ctx context.Context) (Result, error) {
			return r.processTopUp(ctx, match.Code, transferAmount)
		})
	default:
		log.Printf("webhook: unrecognized transfer content %q (amount %d)", content, transferAmount)
		return Result{Kind: MatchUnrecognized}, nil
	}
}

func (r *Reconciler) processWithRetry(ctx context.Context, fn func(context.Context) (Result, error)) (Result, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		res, err := fn(ctx)
		if err == nil || !database.IsRetryable(err) {
			return res, err
		}
		lastErr = err
		log.Printf("webhook: retrying after conflict (attempt %d): %v", attempt+1, err)
	}
	return Result{}, lastErr
}

func (r *Reconciler) processTicket(ctx context.Context, number int, transferAmount int64) (Result, error) {
	now := r.now().UTC()
	day := model.DayKey(now, r.loc)
	res := Result{Kind: MatchTicket, TicketNumber: number}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return res, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ticket, err := r.tickets.GetUnpaidByNumberTx(ctx, tx, day, number)
	if err == repository.ErrTicketNotFound {
		// No unpaid ticket with this number today. Acknowledge and log; the
		// gateway must not retry a transfer that maps to nothing.
		log.Printf("webhook: no unpaid ticket #%d for %s (amount %d)", number, day, transferAmount)
		return res, nil
	}
	if err != nil {
		return res, err
	}
	res.Matched = true
	res.TicketID = ticket.ID

	newPaid, settled := ApplyTransfer(ticket.TotalPrice, ticket.AmountPaid, transferAmount)
	if !settled {
		if err := r.tickets.AddPaymentTx(ctx, tx, ticket.ID, newPaid); err != nil {
			return res, err
		}
		if err := tx.Commit(); err != nil {
			return res, err
		}
		committed = true
		res.AmountPaid = newPaid
		res.Remaining = ticket.TotalPrice - newPaid
		log.Printf("webhook: partial payment on ticket #%d: %d/%d", number, newPaid, ticket.TotalPrice)
		return res, nil
	}

	if err := r.tickets.SettleTx(ctx, tx, ticket.ID, newPaid, now); err != nil {
		return res, err
	}
	// Free the barber only when this ticket is what keeps them busy. A
	// COMPLETED or PROCESSING ticket still carries barber_id while the barber
	// may already be serving another ticket; clearing the flag then would let
	// the scheduler double-book them.
	if ticket.BarberID != nil && model.OccupiesBarber(ticket.Status) {
		if err := r.barbers.SetBusyTx(ctx, tx, *ticket.BarberID, false); err != nil {
			return res, err
		}
	}
	if ticket.OwnerID != nil {
		primary, err := r.services.HasPrimaryTx(ctx, tx, ticket.ID)
		if err != nil {
			return res, err
		}
		if primary {
			if err := r.users.AddCreditsTx(ctx, tx, *ticket.OwnerID, 1); err != nil {
				return res, err
			}
			res.CreditsGranted = 1
		}
	}
	if err := tx.Commit(); err != nil {
		return res, err
	}
	committed = true
	res.AmountPaid = newPaid
	res.Settled = true
	log.Printf("webhook: ticket #%d settled (%d paid, price %d)", number, newPaid, ticket.TotalPrice)
	if r.onSettled != nil {
		r.onSettled(res)
	}
	return res, nil
}

func (r *Reconciler) processTopUp(ctx context.Context, code string, transferAmount int64) (Result, error) {
	res := Result{Kind: MatchTopUp, OrderCode: code}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return res, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	order, err := r.orders.GetPendingByCodeTx(ctx, tx, code)
	if err == repository.ErrOrderNotFound {
		log.Printf("webhook: no pending order %s (amount %d)", code, transferAmount)
		return res, nil
	}
	if err != nil {
		return res, err
	}
	res.Matched = true

	// A top-up is a pure prepay product: there is nothing to honor on a
	// shortfall, so underpayment is a hard rejection, not an accumulator.
	if transferAmount < order.Amount {
		res.Rejected = true
		log.Printf("webhook: order %s underpaid: got %d, need %d", code, transferAmount, order.Amount)
		return res, nil
	}

	if err := r.orders.MarkPaidTx(ctx, tx, order.ID, r.now().UTC()); err != nil {
		return res, err
	}
	if err := r.users.AddCreditsTx(ctx, tx, order.UserID, order.Credits); err != nil {
		return res, err
	}
	if err := tx.Commit(); err != nil {
		return res, err
	}
	committed = true
	res.CreditsGranted = order.Credits
	log.Printf("webhook: order %s settled, %d credits to user %d", code, order.Credits, order.UserID)
	return res, nil
}
