package model

import "time"

// Ticket statuses. A ticket moves WAITING → CALLING → SERVING → PROCESSING →
// FINISHING → COMPLETED → PAID; CANCELLED and SKIPPED are reachable from any
// non-terminal status. PROCESSING models an unattended phase (e.g. a chemical
// treatment) during which the assigned barber is released to serve someone
// else while the ticket still counts as in progress for queue display.
const (
	StatusWaiting    = "WAITING"
	StatusCalling    = "CALLING"
	StatusServing    = "SERVING"
	StatusProcessing = "PROCESSING"
	StatusFinishing  = "FINISHING"
	StatusCompleted  = "COMPLETED"
	StatusPaid       = "PAID"
	StatusCancelled  = "CANCELLED"
	StatusSkipped    = "SKIPPED"
)

// PaymentMethodBankTransfer is stamped on tickets settled through the bank
// webhook. Cash settlement is recorded by staff through the status endpoint
// and carries no payment method.
const PaymentMethodBankTransfer = "BANK_TRANSFER"

// Ticket represents one customer's visit for a single business day. Ticket
// numbers are unique per day and assigned contiguously starting at 1; the
// day key is derived in the shop's local timezone so numbering resets at the
// shop's midnight.
//
// AmountPaid accumulates bank transfers and is monotonically non-decreasing.
// IsPaid becomes true exactly once AmountPaid reaches TotalPrice and never
// reverts; a paid ticket can never re-enter an active status.
type Ticket struct {
	ID              string        `json:"id"`                          // tickets.id (uuid)
	TicketNumber    int           `json:"ticket_number"`               // tickets.ticket_number, unique within Day
	Day             string        `json:"day"`                         // tickets.day ("2006-01-02" in shop local time)
	Status          string        `json:"status"`                      // tickets.status
	OwnerID         *uint64       `json:"owner_id,omitempty"`          // tickets.owner_id (nullable: walk-in guests)
	BarberID        *uint64       `json:"barber_id,omitempty"`         // tickets.barber_id (nullable until assigned)
	Services        []ServiceLine `json:"services,omitempty"`          // ticket_services rows
	TotalPrice      int64         `json:"total_price"`                 // sum of service price snapshots
	AmountPaid      int64         `json:"amount_paid"`                 // accumulated bank transfers
	IsPaid          bool          `json:"is_paid"`                     // AmountPaid >= TotalPrice
	PaymentMethod   *string       `json:"payment_method,omitempty"`    // tickets.payment_method (nullable)
	JoinedAt        time.Time     `json:"joined_at"`                   // tickets.joined_at
	ActualStartTime *time.Time    `json:"actual_start_time,omitempty"` // set on transition to SERVING
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`      // set on terminal transitions
	PaidAt          *time.Time    `json:"paid_at,omitempty"`           // set when the ticket settles
}

// ServiceLine is a price snapshot of one service selected on a ticket. The
// snapshot is taken at creation time so later catalog edits never change what
// a customer owes.
type ServiceLine struct {
	ServiceID     uint64 `json:"service_id"`
	PriceSnapshot int64  `json:"price_snapshot"`
	DurationWork  int    `json:"duration_work_min"`
}

// Active reports whether the ticket still appears on the queue board. Note
// the capacity count is wider: a COMPLETED ticket leaves the board but holds
// its capacity slot until it is paid.
func (t *Ticket) Active() bool {
	switch t.Status {
	case StatusCancelled, StatusPaid, StatusSkipped, StatusCompleted:
		return false
	}
	return true
}

// Remaining returns the outstanding balance on the ticket, never negative
// (overpayment is recorded on AmountPaid but owed nothing back).
func (t *Ticket) Remaining() int64 {
	if r := t.TotalPrice - t.AmountPaid; r > 0 {
		return r
	}
	return 0
}

// DayKey normalizes a point in time to the shop's business-day key. All
// day-scoped queries (ticket numbering, capacity, webhook matching) go
// through this one function so they can never disagree about which day a
// timestamp belongs to.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
