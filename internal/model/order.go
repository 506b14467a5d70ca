package model

import "time"

// Payment order statuses. Unlike tickets, a top-up order has no partial
// state: it is PENDING until a single transfer covers the full amount.
const (
	OrderPending = "PENDING"
	OrderPaid    = "PAID"
)

// PaymentOrder is a credit top-up purchase. Code is the human-typed
// reconciliation token the customer puts in their bank transfer note; the
// webhook matches on it to settle the order and credit the user.
type PaymentOrder struct {
	ID      string     `json:"id"`                // payment_orders.id (uuid)
	Code    string     `json:"code"`              // payment_orders.code (unique, "NAP..." token)
	UserID  uint64     `json:"user_id"`           // payment_orders.user_id
	Amount  int64      `json:"amount"`            // price of the top-up
	Credits int64      `json:"credits"`           // credits granted on settlement
	Status  string     `json:"status"`            // PENDING or PAID
	PaidAt  *time.Time `json:"paid_at,omitempty"` // payment_orders.paid_at (nullable)
}
