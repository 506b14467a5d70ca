// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// Event types carried on the barber.queue.events queue.
const (
	TypeTicketCreated  = "ticket.created"
	TypeTicketAssigned = "ticket.assigned"
	TypePaymentSettled = "payment.settled"
)

// Envelope wraps every published message with its type so one durable queue
// can carry the whole event stream.
type Envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// TicketCreatedEvent is published when a customer draws a ticket.
type TicketCreatedEvent struct {
	TicketID     string `json:"ticket_id"`
	TicketNumber int    `json:"ticket_number"`
	Day          string `json:"day"`
	TotalPrice   int64  `json:"total_price"`
	CreatedAt    string `json:"created_at"`
}

// TicketAssignedEvent is published when a scheduler pass pairs a barber with
// a waiting ticket.
type TicketAssignedEvent struct {
	TicketID     string `json:"ticket_id"`
	TicketNumber int    `json:"ticket_number"`
	BarberID     uint64 `json:"barber_id"`
	BarberName   string `json:"barber_name"`
	AssignedAt   string `json:"assigned_at"`
}

// PaymentSettledEvent is published when a bank transfer settles a ticket.
type PaymentSettledEvent struct {
	TicketID     string `json:"ticket_id"`
	TicketNumber int    `json:"ticket_number"`
	AmountPaid   int64  `json:"amount_paid"`
	SettledAt    string `json:"settled_at"`
}
