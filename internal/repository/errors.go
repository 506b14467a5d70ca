// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios and translate them into
// the user-facing error codes without leaking database error text.
package repository

import "errors"

// ErrShopClosed is returned when ticket creation is attempted while the
// shop's master switch is off.
var ErrShopClosed = errors.New("shop closed")

// ErrNoServices is returned when ticket creation is attempted with no valid,
// active service selected.
var ErrNoServices = errors.New("no services selected")

// ErrCapacityExceeded is returned when the day's active ticket count has
// reached the configured cap.
var ErrCapacityExceeded = errors.New("daily ticket capacity exceeded")

// ErrTicketNotFound is returned when a ticket lookup by id or by day-scoped
// number matches nothing.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrBarberNotFound is returned when a referenced barber does not exist.
var ErrBarberNotFound = errors.New("barber not found")

// ErrBarberBusy is returned when a transition would occupy a barber who is
// already busy with a different ticket.
var ErrBarberBusy = errors.New("barber busy")

// ErrUserNotFound is returned when a user lookup matches nothing.
var ErrUserNotFound = errors.New("user not found")

// ErrOrderNotFound is returned when no pending top-up order matches a
// reconciliation code.
var ErrOrderNotFound = errors.New("payment order not found")

// ErrInvalidTransition is returned when a requested status change is not
// permitted by the ticket state machine.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrAlreadyPaid is returned when a settled ticket would re-enter an active
// status or receive another settlement.
var ErrAlreadyPaid = errors.New("ticket already paid")

// ErrSettingNotFound is returned when the singleton settings row is missing.
var ErrSettingNotFound = errors.New("shop settings not found")

// ErrConflict is returned when an operation keeps losing row locks to
// concurrent transactions after bounded retries. Handlers should translate
// this into a "system busy" response rather than an internal error.
var ErrConflict = errors.New("conflict")
