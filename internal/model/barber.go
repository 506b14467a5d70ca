package model

// Barber is a staff member capable of serving one ticket at a time. Active
// means on shift today; Busy means currently attached to a ticket in SERVING
// or FINISHING. At most one ticket references a busy barber at any instant;
// the scheduler's pairing pass enforces this by running inside a single
// transaction with the barber rows locked.
type Barber struct {
	ID     uint64  `json:"id"`                // barbers.id
	UserID *uint64 `json:"user_id,omitempty"` // barbers.user_id (nullable link to the auth system's user)
	Name   string  `json:"name"`              // barbers.name
	Active bool    `json:"active"`            // barbers.active (on shift)
	Busy   bool    `json:"busy"`              // barbers.busy (serving right now)
}
