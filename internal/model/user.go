package model

// User roles as carried in the JWT "role" claim. Accounts are owned by the
// external auth service; this service only resolves the role and maintains
// the credit balance.
const (
	RoleAdmin    = "ADMIN"
	RoleBarber   = "BARBER"
	RoleCustomer = "CUSTOMER"
)

// User is the slice of an account this service cares about: identity, role
// and the loyalty/top-up credit balance.
type User struct {
	ID      uint64 `json:"id"`      // users.id
	Name    string `json:"name"`    // users.name
	Role    string `json:"role"`    // users.role
	Credits int64  `json:"credits"` // users.credits
}
