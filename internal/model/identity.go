package model

import "time"

// Role names carried in session tokens.  Customers and professionals live
// in separate tables, so an id is only meaningful together with its role.
const (
	RoleCustomer     = "CUSTOMER"
	RoleProfessional = "PROFESSIONAL"
)

// Customer mirrors the `customers` table.  PasswordHash is a bcrypt hash
// and never leaves the service layer.
type Customer struct {
	ID           uint64    // customers.id
	Name         string    // customers.name
	Email        string    // customers.email (lower-cased, unique)
	PasswordHash string    // customers.password_hash
	Location     string    // customers.location
	PhoneNumber  string    // customers.phone_number
	CreatedAt    time.Time // customers.created_at
	UpdatedAt    time.Time // customers.updated_at
}

// Professional mirrors the `professionals` table: the login identity of a
// service provider.  ServiceType decides which bookings the professional
// may see and act on.
type Professional struct {
	ID           uint64
	Name         string
	Email        string
	PasswordHash string
	ServiceType  string
	Address      string
	PhoneNumber  string
	LicenseID    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the public summary of a customer or professional returned by
// registration and login.  It never carries the password hash.
type Identity struct {
	ID          uint64 `json:"id"`
	Role        string `json:"role"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	ServiceType string `json:"serviceType,omitempty"`
}

// Identity returns the public summary of c.
func (c Customer) Identity() Identity {
	return Identity{ID: c.ID, Role: RoleCustomer, Name: c.Name, Email: c.Email}
}

// Identity returns the public summary of p.
func (p Professional) Identity() Identity {
	return Identity{ID: p.ID, Role: RoleProfessional, Name: p.Name, Email: p.Email, ServiceType: p.ServiceType}
}

// Principal is the authenticated caller attached to a request after token
// verification.
type Principal struct {
	ID        uint64
	Role      string
	TokenID   string
	ExpiresAt time.Time
}
