package model

import "time"

// Booking statuses.  A booking starts pending and moves exactly once to
// accepted or rejected; both are terminal.
const (
	BookingPending  = "pending"
	BookingAccepted = "accepted"
	BookingRejected = "rejected"
)

// Actions a professional may take on a pending booking.
const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

// Booking records a customer's request for a service.
//
// Fields:
//
//	CustomerName   – snapshot of the customer's name at creation time.
//	ProfessionalID – nil unless Status is accepted.
//	Date           – YYYY-MM-DD.
//	Time           – HH:MM.
type Booking struct {
	ID             uint64    `json:"id"`
	CustomerID     uint64    `json:"customerId"`
	CustomerName   string    `json:"customerName"`
	ProfessionalID *uint64   `json:"professionalId"`
	ServiceType    string    `json:"serviceType"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Description    string    `json:"description"`
	Price          float64   `json:"price"`
	Location       string    `json:"location"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// StatusFor maps an action to the status it produces.
func StatusFor(action string) (string, bool) {
	switch action {
	case ActionAccept:
		return BookingAccepted, true
	case ActionReject:
		return BookingRejected, true
	}
	return "", false
}

// AssignedTo reports whether the booking is assigned to professionalID.
func (b Booking) AssignedTo(professionalID uint64) bool {
	return b.ProfessionalID != nil && *b.ProfessionalID == professionalID
}
