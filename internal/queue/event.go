// Package queue defines booking lifecycle events and moves them over
// RabbitMQ.
package queue

import "time"

// Routing keys published on the bookings exchange.
const (
	EventBookingCreated  = "booking.created"
	EventBookingAccepted = "booking.accepted"
	EventBookingRejected = "booking.rejected"
)

// BookingEvent is published whenever a booking is created or changes
// status.  It carries enough for downstream consumers to log, notify or
// run analytics without querying the primary database.
type BookingEvent struct {
	Type           string    `json:"type"`
	BookingID      uint64    `json:"bookingId"`
	CustomerID     uint64    `json:"customerId"`
	CustomerName   string    `json:"customerName"`
	ProfessionalID *uint64   `json:"professionalId,omitempty"`
	ServiceType    string    `json:"serviceType"`
	Status         string    `json:"status"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Price          float64   `json:"price"`
	OccurredAt     time.Time `json:"occurredAt"`
}
