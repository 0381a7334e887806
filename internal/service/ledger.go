package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/local-services-api/internal/metrics"
	"github.com/iliyamo/local-services-api/internal/model"
	"github.com/iliyamo/local-services-api/internal/queue"
	"github.com/iliyamo/local-services-api/internal/repository"
	"github.com/iliyamo/local-services-api/internal/validation"
)

// EventPublisher delivers booking lifecycle events.  *queue.Publisher
// implements it.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// BookingInput is the booking request form.  Service is the service type
// the customer needs.
type BookingInput struct {
	Service     string  `json:"service" form:"service" validate:"notblank,max=64"`
	Date        string  `json:"date" form:"date" validate:"required,datetime=2006-01-02"`
	Time        string  `json:"time" form:"time" validate:"required,datetime=15:04"`
	Description string  `json:"description" form:"description" validate:"notblank"`
	Price       float64 `json:"price" form:"price" validate:"gt=0"`
	Location    string  `json:"location" form:"location" validate:"notblank,max=191"`
}

// Ledger owns the booking lifecycle.  A booking is created pending and is
// moved to accepted or rejected exactly once; the move is decided by the
// database, never by in-process locks.
type Ledger struct {
	bookings      *repository.BookingRepo
	customers     *repository.CustomerRepo
	professionals *repository.ProfessionalRepo
	validate      *validation.Validator
	events        EventPublisher
	metrics       *metrics.Metrics
	log           *zap.Logger
}

// NewLedger wires the ledger.  events and m may be nil.
func NewLedger(bookings *repository.BookingRepo, customers *repository.CustomerRepo, professionals *repository.ProfessionalRepo,
	v *validation.Validator, events EventPublisher, m *metrics.Metrics, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{
		bookings: bookings, customers: customers, professionals: professionals,
		validate: v, events: events, metrics: m, log: log,
	}
}

// CreateBooking records a pending booking for customerID.  The customer's
// current name is copied onto the booking.
func (l *Ledger) CreateBooking(ctx context.Context, customerID uint64, in BookingInput) (model.Booking, error) {
	in.Service = NormalizeServiceType(in.Service)
	if err := l.validate.Validate(in); err != nil {
		return model.Booking{}, err
	}
	c, err := l.customers.GetByID(ctx, customerID)
	if err != nil {
		return model.Booking{}, err
	}
	b := model.Booking{
		CustomerID:   c.ID,
		CustomerName: c.Name,
		ServiceType:  in.Service,
		Date:         in.Date,
		Time:         in.Time,
		Description:  strings.TrimSpace(in.Description),
		Price:        in.Price,
		Location:     strings.TrimSpace(in.Location),
	}
	if err := l.bookings.Create(ctx, &b); err != nil {
		return model.Booking{}, fmt.Errorf("create booking: %w", err)
	}
	if l.metrics != nil {
		l.metrics.BookingsCreated.Inc()
	}
	l.publish(ctx, queue.EventBookingCreated, b)
	return b, nil
}

// ListEligibleBookings returns the bookings professionalID may act on or
// already holds: same service type, unclaimed or claimed by them.
func (l *Ledger) ListEligibleBookings(ctx context.Context, professionalID uint64) ([]model.Booking, error) {
	st, err := l.professionals.ServiceType(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	return l.bookings.ListEligible(ctx, st, professionalID)
}

// ListForCustomer returns the customer's bookings, newest first.  A
// customer with no bookings gets ErrNotFound.
func (l *Ledger) ListForCustomer(ctx context.Context, customerID uint64) ([]model.Booking, error) {
	list, err := l.bookings.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return list, nil
}

// ActOnBooking accepts or rejects a pending booking on behalf of
// professionalID.  Of any number of concurrent calls on the same booking
// exactly one moves it; the rest get ErrConflict.  Re-accepting a booking
// the caller already holds succeeds and returns it unchanged.
func (l *Ledger) ActOnBooking(ctx context.Context, bookingID, professionalID uint64, action string) (model.Booking, error) {
	action = strings.ToLower(strings.TrimSpace(action))
	status, ok := model.StatusFor(action)
	if !ok {
		return model.Booking{}, validation.Invalid("action", "oneof")
	}
	st, err := l.professionals.ServiceType(ctx, professionalID)
	if err != nil {
		return model.Booking{}, err
	}

	b, err := l.bookings.Transition(ctx, bookingID, professionalID, st, status)
	switch {
	case err == nil:
		l.countAction(action, "ok")
		ev := queue.EventBookingAccepted
		if status == model.BookingRejected {
			ev = queue.EventBookingRejected
		}
		l.publish(ctx, ev, b)
		return b, nil
	case errors.Is(err, ErrConflict) && action == model.ActionAccept &&
		b.Status == model.BookingAccepted && b.AssignedTo(professionalID):
		l.countAction(action, "idempotent")
		return b, nil
	case errors.Is(err, ErrConflict):
		l.countAction(action, "conflict")
		return model.Booking{}, err
	case errors.Is(err, ErrNotEligible):
		l.countAction(action, "not_eligible")
		return model.Booking{}, err
	case errors.Is(err, ErrNotFound):
		l.countAction(action, "not_found")
		return model.Booking{}, err
	}
	l.countAction(action, "error")
	return model.Booking{}, fmt.Errorf("transition booking %d: %w", bookingID, err)
}

// DeleteBooking removes a booking outright.
func (l *Ledger) DeleteBooking(ctx context.Context, id uint64) error {
	return l.bookings.Delete(ctx, id)
}

func (l *Ledger) countAction(action, outcome string) {
	if l.metrics != nil {
		l.metrics.BookingActions.WithLabelValues(action, outcome).Inc()
	}
}

// publish sends the event for a committed change.  Errors are logged and
// counted, not returned.
func (l *Ledger) publish(ctx context.Context, typ string, b model.Booking) {
	if l.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	ev := queue.BookingEvent{
		Type:           typ,
		BookingID:      b.ID,
		CustomerID:     b.CustomerID,
		CustomerName:   b.CustomerName,
		ProfessionalID: b.ProfessionalID,
		ServiceType:    b.ServiceType,
		Status:         b.Status,
		Date:           b.Date,
		Time:           b.Time,
		Price:          b.Price,
		OccurredAt:     time.Now().UTC(),
	}
	status := "ok"
	if err := l.events.Publish(ctx, ev); err != nil {
		status = "error"
		l.log.Warn("publish booking event failed",
			zap.String("type", typ), zap.Uint64("booking_id", b.ID), zap.Error(err))
	}
	if l.metrics != nil {
		l.metrics.EventsPublished.WithLabelValues(typ, status).Inc()
	}
}
