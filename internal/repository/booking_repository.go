package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/local-services-api/internal/model"
)

// BookingRepo provides persistence for bookings.  The only mutation after
// creation is Transition, which moves a pending booking to a terminal
// status with a single conditional UPDATE; the database row lock is the
// serialization point for concurrent accept/reject requests.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, customer_id, customer_name, professional_id, service_type, date, time,
	description, price, location, status, created_at, updated_at`

// Create inserts b as a pending, unassigned booking and populates its ID,
// status and timestamps.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO bookings (customer_id, customer_name, professional_id, service_type, date, time,
		 description, price, location, status, created_at, updated_at)
		 VALUES (?, ?, NULL, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.CustomerID, b.CustomerName, b.ServiceType, b.Date, b.Time,
		b.Description, b.Price, b.Location, model.BookingPending, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.ProfessionalID = nil
	b.Status = model.BookingPending
	b.CreatedAt, b.UpdatedAt = now, now
	return nil
}

// GetByID returns a booking or ErrNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	return b, notFound(err)
}

// ListEligible returns bookings of serviceType that are either unclaimed
// or assigned to professionalID, newest date first.
func (r *BookingRepo) ListEligible(ctx context.Context, serviceType string, professionalID uint64) ([]model.Booking, error) {
	return r.list(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE service_type = ? AND (professional_id IS NULL OR professional_id = ?)
		 ORDER BY date DESC, time DESC, id DESC`, serviceType, professionalID)
}

// ListByCustomer returns the customer's bookings ordered by date descending.
func (r *BookingRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]model.Booking, error) {
	return r.list(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE customer_id = ?
		 ORDER BY date DESC, time DESC, id DESC`, customerID)
}

// Transition moves a pending booking of serviceType to status on behalf of
// professionalID.  Accepted bookings record the professional; rejected
// ones stay unassigned.
//
// The compare-and-set happens in one UPDATE guarded by status = 'pending',
// so of two racing requests exactly one changes the row.  When nothing
// changes, the committed row is re-read and classified:
//
//	absent                 -> ErrNotFound
//	other service type     -> ErrNotEligible
//	already accepted/closed -> ErrConflict (the current row is returned)
func (r *BookingRepo) Transition(ctx context.Context, id, professionalID uint64, serviceType, status string) (model.Booking, error) {
	var assignee any
	if status == model.BookingAccepted {
		assignee = professionalID
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Booking{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, professional_id = ?, updated_at = ?
		 WHERE id = ? AND service_type = ? AND status = ?`,
		status, assignee, time.Now().UTC().Truncate(time.Second), id, serviceType, model.BookingPending)
	if err != nil {
		return model.Booking{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Booking{}, err
	}
	if n == 1 {
		b, err := scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
		if err != nil {
			return model.Booking{}, err
		}
		if err := tx.Commit(); err != nil {
			return model.Booking{}, err
		}
		committed = true
		return b, nil
	}

	// Lost the race or never eligible: release the transaction and read
	// the committed state.  Non-pending rows never change again, so this
	// read is stable.
	_ = tx.Rollback()
	committed = true
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Booking{}, err
	}
	if current.ServiceType != serviceType {
		return current, ErrNotEligible
	}
	if current.Status == model.BookingPending {
		// Only reachable if the row was modified between the UPDATE and
		// the read, which the schema does not allow.
		return current, errors.New("booking still pending after failed transition")
	}
	return current, ErrConflict
}

// Delete hard-deletes a booking.  Returns ErrNotFound if no row matched.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BookingRepo) list(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBooking(s rowScanner) (model.Booking, error) {
	var (
		b   model.Booking
		pro sql.NullInt64
	)
	err := s.Scan(&b.ID, &b.CustomerID, &b.CustomerName, &pro, &b.ServiceType, &b.Date, &b.Time,
		&b.Description, &b.Price, &b.Location, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return model.Booking{}, err
	}
	if pro.Valid {
		id := uint64(pro.Int64)
		b.ProfessionalID = &id
	}
	return b, nil
}
