package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/local-services-api/internal/model"
)

// CustomerRepo persists customer identities.
type CustomerRepo struct{ db *sql.DB }

func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

const customerColumns = `id, name, email, password_hash, location, phone_number, created_at, updated_at`

// Create inserts c and fills in its ID and timestamps.  The email is stored
// lower-cased; a duplicate yields ErrEmailExists.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	now := time.Now().UTC().Truncate(time.Second)
	c.Email = normalizeEmail(c.Email)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (name, email, password_hash, location, phone_number, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Email, c.PasswordHash, c.Location, c.PhoneNumber, now, now)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	c.CreatedAt, c.UpdatedAt = now, now
	return nil
}

// GetByEmail fetches a customer by normalized email.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (model.Customer, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE email = ? LIMIT 1`, normalizeEmail(email)))
}

// GetByID fetches a customer by id.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (model.Customer, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = ? LIMIT 1`, id))
}

// EmailExists reports whether a customer already uses email.
func (r *CustomerRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM customers WHERE email = ?`, normalizeEmail(email)).Scan(&n)
	return n > 0, err
}

// UpdatePassword replaces the stored hash.
func (r *CustomerRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	return updatePassword(ctx, r.db, "customers", id, hash)
}

func (r *CustomerRepo) scanOne(row *sql.Row) (model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.Location, &c.PhoneNumber, &c.CreatedAt, &c.UpdatedAt)
	return c, notFound(err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// updatePassword is shared by both credential tables.  table is never user input.
func updatePassword(ctx context.Context, db *sql.DB, table string, id uint64, hash string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE `+table+` SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, time.Now().UTC().Truncate(time.Second), id)
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
