package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/local-services-api/internal/model"
)

// ProfessionalRepo persists professional login identities.
type ProfessionalRepo struct{ db *sql.DB }

func NewProfessionalRepo(db *sql.DB) *ProfessionalRepo { return &ProfessionalRepo{db: db} }

const professionalColumns = `id, name, email, password_hash, service_type, address, phone_number, license_id, created_at, updated_at`

// Create inserts p and fills in its ID and timestamps.
func (r *ProfessionalRepo) Create(ctx context.Context, p *model.Professional) error {
	now := time.Now().UTC().Truncate(time.Second)
	p.Email = normalizeEmail(p.Email)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO professionals (name, email, password_hash, service_type, address, phone_number, license_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Email, p.PasswordHash, p.ServiceType, p.Address, p.PhoneNumber, p.LicenseID, now, now)
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
	p.ID = uint64(id)
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

// GetByEmail fetches a professional by normalized email.
func (r *ProfessionalRepo) GetByEmail(ctx context.Context, email string) (model.Professional, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT `+professionalColumns+` FROM professionals WHERE email = ? LIMIT 1`, normalizeEmail(email)))
}

// GetByID fetches a professional by id.
func (r *ProfessionalRepo) GetByID(ctx context.Context, id uint64) (model.Professional, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT `+professionalColumns+` FROM professionals WHERE id = ? LIMIT 1`, id))
}

// EmailExists reports whether a professional already uses email.
func (r *ProfessionalRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM professionals WHERE email = ?`, normalizeEmail(email)).Scan(&n)
	return n > 0, err
}

// ServiceType returns the trade of the professional with the given id.
func (r *ProfessionalRepo) ServiceType(ctx context.Context, id uint64) (string, error) {
	var st string
	err := r.db.QueryRowContext(ctx, `SELECT service_type FROM professionals WHERE id = ?`, id).Scan(&st)
	return st, notFound(err)
}

// UpdatePassword replaces the stored hash.
func (r *ProfessionalRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	return updatePassword(ctx, r.db, "professionals", id, hash)
}

func (r *ProfessionalRepo) scanOne(row *sql.Row) (model.Professional, error) {
	var p model.Professional
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.PasswordHash, &p.ServiceType, &p.Address,
		&p.PhoneNumber, &p.LicenseID, &p.CreatedAt, &p.UpdatedAt)
	return p, notFound(err)
}
