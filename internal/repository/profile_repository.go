package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/local-services-api/internal/model"
)

// ProfileRepo manages the professional directory.
type ProfileRepo struct{ db *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{db: db} }

const profileColumns = `id, name, service_type, rating, jobs_completed, experience, cost_per_hour,
	location, description, contact_email, image_ref, created_at`

// Create inserts p.  Rating and JobsCompleted are written as given; the
// directory service applies the defaults.
func (r *ProfileRepo) Create(ctx context.Context, p *model.ProfessionalProfile) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO professional_profiles (name, service_type, rating, jobs_completed, experience, cost_per_hour,
		 location, description, contact_email, image_ref, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.ServiceType, p.Rating, p.JobsCompleted, p.Experience, p.CostPerHour,
		p.Location, p.Description, p.ContactEmail, p.ImageRef, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.CreatedAt = now
	return nil
}

// GetByID returns a single profile or ErrNotFound.
func (r *ProfileRepo) GetByID(ctx context.Context, id uint64) (model.ProfessionalProfile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM professional_profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	return p, notFound(err)
}

// ListByServiceType returns all profiles offering serviceType, best rated
// first.  An empty result is returned as an empty slice.
func (r *ProfileRepo) ListByServiceType(ctx context.Context, serviceType string) ([]model.ProfessionalProfile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM professional_profiles
		 WHERE service_type = ?
		 ORDER BY rating DESC, jobs_completed DESC, id ASC`, serviceType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ProfessionalProfile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(s rowScanner) (model.ProfessionalProfile, error) {
	var p model.ProfessionalProfile
	err := s.Scan(&p.ID, &p.Name, &p.ServiceType, &p.Rating, &p.JobsCompleted, &p.Experience, &p.CostPerHour,
		&p.Location, &p.Description, &p.ContactEmail, &p.ImageRef, &p.CreatedAt)
	return p, err
}
