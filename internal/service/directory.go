package service

import (
	"context"
	"strings"

	"github.com/iliyamo/local-services-api/internal/model"
	"github.com/iliyamo/local-services-api/internal/repository"
	"github.com/iliyamo/local-services-api/internal/validation"
)

// ProfileInput is the directory entry form.  It arrives either as JSON or
// as multipart form fields next to an optional image.
type ProfileInput struct {
	Name         string  `json:"name" form:"name" validate:"notblank,max=100"`
	ServiceType  string  `json:"serviceType" form:"serviceType" validate:"notblank,max=64"`
	Experience   uint32  `json:"experience" form:"experience" validate:"lte=80"`
	CostPerHour  float64 `json:"costPerHour" form:"costPerHour" validate:"gte=0"`
	Location     string  `json:"location" form:"location" validate:"notblank,max=191"`
	Description  string  `json:"description" form:"description" validate:"notblank"`
	ContactEmail string  `json:"contactEmail" form:"contactEmail" validate:"omitempty,email"`
}

// Directory is the public catalogue of professional profiles.
type Directory struct {
	profiles *repository.ProfileRepo
	validate *validation.Validator
}

func NewDirectory(profiles *repository.ProfileRepo, v *validation.Validator) *Directory {
	return &Directory{profiles: profiles, validate: v}
}

// ListByServiceType returns the profiles offering serviceType, best rated
// first.  No match is ErrNotFound.
func (d *Directory) ListByServiceType(ctx context.Context, serviceType string) ([]model.ProfessionalProfile, error) {
	st := NormalizeServiceType(serviceType)
	if st == "" {
		return nil, validation.Invalid("service", "required")
	}
	list, err := d.profiles.ListByServiceType(ctx, st)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return list, nil
}

// GetByID returns one profile.
func (d *Directory) GetByID(ctx context.Context, id uint64) (model.ProfessionalProfile, error) {
	return d.profiles.GetByID(ctx, id)
}

// Create adds a directory entry with a fresh rating and no completed jobs.
// imageRef is the stored location of the profile image, or empty.
func (d *Directory) Create(ctx context.Context, in ProfileInput, imageRef string) (model.ProfessionalProfile, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.ServiceType = NormalizeServiceType(in.ServiceType)
	in.ContactEmail = strings.ToLower(strings.TrimSpace(in.ContactEmail))
	if err := d.validate.Validate(in); err != nil {
		return model.ProfessionalProfile{}, err
	}
	p := model.ProfessionalProfile{
		Name:          in.Name,
		ServiceType:   in.ServiceType,
		Rating:        model.DefaultRating,
		JobsCompleted: model.DefaultJobsCompleted,
		Experience:    in.Experience,
		CostPerHour:   in.CostPerHour,
		Location:      strings.TrimSpace(in.Location),
		Description:   strings.TrimSpace(in.Description),
		ContactEmail:  in.ContactEmail,
		ImageRef:      imageRef,
	}
	if err := d.profiles.Create(ctx, &p); err != nil {
		return model.ProfessionalProfile{}, err
	}
	return p, nil
}
