package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/local-services-api/internal/model"
	"github.com/iliyamo/local-services-api/internal/repository"
	"github.com/iliyamo/local-services-api/internal/utils"
	"github.com/iliyamo/local-services-api/internal/validation"
)

// Registration is the sign-up form for either role.  The professional-only
// fields are checked by Register when role is PROFESSIONAL.
type Registration struct {
	Name        string `json:"name" form:"name" validate:"notblank,max=100"`
	Email       string `json:"email" form:"email" validate:"required,email,max=191"`
	Password    string `json:"password" form:"password" validate:"required,min=8,max=72"`
	Location    string `json:"location" form:"location" validate:"max=191"`
	PhoneNumber string `json:"phoneNumber" form:"phoneNumber" validate:"max=32"`
	ServiceType string `json:"serviceType" form:"serviceType" validate:"max=64"`
	Address     string `json:"address" form:"address" validate:"max=255"`
	LicenseID   string `json:"licenseId" form:"licenseId" validate:"max=64"`
}

// PasswordChange is the change-password form.
type PasswordChange struct {
	Current string `json:"currentPassword" form:"currentPassword" validate:"required"`
	New     string `json:"newPassword" form:"newPassword" validate:"required,min=8,max=72"`
	Confirm string `json:"confirmPassword" form:"confirmPassword" validate:"required"`
}

// CredentialStore registers principals and checks their passwords.  It is
// the only component that sees password hashes.
type CredentialStore struct {
	customers     *repository.CustomerRepo
	professionals *repository.ProfessionalRepo
	validate      *validation.Validator
	cost          int
}

// NewCredentialStore wires the credential tables.  cost is the bcrypt work
// factor used for new hashes.
func NewCredentialStore(customers *repository.CustomerRepo, professionals *repository.ProfessionalRepo, v *validation.Validator, cost int) *CredentialStore {
	return &CredentialStore{customers: customers, professionals: professionals, validate: v, cost: cost}
}

// Register creates a principal of the given role.  The email is trimmed and
// lower-cased; a second registration with the same email in the same role
// fails with ErrEmailExists.
func (s *CredentialStore) Register(ctx context.Context, role string, in Registration) (model.Identity, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	in.ServiceType = NormalizeServiceType(in.ServiceType)
	if err := s.validate.Validate(in); err != nil {
		return model.Identity{}, err
	}

	switch role {
	case model.RoleCustomer:
		exists, err := s.customers.EmailExists(ctx, in.Email)
		if err != nil {
			return model.Identity{}, fmt.Errorf("check email: %w", err)
		}
		if exists {
			return model.Identity{}, ErrEmailExists
		}
		hash, err := utils.HashPassword(in.Password, s.cost)
		if err != nil {
			return model.Identity{}, fmt.Errorf("hash password: %w", err)
		}
		c := model.Customer{Name: in.Name, Email: in.Email, PasswordHash: hash, Location: in.Location, PhoneNumber: in.PhoneNumber}
		if err := s.customers.Create(ctx, &c); err != nil {
			return model.Identity{}, err
		}
		return c.Identity(), nil

	case model.RoleProfessional:
		if err := requireProfessionalFields(in); err != nil {
			return model.Identity{}, err
		}
		exists, err := s.professionals.EmailExists(ctx, in.Email)
		if err != nil {
			return model.Identity{}, fmt.Errorf("check email: %w", err)
		}
		if exists {
			return model.Identity{}, ErrEmailExists
		}
		hash, err := utils.HashPassword(in.Password, s.cost)
		if err != nil {
			return model.Identity{}, fmt.Errorf("hash password: %w", err)
		}
		p := model.Professional{
			Name: in.Name, Email: in.Email, PasswordHash: hash, ServiceType: in.ServiceType,
			Address: in.Address, PhoneNumber: in.PhoneNumber, LicenseID: in.LicenseID,
		}
		if err := s.professionals.Create(ctx, &p); err != nil {
			return model.Identity{}, err
		}
		return p.Identity(), nil
	}
	return model.Identity{}, validation.Invalid("role", "oneof")
}

func requireProfessionalFields(in Registration) error {
	verr := &validation.Error{}
	for _, f := range []struct{ name, value string }{
		{"serviceType", in.ServiceType},
		{"address", in.Address},
		{"phoneNumber", in.PhoneNumber},
		{"licenseId", in.LicenseID},
	} {
		if strings.TrimSpace(f.value) == "" {
			verr.Fields = append(verr.Fields, validation.FieldError{Field: f.name, Rule: "required"})
		}
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// VerifyCredentials checks email and password for the given role.  Unknown
// emails and wrong passwords are indistinguishable to the caller, in both
// the error and the time taken.
func (s *CredentialStore) VerifyCredentials(ctx context.Context, role, email, password string) (model.Identity, error) {
	hash, id, err := s.lookup(ctx, role, email)
	if errors.Is(err, repository.ErrNotFound) {
		utils.BurnPasswordCheck(password, s.cost)
		return model.Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.Identity{}, err
	}
	if !utils.VerifyPassword(hash, password) {
		return model.Identity{}, ErrInvalidCredentials
	}
	return id, nil
}

func (s *CredentialStore) lookup(ctx context.Context, role, email string) (string, model.Identity, error) {
	switch role {
	case model.RoleCustomer:
		c, err := s.customers.GetByEmail(ctx, email)
		if err != nil {
			return "", model.Identity{}, err
		}
		return c.PasswordHash, c.Identity(), nil
	case model.RoleProfessional:
		p, err := s.professionals.GetByEmail(ctx, email)
		if err != nil {
			return "", model.Identity{}, err
		}
		return p.PasswordHash, p.Identity(), nil
	}
	return "", model.Identity{}, repository.ErrNotFound
}

// Identity returns the public summary of an authenticated principal.
func (s *CredentialStore) Identity(ctx context.Context, p model.Principal) (model.Identity, error) {
	switch p.Role {
	case model.RoleCustomer:
		c, err := s.customers.GetByID(ctx, p.ID)
		if err != nil {
			return model.Identity{}, err
		}
		return c.Identity(), nil
	case model.RoleProfessional:
		pr, err := s.professionals.GetByID(ctx, p.ID)
		if err != nil {
			return model.Identity{}, err
		}
		return pr.Identity(), nil
	}
	return model.Identity{}, ErrNotFound
}

// ChangePassword replaces the password of principal id.  The confirmation
// is checked first, then the current password, then that the new one
// differs.
func (s *CredentialStore) ChangePassword(ctx context.Context, role string, id uint64, in PasswordChange) error {
	if err := s.validate.Validate(in); err != nil {
		return err
	}
	if in.New != in.Confirm {
		return ErrPasswordMismatch
	}

	var hash string
	switch role {
	case model.RoleCustomer:
		c, err := s.customers.GetByID(ctx, id)
		if err != nil {
			return err
		}
		hash = c.PasswordHash
	case model.RoleProfessional:
		p, err := s.professionals.GetByID(ctx, id)
		if err != nil {
			return err
		}
		hash = p.PasswordHash
	default:
		return ErrInvalidCredentials
	}

	if !utils.VerifyPassword(hash, in.Current) {
		return ErrInvalidCredentials
	}
	if in.New == in.Current {
		return ErrSamePassword
	}
	newHash, err := utils.HashPassword(in.New, s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if role == model.RoleCustomer {
		return s.customers.UpdatePassword(ctx, id, newHash)
	}
	return s.professionals.UpdatePassword(ctx, id, newHash)
}

// NormalizeServiceType is the canonical form service types are stored and
// compared in.
func NormalizeServiceType(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
