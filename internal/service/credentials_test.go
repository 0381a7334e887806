package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/local-services-api/internal/model"
	"github.com/iliyamo/local-services-api/internal/service"
)

func TestRegisterRejectsDuplicateEmailPerRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first := e.customer(t, "Alice@Example.com")
	assert.Equal(t, "alice@example.com", first.Email)
	assert.Equal(t, model.RoleCustomer, first.Role)

	_, err := e.creds.Register(ctx, model.RoleCustomer, service.Registration{
		Name: "Alice Again", Email: " alice@example.com", Password: "password456",
	})
	assert.ErrorIs(t, err, service.ErrEmailExists)

	// The professional table is a separate namespace.
	pro := e.professional(t, "alice@example.com", "Plumbing")
	assert.Equal(t, "plumbing", pro.ServiceType)
}

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.creds.Register(ctx, model.RoleCustomer, service.Registration{Name: "A", Email: "not-an-email", Password: "password123"})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = e.creds.Register(ctx, model.RoleCustomer, service.Registration{Name: "A", Email: "a@example.com", Password: "short"})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = e.creds.Register(ctx, model.RoleProfessional, service.Registration{Name: "P", Email: "p@example.com", Password: "password123"})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestCredentialRoundTrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reg := e.customer(t, "bob@example.com")

	got, err := e.creds.VerifyCredentials(ctx, model.RoleCustomer, "BOB@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, reg.ID, got.ID)

	_, err = e.creds.VerifyCredentials(ctx, model.RoleCustomer, "bob@example.com", "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = e.creds.VerifyCredentials(ctx, model.RoleCustomer, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	// A customer cannot log in through the professional table.
	_, err = e.creds.VerifyCredentials(ctx, model.RoleProfessional, "bob@example.com", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	pro := e.professional(t, "p@example.com", "plumbing")

	change := func(cur, next, confirm string) error {
		return e.creds.ChangePassword(ctx, model.RoleProfessional, pro.ID,
			service.PasswordChange{Current: cur, New: next, Confirm: confirm})
	}

	assert.ErrorIs(t, change("password123", "newpassword1", "newpassword2"), service.ErrPasswordMismatch)
	assert.ErrorIs(t, change("wrong-password", "newpassword1", "newpassword1"), service.ErrInvalidCredentials)
	assert.ErrorIs(t, change("password123", "password123", "password123"), service.ErrSamePassword)
	assert.ErrorIs(t, change("password123", "short", "short"), service.ErrValidation)
	require.NoError(t, change("password123", "newpassword1", "newpassword1"))

	_, err := e.creds.VerifyCredentials(ctx, model.RoleProfessional, "p@example.com", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = e.creds.VerifyCredentials(ctx, model.RoleProfessional, "p@example.com", "newpassword1")
	assert.NoError(t, err)
}
