package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/local-services-api/internal/model"
	"github.com/iliyamo/local-services-api/internal/service"
)

func TestDirectoryCreateAppliesDefaults(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.directory.Create(ctx, service.ProfileInput{
		Name: "Pat's Plumbing", ServiceType: "Plumbing", Experience: 4, CostPerHour: 45,
		Location: "Springfield", Description: "Pipes", ContactEmail: "Pat@Example.com",
	}, "uploads/abc.png")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultRating, p.Rating)
	assert.Equal(t, uint32(0), p.JobsCompleted)
	assert.Equal(t, "plumbing", p.ServiceType)
	assert.Equal(t, "pat@example.com", p.ContactEmail)
	assert.Equal(t, "uploads/abc.png", p.ImageRef)

	got, err := e.directory.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)

	list, err := e.directory.ListByServiceType(ctx, " PLUMBING")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDirectoryLookupsFail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.directory.ListByServiceType(ctx, "")
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = e.directory.ListByServiceType(ctx, "gardening")
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = e.directory.GetByID(ctx, 42)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = e.directory.Create(ctx, service.ProfileInput{Name: "x"}, "")
	assert.ErrorIs(t, err, service.ErrValidation)
}
