package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/local-services-api/internal/model"
	"github.com/iliyamo/local-services-api/internal/service"
)

const testSecret = "test-secret-0123456789"

func TestTokenExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	issued := time.Now().UTC().Truncate(time.Second)
	now := issued
	ts := service.NewTokenService(testSecret, time.Hour, nil).WithClock(func() time.Time { return now })

	tok, err := ts.Issue(7, model.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(time.Hour), tok.Exp)

	p, err := ts.Verify(ctx, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), p.ID)
	assert.Equal(t, model.RoleCustomer, p.Role)
	assert.NotEmpty(t, p.TokenID)

	now = issued.Add(59 * time.Minute)
	_, err = ts.Verify(ctx, tok.Token)
	assert.NoError(t, err)

	now = issued.Add(time.Hour + time.Second)
	_, err = ts.Verify(ctx, tok.Token)
	assert.ErrorIs(t, err, service.ErrExpiredToken)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	ts := service.NewTokenService(testSecret, time.Hour, nil)

	_, err := ts.Verify(ctx, "")
	assert.ErrorIs(t, err, service.ErrMissingToken)

	_, err = ts.Verify(ctx, "not.a.token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	other, err := service.NewTokenService("another-secret-0123456789", time.Hour, nil).Issue(1, model.RoleCustomer)
	require.NoError(t, err)
	_, err = ts.Verify(ctx, other.Token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	// An unknown role is not a principal.
	claims := service.Claims{Role: "ADMIN", RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = ts.Verify(ctx, raw)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	// Tokens without an expiry are refused.
	claims.Role = model.RoleCustomer
	claims.ExpiresAt = nil
	raw, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = ts.Verify(ctx, raw)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestRevokeInvalidatesOnlyThatToken(t *testing.T) {
	ctx := context.Background()
	ts := service.NewTokenService(testSecret, time.Hour, service.NewMemoryRevocationStore())

	a, err := ts.Issue(3, model.RoleProfessional)
	require.NoError(t, err)
	b, err := ts.Issue(3, model.RoleProfessional)
	require.NoError(t, err)

	p, err := ts.Verify(ctx, a.Token)
	require.NoError(t, err)
	require.NoError(t, ts.Revoke(ctx, p))

	_, err = ts.Verify(ctx, a.Token)
	assert.ErrorIs(t, err, service.ErrRevokedToken)
	_, err = ts.Verify(ctx, b.Token)
	assert.NoError(t, err)
}
