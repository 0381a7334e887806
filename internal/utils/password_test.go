package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("pw12345678", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "pw12345678", hash)
	assert.True(t, VerifyPassword(hash, "pw12345678"))
	assert.False(t, VerifyPassword(hash, "pw12345679"))
	assert.False(t, VerifyPassword("not-a-hash", "pw12345678"))
}

func TestHashPasswordSalts(t *testing.T) {
	a, err := HashPassword("same-password", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPassword("same-password", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPasswordClampsCost(t *testing.T) {
	hash, err := HashPassword("pw12345678", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestBurnPasswordCheckDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() { BurnPasswordCheck("whatever", bcrypt.MinCost) })
}
