package utils

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt hash of plain using the given cost.  Costs
// outside bcrypt's range fall back to bcrypt.DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// BurnPasswordCheck runs one bcrypt comparison against a throwaway hash of
// the given cost.  Login calls it when the email is unknown so the response
// time matches a wrong-password attempt.
func BurnPasswordCheck(plain string, cost int) {
	dummyOnce.Do(func() {
		h, err := HashPassword("not-a-real-password", cost)
		if err == nil {
			dummyHash = []byte(h)
		}
	})
	if dummyHash != nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
	}
}
