package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iliyamo/local-services-api/internal/model"
)

// Claims is the payload of a session token.  The subject is the principal
// id in decimal; Role tells which credential table it belongs to.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AccessToken is a signed session token together with its expiry.
type AccessToken struct {
	Token string    `json:"token"`
	Exp   time.Time `json:"expires"`
}

// TokenService issues and verifies HS256 session tokens.  Verification is
// stateless apart from the revocation lookup.
type TokenService struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationStore
	now     func() time.Time
}

// NewTokenService returns a TokenService signing with secret.  revoked may
// be nil, in which case logout is a no-op and no token is ever revoked.
func NewTokenService(secret string, ttl time.Duration, revoked RevocationStore) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, revoked: revoked, now: time.Now}
}

// WithClock replaces the time source.  Used by tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// TTL reports the lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for the given principal valid for the configured TTL.
func (s *TokenService) Issue(id uint64, role string) (AccessToken, error) {
	now := s.now().UTC()
	exp := now.Add(s.ttl)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(id, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return AccessToken{}, fmt.Errorf("sign token: %w", err)
	}
	return AccessToken{Token: signed, Exp: exp.Truncate(time.Second)}, nil
}

// Verify checks the signature, expiry and revocation state of raw and
// returns the principal it names.
func (s *TokenService) Verify(ctx context.Context, raw string) (model.Principal, error) {
	if raw == "" {
		return model.Principal{}, ErrMissingToken
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return model.Principal{}, ErrExpiredToken
	case err != nil:
		return model.Principal{}, ErrInvalidToken
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return model.Principal{}, ErrInvalidToken
	}
	if claims.Role != model.RoleCustomer && claims.Role != model.RoleProfessional {
		return model.Principal{}, ErrInvalidToken
	}
	p := model.Principal{ID: id, Role: claims.Role, TokenID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}

	if s.revoked != nil && claims.ID != "" {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return model.Principal{}, fmt.Errorf("revocation lookup: %w", err)
		}
		if revoked {
			return model.Principal{}, ErrRevokedToken
		}
	}
	return p, nil
}

// Revoke invalidates the token p was authenticated with until it would
// have expired anyway.
func (s *TokenService) Revoke(ctx context.Context, p model.Principal) error {
	if s.revoked == nil || p.TokenID == "" {
		return nil
	}
	if !p.ExpiresAt.After(s.now()) {
		return nil
	}
	return s.revoked.Revoke(ctx, p.TokenID, p.ExpiresAt)
}
