// Package service holds the business rules of the marketplace: credentials,
// session tokens, the professional directory and the booking ledger.
package service

import (
	"errors"

	"github.com/iliyamo/local-services-api/internal/repository"
	"github.com/iliyamo/local-services-api/internal/validation"
)

// Errors surfaced to handlers.  Storage sentinels are re-exported so callers
// need only this package.
var (
	ErrValidation  = validation.ErrInvalid
	ErrNotFound    = repository.ErrNotFound
	ErrEmailExists = repository.ErrEmailExists
	ErrConflict    = repository.ErrConflict
	ErrNotEligible = repository.ErrNotEligible

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSamePassword       = errors.New("new password must differ from the current one")
	ErrPasswordMismatch   = errors.New("password confirmation does not match")

	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrRevokedToken = errors.New("token revoked")
)
