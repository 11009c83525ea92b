// Package common defines shared constants and sentinel errors used across
// the application layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorUpstream     = errors.New("upstream failure")

	// Validation errors.
	ErrorValidation = errors.New("validation error")

	// Auth errors.
	ErrorInvalidCredentials = errors.New("invalid credentials")
	ErrorUnverified         = errors.New("email not verified")

	// Token lifecycle errors (missing, expired or mismatched).
	ErrorInvalidToken = errors.New("invalid or expired token")
)
