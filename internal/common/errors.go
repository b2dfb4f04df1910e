// Package common defines shared constants and sentinel errors used across
// the ageguard server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// ErrValidation marks malformed caller input (bad birthdate, missing or
	// non-positive amount, bad e-mail). Rejected before any guard runs.
	ErrValidation = errors.New("validation error")

	// ErrPersistence wraps store failures: unreachable database or a failed write.
	ErrPersistence = errors.New("persistence error")

	// Auth errors (invalid or malformed access token).
	ErrInvalidToken = errors.New("invalid token")

	// Consent token lifecycle errors.
	ErrTokenInvalid = errors.New("consent token invalid")
	ErrTokenExpired = errors.New("consent token expired")
	ErrTokenUsed    = errors.New("consent token already used")
)
