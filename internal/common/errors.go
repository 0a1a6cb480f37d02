// Package common defines shared constants and sentinel errors used across
// scanner and server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Verification outcomes that are reported to the operator as "invalid".
	ErrWrongEvent = errors.New("registration belongs to another event")

	// Roster cache errors.
	ErrStaleCache     = errors.New("roster cache is missing or expired, re-download the roster")
	ErrDownloadFailed = errors.New("roster download failed")

	// Sync errors. These never reach the scanning operator.
	ErrSyncFailure = errors.New("sync failed")

	// Service-level errors.
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("already exists")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
