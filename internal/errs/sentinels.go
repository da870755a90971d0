// Package errs contains sentinel errors and the failure taxonomy shared by all layers.
package errs

import "errors"

// Common sentinels across backend/adapter layers.
var (
	// ErrNotFound indicates the requested document, file or account does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates missing or invalid credentials/session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary sign-in lock due to repeated failures.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrNoSession indicates that no session is stored locally.
	ErrNoSession = errors.New("no session (sign in required)")
)
