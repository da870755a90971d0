// Package limiter locks out repeated failed sign-ins for the self-hosted backend.
package limiter

import (
	"context"
	"time"
)

// Limiter controls sign-in attempts and temporary lockouts per email.
type Limiter interface {
	// Allow reports whether a sign-in is currently allowed and the remaining lock time.
	Allow(ctx context.Context, email string) (bool, time.Duration, error)
	// Success resets counters after a successful sign-in.
	Success(ctx context.Context, email string) error
	// Failure records a failed attempt; it reports whether the email is now locked.
	Failure(ctx context.Context, email string) (bool, time.Duration, error)
}
