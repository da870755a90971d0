package limiter

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of a pgx pool used by PG.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PG is a PostgreSQL-backed limiter: maxFails failures inside window lock the
// email for blockFor.
type PG struct {
	q        Querier
	window   time.Duration
	maxFails int
	blockFor time.Duration
	now      func() time.Time
}

// NewPG constructs a PostgreSQL-backed limiter.
func NewPG(q Querier, window time.Duration, maxFails int, blockFor time.Duration) *PG {
	return &PG{q: q, window: window, maxFails: maxFails, blockFor: blockFor, now: time.Now}
}

func normalize(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Allow reports whether sign-in is currently allowed.
func (l *PG) Allow(ctx context.Context, email string) (bool, time.Duration, error) {
	const q = `SELECT blocked_until FROM signin_limiter WHERE email=$1`
	var blockedUntil time.Time
	err := l.q.QueryRow(ctx, q, normalize(email)).Scan(&blockedUntil)
	switch {
	case err == nil:
		if now := l.now(); blockedUntil.After(now) {
			return false, blockedUntil.Sub(now), nil
		}
		return true, 0, nil
	case errors.Is(err, pgx.ErrNoRows):
		return true, 0, nil
	default:
		return false, 0, err
	}
}

// Success resets counters for email.
func (l *PG) Success(ctx context.Context, email string) error {
	const q = `
INSERT INTO signin_limiter (email, fail_count, blocked_until, updated_at)
VALUES ($1,0,'epoch',now())
ON CONFLICT (email)
DO UPDATE SET fail_count=0, blocked_until='epoch', updated_at=now()`
	_, err := l.q.Exec(ctx, q, normalize(email))
	return err
}

// Failure records a failed attempt and locks the email once the threshold is reached.
func (l *PG) Failure(ctx context.Context, email string) (bool, time.Duration, error) {
	const q = `
INSERT INTO signin_limiter (email, fail_count, blocked_until, updated_at)
VALUES ($1,1,'epoch',now())
ON CONFLICT (email) DO UPDATE
SET
  fail_count = CASE WHEN now() - signin_limiter.updated_at > $2::interval THEN 1 ELSE signin_limiter.fail_count + 1 END,
  updated_at = now()
RETURNING fail_count`
	email = normalize(email)
	var fails int
	if err := l.q.QueryRow(ctx, q, email, l.window).Scan(&fails); err != nil {
		return false, 0, err
	}
	if fails < l.maxFails {
		return false, 0, nil
	}
	const upd = `UPDATE signin_limiter SET blocked_until=$2 WHERE email=$1`
	if _, err := l.q.Exec(ctx, upd, email, l.now().Add(l.blockFor)); err != nil {
		return false, 0, err
	}
	return true, l.blockFor, nil
}
