package pgstore

import (
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/and161185/snapgram/internal/backend"
	"github.com/and161185/snapgram/internal/limiter"
)

var _ backend.Backend = (*Store)(nil)

// Config holds store settings.
type Config struct {
	SignKey    []byte        // HS256 key for session secrets (required)
	SessionTTL time.Duration // default 7 days
	PublicURL  string        // base for preview/avatar URLs, e.g. http://localhost:8080/v1
	Limiter    limiter.Limiter
}

// Store is the PostgreSQL facade. The attached session is process-local.
type Store struct {
	db         *DB
	signKey    []byte
	sessionTTL time.Duration
	publicURL  string
	lim        limiter.Limiter
	now        func() time.Time

	mu    sync.RWMutex
	token string
}

// New constructs a store. A nil cfg.Limiter gets a PG limiter on the same pool
// (5 failures in 15 minutes lock the email for 15 minutes).
func New(db *DB, cfg Config) *Store {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}
	if cfg.Limiter == nil {
		cfg.Limiter = limiter.NewPG(db.Pool, 15*time.Minute, 5, 15*time.Minute)
	}
	return &Store{
		db:         db,
		signKey:    cfg.SignKey,
		sessionTTL: cfg.SessionTTL,
		publicURL:  strings.TrimRight(cfg.PublicURL, "/"),
		lim:        cfg.Limiter,
		now:        time.Now,
	}
}

// UseSession attaches a session secret.
func (s *Store) UseSession(secret string) {
	s.mu.Lock()
	s.token = secret
	s.mu.Unlock()
}

func (s *Store) session() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) url(path string, q url.Values) string {
	if len(q) == 0 {
		return s.publicURL + path
	}
	return s.publicURL + path + "?" + q.Encode()
}
