package pgstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"

	"github.com/and161185/snapgram/internal/backend"
	pkgcrypto "github.com/and161185/snapgram/internal/crypto"
	"github.com/and161185/snapgram/internal/errs"
	"github.com/and161185/snapgram/internal/model"
)

func normEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// CreateAccount inserts an account with an Argon2id password hash.
func (s *Store) CreateAccount(ctx context.Context, id, email, password, name string) (*model.Account, error) {
	email = normEmail(email)
	if id == "" || email == "" || password == "" {
		return nil, errors.New("validation: empty id/email/password")
	}
	hash, salt, err := pkgcrypto.NewPasswordHash(password)
	if err != nil {
		return nil, err
	}

	const q = `
INSERT INTO accounts (id, email, name, pwd_hash, salt)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at`
	acc := &model.Account{ID: id, Email: email, Name: name}
	if err := s.db.Pool.QueryRow(ctx, q, id, email, name, hash, salt).Scan(&acc.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, errs.ErrAlreadyExists
		}
		return nil, err
	}
	return acc, nil
}

// CreateEmailSession verifies credentials with lockout and issues a signed session secret.
func (s *Store) CreateEmailSession(ctx context.Context, email, password string) (*model.Session, error) {
	email = normEmail(email)

	allowed, _, err := s.lim.Allow(ctx, email)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, errs.ErrRateLimited
	}

	const q = `SELECT id, pwd_hash, salt FROM accounts WHERE email=$1`
	var (
		accID      string
		hash, salt []byte
	)
	err = s.db.Pool.QueryRow(ctx, q, email).Scan(&accID, &hash, &salt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), salt, hash) {
		if blocked, _, ferr := s.lim.Failure(ctx, email); ferr == nil && blocked {
			return nil, errs.ErrRateLimited
		}
		// unknown email and wrong password look the same
		return nil, errs.ErrUnauthorized
	}
	_ = s.lim.Success(ctx, email)

	sid, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	now := s.now()
	exp := now.Add(s.sessionTTL)

	const ins = `INSERT INTO sessions (id, account_id, expires_at) VALUES ($1, $2, $3)`
	if _, err := s.db.Pool.Exec(ctx, ins, sid.String(), accID, exp); err != nil {
		return nil, err
	}

	secret, err := s.signSession(sid.String(), accID, now, exp)
	if err != nil {
		return nil, err
	}
	s.UseSession(secret)
	return &model.Session{ID: sid.String(), AccountID: accID, Secret: secret, ExpiresAt: exp}, nil
}

func (s *Store) signSession(sessionID, accountID string, now, exp time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
}

// currentClaims validates the attached secret.
func (s *Store) currentClaims() (*jwt.RegisteredClaims, error) {
	tok := s.session()
	if tok == "" {
		return nil, errs.ErrUnauthorized
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tok, &claims, func(*jwt.Token) (any, error) { return s.signKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || claims.ID == "" {
		return nil, errs.ErrUnauthorized
	}
	return &claims, nil
}

// GetAccount returns the account of the attached, unexpired and undeleted session.
func (s *Store) GetAccount(ctx context.Context) (*model.Account, error) {
	claims, err := s.currentClaims()
	if err != nil {
		return nil, err
	}
	const q = `
SELECT a.id, a.email, a.name, a.created_at
FROM sessions s JOIN accounts a ON a.id = s.account_id
WHERE s.id=$1 AND s.expires_at > $2`
	var acc model.Account
	if err := s.db.Pool.QueryRow(ctx, q, claims.ID, s.now()).Scan(&acc.ID, &acc.Email, &acc.Name, &acc.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrUnauthorized
		}
		return nil, err
	}
	return &acc, nil
}

// DeleteSession deletes a session by id or the attached one.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	current := sessionID == backend.CurrentSession
	if current {
		claims, err := s.currentClaims()
		if err != nil {
			return err
		}
		sessionID = claims.ID
	}

	const q = `DELETE FROM sessions WHERE id=$1`
	tag, err := s.db.Pool.Exec(ctx, q, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if current {
			return errs.ErrUnauthorized
		}
		return errs.ErrNotFound
	}
	if current {
		s.UseSession("")
	}
	return nil
}
