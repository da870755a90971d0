package appwrite

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/and161185/snapgram/internal/backend"
	"github.com/and161185/snapgram/internal/errs"
	"github.com/and161185/snapgram/internal/model"
)

type accountDTO struct {
	ID        string    `json:"$id"`
	CreatedAt time.Time `json:"$createdAt"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
}

func (a accountDTO) model() *model.Account {
	return &model.Account{ID: a.ID, Email: a.Email, Name: a.Name, CreatedAt: a.CreatedAt}
}

type sessionDTO struct {
	ID     string    `json:"$id"`
	UserID string    `json:"userId"`
	Expire time.Time `json:"expire"`
	Secret string    `json:"secret"`
}

// CreateAccount registers a new account.
func (c *Client) CreateAccount(ctx context.Context, id, email, password, name string) (*model.Account, error) {
	var out accountDTO
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/account",
		body:   map[string]string{"userId": id, "email": email, "password": password, "name": name},
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.model(), nil
}

// CreateEmailSession signs in with email/password and attaches the session.
func (c *Client) CreateEmailSession(ctx context.Context, email, password string) (*model.Session, error) {
	var out sessionDTO
	hdr, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/account/sessions/email",
		body:   map[string]string{"email": email, "password": password},
	}, &out)
	if err != nil {
		return nil, err
	}
	secret := out.Secret
	if secret == "" {
		secret = c.fallbackSecret(hdr)
	}
	c.UseSession(secret)
	return &model.Session{ID: out.ID, AccountID: out.UserID, Secret: secret, ExpiresAt: out.Expire}, nil
}

// fallbackSecret extracts the session cookie value that the API mirrors in the
// X-Fallback-Cookies header for clients without a cookie jar.
func (c *Client) fallbackSecret(h http.Header) string {
	raw := h.Get("X-Fallback-Cookies")
	if raw == "" {
		return ""
	}
	var cookies map[string]string
	if json.Unmarshal([]byte(raw), &cookies) != nil {
		return ""
	}
	if v := cookies["a_session_"+c.project]; v != "" {
		return v
	}
	return cookies["a_session_"+c.project+"_legacy"]
}

// GetAccount returns the account of the attached session.
func (c *Client) GetAccount(ctx context.Context) (*model.Account, error) {
	if c.session() == "" {
		return nil, errs.ErrUnauthorized
	}
	var out accountDTO
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/account"}, &out); err != nil {
		return nil, err
	}
	return out.model(), nil
}

// DeleteSession deletes a session; deleting the current one detaches it.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	if sessionID == backend.CurrentSession && c.session() == "" {
		return errs.ErrUnauthorized
	}
	_, err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/account/sessions/" + url.PathEscape(sessionID),
	}, nil)
	if err != nil {
		return err
	}
	if sessionID == backend.CurrentSession {
		c.UseSession("")
	}
	return nil
}
