// Package appwrite implements the backend facade over an Appwrite-compatible REST API.
package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/snapgram/internal/backend"
	"github.com/and161185/snapgram/internal/errs"
)

const responseFormat = "1.4.0"

var _ backend.Backend = (*Client)(nil)

// Client talks to a single project on an Appwrite endpoint.
type Client struct {
	endpoint string // e.g. https://cloud.appwrite.io/v1
	project  string
	hc       *http.Client

	mu     sync.RWMutex
	secret string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

// New constructs a client. Requests are logged through log (nil disables logging).
func New(endpoint, project string, log *zap.Logger, opts ...Option) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		project:  project,
		hc: &http.Client{
			Timeout:   30 * time.Second,
			Transport: LoggingTransport(http.DefaultTransport, log),
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// UseSession attaches a session secret to subsequent requests.
func (c *Client) UseSession(secret string) {
	c.mu.Lock()
	c.secret = secret
	c.mu.Unlock()
}

func (c *Client) session() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.secret
}

// Error is an error payload returned by the API.
type Error struct {
	Status  int    `json:"-"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("appwrite %d %s: %s", e.Status, e.Type, e.Message)
	}
	return fmt.Sprintf("appwrite %d: %s", e.Status, e.Message)
}

// Unwrap maps HTTP statuses to shared sentinels.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errs.ErrUnauthorized
	case http.StatusNotFound:
		return errs.ErrNotFound
	case http.StatusConflict:
		return errs.ErrAlreadyExists
	case http.StatusTooManyRequests:
		return errs.ErrRateLimited
	}
	return nil
}

// URL builds an absolute endpoint URL with the project attached as a query parameter,
// used for resources fetched directly by image viewers.
func (c *Client) URL(path string, q url.Values) string {
	if q == nil {
		q = url.Values{}
	}
	q.Set("project", c.project)
	return c.endpoint + path + "?" + q.Encode()
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any       // JSON-encoded when non-nil
	raw    io.Reader // used as-is when body is nil
	ctype  string
}

// do executes req and decodes the JSON response into out (may be nil).
// It returns the response headers for callers that need them.
func (c *Client) do(ctx context.Context, req request, out any) (http.Header, error) {
	u := c.endpoint + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	ctype := req.ctype
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
		ctype = "application/json"
	} else if req.raw != nil {
		body = req.raw
	}

	hr, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return nil, err
	}
	hr.Header.Set("X-Appwrite-Project", c.project)
	hr.Header.Set("X-Appwrite-Response-Format", responseFormat)
	if ctype != "" {
		hr.Header.Set("Content-Type", ctype)
	}
	if s := c.session(); s != "" {
		hr.Header.Set("X-Appwrite-Session", s)
	}

	resp, err := c.hc.Do(hr)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		apiErr := &Error{Status: resp.StatusCode}
		if json.Unmarshal(data, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return resp.Header, apiErr
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.Header, fmt.Errorf("decode %s %s: %w", req.method, req.path, err)
		}
	}
	return resp.Header, nil
}

// IsStatus reports whether err is an API error with the given HTTP status.
func IsStatus(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == status
}
