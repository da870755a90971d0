package main

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/and161185/snapgram/internal/errs"
	"github.com/and161185/snapgram/internal/model"
)

// ---- session store ----

type sessionFile struct {
	Backend   string    `json:"backend"`
	SessionID string    `json:"session_id"`
	AccountID string    `json:"account_id"`
	Secret    string    `json:"secret"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "snapgram")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "snapgram")
}

func sessionPath() string { return filepath.Join(cfgDir(), "session.json") }

func saveSession(backend string, s *model.Session) error {
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(sessionPath(), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(sessionFile{
		Backend:   backend,
		SessionID: s.ID,
		AccountID: s.AccountID,
		Secret:    s.Secret,
		ExpiresAt: s.ExpiresAt,
	})
}

// loadSession returns the stored secret for backend. A session issued by
// another backend or already expired counts as absent.
func loadSession(backend string, now time.Time) (string, error) {
	b, err := os.ReadFile(sessionPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", errs.ErrNoSession
	}
	if err != nil {
		return "", err
	}
	var sf sessionFile
	if err := json.Unmarshal(b, &sf); err != nil {
		return "", err
	}
	if sf.Secret == "" || sf.Backend != backend {
		return "", errs.ErrNoSession
	}
	if !sf.ExpiresAt.IsZero() && now.After(sf.ExpiresAt) {
		return "", errs.ErrNoSession
	}
	return sf.Secret, nil
}

func removeSession() error {
	err := os.Remove(sessionPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ---- utils ----

func readAll(p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(p)
}

// readAttachments loads the file at p; an empty p selects nothing.
func readAttachments(p string) ([]model.Attachment, error) {
	if p == "" {
		return nil, nil
	}
	data, err := readAll(p)
	if err != nil {
		return nil, err
	}
	ctype := mime.TypeByExtension(filepath.Ext(p))
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	name := filepath.Base(p)
	if p == "-" {
		name = "stdin"
	}
	return []model.Attachment{{Name: name, ContentType: ctype, Data: data}}, nil
}
