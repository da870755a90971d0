// Package backend defines the remote backend facade consumed by the API adapter.
// Concrete drivers live in subpackages.
package backend

import (
	"context"

	"github.com/and161185/snapgram/internal/model"
)

// CurrentSession names the session attached to the facade.
const CurrentSession = "current"

// Accounts manages identities and sessions.
type Accounts interface {
	// CreateAccount registers a new identity with a client-chosen id.
	CreateAccount(ctx context.Context, id, email, password, name string) (*model.Account, error)
	// CreateEmailSession authenticates and attaches the new session to the facade.
	CreateEmailSession(ctx context.Context, email, password string) (*model.Session, error)
	// GetAccount returns the account of the attached session (errs.ErrUnauthorized if none).
	GetAccount(ctx context.Context) (*model.Account, error)
	// DeleteSession deletes a session by id or CurrentSession.
	DeleteSession(ctx context.Context, sessionID string) error
	// UseSession attaches a previously issued session secret ("" detaches).
	UseSession(secret string)
}

// Databases stores schema-flexible documents in named collections.
type Databases interface {
	// CreateDocument stores data under documentID.
	CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (*Document, error)
	// GetDocument loads a single document.
	GetDocument(ctx context.Context, databaseID, collectionID, documentID string) (*Document, error)
	// ListDocuments returns documents matching queries.
	ListDocuments(ctx context.Context, databaseID, collectionID string, queries ...Query) (*DocumentList, error)
	// UpdateDocument merges data into an existing document.
	UpdateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (*Document, error)
	// DeleteDocument removes a document (errs.ErrNotFound if missing).
	DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error
}

// Storage keeps binary files in buckets.
type Storage interface {
	// CreateFile uploads a file under fileID.
	CreateFile(ctx context.Context, bucketID, fileID string, f model.Attachment) (*model.File, error)
	// FilePreview derives a preview URL for an uploaded image.
	FilePreview(bucketID, fileID string, opts PreviewOptions) (string, error)
	// DeleteFile removes a file (errs.ErrNotFound if missing).
	DeleteFile(ctx context.Context, bucketID, fileID string) error
}

// Avatars derives placeholder images.
type Avatars interface {
	// InitialsURL returns an avatar URL rendering the initials of name.
	InitialsURL(name string) (string, error)
}

// Backend is the complete facade.
type Backend interface {
	Accounts
	Databases
	Storage
	Avatars
}

// Gravity is the crop anchor of a preview.
type Gravity string

// Crop anchors understood by preview renderers.
const (
	GravityCenter      Gravity = "center"
	GravityTopLeft     Gravity = "top-left"
	GravityTop         Gravity = "top"
	GravityTopRight    Gravity = "top-right"
	GravityLeft        Gravity = "left"
	GravityRight       Gravity = "right"
	GravityBottomLeft  Gravity = "bottom-left"
	GravityBottom      Gravity = "bottom"
	GravityBottomRight Gravity = "bottom-right"
)

// PreviewOptions controls preview rendering.
type PreviewOptions struct {
	Width   int
	Height  int
	Gravity Gravity
	Quality int // 0..100
}
