// Package model defines domain entities used by the adapter, the query layer and backends.
package model

import (
	"time"
)

// Account is the authentication identity held by the backend.
type Account struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}

// Session is an authenticated session for an account.
type Session struct {
	ID        string
	AccountID string
	Secret    string    // opaque credential attached to later backend calls
	ExpiresAt time.Time // zero when the backend does not report it
}

// NewUser is the sign-up input.
type NewUser struct {
	Name     string
	Username string
	Email    string
	Password string
}

// User is the application profile keyed by the account id.
type User struct {
	ID        string // profile document id
	AccountID string
	Name      string
	Username  string
	Email     string
	ImageURL  string
	Bio       string
	CreatedAt time.Time
}

// Attachment is a binary payload selected for upload.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// NewPost is the post-creation input. Tags is the raw comma-separated string.
type NewPost struct {
	UserID   string
	Caption  string
	Location string
	Tags     string
	Files    []Attachment
}

// UpdatePost replaces the editable fields of a post. Files may be empty to keep the image.
type UpdatePost struct {
	PostID   string
	ImageID  string // current image
	ImageURL string // current preview URL
	Caption  string
	Location string
	Tags     string
	Files    []Attachment
}

// Post is a published post.
type Post struct {
	ID        string
	CreatorID string
	Caption   string
	ImageID   string
	ImageURL  string
	Location  string
	Tags      []string
	Likes     []string // user profile ids
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LikedBy reports whether userID is in the like list.
func (p *Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// SavedPost links a user profile to a bookmarked post.
type SavedPost struct {
	ID        string
	UserID    string
	PostID    string
	CreatedAt time.Time
}

// File describes an uploaded binary object.
type File struct {
	ID        string
	BucketID  string
	Name      string
	MimeType  string
	Size      int64
	CreatedAt time.Time
}
