package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/and161185/snapgram/internal/backend"
	"github.com/and161185/snapgram/internal/model"
)

// ref is a relationship attribute. Backends return either the related id or
// the expanded related document.
type ref string

func (r *ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*r = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = ref(s)
		return nil
	}
	var doc struct {
		ID string `json:"$id"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("relationship: %w", err)
	}
	*r = ref(doc.ID)
	return nil
}

func refIDs(rs []ref) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		if r != "" {
			out = append(out, string(r))
		}
	}
	return out
}

type userDoc struct {
	ID        string    `json:"$id"`
	CreatedAt time.Time `json:"$createdAt"`
	AccountID string    `json:"accountId"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	ImageURL  string    `json:"imageUrl"`
	Bio       string    `json:"bio"`
}

type postDoc struct {
	ID        string    `json:"$id"`
	CreatedAt time.Time `json:"$createdAt"`
	UpdatedAt time.Time `json:"$updatedAt"`
	Creator   ref       `json:"creator"`
	Caption   string    `json:"caption"`
	ImageID   string    `json:"imageId"`
	ImageURL  string    `json:"imageUrl"`
	Location  string    `json:"location"`
	Tags      []string  `json:"tags"`
	Likes     []ref     `json:"likes"`
}

type saveDoc struct {
	ID        string    `json:"$id"`
	CreatedAt time.Time `json:"$createdAt"`
	User      ref       `json:"user"`
	Post      ref       `json:"post"`
}

func decodeUser(d *backend.Document) (*model.User, error) {
	var u userDoc
	if err := d.Decode(&u); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", d.ID, err)
	}
	return &model.User{
		ID:        u.ID,
		AccountID: u.AccountID,
		Name:      u.Name,
		Username:  u.Username,
		Email:     u.Email,
		ImageURL:  u.ImageURL,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
	}, nil
}

func decodePost(d *backend.Document) (*model.Post, error) {
	var p postDoc
	if err := d.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode post %s: %w", d.ID, err)
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return &model.Post{
		ID:        p.ID,
		CreatorID: string(p.Creator),
		Caption:   p.Caption,
		ImageID:   p.ImageID,
		ImageURL:  p.ImageURL,
		Location:  p.Location,
		Tags:      tags,
		Likes:     refIDs(p.Likes),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}, nil
}

func decodePosts(list *backend.DocumentList, limit int) ([]model.Post, error) {
	docs := list.Documents
	if len(docs) > limit {
		docs = docs[:limit]
	}
	out := make([]model.Post, 0, len(docs))
	for i := range docs {
		p, err := decodePost(&docs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func decodeSave(d *backend.Document) (*model.SavedPost, error) {
	var s saveDoc
	if err := d.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode save %s: %w", d.ID, err)
	}
	return &model.SavedPost{
		ID:        s.ID,
		UserID:    string(s.User),
		PostID:    string(s.Post),
		CreatedAt: s.CreatedAt,
	}, nil
}
