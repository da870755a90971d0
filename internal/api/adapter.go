// Package api maps user actions onto backend facade calls. Every method is a
// single attempt; failures come back as *errs.Error and are logged here.
package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/snapgram/internal/backend"
	"github.com/and161185/snapgram/internal/errs"
)

// Collections names the backend containers used by the adapter.
type Collections struct {
	DatabaseID        string
	UserCollectionID  string
	PostCollectionID  string
	SavesCollectionID string
	StorageID         string
}

// Validate reports missing ids.
func (c Collections) Validate() error {
	var missing []string
	for _, f := range []struct{ name, v string }{
		{"database", c.DatabaseID},
		{"user collection", c.UserCollectionID},
		{"post collection", c.PostCollectionID},
		{"saves collection", c.SavesCollectionID},
		{"storage bucket", c.StorageID},
	} {
		if f.v == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing ids: %s", strings.Join(missing, ", "))
	}
	return nil
}

// RecentPostsLimit caps the recent posts feed.
const RecentPostsLimit = 20

// PostsPageSize caps the explore list.
const PostsPageSize = 20

// postPreview is the rendering used for post images.
var postPreview = backend.PreviewOptions{Width: 2000, Height: 2000, Gravity: backend.GravityTop, Quality: 100}

// Adapter performs user actions against a backend.
type Adapter struct {
	be    backend.Backend
	ids   Collections
	log   *zap.Logger
	newID func() (string, error)
}

// NewAdapter constructs an adapter. log may be nil.
func NewAdapter(be backend.Backend, ids Collections, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{be: be, ids: ids, log: log, newID: uniqueID}
}

func uniqueID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// fail logs and wraps err.
func (a *Adapter) fail(op string, kind errs.Kind, err error) error {
	a.log.Warn("operation failed",
		zap.String("op", op),
		zap.Stringer("kind", kind),
		zap.Error(err),
	)
	return errs.E(op, kind, err)
}

// dropFile deletes an upload left behind by a failed workflow. The deletion runs
// even if ctx is already cancelled.
func (a *Adapter) dropFile(ctx context.Context, op, fileID string, cause error) error {
	if err := a.be.DeleteFile(context.WithoutCancel(ctx), a.ids.StorageID, fileID); err != nil {
		a.log.Error("orphaned file",
			zap.String("op", op),
			zap.String("fileId", fileID),
			zap.Error(err),
		)
		return a.fail(op, errs.KindPartial, errors.Join(cause, fmt.Errorf("delete file %s: %w", fileID, err)))
	}
	return a.fail(op, errs.KindRemote, cause)
}

// SplitTags turns "Trending, Learning, Life-style" into its tag list.
// Whitespace is removed everywhere and empty tags are dropped.
func SplitTags(s string) []string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
