package pgstore

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/jackc/pgx/v5"

	"github.com/and161185/snapgram/internal/backend"
	"github.com/and161185/snapgram/internal/errs"
	"github.com/and161185/snapgram/internal/model"
)

// MaxFileSize bounds a single upload.
const MaxFileSize = 50 << 20

// CreateFile stores a file in a bucket.
func (s *Store) CreateFile(ctx context.Context, bucketID, fileID string, f model.Attachment) (*model.File, error) {
	if fileID == "" || len(f.Data) == 0 {
		return nil, errors.New("validation: empty file id/data")
	}
	if len(f.Data) > MaxFileSize {
		return nil, errors.New("validation: file too large")
	}
	mime := f.ContentType
	if mime == "" {
		mime = http.DetectContentType(f.Data)
	}
	const q = `
INSERT INTO files (bucket_id, id, name, mime_type, size_bytes, data)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at`
	out := &model.File{ID: fileID, BucketID: bucketID, Name: f.Name, MimeType: mime, Size: int64(len(f.Data))}
	if err := s.db.Pool.QueryRow(ctx, q, bucketID, fileID, f.Name, mime, out.Size, f.Data).Scan(&out.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, errs.ErrAlreadyExists
		}
		return nil, err
	}
	return out, nil
}

// FilePreview builds the preview URL under PublicURL. RenderPreview produces the image.
func (s *Store) FilePreview(bucketID, fileID string, opts backend.PreviewOptions) (string, error) {
	if bucketID == "" || fileID == "" {
		return "", errors.New("preview: empty bucket/file id")
	}
	if s.publicURL == "" {
		return "", errors.New("preview: public URL not configured")
	}
	q := url.Values{}
	if opts.Width > 0 {
		q.Set("width", strconv.Itoa(opts.Width))
	}
	if opts.Height > 0 {
		q.Set("height", strconv.Itoa(opts.Height))
	}
	if opts.Gravity != "" {
		q.Set("gravity", string(opts.Gravity))
	}
	if opts.Quality > 0 {
		q.Set("quality", strconv.Itoa(opts.Quality))
	}
	return s.url("/storage/buckets/"+url.PathEscape(bucketID)+"/files/"+url.PathEscape(fileID)+"/preview", q), nil
}

// DeleteFile removes a file.
func (s *Store) DeleteFile(ctx context.Context, bucketID, fileID string) error {
	const q = `DELETE FROM files WHERE bucket_id=$1 AND id=$2`
	tag, err := s.db.Pool.Exec(ctx, q, bucketID, fileID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

var anchors = map[backend.Gravity]imaging.Anchor{
	backend.GravityCenter:      imaging.Center,
	backend.GravityTopLeft:     imaging.TopLeft,
	backend.GravityTop:         imaging.Top,
	backend.GravityTopRight:    imaging.TopRight,
	backend.GravityLeft:        imaging.Left,
	backend.GravityRight:       imaging.Right,
	backend.GravityBottomLeft:  imaging.BottomLeft,
	backend.GravityBottom:      imaging.Bottom,
	backend.GravityBottomRight: imaging.BottomRight,
}

// RenderPreview loads an image file and renders it as JPEG per opts:
// both sides set crops to fill around the anchor, one side set keeps the aspect
// ratio, none keeps the original size.
func (s *Store) RenderPreview(ctx context.Context, bucketID, fileID string, opts backend.PreviewOptions) ([]byte, error) {
	const q = `SELECT data FROM files WHERE bucket_id=$1 AND id=$2`
	var data []byte
	if err := s.db.Pool.QueryRow(ctx, q, bucketID, fileID).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return renderPreview(data, opts)
}

func renderPreview(data []byte, opts backend.PreviewOptions) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	switch {
	case opts.Width > 0 && opts.Height > 0:
		anchor, ok := anchors[opts.Gravity]
		if !ok {
			anchor = imaging.Center
		}
		img = imaging.Fill(img, opts.Width, opts.Height, anchor, imaging.Lanczos)
	case opts.Width > 0 || opts.Height > 0:
		img = imaging.Resize(img, opts.Width, opts.Height, imaging.Lanczos)
	}

	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = 90
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// InitialsURL returns an initials avatar URL under PublicURL.
func (s *Store) InitialsURL(name string) (string, error) {
	if name == "" {
		return "", errors.New("initials: empty name")
	}
	if s.publicURL == "" {
		return "", errors.New("initials: public URL not configured")
	}
	return s.url("/avatars/initials", url.Values{"name": {name}}), nil
}
