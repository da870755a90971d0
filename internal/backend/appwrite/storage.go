package appwrite

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"time"

	"github.com/and161185/snapgram/internal/backend"
	"github.com/and161185/snapgram/internal/model"
)

type fileDTO struct {
	ID           string    `json:"$id"`
	BucketID     string    `json:"bucketId"`
	CreatedAt    time.Time `json:"$createdAt"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mimeType"`
	SizeOriginal int64     `json:"sizeOriginal"`
}

func filesPath(bucketID string) string {
	return "/storage/buckets/" + url.PathEscape(bucketID) + "/files"
}

// CreateFile uploads f as a multipart form in a single request.
func (c *Client) CreateFile(ctx context.Context, bucketID, fileID string, f model.Attachment) (*model.File, error) {
	if len(f.Data) == 0 {
		return nil, errors.New("empty file")
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("fileId", fileID); err != nil {
		return nil, err
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+escapeQuotes(f.Name)+`"`)
	ctype := f.ContentType
	if ctype == "" {
		ctype = http.DetectContentType(f.Data)
	}
	h.Set("Content-Type", ctype)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out fileDTO
	_, err = c.do(ctx, request{
		method: http.MethodPost,
		path:   filesPath(bucketID),
		raw:    &buf,
		ctype:  mw.FormDataContentType(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &model.File{
		ID:        out.ID,
		BucketID:  out.BucketID,
		Name:      out.Name,
		MimeType:  out.MimeType,
		Size:      out.SizeOriginal,
		CreatedAt: out.CreatedAt,
	}, nil
}

func escapeQuotes(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FilePreview builds the preview URL; no request is made.
func (c *Client) FilePreview(bucketID, fileID string, opts backend.PreviewOptions) (string, error) {
	if bucketID == "" || fileID == "" {
		return "", errors.New("preview: empty bucket/file id")
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
	return c.URL(filesPath(bucketID)+"/"+url.PathEscape(fileID)+"/preview", q), nil
}

// DeleteFile removes a file.
func (c *Client) DeleteFile(ctx context.Context, bucketID, fileID string) error {
	_, err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   filesPath(bucketID) + "/" + url.PathEscape(fileID),
	}, nil)
	return err
}
