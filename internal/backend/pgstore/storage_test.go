package pgstore

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/and161185/snapgram/internal/backend"
	"github.com/and161185/snapgram/internal/errs"
	"github.com/and161185/snapgram/internal/model"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCreateFile_DetectsMime(t *testing.T) {
	s, mock := newStore(t, nil)
	data := testPNG(t, 4, 4)

	mock.ExpectQuery(`INSERT INTO files \(bucket_id, id, name, mime_type, size_bytes, data\)`).
		WithArgs("media", "f1", "pic.png", "image/png", int64(len(data)), data).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(testNow))

	f, err := s.CreateFile(context.Background(), "media", "f1", model.Attachment{Name: "pic.png", Data: data})
	require.NoError(t, err)
	require.Equal(t, "image/png", f.MimeType)
	require.Equal(t, int64(len(data)), f.Size)

	_, err = s.CreateFile(context.Background(), "media", "f2", model.Attachment{Name: "empty"})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteFile_NotFound(t *testing.T) {
	s, mock := newStore(t, nil)
	mock.ExpectExec(`DELETE FROM files WHERE bucket_id=\$1 AND id=\$2`).
		WithArgs("media", "gone").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, s.DeleteFile(context.Background(), "media", "gone"), errs.ErrNotFound)
}

func TestFilePreview_And_Initials_URLs(t *testing.T) {
	s, _ := newStore(t, nil)

	u, err := s.FilePreview("media", "f1", backend.PreviewOptions{Width: 2000, Height: 2000, Gravity: backend.GravityTop, Quality: 100})
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/v1/storage/buckets/media/files/f1/preview?gravity=top&height=2000&quality=100&width=2000", u)

	_, err = s.FilePreview("media", "", backend.PreviewOptions{})
	require.Error(t, err)

	a, err := s.InitialsURL("Ann Lee")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/v1/avatars/initials?name=Ann+Lee", a)
}

func TestRenderPreview_FillsToRequestedSize(t *testing.T) {
	s, mock := newStore(t, nil)
	data := testPNG(t, 40, 20)

	mock.ExpectQuery(`SELECT data FROM files WHERE bucket_id=\$1 AND id=\$2`).
		WithArgs("media", "f1").
		WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow(data))

	out, err := s.RenderPreview(context.Background(), "media", "f1",
		backend.PreviewOptions{Width: 10, Height: 10, Gravity: backend.GravityTop, Quality: 80})
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 10, img.Bounds().Dx())
	require.Equal(t, 10, img.Bounds().Dy())

	mock.ExpectQuery(`SELECT data FROM files`).WithArgs("media", "nope").WillReturnError(pgx.ErrNoRows)
	_, err = s.RenderPreview(context.Background(), "media", "nope", backend.PreviewOptions{})
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRenderPreview_RejectsNonImage(t *testing.T) {
	t.Parallel()
	_, err := renderPreview([]byte("not an image"), backend.PreviewOptions{Width: 10})
	require.Error(t, err)
}
