package api

import (
	"context"
	"fmt"

	"github.com/and161185/snapgram/internal/backend"
	"github.com/and161185/snapgram/internal/errs"
	"github.com/and161185/snapgram/internal/model"
)

type createDocCall struct {
	coll, id string
	data     map[string]any
}

type fakeBackend struct {
	accOut    *model.Account
	accErr    error
	accInID   string
	accInName string

	sessOut *model.Session
	sessErr error

	getAccOut *model.Account
	getAccErr error

	delSessIn  string
	delSessErr error
	secret     string

	createDocIn  []createDocCall
	createDocErr error

	getDocOut *backend.Document
	getDocErr error

	listIn  []backend.Query
	listOut *backend.DocumentList
	listErr error

	updateInID string
	updateIn   map[string]any
	updateOut  *backend.Document
	updateErr  error

	deleteDocIn  []string
	deleteDocErr error

	createFileIn  []string
	createFileErr error

	previewIn   backend.PreviewOptions
	previewErr  error
	initialsErr error

	deleteFileIn  []string
	deleteFileErr error
}

var _ backend.Backend = (*fakeBackend)(nil)

func (f *fakeBackend) CreateAccount(_ context.Context, id, email, _, name string) (*model.Account, error) {
	f.accInID, f.accInName = id, name
	if f.accErr != nil {
		return nil, f.accErr
	}
	if f.accOut != nil {
		return f.accOut, nil
	}
	return &model.Account{ID: id, Email: email, Name: name}, nil
}

func (f *fakeBackend) CreateEmailSession(_ context.Context, _, _ string) (*model.Session, error) {
	return f.sessOut, f.sessErr
}

func (f *fakeBackend) GetAccount(context.Context) (*model.Account, error) {
	return f.getAccOut, f.getAccErr
}

func (f *fakeBackend) DeleteSession(_ context.Context, id string) error {
	f.delSessIn = id
	return f.delSessErr
}

func (f *fakeBackend) UseSession(secret string) { f.secret = secret }

func (f *fakeBackend) CreateDocument(_ context.Context, _, coll, id string, data map[string]any) (*backend.Document, error) {
	f.createDocIn = append(f.createDocIn, createDocCall{coll: coll, id: id, data: data})
	if f.createDocErr != nil {
		return nil, f.createDocErr
	}
	return &backend.Document{ID: id, CollectionID: coll, Data: data}, nil
}

func (f *fakeBackend) GetDocument(_ context.Context, _, _, _ string) (*backend.Document, error) {
	return f.getDocOut, f.getDocErr
}

func (f *fakeBackend) ListDocuments(_ context.Context, _, _ string, queries ...backend.Query) (*backend.DocumentList, error) {
	f.listIn = queries
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.listOut == nil {
		return &backend.DocumentList{}, nil
	}
	return f.listOut, nil
}

func (f *fakeBackend) UpdateDocument(_ context.Context, _, _, id string, data map[string]any) (*backend.Document, error) {
	f.updateInID, f.updateIn = id, data
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.updateOut != nil {
		return f.updateOut, nil
	}
	return &backend.Document{ID: id, Data: data}, nil
}

func (f *fakeBackend) DeleteDocument(_ context.Context, _, _, id string) error {
	f.deleteDocIn = append(f.deleteDocIn, id)
	return f.deleteDocErr
}

func (f *fakeBackend) CreateFile(_ context.Context, bucket, id string, a model.Attachment) (*model.File, error) {
	f.createFileIn = append(f.createFileIn, id)
	if f.createFileErr != nil {
		return nil, f.createFileErr
	}
	return &model.File{ID: id, BucketID: bucket, Name: a.Name, Size: int64(len(a.Data))}, nil
}

func (f *fakeBackend) FilePreview(bucket, id string, opts backend.PreviewOptions) (string, error) {
	f.previewIn = opts
	if f.previewErr != nil {
		return "", f.previewErr
	}
	return fmt.Sprintf("https://files.test/%s/%s/preview", bucket, id), nil
}

func (f *fakeBackend) DeleteFile(_ context.Context, _, id string) error {
	f.deleteFileIn = append(f.deleteFileIn, id)
	return f.deleteFileErr
}

func (f *fakeBackend) InitialsURL(name string) (string, error) {
	if f.initialsErr != nil {
		return "", f.initialsErr
	}
	return "https://avatars.test/initials?name=" + name, nil
}

var testIDs = Collections{
	DatabaseID:        "db",
	UserCollectionID:  "users",
	PostCollectionID:  "posts",
	SavesCollectionID: "saves",
	StorageID:         "media",
}

// newTestAdapter returns an adapter with sequential ids id-1, id-2, ...
func newTestAdapter(be backend.Backend) *Adapter {
	a := NewAdapter(be, testIDs, nil)
	n := 0
	a.newID = func() (string, error) {
		n++
		return fmt.Sprintf("id-%d", n), nil
	}
	return a
}

var errBoom = fmt.Errorf("boom: %w", errs.ErrRateLimited)
