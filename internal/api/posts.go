package api

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/and161185/snapgram/internal/backend"
	"github.com/and161185/snapgram/internal/errs"
	"github.com/and161185/snapgram/internal/model"
)

var (
	errNoFile = errors.New("no file selected")
	errNoID   = errors.New("empty id")
)

// upload stores the first attachment and derives its preview URL. The upload
// is deleted again when the preview cannot be derived.
func (a *Adapter) upload(ctx context.Context, op string, files []model.Attachment) (fileID, url string, err error) {
	if len(files) == 0 {
		return "", "", a.fail(op, errs.KindValidation, errNoFile)
	}
	id, err := a.newID()
	if err != nil {
		return "", "", a.fail(op, errs.KindRemote, err)
	}
	f, err := a.be.CreateFile(ctx, a.ids.StorageID, id, files[0])
	if err != nil {
		return "", "", a.fail(op, errs.KindRemote, err)
	}
	url, err = a.be.FilePreview(a.ids.StorageID, f.ID, postPreview)
	if err != nil {
		return "", "", a.dropFile(ctx, op, f.ID, err)
	}
	return f.ID, url, nil
}

// CreatePost uploads the image and stores the post document. The uploaded
// image never outlives a failed post creation unless its deletion also fails.
func (a *Adapter) CreatePost(ctx context.Context, p model.NewPost) (*model.Post, error) {
	const op = "api.CreatePost"

	fileID, url, err := a.upload(ctx, op, p.Files)
	if err != nil {
		return nil, err
	}

	docID, err := a.newID()
	if err != nil {
		return nil, a.dropFile(ctx, op, fileID, err)
	}
	doc, err := a.be.CreateDocument(ctx, a.ids.DatabaseID, a.ids.PostCollectionID, docID, map[string]any{
		"creator":  p.UserID,
		"caption":  p.Caption,
		"imageUrl": url,
		"imageId":  fileID,
		"location": p.Location,
		"tags":     SplitTags(p.Tags),
	})
	if err != nil {
		return nil, a.dropFile(ctx, op, fileID, err)
	}
	post, err := decodePost(doc)
	if err != nil {
		return nil, a.fail(op, errs.KindRemote, err)
	}
	return post, nil
}

// UpdatePost replaces the editable fields. With a new file the image is
// swapped: the old one is deleted only after the document points at the new one.
func (a *Adapter) UpdatePost(ctx context.Context, u model.UpdatePost) (*model.Post, error) {
	const op = "api.UpdatePost"
	if u.PostID == "" {
		return nil, a.fail(op, errs.KindValidation, errNoID)
	}

	imageID, imageURL := u.ImageID, u.ImageURL
	replace := len(u.Files) > 0
	if replace {
		var err error
		if imageID, imageURL, err = a.upload(ctx, op, u.Files); err != nil {
			return nil, err
		}
	}

	doc, err := a.be.UpdateDocument(ctx, a.ids.DatabaseID, a.ids.PostCollectionID, u.PostID, map[string]any{
		"caption":  u.Caption,
		"imageUrl": imageURL,
		"imageId":  imageID,
		"location": u.Location,
		"tags":     SplitTags(u.Tags),
	})
	if err != nil {
		if replace {
			return nil, a.dropFile(ctx, op, imageID, err)
		}
		return nil, a.fail(op, errs.KindRemote, err)
	}

	if replace && u.ImageID != "" {
		if err := a.be.DeleteFile(ctx, a.ids.StorageID, u.ImageID); err != nil {
			a.log.Warn("old image left behind",
				zap.String("postId", u.PostID),
				zap.String("fileId", u.ImageID),
				zap.Error(err),
			)
		}
	}

	post, err := decodePost(doc)
	if err != nil {
		return nil, a.fail(op, errs.KindRemote, err)
	}
	return post, nil
}

// DeletePost removes the post document and then its image.
func (a *Adapter) DeletePost(ctx context.Context, postID, imageID string) error {
	const op = "api.DeletePost"
	if postID == "" || imageID == "" {
		return a.fail(op, errs.KindValidation, errNoID)
	}
	if err := a.be.DeleteDocument(ctx, a.ids.DatabaseID, a.ids.PostCollectionID, postID); err != nil {
		return a.fail(op, errs.KindRemote, err)
	}
	if err := a.be.DeleteFile(ctx, a.ids.StorageID, imageID); err != nil {
		return a.fail(op, errs.KindPartial, err)
	}
	return nil
}

// GetPostByID loads a single post.
func (a *Adapter) GetPostByID(ctx context.Context, postID string) (*model.Post, error) {
	const op = "api.GetPostByID"
	if postID == "" {
		return nil, a.fail(op, errs.KindValidation, errNoID)
	}
	doc, err := a.be.GetDocument(ctx, a.ids.DatabaseID, a.ids.PostCollectionID, postID)
	if err != nil {
		return nil, a.fail(op, errs.KindRemote, err)
	}
	post, err := decodePost(doc)
	if err != nil {
		return nil, a.fail(op, errs.KindRemote, err)
	}
	return post, nil
}

// RecentPosts returns the newest posts, at most RecentPostsLimit.
func (a *Adapter) RecentPosts(ctx context.Context) ([]model.Post, error) {
	return a.listPosts(ctx, "api.RecentPosts", backend.AttrCreatedAt, RecentPostsLimit)
}

// ListPosts returns the most recently updated posts, at most PostsPageSize.
func (a *Adapter) ListPosts(ctx context.Context) ([]model.Post, error) {
	return a.listPosts(ctx, "api.ListPosts", backend.AttrUpdatedAt, PostsPageSize)
}

func (a *Adapter) listPosts(ctx context.Context, op, orderBy string, limit int) ([]model.Post, error) {
	list, err := a.be.ListDocuments(ctx, a.ids.DatabaseID, a.ids.PostCollectionID,
		backend.OrderDesc(orderBy),
		backend.Limit(limit),
	)
	if err != nil {
		return nil, a.fail(op, errs.KindRemote, err)
	}
	posts, err := decodePosts(list, limit)
	if err != nil {
		return nil, a.fail(op, errs.KindRemote, err)
	}
	return posts, nil
}

// LikePost overwrites the like list with likes. Concurrent likes from
// different clients are last-write-wins.
func (a *Adapter) LikePost(ctx context.Context, postID string, likes []string) (*model.Post, error) {
	const op = "api.LikePost"
	if postID == "" {
		return nil, a.fail(op, errs.KindValidation, errNoID)
	}
	if likes == nil {
		likes = []string{}
	}
	doc, err := a.be.UpdateDocument(ctx, a.ids.DatabaseID, a.ids.PostCollectionID, postID, map[string]any{
		"likes": likes,
	})
	if err != nil {
		return nil, a.fail(op, errs.KindRemote, err)
	}
	post, err := decodePost(doc)
	if err != nil {
		return nil, a.fail(op, errs.KindRemote, err)
	}
	return post, nil
}

// SavePost bookmarks postID for userID. Duplicates are not checked.
func (a *Adapter) SavePost(ctx context.Context, postID, userID string) (*model.SavedPost, error) {
	const op = "api.SavePost"
	if postID == "" || userID == "" {
		return nil, a.fail(op, errs.KindValidation, errNoID)
	}
	id, err := a.newID()
	if err != nil {
		return nil, a.fail(op, errs.KindRemote, err)
	}
	doc, err := a.be.CreateDocument(ctx, a.ids.DatabaseID, a.ids.SavesCollectionID, id, map[string]any{
		"user": userID,
		"post": postID,
	})
	if err != nil {
		return nil, a.fail(op, errs.KindRemote, err)
	}
	s, err := decodeSave(doc)
	if err != nil {
		return nil, a.fail(op, errs.KindRemote, err)
	}
	return s, nil
}

// DeleteSavedPost removes a bookmark record. A missing record is a failure.
func (a *Adapter) DeleteSavedPost(ctx context.Context, savedID string) error {
	const op = "api.DeleteSavedPost"
	if savedID == "" {
		return a.fail(op, errs.KindValidation, errNoID)
	}
	if err := a.be.DeleteDocument(ctx, a.ids.DatabaseID, a.ids.SavesCollectionID, savedID); err != nil {
		return a.fail(op, errs.KindRemote, err)
	}
	return nil
}
