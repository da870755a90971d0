package query

import (
	"context"

	"go.uber.org/zap"

	"github.com/and161185/snapgram/internal/model"
)

// API is the adapter surface used by the client.
type API interface {
	CreateUserAccount(ctx context.Context, u model.NewUser) (*model.User, error)
	SignIn(ctx context.Context, email, password string) (*model.Session, error)
	SignOut(ctx context.Context) error
	CurrentUser(ctx context.Context) (*model.User, error)
	CreatePost(ctx context.Context, p model.NewPost) (*model.Post, error)
	UpdatePost(ctx context.Context, u model.UpdatePost) (*model.Post, error)
	DeletePost(ctx context.Context, postID, imageID string) error
	GetPostByID(ctx context.Context, postID string) (*model.Post, error)
	RecentPosts(ctx context.Context) ([]model.Post, error)
	ListPosts(ctx context.Context) ([]model.Post, error)
	LikePost(ctx context.Context, postID string, likes []string) (*model.Post, error)
	SavePost(ctx context.Context, postID, userID string) (*model.SavedPost, error)
	DeleteSavedPost(ctx context.Context, savedID string) error
}

// Client serves reads from the cache and invalidates it after writes.
type Client struct {
	api   API
	cache *Cache
	log   *zap.Logger
}

// NewClient wraps api. A nil cache gets a fresh one; log may be nil.
func NewClient(api API, cache *Cache, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if cache == nil {
		cache = NewCache(log)
	}
	return &Client{api: api, cache: cache, log: log}
}

// Cache exposes the underlying cache.
func (c *Client) Cache() *Cache { return c.cache }

func (c *Client) done(m Mutation, postID string) {
	keys := Invalidates(m, postID)
	c.log.Debug("mutation succeeded", zap.Stringer("mutation", m), zap.Int("invalidated", len(keys)))
	c.cache.Invalidate(keys...)
}

// RecentPosts reads the recent posts feed.
func (c *Client) RecentPosts(ctx context.Context) ([]model.Post, error) {
	return get(ctx, c.cache, RecentPosts(), c.api.RecentPosts)
}

// ListPosts reads the explore list.
func (c *Client) ListPosts(ctx context.Context) ([]model.Post, error) {
	return get(ctx, c.cache, PostsList(), c.api.ListPosts)
}

// PostByID reads one post.
func (c *Client) PostByID(ctx context.Context, postID string) (*model.Post, error) {
	return get(ctx, c.cache, PostByID(postID), func(ctx context.Context) (*model.Post, error) {
		return c.api.GetPostByID(ctx, postID)
	})
}

// CurrentUser reads the signed-in profile; nil when signed out.
func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	return get(ctx, c.cache, CurrentUser(), c.api.CurrentUser)
}

// CreateUserAccount registers a user. Nothing is invalidated.
func (c *Client) CreateUserAccount(ctx context.Context, u model.NewUser) (*model.User, error) {
	user, err := c.api.CreateUserAccount(ctx, u)
	if err != nil {
		return nil, err
	}
	c.done(CreateUserAccount, "")
	return user, nil
}

// SignIn opens a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	s, err := c.api.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.done(SignIn, "")
	return s, nil
}

// SignOut closes the current session.
func (c *Client) SignOut(ctx context.Context) error {
	if err := c.api.SignOut(ctx); err != nil {
		return err
	}
	c.done(SignOut, "")
	return nil
}

// CreatePost publishes a post.
func (c *Client) CreatePost(ctx context.Context, p model.NewPost) (*model.Post, error) {
	post, err := c.api.CreatePost(ctx, p)
	if err != nil {
		return nil, err
	}
	c.done(CreatePost, post.ID)
	return post, nil
}

// UpdatePost edits a post.
func (c *Client) UpdatePost(ctx context.Context, u model.UpdatePost) (*model.Post, error) {
	post, err := c.api.UpdatePost(ctx, u)
	if err != nil {
		return nil, err
	}
	c.done(UpdatePost, u.PostID)
	return post, nil
}

// DeletePost removes a post and its image.
func (c *Client) DeletePost(ctx context.Context, postID, imageID string) error {
	if err := c.api.DeletePost(ctx, postID, imageID); err != nil {
		return err
	}
	c.done(DeletePost, postID)
	return nil
}

// LikePost submits the complete like list of postID.
func (c *Client) LikePost(ctx context.Context, postID string, likes []string) (*model.Post, error) {
	post, err := c.api.LikePost(ctx, postID, likes)
	if err != nil {
		return nil, err
	}
	c.done(LikePost, postID)
	return post, nil
}

// SavePost bookmarks a post.
func (c *Client) SavePost(ctx context.Context, postID, userID string) (*model.SavedPost, error) {
	s, err := c.api.SavePost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	c.done(SavePost, postID)
	return s, nil
}

// DeleteSavedPost removes a bookmark.
func (c *Client) DeleteSavedPost(ctx context.Context, savedID string) error {
	if err := c.api.DeleteSavedPost(ctx, savedID); err != nil {
		return err
	}
	c.done(DeleteSavedPost, "")
	return nil
}

// ToggleLike returns likes with userID added or removed.
func ToggleLike(likes []string, userID string) []string {
	out := make([]string, 0, len(likes)+1)
	found := false
	for _, id := range likes {
		if id == userID {
			found = true
			continue
		}
		out = append(out, id)
	}
	if !found {
		out = append(out, userID)
	}
	return out
}
