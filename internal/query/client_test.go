package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/and161185/snapgram/internal/model"
)

type fakeAPI struct {
	recentCalls int
	listCalls   int
	postCalls   int
	userCalls   int

	likeIn  []string
	likeErr error
}

var _ API = (*fakeAPI)(nil)

func (f *fakeAPI) CreateUserAccount(_ context.Context, u model.NewUser) (*model.User, error) {
	return &model.User{ID: "u1", Name: u.Name}, nil
}
func (f *fakeAPI) SignIn(context.Context, string, string) (*model.Session, error) {
	return &model.Session{ID: "s1"}, nil
}
func (f *fakeAPI) SignOut(context.Context) error { return nil }
func (f *fakeAPI) CurrentUser(context.Context) (*model.User, error) {
	f.userCalls++
	return &model.User{ID: "u1"}, nil
}
func (f *fakeAPI) CreatePost(_ context.Context, p model.NewPost) (*model.Post, error) {
	return &model.Post{ID: "p9", Caption: p.Caption}, nil
}
func (f *fakeAPI) UpdatePost(_ context.Context, u model.UpdatePost) (*model.Post, error) {
	return &model.Post{ID: u.PostID}, nil
}
func (f *fakeAPI) DeletePost(context.Context, string, string) error { return nil }
func (f *fakeAPI) GetPostByID(_ context.Context, id string) (*model.Post, error) {
	f.postCalls++
	return &model.Post{ID: id}, nil
}
func (f *fakeAPI) RecentPosts(context.Context) ([]model.Post, error) {
	f.recentCalls++
	return []model.Post{{ID: "p1"}}, nil
}
func (f *fakeAPI) ListPosts(context.Context) ([]model.Post, error) {
	f.listCalls++
	return []model.Post{{ID: "p1"}}, nil
}
func (f *fakeAPI) LikePost(_ context.Context, id string, likes []string) (*model.Post, error) {
	f.likeIn = likes
	if f.likeErr != nil {
		return nil, f.likeErr
	}
	return &model.Post{ID: id, Likes: likes}, nil
}
func (f *fakeAPI) SavePost(_ context.Context, postID, userID string) (*model.SavedPost, error) {
	return &model.SavedPost{ID: "s1", PostID: postID, UserID: userID}, nil
}
func (f *fakeAPI) DeleteSavedPost(context.Context, string) error { return nil }

func warm(t *testing.T, c *Client) {
	t.Helper()
	ctx := context.Background()
	_, err := c.RecentPosts(ctx)
	require.NoError(t, err)
	_, err = c.ListPosts(ctx)
	require.NoError(t, err)
	_, err = c.PostByID(ctx, "p1")
	require.NoError(t, err)
	_, err = c.PostByID(ctx, "p2")
	require.NoError(t, err)
	_, err = c.CurrentUser(ctx)
	require.NoError(t, err)
}

func TestClient_ReadsAreCached(t *testing.T) {
	api := &fakeAPI{}
	c := NewClient(api, nil, nil)
	warm(t, c)
	warm(t, c)

	require.Equal(t, 1, api.recentCalls)
	require.Equal(t, 1, api.listCalls)
	require.Equal(t, 2, api.postCalls)
	require.Equal(t, 1, api.userCalls)
}

func TestClient_LikeInvalidates(t *testing.T) {
	api := &fakeAPI{}
	c := NewClient(api, nil, nil)
	warm(t, c)

	p, err := c.LikePost(context.Background(), "p1", []string{"u1"})
	require.NoError(t, err)
	require.Equal(t, []string{"u1"}, p.Likes)

	cache := c.Cache()
	require.Equal(t, Stale, cache.State(PostByID("p1")))
	require.Equal(t, Stale, cache.State(RecentPosts()))
	require.Equal(t, Stale, cache.State(PostsList()))
	require.Equal(t, Stale, cache.State(CurrentUser()))
	require.Equal(t, Fresh, cache.State(PostByID("p2")))

	_, err = c.RecentPosts(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, api.recentCalls)
}

func TestClient_FailedWriteInvalidatesNothing(t *testing.T) {
	api := &fakeAPI{likeErr: errors.New("down")}
	c := NewClient(api, nil, nil)
	warm(t, c)

	_, err := c.LikePost(context.Background(), "p1", nil)
	require.Error(t, err)
	require.Equal(t, Fresh, c.Cache().State(PostByID("p1")))
	require.Equal(t, Fresh, c.Cache().State(RecentPosts()))
}

func TestClient_WritesFollowTable(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name  string
		write func(c *Client) error
		stale []Key
		fresh []Key
	}{
		{
			name: "create user account",
			write: func(c *Client) error {
				_, err := c.CreateUserAccount(ctx, model.NewUser{Name: "Ann"})
				return err
			},
			fresh: []Key{RecentPosts(), PostsList(), CurrentUser(), PostByID("p1")},
		},
		{
			name: "create post",
			write: func(c *Client) error {
				_, err := c.CreatePost(ctx, model.NewPost{Caption: "hello"})
				return err
			},
			stale: []Key{RecentPosts()},
			fresh: []Key{PostsList(), CurrentUser(), PostByID("p1")},
		},
		{
			name: "save post",
			write: func(c *Client) error {
				_, err := c.SavePost(ctx, "p1", "u1")
				return err
			},
			stale: []Key{RecentPosts(), PostsList(), CurrentUser()},
			fresh: []Key{PostByID("p1")},
		},
		{
			name:  "delete saved post",
			write: func(c *Client) error { return c.DeleteSavedPost(ctx, "s1") },
			stale: []Key{RecentPosts(), PostsList(), CurrentUser()},
			fresh: []Key{PostByID("p1")},
		},
		{
			name: "update post",
			write: func(c *Client) error {
				_, err := c.UpdatePost(ctx, model.UpdatePost{PostID: "p1"})
				return err
			},
			stale: []Key{PostByID("p1"), RecentPosts(), PostsList()},
			fresh: []Key{CurrentUser(), PostByID("p2")},
		},
		{
			name:  "delete post",
			write: func(c *Client) error { return c.DeletePost(ctx, "p2", "f2") },
			stale: []Key{PostByID("p2"), RecentPosts(), PostsList()},
			fresh: []Key{CurrentUser(), PostByID("p1")},
		},
		{
			name: "sign in",
			write: func(c *Client) error {
				_, err := c.SignIn(ctx, "a@b.co", "password1")
				return err
			},
			stale: []Key{CurrentUser()},
			fresh: []Key{RecentPosts(), PostsList()},
		},
		{
			name:  "sign out",
			write: func(c *Client) error { return c.SignOut(ctx) },
			stale: []Key{CurrentUser()},
			fresh: []Key{RecentPosts(), PostsList()},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewClient(&fakeAPI{}, nil, nil)
			warm(t, c)
			require.NoError(t, tc.write(c))
			for _, k := range tc.stale {
				require.Equal(t, Stale, c.Cache().State(k), k.String())
			}
			for _, k := range tc.fresh {
				require.Equal(t, Fresh, c.Cache().State(k), k.String())
			}
		})
	}
}

func TestToggleLike(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, ToggleLike([]string{"a"}, "b"))
	require.Equal(t, []string{"a"}, ToggleLike([]string{"a", "b"}, "b"))
	require.Equal(t, []string{"u"}, ToggleLike(nil, "u"))
}

func TestInvalidates_UnknownMutation(t *testing.T) {
	require.Nil(t, Invalidates(Mutation(200), "p1"))
	require.Nil(t, Invalidates(CreateUserAccount, ""))
	require.Equal(t, "like-post", LikePost.String())
}
