package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetch_CachesUntilInvalidated(t *testing.T) {
	c := NewCache(nil)
	var calls int32
	fn := func(context.Context) (any, error) {
		return atomic.AddInt32(&calls, 1), nil
	}

	v, err := c.Fetch(context.Background(), RecentPosts(), fn)
	require.NoError(t, err)
	require.Equal(t, int32(1), v)

	v, err = c.Fetch(context.Background(), RecentPosts(), fn)
	require.NoError(t, err)
	require.Equal(t, int32(1), v)
	require.Equal(t, Fresh, c.State(RecentPosts()))

	c.Invalidate(RecentPosts())
	require.Equal(t, Stale, c.State(RecentPosts()))
	stale, ok := c.Peek(RecentPosts())
	require.True(t, ok)
	require.Equal(t, int32(1), stale)

	v, err = c.Fetch(context.Background(), RecentPosts(), fn)
	require.NoError(t, err)
	require.Equal(t, int32(2), v)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetch_ConcurrentReadsShareOneCall(t *testing.T) {
	c := NewCache(nil)
	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	fn := func(context.Context) (any, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		return "posts", nil
	}

	var wg sync.WaitGroup
	results := make([]any, 8)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = c.Fetch(context.Background(), PostsList(), fn)
	}()
	<-started
	for i := 1; i < len(results); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.Fetch(context.Background(), PostsList(), fn)
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		require.Equal(t, "posts", r)
	}
}

func TestFetch_ErrorsAreNotCached(t *testing.T) {
	c := NewCache(nil)
	boom := errors.New("boom")
	calls := 0
	fn := func(context.Context) (any, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return "ok", nil
	}

	_, err := c.Fetch(context.Background(), CurrentUser(), fn)
	require.ErrorIs(t, err, boom)
	require.Equal(t, Missing, c.State(CurrentUser()))

	v, err := c.Fetch(context.Background(), CurrentUser(), fn)
	require.NoError(t, err)
	require.Equal(t, "ok", v)
	require.Equal(t, 2, calls)
}

func TestInvalidate_InFlightResultIsNotFresh(t *testing.T) {
	c := NewCache(nil)
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	fn := func(context.Context) (any, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
			return "old", nil
		}
		return "new", nil
	}

	done := make(chan any)
	go func() {
		v, _ := c.Fetch(context.Background(), PostByID("p1"), fn)
		done <- v
	}()
	<-started
	c.Invalidate(PostByID("p1"))
	close(release)
	require.Equal(t, "old", <-done)

	require.Equal(t, Missing, c.State(PostByID("p1")))
	v, err := c.Fetch(context.Background(), PostByID("p1"), fn)
	require.NoError(t, err)
	require.Equal(t, "new", v)
}

func TestInvalidate_Idempotent(t *testing.T) {
	c := NewCache(nil)
	_, err := c.Fetch(context.Background(), RecentPosts(), func(context.Context) (any, error) { return 1, nil })
	require.NoError(t, err)

	c.Invalidate(RecentPosts())
	c.Invalidate(RecentPosts())
	require.Equal(t, Stale, c.State(RecentPosts()))

	c.Invalidate(PostsList())
	require.Equal(t, Missing, c.State(PostsList()))
}

func TestFetch_CancelledCallerDoesNotStopFetch(t *testing.T) {
	c := NewCache(nil)
	started := make(chan struct{})
	release := make(chan struct{})
	fn := func(ctx context.Context) (any, error) {
		close(started)
		<-release
		return "done", ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error)
	go func() {
		_, err := c.Fetch(ctx, RecentPosts(), fn)
		errc <- err
	}()
	<-started
	cancel()
	require.ErrorIs(t, <-errc, context.Canceled)

	close(release)
	require.Eventually(t, func() bool {
		return c.State(RecentPosts()) == Fresh
	}, time.Second, 5*time.Millisecond)
	v, _ := c.Peek(RecentPosts())
	require.Equal(t, "done", v)
}

func TestGet_TypedNil(t *testing.T) {
	c := NewCache(nil)
	type user struct{ Name string }
	u, err := get(context.Background(), c, CurrentUser(), func(context.Context) (*user, error) { return nil, nil })
	require.NoError(t, err)
	require.Nil(t, u)
	require.Equal(t, Fresh, c.State(CurrentUser()))
}
