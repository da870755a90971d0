// Package query caches adapter reads and invalidates them after writes.
package query

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// State describes a cache entry.
type State uint8

const (
	Missing State = iota
	Fresh
	Stale
)

type entry struct {
	val   any
	stale bool
}

// Cache holds read results for one client session. Concurrent reads of one key
// share a single fetch.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	gens    map[Key]uint64
	group   singleflight.Group
	log     *zap.Logger
}

// NewCache creates an empty cache. log may be nil.
func NewCache(log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		entries: make(map[Key]*entry),
		gens:    make(map[Key]uint64),
		log:     log,
	}
}

// Fetch returns the fresh value of key or runs fn to obtain it. Callers arriving
// while a fetch is running wait for it instead of starting another. Cancelling
// ctx stops only this caller's wait; the fetch itself runs to completion.
// Errors are not cached.
func (c *Cache) Fetch(ctx context.Context, key Key, fn func(context.Context) (any, error)) (any, error) {
	if v, ok := c.fresh(key); ok {
		return v, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key.String(), func() (any, error) {
		if v, ok := c.fresh(key); ok {
			return v, nil
		}
		gen := c.generation(key)
		c.log.Debug("cache miss", zap.Stringer("key", key))
		v, err := fn(detached)
		if err != nil {
			return nil, err
		}
		c.store(key, gen, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.Val, r.Err
	}
}

// Invalidate marks keys stale. Fetches already running for them will not store
// their result, and the next read starts a new fetch.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		c.gens[k]++
		if e, ok := c.entries[k]; ok {
			e.stale = true
		}
		c.group.Forget(k.String())
		c.log.Debug("cache invalidate", zap.Stringer("key", k))
	}
}

// Peek returns the cached value of key, fresh or stale, without fetching.
func (c *Cache) Peek(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.val, true
}

// State reports whether key is missing, fresh or stale.
func (c *Cache) State(key Key) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	switch {
	case !ok:
		return Missing
	case e.stale:
		return Stale
	default:
		return Fresh
	}
}

func (c *Cache) fresh(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.stale {
		return nil, false
	}
	return e.val, true
}

func (c *Cache) generation(key Key) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[key]
}

// store keeps v only if key was not invalidated since gen was read.
func (c *Cache) store(key Key, gen uint64, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key] != gen {
		c.log.Debug("cache drop invalidated result", zap.Stringer("key", key))
		return
	}
	c.entries[key] = &entry{val: v}
}

// get is Fetch with a typed result.
func get[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	v, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	t, _ := v.(T)
	return t, nil
}
