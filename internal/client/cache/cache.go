// Package cache provides a small keyed cache for asynchronous query results.
// Concurrent fetches of the same key are collapsed into one in-flight call,
// successful results are kept until invalidated, and failures are never
// cached so the next caller-initiated read refetches.
package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

type Cache struct {
	mu      sync.Mutex
	entries map[string]any
	gens    map[string]uint64
	group   singleflight.Group
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]any),
		gens:    make(map[string]uint64),
	}
}

// GetOrFetch returns the cached value for key, or runs fetch to populate it.
// A result fetched under a generation that was invalidated mid-flight is
// returned to its caller but not cached, so a stale fetch can never outlive
// the invalidation that obsoleted it.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch func(ctx context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	if v, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	gen := c.gens[key]
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		val, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gens[key] == gen {
			c.entries[key] = val
		}
		c.mu.Unlock()
		return val, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Peek reports the cached value without fetching.
func (c *Cache) Peek(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Invalidate marks key stale: the entry is dropped and any in-flight fetch
// for it will not be cached or shared with later callers.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.gens[key]++
	c.mu.Unlock()
	c.group.Forget(key)
}

// Purge drops every entry. Used on logout so no data can leak between
// accounts.
func (c *Cache) Purge() {
	c.mu.Lock()
	keys := make([]string, 0, len(c.entries)+len(c.gens))
	for k := range c.gens {
		keys = append(keys, k)
	}
	for k := range c.entries {
		if _, seen := c.gens[k]; !seen {
			keys = append(keys, k)
		}
	}
	c.entries = make(map[string]any)
	for _, k := range keys {
		c.gens[k]++
	}
	c.mu.Unlock()

	for _, k := range keys {
		c.group.Forget(k)
	}
}
