package metadata

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes an Accessor until the returned metadata is invalidated.
//
// Concurrent callers share a single in-flight fetch. Once the cached
// metadata's state is invalidated the next Get fetches again.
type Cache struct {
	fetch Accessor

	group singleflight.Group

	mu     sync.Mutex
	cached *Metadata
}

// NewCache wraps fetch.
func NewCache(fetch Accessor) *Cache {
	return &Cache{fetch: fetch}
}

// Get returns the cached metadata or fetches it.
func (c *Cache) Get(ctx context.Context) (*Metadata, error) {
	c.mu.Lock()
	if md := c.cached; md != nil && md.State.Valid() {
		c.mu.Unlock()
		return md, nil
	}
	c.cached = nil
	c.mu.Unlock()

	v, err, _ := c.group.Do("metadata", func() (any, error) {
		md, err := c.fetch(ctx)
		if err != nil {
			return nil, err
		}
		if err := md.Validate(); err != nil {
			return nil, errors.Wrap(err, "invalid metadata")
		}
		c.mu.Lock()
		c.cached = md
		c.mu.Unlock()
		md.State.AddInvalidateListener(func() {
			c.mu.Lock()
			if c.cached == md {
				c.cached = nil
			}
			c.mu.Unlock()
		})
		return md, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Metadata), nil
}

// Accessor exposes the cache as an Accessor.
func (c *Cache) Accessor() Accessor {
	return c.Get
}
