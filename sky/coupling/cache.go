package coupling

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes coupling tensors by lmax. Concurrent first requests for the
// same lmax share a single build. Cached tensors are shared read-only.
type Cache struct {
	workers int

	mu      sync.RWMutex
	tensors map[int]*Tensor
	group   singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64
}

// Default is the process-wide cache.
var Default = NewCache(0)

// NewCache returns an empty cache whose builds use at most workers
// goroutines (<= 0 means GOMAXPROCS).
func NewCache(workers int) *Cache {
	return &Cache{
		workers: workers,
		tensors: make(map[int]*Tensor),
	}
}

// Get returns the tensor for lmax, building it on first use. The context of
// the caller that triggers the build bounds that build for all waiters.
func (c *Cache) Get(ctx context.Context, lmax int) (*Tensor, error) {
	c.mu.RLock()
	t, ok := c.tensors[lmax]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return t, nil
	}

	v, err, _ := c.group.Do(strconv.Itoa(lmax), func() (any, error) {
		c.mu.RLock()
		t, ok := c.tensors[lmax]
		c.mu.RUnlock()
		if ok {
			c.hits.Add(1)
			return t, nil
		}

		c.misses.Add(1)
		t, err := Build(ctx, lmax, c.workers)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.tensors[lmax] = t
		c.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Tensor), nil
}

// Stats returns the number of cache hits and builds so far.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached tensors.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tensors)
}

// Reset drops all cached tensors.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.tensors = make(map[int]*Tensor)
	c.mu.Unlock()
}
