package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultMemorySize = 512
	defaultMemoryTTL  = 5 * time.Minute
)

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryCache is a size-bounded in-process cache. Entries are evicted after
// maxTTL at the latest; a shorter per-entry ttl is honored on read.
type MemoryCache struct {
	lru *expirable.LRU[string, memoryEntry]
	now func() time.Time
}

// NewMemoryCache creates a memory cache holding at most size entries
func NewMemoryCache(size int, maxTTL time.Duration) *MemoryCache {
	if size <= 0 {
		size = defaultMemorySize
	}
	if maxTTL <= 0 {
		maxTTL = defaultMemoryTTL
	}
	return &MemoryCache{
		lru: expirable.NewLRU[string, memoryEntry](size, nil, maxTTL),
		now: time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if c.now().After(e.expires) {
		c.lru.Remove(key)
		return nil, false
	}
	return e.data, true
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.lru.Add(key, memoryEntry{data: value, expires: c.now().Add(ttl)})
}

// Len returns the number of live entries
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

func (c *MemoryCache) Close() error {
	c.lru.Purge()
	return nil
}
