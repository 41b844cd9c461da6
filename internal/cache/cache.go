// Package cache holds a small in-process cache for the redirect hot
// path. Only the slug to destination mapping is cached: destinations are
// immutable once created, so entries can never go stale.
package cache

import (
	"github.com/dgraph-io/ristretto"
)

// DestinationCache caches slug -> destination lookups.
type DestinationCache struct {
	store *ristretto.Cache
}

// NewDestinationCache returns a cache sized for the redirect working set.
func NewDestinationCache() (*DestinationCache, error) {
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 100_000, // keys to track frequency of, ~10x max items
		MaxCost:     1 << 22, // 4 MiB of destination strings
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &DestinationCache{store: store}, nil
}

// Get returns the cached destination for slug, if present.
func (c *DestinationCache) Get(slug string) (string, bool) {
	v, ok := c.store.Get(slug)
	if !ok {
		return "", false
	}
	dest, ok := v.(string)
	return dest, ok
}

// Set stores the destination for slug, costed by its length.
func (c *DestinationCache) Set(slug, destination string) {
	c.store.Set(slug, destination, int64(len(destination)))
}

// Close releases the cache's internal goroutines.
func (c *DestinationCache) Close() {
	c.store.Close()
}
