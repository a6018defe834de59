package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/labellens/backend/internal/domain"
)

// defaultCleanupInterval is how often expired entries are purged
const defaultCleanupInterval = 10 * time.Minute

// MemoryCache is a thread-safe in-memory cache with TTL support
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new in-memory cache whose entries default to ttl
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryCache{
		cache: gocache.New(ttl, defaultCleanupInterval),
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, found := c.cache.Get(key)
	if !found {
		return nil, domain.ErrCacheMiss
	}
	data, ok := value.([]byte)
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	// Copy so callers cannot mutate the stored bytes
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Set stores a copy of value in the cache with TTL (0 uses the cache default)
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.cache.Set(key, stored, ttl)
	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.cache.Delete(key)
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, found := c.cache.Get(key)
	return found, nil
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *MemoryCache) Size() int {
	return c.cache.ItemCount()
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.cache.Flush()
}
