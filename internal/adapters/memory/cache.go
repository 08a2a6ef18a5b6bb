package memory

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrMiss is returned by Cache.Get for missing or expired keys.
var ErrMiss = errors.New("cache miss")

type entry struct {
	value   []byte
	expires time.Time
}

// Cache implements ports.CacheService in process memory. It stands in for
// Valkey when no server is reachable.
type Cache struct {
	mu   sync.Mutex
	data map[string]entry
	now  func() time.Time
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{data: map[string]entry{}, now: time.Now}
}

// Get returns the value stored under key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.data[key]
	if !ok {
		return nil, ErrMiss
	}
	if !e.expires.IsZero() && c.now().After(e.expires) {
		delete(c.data, key)
		return nil, ErrMiss
	}
	return e.value, nil
}

// Set stores value under key for ttlSeconds. A non-positive TTL never expires.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttlSeconds > 0 {
		e.expires = c.now().Add(time.Duration(ttlSeconds) * time.Second)
	}
	c.mu.Lock()
	c.data[key] = e
	c.mu.Unlock()
	return nil
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
	return nil
}
