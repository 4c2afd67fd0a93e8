package cache

import (
	"context"
	"sync"
	"time"
)

// Observer is notified on lookups so callers can export hit/miss counters.
type Observer interface {
	CacheHit()
	CacheMiss()
}

type entry[T any] struct {
	val T
	exp time.Time
}

// Cache is an in-process key-value store where every entry carries its own
// expiry instant. Expired entries behave as misses on Get and are evicted
// there; Sweep only bounds memory and is not needed for correctness.
type Cache[T any] struct {
	mu  sync.RWMutex
	m   map[string]entry[T]
	obs Observer
	now func() time.Time
}

func New[T any](obs Observer) *Cache[T] {
	return &Cache[T]{m: make(map[string]entry[T]), obs: obs, now: time.Now}
}

func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		c.miss()
		return zero, false
	}
	if c.now().After(e.exp) {
		c.mu.Lock()
		// Re-check under the write lock; a Set may have replaced the entry.
		if cur, still := c.m[key]; still && c.now().After(cur.exp) {
			delete(c.m, key)
		}
		c.mu.Unlock()
		c.miss()
		return zero, false
	}
	c.hit()
	return e.val, true
}

func (c *Cache[T]) Set(key string, v T, ttl time.Duration) {
	c.mu.Lock()
	c.m[key] = entry[T]{val: v, exp: c.now().Add(ttl)}
	c.mu.Unlock()
}

func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

func (c *Cache[T]) Clear() {
	c.mu.Lock()
	c.m = make(map[string]entry[T])
	c.mu.Unlock()
}

func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// Sweep removes expired entries at the given interval until ctx is done.
func (c *Cache[T]) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *Cache[T]) evictExpired() {
	now := c.now()
	c.mu.Lock()
	for k, e := range c.m {
		if now.After(e.exp) {
			delete(c.m, k)
		}
	}
	c.mu.Unlock()
}

func (c *Cache[T]) hit() {
	if c.obs != nil {
		c.obs.CacheHit()
	}
}

func (c *Cache[T]) miss() {
	if c.obs != nil {
		c.obs.CacheMiss()
	}
}
