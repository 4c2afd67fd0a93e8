package cache

import (
	"context"
	"time"
)

// Store is the byte-level cache contract services depend on. The in-memory
// implementation suffices for a single instance; the redis one makes the same
// contract coherent across instances.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

type memoryStore struct {
	c *Cache[[]byte]
}

func NewMemoryStore(obs Observer) Store {
	return &memoryStore{c: New[[]byte](obs)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	return v, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	s.c.Set(key, val, ttl)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.c.Delete(key)
	return nil
}

func (s *memoryStore) Clear(_ context.Context) error {
	s.c.Clear()
	return nil
}

// Sweep exposes the underlying cache's background eviction loop so main can
// run it alongside the server.
func (s *memoryStore) Sweep(ctx context.Context, interval time.Duration) {
	s.c.Sweep(ctx, interval)
}

// Sweeper is implemented by stores that bound memory with a background loop.
type Sweeper interface {
	Sweep(ctx context.Context, interval time.Duration)
}
