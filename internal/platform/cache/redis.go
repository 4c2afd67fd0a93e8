package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStore backs the Store contract with redis so multiple instances share
// one cache. Redis handles expiry itself, so there is no sweep to run.
type redisStore struct {
	rdb    *redis.Client
	prefix string
	obs    Observer
}

func NewRedisStore(rdb *redis.Client, prefix string, obs Observer) Store {
	return &redisStore{rdb: rdb, prefix: prefix, obs: obs}
}

func (s *redisStore) key(key string) string {
	return s.prefix + ":" + key
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			if s.obs != nil {
				s.obs.CacheMiss()
			}
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis cache get %q: %w", key, err)
	}
	if s.obs != nil {
		s.obs.CacheHit()
	}
	return val, true, nil
}

func (s *redisStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, s.key(key), val, ttl).Err(); err != nil {
		return fmt.Errorf("redis cache set %q: %w", key, err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis cache delete %q: %w", key, err)
	}
	return nil
}

func (s *redisStore) Clear(ctx context.Context) error {
	iter := s.rdb.Scan(ctx, 0, s.prefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis cache clear: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis cache clear scan: %w", err)
	}
	return nil
}
