package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisFixedWindow counts requests in redis so the limit holds across
// instances. Each window bucket is a separate key expired by redis shortly
// after the window closes.
type RedisFixedWindow struct {
	rdb    *redis.Client
	scope  string
	max    int
	window time.Duration
}

func NewRedisFixedWindow(rdb *redis.Client, scope string, max int, window time.Duration) *RedisFixedWindow {
	return &RedisFixedWindow{rdb: rdb, scope: scope, max: max, window: window}
}

func (l *RedisFixedWindow) Check(ctx context.Context, identity string) (Result, error) {
	now := time.Now()
	bucket := now.UnixMilli() - now.UnixMilli()%l.window.Milliseconds()
	resetAt := time.UnixMilli(bucket + l.window.Milliseconds())
	key := "ratelimit:" + l.scope + ":" + identity + ":" + strconv.FormatInt(bucket, 10)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.PExpire(ctx, key, l.window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("redis rate limit check %q: %w", l.scope, err)
	}

	count := int(incr.Val())
	if count > l.max {
		return Result{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}
	return Result{Allowed: true, Remaining: l.max - count, ResetAt: resetAt}, nil
}
