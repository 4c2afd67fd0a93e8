package ratelimit

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Result reports the outcome of an admission check. ResetAt is the end of the
// current fixed window so callers can build a retry hint.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter is the admission-control contract. Implementations count requests
// per identity within fixed time windows.
type Limiter interface {
	Check(ctx context.Context, identity string) (Result, error)
}

// FixedWindow is an in-process fixed-window counter keyed by
// identity:windowBucket. Like the in-memory cache, it is not coherent across
// instances; use the redis limiter for multi-instance deployments.
type FixedWindow struct {
	mu       sync.Mutex
	counts   map[string]int
	max      int
	window   time.Duration
	lastSeen int64
	now      func() time.Time
}

func NewFixedWindow(max int, window time.Duration) *FixedWindow {
	return &FixedWindow{
		counts: make(map[string]int),
		max:    max,
		window: window,
		now:    time.Now,
	}
}

func (l *FixedWindow) Check(_ context.Context, identity string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	bucket := now.UnixMilli() - now.UnixMilli()%l.window.Milliseconds()
	resetAt := time.UnixMilli(bucket + l.window.Milliseconds())

	// A new window makes every previous bucket stale; drop them all so the
	// map stays bounded by the number of identities active this window.
	if bucket != l.lastSeen {
		l.counts = make(map[string]int)
		l.lastSeen = bucket
	}

	key := identity + ":" + strconv.FormatInt(bucket, 10)
	count := l.counts[key]
	if count >= l.max {
		return Result{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}
	l.counts[key] = count + 1
	return Result{Allowed: true, Remaining: l.max - count - 1, ResetAt: resetAt}, nil
}
