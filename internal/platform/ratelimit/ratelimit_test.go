package ratelimit

import (
	"context"
	"testing"
	"time"
)

func newClockedLimiter(max int, window time.Duration) (*FixedWindow, *time.Time) {
	l := NewFixedWindow(max, window)
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestFixedWindowAdmitsUpToMax(t *testing.T) {
	l, _ := newClockedLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Check(ctx, "alice")
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("request %d denied before the limit", i+1)
		}
		if res.Remaining != 3-i-1 {
			t.Fatalf("request %d: Remaining = %d, want %d", i+1, res.Remaining, 3-i-1)
		}
	}

	res, err := l.Check(ctx, "alice")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Allowed {
		t.Fatal("request past the limit was admitted")
	}
	if res.Remaining != 0 {
		t.Fatalf("denied result Remaining = %d, want 0", res.Remaining)
	}
}

func TestFixedWindowResetAtIsWindowEnd(t *testing.T) {
	l, now := newClockedLimiter(1, time.Minute)

	res, _ := l.Check(context.Background(), "alice")
	if !res.ResetAt.After(*now) {
		t.Fatalf("ResetAt = %v is not after now = %v", res.ResetAt, *now)
	}
	if res.ResetAt.Sub(*now) > time.Minute {
		t.Fatalf("ResetAt = %v is more than one window away", res.ResetAt)
	}
}

func TestFixedWindowIdentitiesAreIndependent(t *testing.T) {
	l, _ := newClockedLimiter(1, time.Minute)
	ctx := context.Background()

	l.Check(ctx, "alice")
	if res, _ := l.Check(ctx, "alice"); res.Allowed {
		t.Fatal("alice admitted past her limit")
	}
	if res, _ := l.Check(ctx, "bob"); !res.Allowed {
		t.Fatal("bob denied by alice's counter")
	}
}

func TestFixedWindowResetsOnNewWindow(t *testing.T) {
	l, now := newClockedLimiter(1, time.Minute)
	ctx := context.Background()

	l.Check(ctx, "alice")
	if res, _ := l.Check(ctx, "alice"); res.Allowed {
		t.Fatal("second request in the same window admitted")
	}

	*now = now.Add(time.Minute)
	if res, _ := l.Check(ctx, "alice"); !res.Allowed {
		t.Fatal("request in the next window denied")
	}
}

func TestFixedWindowDropsStaleBuckets(t *testing.T) {
	l, now := newClockedLimiter(5, time.Minute)
	ctx := context.Background()

	l.Check(ctx, "alice")
	l.Check(ctx, "bob")
	*now = now.Add(2 * time.Minute)
	l.Check(ctx, "carol")

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.counts) != 1 {
		t.Fatalf("stale buckets retained: %d entries, want 1", len(l.counts))
	}
}
