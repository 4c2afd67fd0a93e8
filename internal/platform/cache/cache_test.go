package cache

import (
	"testing"
	"time"
)

type countingObserver struct {
	hits   int
	misses int
}

func (o *countingObserver) CacheHit()  { o.hits++ }
func (o *countingObserver) CacheMiss() { o.misses++ }

func newClockedCache(t *testing.T) (*Cache[string], *time.Time) {
	t.Helper()
	c := New[string](nil)
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCacheSetGet(t *testing.T) {
	c, _ := newClockedCache(t)

	c.Set("k", "v", time.Minute)
	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Fatalf("Get(k) = %q, %v; want v, true", got, ok)
	}
}

func TestCacheMissOnUnknownKey(t *testing.T) {
	c, _ := newClockedCache(t)
	if _, ok := c.Get("absent"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestCacheEntryExpires(t *testing.T) {
	c, now := newClockedCache(t)

	c.Set("k", "v", time.Minute)
	*now = now.Add(59 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry expired before its TTL elapsed")
	}

	*now = now.Add(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry still served after its TTL elapsed")
	}
	// The expired lookup must also have evicted the entry.
	if c.Len() != 0 {
		t.Fatalf("Len() = %d after expired lookup; want 0", c.Len())
	}
}

func TestCachePerEntryTTL(t *testing.T) {
	c, now := newClockedCache(t)

	c.Set("short", "a", 10*time.Second)
	c.Set("long", "b", time.Hour)

	*now = now.Add(30 * time.Second)
	if _, ok := c.Get("short"); ok {
		t.Fatal("short entry survived past its TTL")
	}
	if _, ok := c.Get("long"); !ok {
		t.Fatal("long entry expired with the short one")
	}
}

func TestCacheSetReplacesExpiry(t *testing.T) {
	c, now := newClockedCache(t)

	c.Set("k", "v1", 10*time.Second)
	*now = now.Add(5 * time.Second)
	c.Set("k", "v2", time.Minute)

	*now = now.Add(30 * time.Second)
	got, ok := c.Get("k")
	if !ok || got != "v2" {
		t.Fatalf("Get(k) = %q, %v; want v2, true", got, ok)
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c, _ := newClockedCache(t)

	c.Set("a", "1", time.Minute)
	c.Set("b", "2", time.Minute)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("deleted entry still present")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("Len() = %d after Clear; want 0", c.Len())
	}
}

func TestCacheEvictExpired(t *testing.T) {
	c, now := newClockedCache(t)

	c.Set("stale", "a", 10*time.Second)
	c.Set("fresh", "b", time.Hour)

	*now = now.Add(time.Minute)
	c.evictExpired()

	if c.Len() != 1 {
		t.Fatalf("Len() = %d after sweep; want 1", c.Len())
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Fatal("sweep removed a live entry")
	}
}

func TestCacheObserverCounts(t *testing.T) {
	obs := &countingObserver{}
	c := New[int](obs)
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", 1, time.Minute)
	c.Get("k")      // hit
	c.Get("absent") // miss
	now = now.Add(2 * time.Minute)
	c.Get("k") // expired, miss

	if obs.hits != 1 || obs.misses != 2 {
		t.Fatalf("observer saw %d hits, %d misses; want 1, 2", obs.hits, obs.misses)
	}
}
