package cache

import (
	"errors"
	"testing"
	"time"
)

// fakeClock lets tests move time forward
type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(maxItems int, ttl time.Duration) (*Cache[int], *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}
	c := New[int](Config{MaxItems: maxItems, TTL: ttl})
	c.now = clock.now
	return c, clock
}

func TestCache_GetSet(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)
	defer c.Close()

	if _, ok := c.Get("a"); ok {
		t.Error("Expected miss on empty cache")
	}
	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Expected 1, got %v (%v)", v, ok)
	}

	hits, misses, rate := c.Stats()
	if hits != 1 || misses != 1 || rate != 50 {
		t.Errorf("Expected 1 hit, 1 miss, 50%%, got %d %d %v", hits, misses, rate)
	}

	c.Delete("a")
	if c.Size() != 0 {
		t.Errorf("Expected empty cache after delete, got %d", c.Size())
	}
}

func TestCache_Expiration(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	defer c.Close()

	c.Set("short", 1)
	c.SetWithTTL("forever", 2, 0)

	clock.advance(2 * time.Minute)
	if _, ok := c.Get("short"); ok {
		t.Error("Expected expired entry to miss")
	}
	if _, ok := c.Get("forever"); !ok {
		t.Error("Expected entry without TTL to stay")
	}

	c.Set("other", 3)
	clock.advance(2 * time.Minute)
	c.cleanup()
	if c.Size() != 1 {
		t.Errorf("Expected cleanup to leave one entry, got %d", c.Size())
	}
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, clock := newTestCache(2, 0)
	defer c.Close()

	c.Set("a", 1)
	clock.advance(time.Second)
	c.Set("b", 2)
	clock.advance(time.Second)
	c.Get("a")
	clock.advance(time.Second)
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("Expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("Expected recently used a to stay")
	}

	// Overwriting an existing key never evicts
	c.Set("c", 4)
	if c.Size() != 2 {
		t.Errorf("Expected 2 entries, got %d", c.Size())
	}
}

func TestCache_GetOrSet(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)
	defer c.Close()

	calls := 0
	compute := func() (int, error) {
		calls++
		return 42, nil
	}
	for i := 0; i < 3; i++ {
		if v, err := c.GetOrSet("k", compute); err != nil || v != 42 {
			t.Fatalf("GetOrSet() = %v, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("Expected one computation, got %d", calls)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrSet("bad", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Errorf("Expected boom, got %v", err)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("Expected errors not to be cached")
	}
}

func TestCache_CloseIsIdempotent(t *testing.T) {
	c := New[string](DefaultConfig())
	c.Close()
	c.Close()
}
