package cache_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"jobpulse/board-service/internal/cache"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)}
}

func TestMemory_HitBeforeExpiry(t *testing.T) {
	clk := newClock()
	c := cache.NewMemory(clk.now)
	ctx := context.Background()

	value := []byte(`{"jobs":[]}`)
	if err := c.Put(ctx, cache.PageKey(1), value, cache.PageTTL); err != nil {
		t.Fatalf("Put: %v", err)
	}

	clk.advance(14 * time.Minute)
	got, ok, err := c.Get(ctx, cache.PageKey(1))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("read at T+14min should hit")
	}
	if !bytes.Equal(got, value) {
		t.Errorf("Get = %q, want stored value %q", got, value)
	}
}

func TestMemory_MissAfterExpiry(t *testing.T) {
	clk := newClock()
	c := cache.NewMemory(clk.now)
	ctx := context.Background()

	if err := c.Put(ctx, cache.PageKey(1), []byte("v"), cache.PageTTL); err != nil {
		t.Fatalf("Put: %v", err)
	}

	clk.advance(16 * time.Minute)
	if _, ok, _ := c.Get(ctx, cache.PageKey(1)); ok {
		t.Fatal("read at T+16min should miss")
	}
}

func TestMemory_MissAtExactExpiry(t *testing.T) {
	clk := newClock()
	c := cache.NewMemory(clk.now)
	ctx := context.Background()

	if err := c.Put(ctx, "k", []byte("v"), cache.PageTTL); err != nil {
		t.Fatalf("Put: %v", err)
	}
	clk.advance(cache.PageTTL)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatal("entry is stale exactly at TTL")
	}
}

func TestMemory_MissOnAbsentKey(t *testing.T) {
	c := cache.NewMemory(newClock().now)
	if _, ok, err := c.Get(context.Background(), "nope"); ok || err != nil {
		t.Fatalf("Get absent key = ok=%v err=%v, want clean miss", ok, err)
	}
}

func TestMemory_Invalidate(t *testing.T) {
	clk := newClock()
	c := cache.NewMemory(clk.now)
	ctx := context.Background()

	if err := c.Put(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Invalidate(ctx, "k"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatal("invalidated entry still readable")
	}
}

func TestMemory_KeysAreIndependent(t *testing.T) {
	clk := newClock()
	c := cache.NewMemory(clk.now)
	ctx := context.Background()

	_ = c.Put(ctx, cache.PageKey(1), []byte("one"), cache.PageTTL)
	clk.advance(10 * time.Minute)
	_ = c.Put(ctx, cache.PageKey(2), []byte("two"), cache.PageTTL)
	clk.advance(10 * time.Minute)

	// Page 1 is 20 minutes old and expired; page 2 is 10 minutes old.
	if _, ok, _ := c.Get(ctx, cache.PageKey(1)); ok {
		t.Error("page 1 should have expired")
	}
	if _, ok, _ := c.Get(ctx, cache.PageKey(2)); !ok {
		t.Error("page 2 should still be fresh")
	}
}

func TestPageKey(t *testing.T) {
	if got := cache.PageKey(3); got != "jobs_page_3" {
		t.Errorf("PageKey(3) = %q, want jobs_page_3", got)
	}
}
