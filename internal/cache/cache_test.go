package cache

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(ttl time.Duration) (*Cache, *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewWithClock(ttl, clk.now), clk
}

func TestGetMiss(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	if _, ok := c.Get("absent"); ok {
		t.Fatal("expected miss on empty cache")
	}
}

func TestSetGet(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.Set("org", "profile")
	v, ok := c.Get("org")
	if !ok || v != "profile" {
		t.Fatalf("got %v, %v", v, ok)
	}
}

func TestExpiry(t *testing.T) {
	c, clk := newTestCache(5 * time.Minute)
	c.Set("org", "profile")

	clk.advance(5 * time.Minute)
	if _, ok := c.Get("org"); !ok {
		t.Fatal("entry at exactly TTL should still be live")
	}

	clk.advance(time.Second)
	if _, ok := c.Get("org"); ok {
		t.Fatal("entry past TTL should miss")
	}
	if c.Len() != 0 {
		t.Fatal("expired entry should be removed on read")
	}
}

func TestInvalidate(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.Set("org", "stale")
	c.Invalidate("org")
	if _, ok := c.Get("org"); ok {
		t.Fatal("invalidated key should miss")
	}
}

func TestSetRefreshesExpiry(t *testing.T) {
	c, clk := newTestCache(time.Minute)
	c.Set("org", "v1")
	clk.advance(50 * time.Second)
	c.Set("org", "v2")
	clk.advance(50 * time.Second)

	v, ok := c.Get("org")
	if !ok || v != "v2" {
		t.Fatalf("rewrite should reset TTL, got %v, %v", v, ok)
	}
}

func TestPurge(t *testing.T) {
	c, clk := newTestCache(time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	clk.advance(2 * time.Minute)
	c.Set("c", 3)

	c.Purge()
	if c.Len() != 1 {
		t.Fatalf("expected 1 live entry after purge, got %d", c.Len())
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("live entry lost in purge")
	}
}
