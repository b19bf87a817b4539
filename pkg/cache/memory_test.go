package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type entry struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", entry{Name: "a", Value: 1.5}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := GetTyped[entry](ctx, mc, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "a" || got.Value != 1.5 {
		t.Fatalf("unexpected value %+v", got)
	}

	if err := mc.Set(ctx, "s", "plain", time.Minute); err != nil {
		t.Fatalf("set string: %v", err)
	}
	var s string
	if err := mc.Get(ctx, "s", &s); err != nil || s != "plain" {
		t.Fatalf("expected plain string, got %q (%v)", s, err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "k", 1, 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	var v int
	if err := mc.Get(ctx, "k", &v); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after expiry, got %v", err)
	}
	if ok, _ := mc.Expire(ctx, "k", time.Minute); ok {
		t.Fatalf("expire on missing key must report false")
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", 1, time.Minute)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "b", 2, time.Minute)
	time.Sleep(time.Millisecond)
	var v int
	_ = mc.Get(ctx, "a", &v)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "c", 3, time.Minute)

	if ok, _ := mc.Exists(ctx, "b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	if ok, _ := mc.Exists(ctx, "a", "c"); !ok {
		t.Fatalf("expected a and c to remain")
	}
	if mc.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", mc.Len())
	}
}

func TestLayeredCacheReadsThrough(t *testing.T) {
	l2 := NewMemoryCache()
	lc := NewLayeredCache(l2, WithLayeredMemoryTTL(time.Second))
	defer lc.Close()
	ctx := context.Background()

	_ = l2.Set(ctx, "k", entry{Name: "from-l2"}, time.Minute)
	got, err := GetTyped[entry](ctx, lc, "k")
	if err != nil || got.Name != "from-l2" {
		t.Fatalf("expected read-through from l2, got %+v (%v)", got, err)
	}

	if err := lc.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := GetTyped[entry](ctx, lc, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}
