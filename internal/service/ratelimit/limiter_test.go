package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterBurstAndRefill(t *testing.T) {
	now := time.Unix(0, 0)
	l := New(2, 3)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.Allow("a") {
			t.Fatalf("expected burst token %d", i)
		}
	}
	if l.Allow("a") {
		t.Fatalf("expected bucket to be empty")
	}
	if !l.Allow("b") {
		t.Fatalf("keys must not share buckets")
	}

	now = now.Add(500 * time.Millisecond)
	if !l.Allow("a") {
		t.Fatalf("expected one token after refill")
	}
	if l.Allow("a") {
		t.Fatalf("expected bucket to be empty again")
	}

	l.Forget("a")
	if !l.Allow("a") {
		t.Fatalf("forgotten key starts with a full bucket")
	}
}

func TestLimiterDisabled(t *testing.T) {
	l := New(0, 1)
	for i := 0; i < 100; i++ {
		if !l.Allow("a") {
			t.Fatalf("disabled limiter must allow everything")
		}
	}
	var nilLimiter *Limiter
	if !nilLimiter.Allow("a") {
		t.Fatalf("nil limiter must allow")
	}
}
