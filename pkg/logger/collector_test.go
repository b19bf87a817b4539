package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	batches int
	entries []AggregatedLogEntry
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches++
	p.entries = append(p.entries, payload.([]AggregatedLogEntry)...)
	return nil
}

func (p *capturePublisher) count(msg string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.entries {
		if e.Message == msg {
			n += e.Count
		}
	}
	return n
}

func TestCollectorAggregatesRepeatedErrors(t *testing.T) {
	pub := &capturePublisher{}
	l := NewNop()
	l.AddCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 100,
		Topic:          "logs",
		Publisher:      pub,
	})

	for i := 0; i < 3; i++ {
		l.Error("projection failed", String("source", "batch"), Error(errors.New("boom")))
	}
	l.Error("other failure")
	l.Warn("ignored below min level")
	l.RemoveCollector()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if pub.topic != "logs" {
		t.Fatalf("unexpected topic %q", pub.topic)
	}
	if len(pub.entries) != 2 {
		t.Fatalf("expected 2 aggregated entries, got %d: %+v", len(pub.entries), pub.entries)
	}
	for _, e := range pub.entries {
		if e.Message == "projection failed" {
			if e.Count != 3 {
				t.Fatalf("expected count 3, got %d", e.Count)
			}
			if e.Fields["error"] != "boom" || e.Fields["source"] != "batch" {
				t.Fatalf("unexpected fields %v", e.Fields)
			}
		}
	}
}

func TestCollectorMinLevelAndChildLoggers(t *testing.T) {
	pub := &capturePublisher{}
	l := NewNop()
	child := l.With(String("component", "ws"))
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, MinLevel: "warn", Publisher: pub})

	child.Warn("slow client")
	child.Info("not collected")
	l.RemoveCollector()
	child.Error("after removal")

	if pub.count("slow client") != 1 {
		t.Fatalf("expected warn from child logger to be collected")
	}
	if pub.count("not collected") != 0 || pub.count("after removal") != 0 {
		t.Fatalf("unexpected entries %+v", pub.entries)
	}
}

func TestCollectorThresholdFlush(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 2, Publisher: pub})
	c.AddLog("error", "a", nil, "x.go:1")
	c.AddLog("error", "b", nil, "x.go:2")

	deadline := time.Now().Add(2 * time.Second)
	for pub.count("a") == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if pub.count("a") != 1 || pub.count("b") != 1 {
		t.Fatalf("expected early flush at threshold")
	}
	c.Close()
	c.Close()
}

func TestFieldValues(t *testing.T) {
	tests := []struct {
		f    Field
		want interface{}
	}{
		{Float64("price", 1088.25), 1088.25},
		{Duration("took", 1500*time.Millisecond), 1500},
		{Error(errors.New("x")), "x"},
		{Error(nil), nil},
	}
	for _, tt := range tests {
		if got := tt.f.value(); got != tt.want {
			t.Fatalf("%s: got %v, want %v", tt.f.Key, got, tt.want)
		}
	}
}
