package kafka

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestToKafkaMessages(t *testing.T) {
	now := time.Unix(1700000000, 0)
	msgs, size, err := toKafkaMessages("results", []Message{
		{Key: []byte("r1"), Value: map[string]int{"part": 1}, Headers: map[string]string{"parts": "2"}},
		{Key: []byte("r1"), Value: "raw"},
	}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 2 || string(msgs[0].Value) != `{"part":1}` || string(msgs[1].Value) != "raw" {
		t.Fatalf("unexpected messages %+v", msgs)
	}
	if size != int64(len(`{"part":1}`)+3) {
		t.Fatalf("unexpected size %d", size)
	}
	if len(msgs[0].Headers) != 1 || msgs[0].Headers[0].Key != "parts" || string(msgs[0].Headers[0].Value) != "2" {
		t.Fatalf("unexpected headers %+v", msgs[0].Headers)
	}
	if msgs[0].Topic != "results" || !msgs[1].Time.Equal(now) {
		t.Fatalf("topic and time must be set on every message")
	}

	if _, _, err := toKafkaMessages("t", []Message{{Value: math.Inf(1)}}, now); err == nil {
		t.Fatalf("expected encode error for +Inf")
	}
}

func TestProducerMetricsObserve(t *testing.T) {
	m := newProducerMetrics(prometheus.NewRegistry())
	m.observe("results", "snappy", 120, 3, time.Millisecond, nil)
	m.observe("results", "snappy", 50, 1, time.Millisecond, errors.New("broker down"))

	if got := testutil.ToFloat64(m.messages.WithLabelValues("results", "snappy", "ok")); got != 3 {
		t.Fatalf("expected 3 ok messages, got %v", got)
	}
	if got := testutil.ToFloat64(m.messages.WithLabelValues("results", "snappy", "error")); got != 1 {
		t.Fatalf("expected 1 failed message, got %v", got)
	}
	if got := testutil.ToFloat64(m.bytes.WithLabelValues("results", "snappy")); got != 120 {
		t.Fatalf("failed writes must not count bytes, got %v", got)
	}

	var nilMetrics *producerMetrics
	nilMetrics.observe("x", "", 1, 1, 0, nil)
}
