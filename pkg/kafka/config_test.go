package kafka

import (
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

func TestProducerOptionsKeepDefaultsForZeroValues(t *testing.T) {
	cfg := defaultProducerConfig()
	for _, opt := range []ProducerOption{
		WithBrokers([]string{"localhost:9092"}),
		WithCompression(""),
		WithMaxAttempts(0),
		WithBatchSize(0),
		WithBatchTimeout(0),
		WithTimeouts(0, 5*time.Second),
	} {
		opt(cfg)
	}
	if cfg.Compression != "snappy" || cfg.MaxAttempts != 3 || cfg.BatchSize != 100 {
		t.Fatalf("zero values must not override defaults: %+v", cfg)
	}
	if cfg.WriteTimeout != 10*time.Second || cfg.ReadTimeout != 5*time.Second {
		t.Fatalf("unexpected timeouts %s/%s", cfg.WriteTimeout, cfg.ReadTimeout)
	}
	if err := cfg.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProducerConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProducerConfig)
	}{
		{"no brokers", func(c *ProducerConfig) { c.Brokers = nil }},
		{"unknown compression", func(c *ProducerConfig) { c.Compression = "brotli" }},
		{"bad acks", func(c *ProducerConfig) { c.RequiredAcks = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultProducerConfig()
			cfg.Brokers = []string{"localhost:9092"}
			tt.mutate(cfg)
			if err := cfg.validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestParseCompression(t *testing.T) {
	tests := map[string]kafka.Compression{
		"none": 0, "": 0, "gzip": kafka.Gzip, "snappy": kafka.Snappy, "lz4": kafka.Lz4, "zstd": kafka.Zstd,
	}
	for in, want := range tests {
		got, err := parseCompression(in)
		if err != nil || got != want {
			t.Fatalf("parseCompression(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}

func TestConsumerConfig(t *testing.T) {
	cfg := defaultConsumerConfig()
	if err := cfg.validate(); !errors.Is(err, errNoBrokers) {
		t.Fatalf("expected errNoBrokers, got %v", err)
	}

	WithConsumerBrokers([]string{"localhost:9092"})(cfg)
	WithConsumerRetry(-1, 0, 0)(cfg)
	WithConsumerWorkers(0)(cfg)
	if cfg.RetryMax != 0 || cfg.BackoffMin != 50*time.Millisecond || cfg.WorkerCount != 1 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if err := cfg.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	WithConsumerRetry(1, time.Second, 10*time.Millisecond)(cfg)
	if err := cfg.validate(); err == nil {
		t.Fatalf("expected error for inverted backoff range")
	}
}
