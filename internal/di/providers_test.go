package di

import (
	"testing"

	"PriceSim/pkg/cache"
	"PriceSim/pkg/config"
)

func TestProvideSessionCacheMemory(t *testing.T) {
	cfg := config.Default()
	c, err := ProvideSessionCache(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()
	if _, ok := c.(*cache.MemoryCache); !ok {
		t.Fatalf("expected memory cache, got %T", c)
	}
}

func TestProvideProjectorRejectsUnknownPolicy(t *testing.T) {
	cfg := config.Default()
	cfg.Pricing.DomainPolicy = "lenient"
	if _, err := ProvideProjector(cfg); err == nil {
		t.Fatalf("expected error for unknown domain policy")
	}
}

func TestKafkaDisabledProvidesNothing(t *testing.T) {
	cfg := config.Default()
	p, err := ProvideKafkaProducer(cfg)
	if err != nil || p != nil {
		t.Fatalf("expected no producer, got %v, %v", p, err)
	}
	c, err := ProvideKafkaConsumer(cfg, nil)
	if err != nil || c != nil {
		t.Fatalf("expected no consumer, got %v, %v", c, err)
	}
	if pub := ProvideResultPublisher(nil, cfg); pub != nil {
		t.Fatalf("expected no publisher, got %T", pub)
	}
	if kh := ProvideKafkaRecomputeHandler(nil, nil, nil, nil, cfg); kh != nil {
		t.Fatalf("expected no kafka handler")
	}
}
