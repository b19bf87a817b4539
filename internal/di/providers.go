package di

import (
	"fmt"
	"time"

	"PriceSim/internal/domain/repository"
	domsvc "PriceSim/internal/domain/service"
	"PriceSim/internal/handler/api"
	internalrepo "PriceSim/internal/repository"
	"PriceSim/internal/service/ratelimit"
	"PriceSim/internal/services/pricing"
	"PriceSim/internal/usecase"
	"PriceSim/pkg/cache"
	"PriceSim/pkg/config"
	xhttp "PriceSim/pkg/http"
	pkgkafka "PriceSim/pkg/kafka"
	applogger "PriceSim/pkg/logger"
	"PriceSim/pkg/metrics"
	"PriceSim/pkg/server"
)

// closeFunc adapts a shutdown step to io.Closer.
type closeFunc func() error

func (f closeFunc) Close() error { return f() }

// ProvideLogger creates the application logger from the logging section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideSessionCache creates the cache backend sessions live in.
func ProvideSessionCache(cfg *config.Config) (cache.Service, error) {
	memory := func() *cache.MemoryCache {
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Session.MemoryMaxLen),
			cache.WithMemoryDefaultTTL(cfg.Session.TTL),
		)
	}
	redisCache := func() (*cache.RedisCache, error) {
		rc, err := cache.NewRedisCache(
			cache.WithRedisURL(cfg.Redis.URL),
			cache.WithRedisAddr(cfg.Redis.Host, cfg.Redis.Port),
			cache.WithRedisAuth(cfg.Redis.Password, cfg.Redis.DB),
			cache.WithRedisPool(cfg.Redis.PoolSize, 2, 30*time.Second),
			cache.WithRedisPrefix(cfg.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return rc, nil
	}

	switch cfg.Session.Backend {
	case "redis":
		rc, err := redisCache()
		if err != nil {
			return nil, err
		}
		return rc, nil
	case "layered":
		rc, err := redisCache()
		if err != nil {
			return nil, err
		}
		return cache.NewLayeredCache(rc,
			cache.WithLayeredMemorySize(cfg.Session.MemoryMaxLen),
			cache.WithLayeredMemoryTTL(5*time.Minute),
		), nil
	default:
		return memory(), nil
	}
}

// ProvideSessionStore stores simulation settings for the batch phase.
func ProvideSessionStore(c cache.Service, cfg *config.Config) repository.SessionStore {
	return internalrepo.NewCacheSessionStore(c, cfg.Session.TTL)
}

// ProvideProjector creates the projection engine with the configured domain policy.
func ProvideProjector(cfg *config.Config) (domsvc.Projector, error) {
	policy, err := pricing.ParseDomainPolicy(cfg.Pricing.DomainPolicy)
	if err != nil {
		return nil, err
	}
	return pricing.NewProjector(policy), nil
}

// ProvideSimulator creates the interactive simulation use case.
func ProvideSimulator(proj domsvc.Projector, sessions repository.SessionStore, m repository.Metrics, cfg *config.Config) *usecase.Simulator {
	return usecase.NewSimulator(proj, sessions, m, cfg.Pricing.Weeks)
}

// ProvideRecomputer creates the batch recomputation use case.
func ProvideRecomputer(proj domsvc.Projector, m repository.Metrics, cfg *config.Config) *usecase.Recomputer {
	return usecase.NewRecomputer(proj, m, cfg.Batch.Workers, cfg.Batch.MaxRows)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideResultPublisher publishes batch results to the result topic.
func ProvideResultPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.ResultPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaResultPublisher(producer, cfg.Kafka.ResultTopic)
}

// ProvideKafkaConsumer creates a Kafka consumer, or nil when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, log *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaRecomputeHandler handles recomputation requests from Kafka.
func ProvideKafkaRecomputeHandler(
	rc *usecase.Recomputer,
	pub repository.ResultPublisher,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.KafkaRecomputeHandler {
	if pub == nil {
		return nil
	}
	return usecase.NewKafkaRecomputeHandler(cfg.Kafka.RequestTopic, rc, pub, m, log)
}

// ProvideHTTPHandlers creates the REST and websocket handlers.
func ProvideHTTPHandlers(log *applogger.Logger, sim *usecase.Simulator, rc *usecase.Recomputer, cfg *config.Config) []xhttp.Handler {
	ws := cfg.Pricing.WebSocket
	return []xhttp.Handler{
		api.NewPricingEchoHandler(log, sim, rc, api.PricingOptions{
			Defaults:       cfg.Pricing.Defaults,
			MaxHorizon:     cfg.Pricing.MaxHorizon,
			MaxUploadBytes: cfg.Batch.MaxUploadBytes,
		}),
		api.NewSimulateWSHandler(log, sim, ratelimit.New(ws.RatePerSecond, ws.Burst)),
	}
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(log *applogger.Logger, handlers []xhttp.Handler, sessionCache cache.Service, cfg *config.Config) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	var checks []xhttp.ServerOption
	if p, ok := sessionCache.(cache.Pinger); ok {
		checks = append(checks, xhttp.WithHealthCheck("session_cache", p.Ping))
	}
	return xhttp.NewServer(log, handlers, append([]xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithCORS(cfg.Server.CORS, cfg.Server.CORSOrigins...),
		xhttp.WithMetricsPath(metricsPath),
	}, checks...)...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	sessionCache cache.Service,
	producer *pkgkafka.Producer,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaRecomputeHandler,
	m repository.Metrics,
) *server.App {
	var handler pkgkafka.MessageHandler
	if consumer != nil && kh != nil {
		consumer.WithConsumerHook(usecase.NewRecomputeHooks(m, log))
		handler = kh
	}

	app := server.New(cfg, log, httpServer, consumer, handler)
	app.OnShutdown("session cache", sessionCache)
	if producer != nil {
		app.OnShutdown("kafka producer", producer)
		if cfg.Logging.Collector.Enabled {
			log.AddCollector(&applogger.CollectionConfig{
				TimeInterval:   cfg.Logging.Collector.Interval,
				CountThreshold: cfg.Logging.Collector.CountThreshold,
				MinLevel:       cfg.Logging.Collector.MinLevel,
				Topic:          cfg.Logging.Collector.Topic,
				Publisher:      producer,
			})
			app.OnShutdown("log collector", closeFunc(func() error {
				log.RemoveCollector()
				return nil
			}))
		}
	}
	return app
}
