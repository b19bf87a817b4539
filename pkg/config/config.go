package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"PriceSim/internal/domain/models"
	"PriceSim/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		SlowThreshold   time.Duration `yaml:"slow_threshold"`
		CORS            bool          `yaml:"cors"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Logging struct {
		Level      string `yaml:"level"`
		Format     string `yaml:"format"`
		Output     string `yaml:"output"`
		TimeFormat string `yaml:"time_format"`
		Collector  struct {
			Enabled        bool          `yaml:"enabled"`
			Topic          string        `yaml:"topic"`
			Interval       time.Duration `yaml:"interval"`
			CountThreshold int           `yaml:"count_threshold"`
			MinLevel       string        `yaml:"min_level"`
		} `yaml:"collector"`
	} `yaml:"logging"`
	Pricing struct {
		DomainPolicy string  `yaml:"domain_policy"`
		Weeks        int     `yaml:"weeks"`
		MaxHorizon   int     `yaml:"max_horizon"`
		Defaults     Preset  `yaml:"defaults"`
		WebSocket    WSLimit `yaml:"websocket"`
	} `yaml:"pricing"`
	Batch struct {
		Workers        int   `yaml:"workers"`
		MaxUploadBytes int64 `yaml:"max_upload_bytes"`
		MaxRows        int   `yaml:"max_rows"`
	} `yaml:"batch"`
	Session struct {
		Backend      string        `yaml:"backend"`
		TTL          time.Duration `yaml:"ttl"`
		MemoryMaxLen int           `yaml:"memory_max_len"`
	} `yaml:"session"`
	Redis struct {
		URL      string `yaml:"url"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		RequestTopic string   `yaml:"request_topic"`
		ResultTopic  string   `yaml:"result_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
}

// Preset is the parameter set a fresh simulation form starts from.
type Preset struct {
	CurrentPrice float64          `yaml:"current_price" json:"current_price"`
	Signals      models.SignalSet `yaml:"signals" json:"signals"`
	Template     models.Template  `yaml:"template" json:"template"`
}

// WSLimit bounds how fast a single websocket client may request reruns.
type WSLimit struct {
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
}

// DefaultPreset returns the values the simulation form opens with.
func DefaultPreset() Preset {
	return Preset{
		CurrentPrice: 1000,
		Signals: models.SignalSet{
			Requests: 20, CallTime: 500, WaitingTime: 1500, ActiveDays: 4,
			RepeatRate: 0.5, ApprovalRate: 0.85, PenaltyPoints: 0,
		},
		Template: models.Template{
			AdjustmentFactor: 0.15,
			Weights: models.WeightSet{
				Requests: 0.5, CallTime: 0.5, WaitingTime: 0.6, ActiveDays: 0.6,
				RepeatRate: 0.7, ApprovalRate: -0.8, PenaltyPoints: -0.5,
			},
			Thresholds: models.DecreaseThresholds{
				WaitingTime: 180, ActiveDays: 2, ApprovalRate: 0.8,
				CallTime: 1500, PenaltyPoints: 1,
			},
		},
	}
}

// Default returns a configuration that runs without a file: in-memory
// sessions, no Kafka.
func Default() *Config {
	var c Config
	c.Environment = "development"
	c.Server.Host = "0.0.0.0"
	c.Server.Port = 8080
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 30 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Server.SlowThreshold = time.Second
	c.Server.CORS = true
	c.Server.CORSOrigins = []string{"*"}
	c.Metrics.Enabled = true
	c.Metrics.Path = "/metrics"
	c.Logging.Level = "info"
	c.Logging.Format = "console"
	c.Logging.Output = "stdout"
	c.Logging.Collector.Topic = "pricesim.logs"
	c.Logging.Collector.Interval = 30 * time.Second
	c.Logging.Collector.CountThreshold = 100
	c.Logging.Collector.MinLevel = "error"
	c.Pricing.DomainPolicy = "reject"
	c.Pricing.Weeks = 12
	c.Pricing.MaxHorizon = 520
	c.Pricing.Defaults = DefaultPreset()
	c.Pricing.WebSocket = WSLimit{RatePerSecond: 10, Burst: 20}
	c.Batch.Workers = 1
	c.Batch.MaxUploadBytes = 10 << 20
	c.Batch.MaxRows = 100000
	c.Session.Backend = "memory"
	c.Session.TTL = 24 * time.Hour
	c.Session.MemoryMaxLen = 10000
	c.Redis.Host = "localhost"
	c.Redis.Port = 6379
	c.Redis.PoolSize = 10
	c.Redis.Prefix = "pricesim"
	c.Kafka.RequestTopic = "pricesim.recompute.requests"
	c.Kafka.ResultTopic = "pricesim.recompute.results"
	c.Kafka.RequiredAcks = -1
	c.Kafka.Compression = "snappy"
	c.Kafka.Producer.MaxAttempts = 5
	c.Kafka.Producer.Linger = 10 * time.Millisecond
	c.Kafka.Producer.BatchBytes = 1 << 20
	c.Kafka.Producer.BatchSize = 100
	c.Kafka.Producer.WriteTimeout = 10 * time.Second
	c.Kafka.Producer.ReadTimeout = 10 * time.Second
	c.Kafka.Consumer.GroupID = "pricesim-recompute"
	c.Kafka.Consumer.Workers = 4
	c.Kafka.Consumer.BufferSize = 100
	c.Kafka.Consumer.RetryMax = 3
	c.Kafka.Consumer.BackoffMin = 100 * time.Millisecond
	c.Kafka.Consumer.BackoffMax = 5 * time.Second
	c.Kafka.Consumer.MinBytes = 1
	c.Kafka.Consumer.MaxBytes = 10 << 20
	return &c
}

// Load reads and parses a YAML configuration file on top of Default.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// An empty path starts from Default.
func LoadWithEnv(path string) (*Config, error) {
	c := Default()
	if path != "" {
		var err error
		if c, err = Load(path); err != nil {
			return nil, err
		}
	}

	// Override with environment variables
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	c.Server.Port = util.ParseIntDefault(os.Getenv("SERVER_PORT"), c.Server.Port)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = util.SplitList(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DOMAIN_POLICY"); v != "" {
		c.Pricing.DomainPolicy = v
	}
	c.Batch.Workers = util.ParseIntDefault(os.Getenv("BATCH_WORKERS"), c.Batch.Workers)
	if v := os.Getenv("SESSION_BACKEND"); v != "" {
		c.Session.Backend = v
	}
	c.Session.TTL = util.ParseDurationDefault(os.Getenv("SESSION_TTL"), c.Session.TTL)
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	c.Redis.Port = util.ParseIntDefault(os.Getenv("REDIS_PORT"), c.Redis.Port)
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	c.Kafka.Enabled = util.ParseBoolDefault(os.Getenv("KAFKA_ENABLED"), c.Kafka.Enabled)
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitList(v)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	switch c.Pricing.DomainPolicy {
	case "", "reject", "clamp", "allow":
	default:
		return fmt.Errorf("pricing.domain_policy must be 'reject', 'clamp' or 'allow', got '%s'", c.Pricing.DomainPolicy)
	}
	if c.Pricing.Weeks < 1 {
		return fmt.Errorf("pricing.weeks must be at least 1")
	}
	if c.Pricing.MaxHorizon < c.Pricing.Weeks {
		return fmt.Errorf("pricing.max_horizon must be >= pricing.weeks")
	}
	if c.Pricing.Defaults.CurrentPrice <= 0 {
		return fmt.Errorf("pricing.defaults.current_price must be positive")
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be at least 1")
	}
	if c.Batch.MaxUploadBytes <= 0 {
		return fmt.Errorf("batch.max_upload_bytes must be positive")
	}
	if c.Session.Backend != "memory" && c.Session.Backend != "redis" && c.Session.Backend != "layered" {
		return fmt.Errorf("session.backend must be 'memory', 'redis' or 'layered', got '%s'", c.Session.Backend)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
		}
		if c.Kafka.RequestTopic == "" || c.Kafka.ResultTopic == "" {
			return fmt.Errorf("kafka.request_topic and kafka.result_topic are required")
		}
	}
	if c.Logging.Collector.Enabled {
		if !c.Kafka.Enabled {
			return fmt.Errorf("logging.collector requires kafka to be enabled")
		}
		if l := c.Logging.Collector.MinLevel; l != "warn" && l != "error" {
			return fmt.Errorf("logging.collector.min_level must be 'warn' or 'error', got '%s'", l)
		}
	}
	return nil
}
