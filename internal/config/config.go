package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Tracking      TrackingConfig      `yaml:"tracking"`
	Scoring       ScoringConfig       `yaml:"scoring"`
	ABTest        ABTestConfig        `yaml:"abtest"`
	Worker        WorkerConfig        `yaml:"worker"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds the API listener settings.
type ServerConfig struct {
	Port                int      `yaml:"port"`
	Host                string   `yaml:"host"`
	ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int      `yaml:"write_timeout_seconds"`
	AllowedOrigins      []string `yaml:"allowed_origins"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	return c.Host
}

// Addr returns host:port for http.Server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.GetHost(), c.Port)
}

// DatabaseConfig holds the PostgreSQL connection pool settings.
type DatabaseConfig struct {
	URL                    string `yaml:"url"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// ConnMaxLifetime returns the pool connection lifetime.
func (c DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeMinutes) * time.Minute
}

// RedisConfig holds the Redis connection used for distributed locks.
// An empty URL disables Redis and locks fall back to Postgres.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// TrackingConfig holds open/click tracking settings.
type TrackingConfig struct {
	Port       int    `yaml:"port"`
	BaseURL    string `yaml:"base_url"`
	SigningKey string `yaml:"signing_key"`
	QueueURL   string `yaml:"queue_url"`
	Region     string `yaml:"region"`
	// Endpoint overrides the SQS endpoint (localstack).
	Endpoint string `yaml:"endpoint"`
}

// ScoringConfig holds lead scoring batch limits.
type ScoringConfig struct {
	DefaultTopLimit int `yaml:"default_top_limit"`
	MaxTopLimit     int `yaml:"max_top_limit"`
}

// ABTestConfig holds A/B auto-evaluation settings.
type ABTestConfig struct {
	AutoEvaluate            bool `yaml:"auto_evaluate"`
	EvaluateIntervalSeconds int  `yaml:"evaluate_interval_seconds"`
	MinSampleSize           int  `yaml:"min_sample_size"`
	LockTTLSeconds          int  `yaml:"lock_ttl_seconds"`
}

// EvaluateInterval returns the evaluator tick interval.
func (c ABTestConfig) EvaluateInterval() time.Duration {
	return time.Duration(c.EvaluateIntervalSeconds) * time.Second
}

// LockTTL returns the per-test evaluation lock TTL.
func (c ABTestConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// WorkerConfig holds settings for the background worker process.
type WorkerConfig struct {
	// HealthPort serves the worker's status endpoint.
	HealthPort int `yaml:"health_port"`
}

// ObservabilityConfig holds logging and tracing settings.
type ObservabilityConfig struct {
	Environment   string `yaml:"environment"`
	LogLevel      string `yaml:"log_level"`
	ServiceName   string `yaml:"service_name"`
	TraceExporter string `yaml:"trace_exporter"` // "stdout" or "none"
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = 30
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeMinutes == 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 5
	}
	if cfg.Tracking.Port == 0 {
		cfg.Tracking.Port = 8081
	}
	if cfg.Tracking.Region == "" {
		cfg.Tracking.Region = "us-east-1"
	}
	if cfg.Scoring.DefaultTopLimit == 0 {
		cfg.Scoring.DefaultTopLimit = 10
	}
	if cfg.Scoring.MaxTopLimit == 0 {
		cfg.Scoring.MaxTopLimit = 100
	}
	if cfg.ABTest.EvaluateIntervalSeconds == 0 {
		cfg.ABTest.EvaluateIntervalSeconds = 300
	}
	if cfg.ABTest.MinSampleSize == 0 {
		cfg.ABTest.MinSampleSize = 100
	}
	if cfg.ABTest.LockTTLSeconds == 0 {
		cfg.ABTest.LockTTLSeconds = 120
	}
	if cfg.Worker.HealthPort == 0 {
		cfg.Worker.HealthPort = 8082
	}
	if cfg.Observability.Environment == "" {
		cfg.Observability.Environment = "development"
	}
	if cfg.Observability.LogLevel == "" {
		cfg.Observability.LogLevel = "info"
	}
	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = "travel-crm"
	}
	if cfg.Observability.TraceExporter == "" {
		cfg.Observability.TraceExporter = "none"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file (if present) before reading env vars, so secrets can
// live in .env locally and in real env vars when deployed. A missing config
// file is not an error here: defaults plus environment are enough to run.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = &Config{}
		applyDefaults(cfg)
	} else if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("TRACKING_BASE_URL"); v != "" {
		cfg.Tracking.BaseURL = v
	}
	if v := os.Getenv("TRACKING_SIGNING_KEY"); v != "" {
		cfg.Tracking.SigningKey = v
	}
	if v := os.Getenv("SQS_TRACKING_QUEUE_URL"); v != "" {
		cfg.Tracking.QueueURL = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Tracking.Region = v
	}
	if v := os.Getenv("SQS_ENDPOINT"); v != "" {
		cfg.Tracking.Endpoint = v
	}
	if v := os.Getenv("ABTEST_AUTO_EVALUATE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ABTest.AutoEvaluate = b
		}
	}
	if v := os.Getenv("WORKER_HEALTH_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Worker.HealthPort = p
		}
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("OTEL_EXPORTER"); v != "" {
		cfg.Observability.TraceExporter = v
	}

	return cfg, nil
}

// Validate checks settings the binaries cannot run without.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database url is required (DATABASE_URL)")
	}
	if c.ABTest.MinSampleSize < 1 {
		return fmt.Errorf("abtest.min_sample_size must be positive, got %d", c.ABTest.MinSampleSize)
	}
	if c.ABTest.EvaluateIntervalSeconds < 1 {
		return fmt.Errorf("abtest.evaluate_interval_seconds must be positive, got %d", c.ABTest.EvaluateIntervalSeconds)
	}
	if c.ABTest.LockTTLSeconds < 1 {
		return fmt.Errorf("abtest.lock_ttl_seconds must be positive, got %d", c.ABTest.LockTTLSeconds)
	}
	switch c.Observability.TraceExporter {
	case "none", "stdout":
	default:
		return fmt.Errorf("unknown trace exporter %q", c.Observability.TraceExporter)
	}
	return nil
}
