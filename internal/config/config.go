// Package config defines all configuration structures for the Ingredient
// Intelligence Engine.  No I/O or parsing logic lives here — only plain data
// types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MetricsPort     int           `mapstructure:"metrics_port"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the Durable
// Store tier of the Cache Hierarchy.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters for the L2 shared-cache tier.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// WorkerConfig holds background-worker execution parameters for the process
// that periodically refreshes the Local Catalog and rebuilds the Embedding
// Space.
type WorkerConfig struct {
	Mode              string        `mapstructure:"mode"` // "local" | "distributed"
	Concurrency       int           `mapstructure:"concurrency"`
	QueueDepth        int           `mapstructure:"queue_depth"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RetryBackoffMS    time.Duration `mapstructure:"retry_backoff_ms"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string `mapstructure:"format"` // "json" | "text"
	Output           string `mapstructure:"output"`
	EnableCaller     bool   `mapstructure:"enable_caller"`
	EnableStacktrace bool   `mapstructure:"enable_stacktrace"`
	SamplingRate     int    `mapstructure:"sampling_rate"`
}

// RegistryEndpointConfig holds the connection parameters for a single
// external safety registry (FDA, EWG, CIR, SCCS, ICCR, PubChem, INCI
// Beauty).  One instance exists per registry in RegistryConfig.Endpoints.
type RegistryEndpointConfig struct {
	Name        string        `mapstructure:"name"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Weight      float64       `mapstructure:"weight"`
	Enabled     bool          `mapstructure:"enabled"`
	UserAgent   string        `mapstructure:"user_agent"`
	MaxBodySize int64         `mapstructure:"max_body_size"`
}

// RegistryConfig holds the set of registry endpoints that the Registry
// Fetchers dial, plus the global ceiling on outbound concurrency shared by
// all of them.
type RegistryConfig struct {
	Endpoints          []RegistryEndpointConfig `mapstructure:"endpoints"`
	MaxConcurrentCalls int                      `mapstructure:"max_concurrent_calls"`
	FetchDeadline      time.Duration            `mapstructure:"fetch_deadline"`

	// QueueDepth bounds how many registry fetches may wait for a free global
	// concurrency slot before the scheduler fails fast with Overloaded. This
	// is orchestrator-internal capacity control, not caller-facing rate
	// limiting.
	QueueDepth int `mapstructure:"queue_depth"`
}

// ResilienceConfig holds the default Circuit Breaker and Retry Policy
// tunables applied to every registry client unless overridden per-registry.
type ResilienceConfig struct {
	FailureThreshold    int           `mapstructure:"failure_threshold"`
	SuccessThreshold    int           `mapstructure:"success_threshold"`
	OpenTimeout         time.Duration `mapstructure:"open_timeout"`
	HalfOpenMaxCalls    int           `mapstructure:"half_open_max_calls"`
	RetryMaxAttempts    int           `mapstructure:"retry_max_attempts"`
	RetryBaseDelay      time.Duration `mapstructure:"retry_base_delay"`
	RetryMaxDelay       time.Duration `mapstructure:"retry_max_delay"`
	RetryStrategy       string        `mapstructure:"retry_strategy"` // "fixed" | "linear" | "exponential"
	RetryJitterFraction float64       `mapstructure:"retry_jitter_fraction"`
}

// CatalogConfig controls the Local Catalog and the Normalizer's lexicon
// loading.
type CatalogConfig struct {
	SeedDataPath       string  `mapstructure:"seed_data_path"`
	LexiconPath        string  `mapstructure:"lexicon_path"`
	FuzzyMatchThreshold float64 `mapstructure:"fuzzy_match_threshold"`
}

// EmbeddingConfig controls the Embedding Space's TF-IDF vectorizer, optional
// PCA reduction, and k-means clustering used for substitution candidate
// pre-filtering.
type EmbeddingConfig struct {
	MaxVocabSize     int           `mapstructure:"max_vocab_size"`
	MinDocFrequency  int           `mapstructure:"min_doc_frequency"`
	PCADimensions    int           `mapstructure:"pca_dimensions"`
	KMeansClusters   int           `mapstructure:"kmeans_clusters"`
	KMeansMaxIters   int           `mapstructure:"kmeans_max_iters"`
	RebuildInterval  time.Duration `mapstructure:"rebuild_interval"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the entire engine.  Every
// infrastructure component and application service reads its settings from
// the relevant sub-struct.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Log        LogConfig        `mapstructure:"log"`
	Registry   RegistryConfig   `mapstructure:"registry"`
	Resilience ResilienceConfig `mapstructure:"resilience"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Embedding  EmbeddingConfig  `mapstructure:"embedding"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Server.MetricsPort < 1 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("config: server.metrics_port %d is out of range [1, 65535]", c.Server.MetricsPort)
	}

	// Database
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be ≥ 1, got %d", c.Database.MaxConns)
	}

	// Redis
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	// Registry
	if len(c.Registry.Endpoints) == 0 {
		return fmt.Errorf("config: registry.endpoints must contain at least one registry")
	}
	if c.Registry.MaxConcurrentCalls < 1 {
		return fmt.Errorf("config: registry.max_concurrent_calls must be ≥ 1, got %d", c.Registry.MaxConcurrentCalls)
	}

	// Resilience
	if c.Resilience.FailureThreshold < 1 {
		return fmt.Errorf("config: resilience.failure_threshold must be ≥ 1, got %d", c.Resilience.FailureThreshold)
	}
	switch c.Resilience.RetryStrategy {
	case "fixed", "linear", "exponential":
	default:
		return fmt.Errorf("config: resilience.retry_strategy %q is invalid; expected fixed|linear|exponential", c.Resilience.RetryStrategy)
	}

	// Worker
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be ≥ 1, got %d", c.Worker.Concurrency)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|text", c.Log.Format)
	}

	return nil
}
