// Package config provides configuration loading, defaults, and validation for
// the Ingredient Intelligence Engine.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort  = 8080
	DefaultServerMode  = "debug"
	DefaultMetricsPort = 9090

	DefaultDBHost        = "localhost"
	DefaultDBPort        = 5432
	DefaultDBName        = "iie"
	DefaultDBMaxConns    = 25
	DefaultMigrationPath = "file://internal/infrastructure/durable/migrations"

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultWorkerConcurrency = 10

	DefaultRegistryMaxConcurrentCalls = 8
	DefaultRegistryFetchDeadline      = 15 * time.Second
	DefaultRegistryTimeout            = 5 * time.Second
	DefaultRegistryQueueDepth         = 32

	DefaultResilienceFailureThreshold    = 5
	DefaultResilienceSuccessThreshold    = 2
	DefaultResilienceOpenTimeout         = 30 * time.Second
	DefaultResilienceHalfOpenMaxCalls    = 3
	DefaultResilienceRetryMaxAttempts    = 3
	DefaultResilienceRetryBaseDelay      = 200 * time.Millisecond
	DefaultResilienceRetryMaxDelay       = 5 * time.Second
	DefaultResilienceRetryStrategy       = "exponential"
	DefaultResilienceRetryJitterFraction = 0.2

	DefaultCatalogFuzzyMatchThreshold = 0.82

	DefaultEmbeddingMaxVocabSize    = 4096
	DefaultEmbeddingMinDocFrequency = 2
	DefaultEmbeddingPCADimensions   = 32
	DefaultEmbeddingKMeansClusters  = 16
	DefaultEmbeddingKMeansMaxIters  = 100
	DefaultEmbeddingRebuildInterval = 6 * time.Hour
)

// defaultRegistryEndpoints mirrors the preconfigured registry defaults
// carried forward from the resilience client factories: FDA, EWG, and
// PubChem ship ready-to-use, the remaining registries are present but
// disabled until an operator supplies credentials or confirms scraping is
// permitted.
func defaultRegistryEndpoints() []RegistryEndpointConfig {
	return []RegistryEndpointConfig{
		{Name: "fda", BaseURL: "https://api.fda.gov", Timeout: 10 * time.Second, Weight: 0.30, Enabled: true, UserAgent: "iie-fetcher/1.0"},
		{Name: "ewg", BaseURL: "https://www.ewg.org/skindeep", Timeout: 8 * time.Second, Weight: 0.25, Enabled: true, UserAgent: "iie-fetcher/1.0"},
		{Name: "pubchem", BaseURL: "https://pubchem.ncbi.nlm.nih.gov/rest/pug", Timeout: 10 * time.Second, Weight: 0.0, Enabled: true, UserAgent: "iie-fetcher/1.0"},
		{Name: "cir", BaseURL: "https://www.cir-safety.org", Timeout: 8 * time.Second, Weight: 0.20, Enabled: false, UserAgent: "iie-fetcher/1.0"},
		{Name: "sccs", BaseURL: "https://ec.europa.eu/health/scientific_committees/consumer_safety", Timeout: 8 * time.Second, Weight: 0.15, Enabled: false, UserAgent: "iie-fetcher/1.0"},
		{Name: "iccr", BaseURL: "https://www.iccr-cosmetics.org", Timeout: 8 * time.Second, Weight: 0.10, Enabled: false, UserAgent: "iie-fetcher/1.0"},
		{Name: "incibeauty", BaseURL: "https://incibeauty.com", Timeout: 8 * time.Second, Weight: 0.0, Enabled: false, UserAgent: "iie-fetcher/1.0"},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ApplyDefaults fills zero-value fields in cfg with well-known defaults.
// It must be called after unmarshalling raw config data and before Validate()
// so that optional-but-defaulted fields are never seen as missing.
// ─────────────────────────────────────────────────────────────────────────────

// ApplyDefaults fills every zero-value field in cfg with the platform default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.MetricsPort == 0 {
		cfg.Server.MetricsPort = DefaultMetricsPort
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = DefaultMigrationPath
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	// DB is an int; 0 is a valid explicit value so we cannot distinguish "not
	// set" from "set to 0".  We leave it as-is (0 is also the default).

	// ── Registry ──────────────────────────────────────────────────────────────
	if len(cfg.Registry.Endpoints) == 0 {
		cfg.Registry.Endpoints = defaultRegistryEndpoints()
	}
	if cfg.Registry.MaxConcurrentCalls == 0 {
		cfg.Registry.MaxConcurrentCalls = DefaultRegistryMaxConcurrentCalls
	}
	if cfg.Registry.FetchDeadline == 0 {
		cfg.Registry.FetchDeadline = DefaultRegistryFetchDeadline
	}
	if cfg.Registry.QueueDepth == 0 {
		cfg.Registry.QueueDepth = DefaultRegistryQueueDepth
	}

	// ── Resilience ────────────────────────────────────────────────────────────
	if cfg.Resilience.FailureThreshold == 0 {
		cfg.Resilience.FailureThreshold = DefaultResilienceFailureThreshold
	}
	if cfg.Resilience.SuccessThreshold == 0 {
		cfg.Resilience.SuccessThreshold = DefaultResilienceSuccessThreshold
	}
	if cfg.Resilience.OpenTimeout == 0 {
		cfg.Resilience.OpenTimeout = DefaultResilienceOpenTimeout
	}
	if cfg.Resilience.HalfOpenMaxCalls == 0 {
		cfg.Resilience.HalfOpenMaxCalls = DefaultResilienceHalfOpenMaxCalls
	}
	if cfg.Resilience.RetryMaxAttempts == 0 {
		cfg.Resilience.RetryMaxAttempts = DefaultResilienceRetryMaxAttempts
	}
	if cfg.Resilience.RetryBaseDelay == 0 {
		cfg.Resilience.RetryBaseDelay = DefaultResilienceRetryBaseDelay
	}
	if cfg.Resilience.RetryMaxDelay == 0 {
		cfg.Resilience.RetryMaxDelay = DefaultResilienceRetryMaxDelay
	}
	if cfg.Resilience.RetryStrategy == "" {
		cfg.Resilience.RetryStrategy = DefaultResilienceRetryStrategy
	}
	if cfg.Resilience.RetryJitterFraction == 0 {
		cfg.Resilience.RetryJitterFraction = DefaultResilienceRetryJitterFraction
	}

	// ── Catalog ───────────────────────────────────────────────────────────────
	if cfg.Catalog.FuzzyMatchThreshold == 0 {
		cfg.Catalog.FuzzyMatchThreshold = DefaultCatalogFuzzyMatchThreshold
	}

	// ── Embedding ─────────────────────────────────────────────────────────────
	if cfg.Embedding.MaxVocabSize == 0 {
		cfg.Embedding.MaxVocabSize = DefaultEmbeddingMaxVocabSize
	}
	if cfg.Embedding.MinDocFrequency == 0 {
		cfg.Embedding.MinDocFrequency = DefaultEmbeddingMinDocFrequency
	}
	if cfg.Embedding.PCADimensions == 0 {
		cfg.Embedding.PCADimensions = DefaultEmbeddingPCADimensions
	}
	if cfg.Embedding.KMeansClusters == 0 {
		cfg.Embedding.KMeansClusters = DefaultEmbeddingKMeansClusters
	}
	if cfg.Embedding.KMeansMaxIters == 0 {
		cfg.Embedding.KMeansMaxIters = DefaultEmbeddingKMeansMaxIters
	}
	if cfg.Embedding.RebuildInterval == 0 {
		cfg.Embedding.RebuildInterval = DefaultEmbeddingRebuildInterval
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.Mode == "" {
		cfg.Worker.Mode = "local"
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
