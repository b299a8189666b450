// cmd/apiserver runs the Ingredient Intelligence Engine's HTTP API: name
// normalization, safety analysis, and substitute recommendation over the
// Local Catalog and Cache Hierarchy described in internal/.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ingredient-intel/iie/internal/cache"
	"github.com/ingredient-intel/iie/internal/catalog"
	"github.com/ingredient-intel/iie/internal/config"
	"github.com/ingredient-intel/iie/internal/domain/ingredient"
	"github.com/ingredient-intel/iie/internal/embedding"
	"github.com/ingredient-intel/iie/internal/infrastructure/database/postgres"
	"github.com/ingredient-intel/iie/internal/infrastructure/database/redis"
	"github.com/ingredient-intel/iie/internal/infrastructure/durable"
	"github.com/ingredient-intel/iie/internal/infrastructure/kv"
	"github.com/ingredient-intel/iie/internal/infrastructure/monitoring/logging"
	"github.com/ingredient-intel/iie/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/ingredient-intel/iie/internal/interfaces/http"
	"github.com/ingredient-intel/iie/internal/interfaces/http/middleware"
	"github.com/ingredient-intel/iie/internal/normalize"
	"github.com/ingredient-intel/iie/internal/orchestrator"
	"github.com/ingredient-intel/iie/internal/registry"
	"github.com/ingredient-intel/iie/internal/resilience"
	"github.com/ingredient-intel/iie/internal/substitution"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(toLoggerConfig(cfg.Log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger = logger.Named("apiserver")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.MigrationPath != "" {
		dsn := postgres.MigrationDSN(cfg.Database)
		if err := postgres.RunMigrations(dsn, cfg.Database.MigrationPath); err != nil {
			logger.Fatal("failed to run database migrations", logging.Err(err))
		}
	}

	pool, err := postgres.NewConnectionPool(cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to postgres", logging.Err(err))
	}
	defer pool.Close()

	redisClient, err := redis.NewClient(toRedisConfig(cfg.Redis), logger)
	if err != nil {
		logger.Fatal("failed to connect to redis", logging.Err(err))
	}
	redisCache := redis.NewRedisCache(redisClient, logger)

	if err := checkPostgres(ctx, pool); err != nil {
		logger.Fatal("postgres health check failed", logging.Err(err))
	}
	if err := checkRedis(ctx, redisCache); err != nil {
		logger.Fatal("redis health check failed", logging.Err(err))
	}

	durableStore := durable.NewPostgresStore(pool)
	kvStore := kv.NewRedisStore(redisCache)

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "iie",
		Subsystem:            "apiserver",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		logger.Fatal("failed to initialize metrics collector", logging.Err(err))
	}
	appMetrics := prometheus.NewAppMetrics(collector)
	go serveMetrics(logger, cfg.Server.MetricsPort, collector)

	hierarchy := cache.New(cache.Config{
		L1MaxEntries: 10000,
		L1TTL:        5 * time.Minute,
		L2TTL:        24 * time.Hour,
		L3TTL:        0,
	}, kvStore, durableStore, prometheus.NewCacheMetrics(appMetrics))

	cat, err := catalog.NewSeeded(durableStore)
	if err != nil {
		logger.Fatal("failed to seed catalog", logging.Err(err))
	}
	if err := cat.RefreshFromDurable(ctx); err != nil {
		logger.Warn("failed to refresh catalog from durable store", logging.Err(err))
	}

	lex, err := normalize.LoadLexicon()
	if err != nil {
		logger.Fatal("failed to load normalization lexicon", logging.Err(err))
	}
	normalizer := normalize.New(lex, nil)

	taxonomy := bootstrapTaxonomy(cat, lex)

	space := embedding.New(embedding.DefaultConfig())
	space.Build(cat.All())

	fetchers := registry.BuildTable(registry.DefaultEndpoints(), hierarchy)
	scheduler := registry.NewScheduler(cfg.Registry.MaxConcurrentCalls, registry.DefaultPerRegistryConcurrency(),
		registry.WithQueueDepth(cfg.Registry.QueueDepth),
		registry.WithMetrics(prometheus.NewSchedulerMetricsAdapter(appMetrics, "apiserver")))
	resolver := orchestrator.NewResolver(cat, scheduler, fetchers)

	substCache := resilience.NewRequestCache(hierarchy, substitution.CacheTTL)
	substEngine := substitution.New(cat, resolver, taxonomy, space, substCache)
	orch := orchestrator.New(normalizer, cat, resolver, substEngine, orchestrator.DefaultConfig())

	router := httpserver.NewRouter(httpserver.RouterConfig{
		Normalizer:   normalizer,
		Orchestrator: orch,
		Substitution: substEngine,
		Catalog:      cat,
		Logger:       logger,
		CORS:         middleware.DefaultCORSConfig(),
		Logging:      middleware.DefaultLoggingConfig(),
	})

	srv := httpserver.NewServer(httpserver.ServerConfig{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, logger)

	go func() {
		logger.Info("starting HTTP server", logging.Int("port", cfg.Server.Port))
		if err := srv.Start(ctx); err != nil {
			logger.Error("http server stopped with error", logging.Err(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", logging.Err(err))
	}
	logger.Info("server stopped")
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

// toLoggerConfig adapts the config package's LogConfig (parsed from
// config.yaml / IIE_* env vars) to the zap-backed logger's own LogConfig.
func toLoggerConfig(cfg config.LogConfig) logging.LogConfig {
	outputs := []string{"stdout"}
	if cfg.Output != "" && cfg.Output != "stdout" {
		outputs = []string{cfg.Output}
	}
	return logging.LogConfig{
		Level:            cfg.Level,
		Format:           cfg.Format,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
	}
}

// toRedisConfig adapts the config package's standalone RedisConfig to the
// redis client package's richer RedisConfig (which also covers sentinel and
// cluster modes the top-level config doesn't expose).
func toRedisConfig(cfg config.RedisConfig) *redis.RedisConfig {
	return &redis.RedisConfig{
		Mode:         "standalone",
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// serveMetrics runs the Prometheus scrape endpoint on its own port, separate
// from the public API so it can be firewalled off independently.
func serveMetrics(logger logging.Logger, port int, collector prometheus.MetricsCollector) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	logger.Info("starting metrics server", logging.Int("port", port))
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
		logger.Error("metrics server stopped with error", logging.Err(err))
	}
}

// bootstrapTaxonomy assigns every catalog profile to the functional
// categories recorded for it in the normalization lexicon, so the
// substitution engine can filter candidates by category from process
// start without waiting on a registry round trip.
func bootstrapTaxonomy(cat *catalog.Catalog, lex *normalize.Lexicon) *ingredient.Taxonomy {
	taxonomy := ingredient.NewTaxonomy()
	for _, profile := range cat.All() {
		name := string(profile.CanonicalName)
		for _, category := range lex.CategoriesOf(name) {
			taxonomy.Assign(profile.CanonicalName, ingredient.FunctionalCategory(category))
		}
	}
	return taxonomy
}
