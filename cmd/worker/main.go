// cmd/worker runs the Ingredient Intelligence Engine's background jobs:
// periodic catalog synchronization against the registries and embedding
// space rebuilds, so the HTTP API never pays for either on the request
// path.
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

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/ingredient-intel/iie/internal/aggregator"
	"github.com/ingredient-intel/iie/internal/cache"
	"github.com/ingredient-intel/iie/internal/capability"
	"github.com/ingredient-intel/iie/internal/catalog"
	"github.com/ingredient-intel/iie/internal/config"
	"github.com/ingredient-intel/iie/internal/domain/safety"
	"github.com/ingredient-intel/iie/internal/embedding"
	"github.com/ingredient-intel/iie/internal/infrastructure/database/postgres"
	"github.com/ingredient-intel/iie/internal/infrastructure/database/redis"
	"github.com/ingredient-intel/iie/internal/infrastructure/durable"
	"github.com/ingredient-intel/iie/internal/infrastructure/kv"
	"github.com/ingredient-intel/iie/internal/infrastructure/monitoring/logging"
	"github.com/ingredient-intel/iie/internal/infrastructure/monitoring/prometheus"
	"github.com/ingredient-intel/iie/internal/registry"
)

const (
	defaultConfigPath = "configs/config.yaml"
	// staleAfter is how old a profile's LastUpdated must be before the
	// sync loop re-fetches it from the registries.
	staleAfter = 7 * 24 * time.Hour
)

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
	logger = logger.Named("worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	durableStore := durable.NewPostgresStore(pool)
	kvStore := kv.NewRedisStore(redisCache)

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "iie",
		Subsystem:            "worker",
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
	}, kvStore, durableStore, prometheus.NewCacheMetrics(appMetrics))

	cat, err := catalog.NewSeeded(durableStore)
	if err != nil {
		logger.Fatal("failed to seed catalog", logging.Err(err))
	}

	fetchers := registry.BuildTable(registry.DefaultEndpoints(), hierarchy)
	scheduler := registry.NewScheduler(cfg.Registry.MaxConcurrentCalls, registry.DefaultPerRegistryConcurrency(),
		registry.WithQueueDepth(cfg.Registry.QueueDepth),
		registry.WithMetrics(prometheus.NewSchedulerMetricsAdapter(appMetrics, "worker")))

	space := embedding.New(embedding.DefaultConfig())
	space.Build(cat.All())

	concurrency := cfg.Worker.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	heartbeat := cfg.Worker.HeartbeatInterval
	if heartbeat <= 0 {
		heartbeat = time.Minute
	}

	logger.Info("worker started",
		logging.Int("concurrency", concurrency),
		logging.Duration("heartbeat", heartbeat),
	)

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	runCycle(ctx, logger, cat, scheduler, fetchers, space, concurrency)

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker stopping")
			return
		case <-ticker.C:
			runCycle(ctx, logger, cat, scheduler, fetchers, space, concurrency)
		}
	}
}

// runCycle refreshes stale catalog entries from the registries, then
// rebuilds the embedding space from the resulting profile set.
func runCycle(
	ctx context.Context,
	logger logging.Logger,
	cat *catalog.Catalog,
	scheduler *registry.Scheduler,
	fetchers []capability.RegistryFetcher,
	space *embedding.Space,
	concurrency int,
) {
	if err := cat.RefreshFromDurable(ctx); err != nil {
		logger.Warn("catalog refresh from durable store failed", logging.Err(err))
	}

	var stale []*safety.SafetyProfile
	for _, p := range cat.All() {
		if time.Since(p.LastUpdated) > staleAfter {
			stale = append(stale, p)
		}
	}
	if len(stale) == 0 {
		logger.Debug("no stale catalog entries")
	} else {
		logger.Info("syncing stale catalog entries", logging.Int("count", len(stale)))
		syncStale(ctx, logger, cat, scheduler, fetchers, stale, concurrency)
	}

	space.Build(cat.All())
	logger.Info("embedding space rebuilt", logging.Int("profiles", cat.Size()))
}

// syncStale re-fetches each stale profile from the registries, bounded by
// concurrency, and upserts the refreshed aggregate back into the catalog.
func syncStale(
	ctx context.Context,
	logger logging.Logger,
	cat *catalog.Catalog,
	scheduler *registry.Scheduler,
	fetchers []capability.RegistryFetcher,
	stale []*safety.SafetyProfile,
	concurrency int,
) {
	sem := semaphore.NewWeighted(int64(concurrency))
	group, gctx := errgroup.WithContext(ctx)

	for _, profile := range stale {
		profile := profile
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		group.Go(func() error {
			defer sem.Release(1)

			results := scheduler.FetchAll(gctx, profile.CanonicalName, fetchers)
			fragments := make([]*safety.RegistryFragment, 0, len(results))
			for _, res := range results {
				if res.Err != nil || res.Fragment == nil {
					continue
				}
				fragments = append(fragments, res.Fragment)
			}
			if len(fragments) == 0 {
				return nil
			}

			refreshed := aggregator.Aggregate(profile.CanonicalName, fragments)
			if err := cat.Upsert(gctx, refreshed); err != nil {
				logger.Warn("failed to upsert refreshed profile",
					logging.Ingredient(string(profile.CanonicalName)),
					logging.Err(err),
				)
			}
			return nil
		})
	}

	_ = group.Wait()
}

// serveMetrics runs the Prometheus scrape endpoint for the worker process,
// on its own port so it can be scraped independently of the API server.
func serveMetrics(logger logging.Logger, port int, collector prometheus.MetricsCollector) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	logger.Info("starting metrics server", logging.Int("port", port))
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
		logger.Error("metrics server stopped with error", logging.Err(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

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
