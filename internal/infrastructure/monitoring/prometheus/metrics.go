package prometheus

import (
	"fmt"
	"time"
)

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// HTTP Layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPRequestSize     HistogramVec
	HTTPResponseSize    HistogramVec
	HTTPActiveRequests  GaugeVec

	// Normalization Layer
	NormalizeRequestsTotal CounterVec
	NormalizeDuration      HistogramVec
	NormalizeSkippedTotal  CounterVec

	// Catalog Layer
	CatalogLookupsTotal    CounterVec
	CatalogFuzzyFallbacks  CounterVec
	CatalogSize            GaugeVec

	// Registry / Resilience Layer
	RegistryCallsTotal     CounterVec
	RegistryCallDuration   HistogramVec
	CircuitBreakerState    GaugeVec
	CircuitBreakerTrips    CounterVec
	RetryAttemptsTotal     CounterVec

	// Aggregation Layer
	AggregationDuration    HistogramVec
	AggregationFragments   HistogramVec

	// Embedding / Substitution Layer
	EmbeddingRebuildDuration HistogramVec
	EmbeddingRebuildTotal    CounterVec
	SubstitutionQueriesTotal CounterVec
	SubstitutionDuration     HistogramVec
	SubstitutionCandidates   HistogramVec

	// Orchestrator Layer
	AnalysisTasksTotal     CounterVec
	AnalysisTaskDuration   HistogramVec
	AnalysisQueueDepth     GaugeVec
	AnalysisActiveWorkers  GaugeVec
	AnalysisOverloadTotal  CounterVec

	// Infrastructure Layer
	DBConnectionPoolSize   GaugeVec
	DBConnectionPoolActive GaugeVec
	DBQueryDuration        HistogramVec
	CacheHitsTotal         CounterVec
	CacheMissesTotal       CounterVec
	MessageQueueDepth      GaugeVec
	MessageProcessDuration HistogramVec

	// System Health
	ServiceUptime     GaugeVec
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default Buckets
var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultAnalysisDurationBuckets = []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600}
	DefaultRegistryDurationBuckets = []float64{.05, .1, .25, .5, 1, 2, 5, 10, 15}
	DefaultSizeBuckets             = []float64{100, 1000, 10000, 100000, 1000000, 10000000}
	DefaultDBDurationBuckets       = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewAppMetrics registers all metrics and returns AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPRequestSize = collector.RegisterHistogram("http_request_size_bytes", "HTTP request size", DefaultSizeBuckets, "method", "path")
	m.HTTPResponseSize = collector.RegisterHistogram("http_response_size_bytes", "HTTP response size", DefaultSizeBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	// Normalization
	m.NormalizeRequestsTotal = collector.RegisterCounter("normalize_requests_total", "Ingredient name normalization requests", "status")
	m.NormalizeDuration = collector.RegisterHistogram("normalize_duration_seconds", "Ingredient name normalization duration", DefaultHTTPDurationBuckets)
	m.NormalizeSkippedTotal = collector.RegisterCounter("normalize_skipped_total", "Raw tokens skipped as measurement words or empty", "reason")

	// Catalog
	m.CatalogLookupsTotal = collector.RegisterCounter("catalog_lookups_total", "Local catalog lookups", "result")
	m.CatalogFuzzyFallbacks = collector.RegisterCounter("catalog_fuzzy_fallbacks_total", "Lookups that fell back to fuzzy matching")
	m.CatalogSize = collector.RegisterGauge("catalog_size", "Number of ingredients in the local catalog")

	// Registry / Resilience
	m.RegistryCallsTotal = collector.RegisterCounter("registry_calls_total", "Registry fetcher calls", "registry", "outcome")
	m.RegistryCallDuration = collector.RegisterHistogram("registry_call_duration_seconds", "Registry fetcher call duration", DefaultRegistryDurationBuckets, "registry")
	m.CircuitBreakerState = collector.RegisterGauge("circuit_breaker_state", "Circuit breaker state (0=closed,1=half_open,2=open)", "registry")
	m.CircuitBreakerTrips = collector.RegisterCounter("circuit_breaker_trips_total", "Circuit breaker transitions to open", "registry")
	m.RetryAttemptsTotal = collector.RegisterCounter("retry_attempts_total", "Retry attempts issued by the resilience layer", "registry", "outcome")

	// Aggregation
	m.AggregationDuration = collector.RegisterHistogram("aggregation_duration_seconds", "Profile aggregation duration", DefaultHTTPDurationBuckets)
	m.AggregationFragments = collector.RegisterHistogram("aggregation_fragment_count", "Registry fragments folded per aggregation", []float64{0, 1, 2, 3, 4, 5, 6, 7})

	// Embedding / Substitution
	m.EmbeddingRebuildDuration = collector.RegisterHistogram("embedding_rebuild_duration_seconds", "Embedding space rebuild duration", DefaultAnalysisDurationBuckets)
	m.EmbeddingRebuildTotal = collector.RegisterCounter("embedding_rebuild_total", "Embedding space rebuilds", "status")
	m.SubstitutionQueriesTotal = collector.RegisterCounter("substitution_queries_total", "Substitution candidate queries", "status")
	m.SubstitutionDuration = collector.RegisterHistogram("substitution_duration_seconds", "Substitution candidate query duration", DefaultHTTPDurationBuckets)
	m.SubstitutionCandidates = collector.RegisterHistogram("substitution_candidate_count", "Candidates returned per substitution query", []float64{0, 1, 3, 5, 10, 20, 50})

	// Orchestrator
	m.AnalysisTasksTotal = collector.RegisterCounter("analysis_tasks_total", "Analysis tasks total", "type", "status")
	m.AnalysisTaskDuration = collector.RegisterHistogram("analysis_task_duration_seconds", "Analysis task duration", DefaultAnalysisDurationBuckets, "type")
	m.AnalysisQueueDepth = collector.RegisterGauge("analysis_queue_depth", "Analysis backpressure queue depth", "priority")
	m.AnalysisActiveWorkers = collector.RegisterGauge("analysis_active_workers", "Active analysis fan-out slots in use")
	m.AnalysisOverloadTotal = collector.RegisterCounter("analysis_overload_total", "Requests rejected due to orchestrator backpressure")

	// Infrastructure
	m.DBConnectionPoolSize = collector.RegisterGauge("db_pool_size", "Database connection pool size", "db")
	m.DBConnectionPoolActive = collector.RegisterGauge("db_pool_active", "Database active connections", "db")
	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "db", "operation")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.MessageQueueDepth = collector.RegisterGauge("mq_depth", "Message queue depth", "queue")
	m.MessageProcessDuration = collector.RegisterHistogram("mq_process_duration_seconds", "Message processing duration", DefaultHTTPDurationBuckets, "queue", "message_type")

	// System Health
	m.ServiceUptime = collector.RegisterGauge("service_uptime_seconds", "Service uptime", "service")
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type", "severity")

	return m
}

// RegisterAppMetrics is an alias for NewAppMetrics.
func RegisterAppMetrics(collector MetricsCollector) *AppMetrics {
	return NewAppMetrics(collector)
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration, reqSize, respSize int64) {
	status := fmt.Sprintf("%d", statusCode)
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	metrics.HTTPRequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	metrics.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

func RecordRegistryCall(metrics *AppMetrics, registry, outcome string, duration time.Duration) {
	metrics.RegistryCallsTotal.WithLabelValues(registry, outcome).Inc()
	metrics.RegistryCallDuration.WithLabelValues(registry).Observe(duration.Seconds())
}

func RecordCircuitBreakerTrip(metrics *AppMetrics, registry string) {
	metrics.CircuitBreakerTrips.WithLabelValues(registry).Inc()
}

func RecordDBQuery(metrics *AppMetrics, db, operation string, duration time.Duration, err error) {
	metrics.DBQueryDuration.WithLabelValues(db, operation).Observe(duration.Seconds())
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues(db, "query_error", "error").Inc()
	}
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordError(metrics *AppMetrics, component, errorType, severity string) {
	metrics.ErrorsTotal.WithLabelValues(component, errorType, severity).Inc()
}

// SchedulerMetricsAdapter reports registry scheduler backpressure onto
// AnalysisQueueDepth and AnalysisOverloadTotal. It satisfies
// registry.SchedulerMetrics structurally, so the registry package never
// needs to import prometheus.
type SchedulerMetricsAdapter struct {
	metrics  *AppMetrics
	priority string
}

// NewSchedulerMetricsAdapter builds an adapter that labels every queue-depth
// sample with priority, matching AnalysisQueueDepth's "priority" label.
func NewSchedulerMetricsAdapter(metrics *AppMetrics, priority string) *SchedulerMetricsAdapter {
	if priority == "" {
		priority = "default"
	}
	return &SchedulerMetricsAdapter{metrics: metrics, priority: priority}
}

func (a *SchedulerMetricsAdapter) SetQueueDepth(waiting int) {
	a.metrics.AnalysisQueueDepth.WithLabelValues(a.priority).Set(float64(waiting))
}

func (a *SchedulerMetricsAdapter) IncOverloaded() {
	a.metrics.AnalysisOverloadTotal.WithLabelValues().Inc()
}
