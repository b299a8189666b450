package prometheus

import "github.com/ingredient-intel/iie/internal/cache"

// cacheMetricsAdapter satisfies cache.Metrics by recording tiered hits and
// misses against the shared CacheHitsTotal/CacheMissesTotal counters, using
// the "cache" label to distinguish L1/L2/L3 and unavailability from a plain
// miss.
type cacheMetricsAdapter struct {
	metrics *AppMetrics
}

// NewCacheMetrics adapts AppMetrics to cache.Metrics so the Cache Hierarchy
// can report tier hits/misses through the same collector as every other
// layer instead of going unobserved.
func NewCacheMetrics(metrics *AppMetrics) cache.Metrics {
	if metrics == nil {
		return nil
	}
	return &cacheMetricsAdapter{metrics: metrics}
}

func (c *cacheMetricsAdapter) IncL1Hit() {
	c.metrics.CacheHitsTotal.WithLabelValues("l1").Inc()
}

func (c *cacheMetricsAdapter) IncL2Hit() {
	c.metrics.CacheHitsTotal.WithLabelValues("l2").Inc()
}

func (c *cacheMetricsAdapter) IncL3Hit() {
	c.metrics.CacheHitsTotal.WithLabelValues("l3").Inc()
}

func (c *cacheMetricsAdapter) IncMiss() {
	c.metrics.CacheMissesTotal.WithLabelValues("all").Inc()
}

func (c *cacheMetricsAdapter) IncL2Unavailable() {
	c.metrics.CacheMissesTotal.WithLabelValues("l2_unavailable").Inc()
}

func (c *cacheMetricsAdapter) IncL3Unavailable() {
	c.metrics.CacheMissesTotal.WithLabelValues("l3_unavailable").Inc()
}
