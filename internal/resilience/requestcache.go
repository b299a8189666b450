package resilience

import (
	"context"
	"time"

	"github.com/ingredient-intel/iie/internal/cache"
)

// RequestCache is a thin, GET-only wrapper around the Cache Hierarchy used
// to memoize idempotent registry calls (spec.md §4.4). Callers supply the
// key; the registry fetchers use "<registry_id>:lookup:<canonical_name>".
type RequestCache struct {
	hierarchy *cache.Hierarchy
	ttl       time.Duration
}

// NewRequestCache wraps hierarchy. ttl is stored on the RequestCache but
// Set does not apply it (see Set).
func NewRequestCache(hierarchy *cache.Hierarchy, ttl time.Duration) *RequestCache {
	return &RequestCache{hierarchy: hierarchy, ttl: ttl}
}

// Get returns a previously cached response body for key, if present.
func (r *RequestCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if r == nil || r.hierarchy == nil {
		return nil, false
	}
	return r.hierarchy.Get(ctx, key)
}

// Set stores value under key, always writing through. Entries get the
// Cache Hierarchy's own per-tier TTLs (its Config.L1TTL/L2TTL/L3TTL); the
// ttl passed to NewRequestCache is not used, so registries do not get
// different cache lifetimes.
func (r *RequestCache) Set(ctx context.Context, key string, value []byte) {
	if r == nil || r.hierarchy == nil {
		return
	}
	r.hierarchy.Set(ctx, key, value, cache.WriteThrough)
}
