package cache

import (
	"context"
	"time"

	"github.com/ingredient-intel/iie/internal/capability"
)

// WritePolicy controls which tiers a Set call touches and how
// (spec.md §4.3 "Write").
type WritePolicy int

const (
	// WriteThrough writes to every enabled tier synchronously (the
	// default).
	WriteThrough WritePolicy = iota
	// WriteAround skips L1, writing only to L2/L3 -- useful for values
	// unlikely to be re-read soon, avoiding L1 churn.
	WriteAround
	// WriteBack writes to L1 synchronously and propagates to L2/L3 on a
	// best-effort background goroutine -- lowest latency, weakest
	// durability guarantee until the background write lands.
	WriteBack
)

// Metrics receives counters the Cache Hierarchy increments on tier
// degradation, matching spec.md §4.3's "metrics are incremented" failure
// semantics. A nil Metrics is valid; all methods become no-ops.
type Metrics interface {
	IncL2Unavailable()
	IncL3Unavailable()
	IncL1Hit()
	IncL2Hit()
	IncL3Hit()
	IncMiss()
}

type noopMetrics struct{}

func (noopMetrics) IncL2Unavailable() {}
func (noopMetrics) IncL3Unavailable() {}
func (noopMetrics) IncL1Hit()         {}
func (noopMetrics) IncL2Hit()         {}
func (noopMetrics) IncL3Hit()         {}
func (noopMetrics) IncMiss()          {}

// Config tunes the three tiers. A TTL of zero does not disable a tier (only
// a nil l2/l3 passed to New does): a zero L1TTL makes L1 entries expire as
// soon as they are written, and a zero L2TTL/L3TTL is passed to the backend
// unchanged (the in-memory and Postgres stores then keep the entry with no
// expiry; the Redis-backed KV store applies its own default TTL).
type Config struct {
	L1MaxEntries int
	L1TTL        time.Duration
	L2TTL        time.Duration
	L3TTL        time.Duration
}

// Hierarchy is the Cache Hierarchy (spec.md §4.3): L1 in-process LRU, L2
// shared KVStore, L3 DurableStore. Every read failure of L2/L3 degrades
// silently to the next tier; reads never fail because a tier is down.
type Hierarchy struct {
	l1      *l1
	l2      capability.KVStore // nil disables L2
	l3      capability.DurableStore // nil disables L3
	cfg     Config
	metrics Metrics
}

// New constructs a Hierarchy. l2 and l3 may be nil to disable that tier
// entirely (e.g. an offline CLI run with only L1).
func New(cfg Config, l2 capability.KVStore, l3 capability.DurableStore, metrics Metrics) *Hierarchy {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Hierarchy{
		l1:      newL1(cfg.L1MaxEntries, cfg.L1TTL),
		l2:      l2,
		l3:      l3,
		cfg:     cfg,
		metrics: metrics,
	}
}

// Get implements spec.md §4.3's read order: L1 -> L2 (promote to L1 on hit)
// -> L3 (promote to L1 and L2 on hit) -> not-found. L2/L3 errors degrade
// silently to the next tier.
func (h *Hierarchy) Get(ctx context.Context, key string) ([]byte, bool) {
	if v, ok := h.l1.get(key); ok {
		h.metrics.IncL1Hit()
		return v, true
	}

	if h.l2 != nil {
		if v, ok, err := h.l2.Get(ctx, key); err == nil && ok {
			h.metrics.IncL2Hit()
			h.l1.set(key, v, h.cfg.L1TTL)
			return v, true
		} else if err != nil {
			h.metrics.IncL2Unavailable()
		}
	}

	if h.l3 != nil {
		if v, ok, err := h.l3.GetCacheEntry(ctx, key); err == nil && ok {
			h.metrics.IncL3Hit()
			h.l1.set(key, v, h.cfg.L1TTL)
			if h.l2 != nil {
				_ = h.l2.Set(ctx, key, v, h.cfg.L2TTL)
			}
			return v, true
		} else if err != nil {
			h.metrics.IncL3Unavailable()
		}
	}

	h.metrics.IncMiss()
	return nil, false
}

// Set writes key/value according to policy (default WriteThrough).
func (h *Hierarchy) Set(ctx context.Context, key string, value []byte, policy WritePolicy) {
	switch policy {
	case WriteAround:
		h.writeL2L3(ctx, key, value)
	case WriteBack:
		h.l1.set(key, value, h.cfg.L1TTL)
		go h.writeL2L3(context.Background(), key, value)
	default: // WriteThrough
		h.l1.set(key, value, h.cfg.L1TTL)
		h.writeL2L3(ctx, key, value)
	}
}

func (h *Hierarchy) writeL2L3(ctx context.Context, key string, value []byte) {
	if h.l2 != nil {
		if err := h.l2.Set(ctx, key, value, h.cfg.L2TTL); err != nil {
			h.metrics.IncL2Unavailable()
		}
	}
	if h.l3 != nil {
		if err := h.l3.SetCacheEntry(ctx, key, value, h.cfg.L3TTL); err != nil {
			h.metrics.IncL3Unavailable()
		}
	}
}

// Delete clears key from every tier (spec.md §4.3 Invalidation). Best
// effort on L2/L3: a failure there does not prevent the L1 delete from
// taking effect.
func (h *Hierarchy) Delete(ctx context.Context, key string) {
	h.l1.delete(key)
	if h.l2 != nil {
		_ = h.l2.Delete(ctx, key)
	}
	if h.l3 != nil {
		_ = h.l3.DeleteCacheEntry(ctx, key)
	}
}

// L1Size reports the current L1 entry count, surfaced by /health
// (spec.md §6).
func (h *Hierarchy) L1Size() int { return h.l1.size() }

// L2Available reports whether an L2 backend is configured.
func (h *Hierarchy) L2Available() bool { return h.l2 != nil }

// L3Available reports whether an L3 backend is configured.
func (h *Hierarchy) L3Available() bool { return h.l3 != nil }
