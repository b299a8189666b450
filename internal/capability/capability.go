// Package capability defines the three host-provided interfaces the core
// engine consumes (spec.md §1, §6): RegistryFetcher, KVStore, and
// DurableStore. The core never imports a concrete infrastructure package
// directly; it only depends on these interfaces, which keeps
// internal/{catalog,cache,registry,aggregator,orchestrator} testable with
// in-memory fakes and swappable in production for Redis/Postgres/HTTP
// registry clients.
package capability

import (
	"context"
	"time"

	"github.com/ingredient-intel/iie/internal/domain/ingredient"
	"github.com/ingredient-intel/iie/internal/domain/safety"
)

// KVStore is the byte-oriented get/set/delete-with-TTL capability backing
// the Cache Hierarchy's L2 tier (spec.md §1, §4.3).
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// DurableStore is the ingredient-row upsert/scan capability backing the
// Local Catalog's persistence (spec.md §1, §4.2, §6), plus a generic
// byte-with-TTL row operation backing the Cache Hierarchy's L3 tier
// (spec.md §4.3). The two concerns share one capability/connection because
// both are "durable storage owned by the host", but they address disjoint
// tables (`safety_profiles` vs `cache_entries`) — see DESIGN.md for the
// Open Question this resolves.
type DurableStore interface {
	UpsertProfile(ctx context.Context, profile *safety.SafetyProfile) error
	LoadAllProfiles(ctx context.Context) ([]*safety.SafetyProfile, error)
	DeleteProfile(ctx context.Context, name ingredient.CanonicalName) error

	GetCacheEntry(ctx context.Context, key string) ([]byte, bool, error)
	SetCacheEntry(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteCacheEntry(ctx context.Context, key string) error
}

// RegistryFetcher is a per-ingredient lookup capability against one named
// external registry (spec.md §1, §4.5).
type RegistryFetcher interface {
	RegistryID() safety.RegistryID
	Fetch(ctx context.Context, name ingredient.CanonicalName) (*safety.RegistryFragment, error)
}
