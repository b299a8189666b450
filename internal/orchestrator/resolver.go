package orchestrator

import (
	"context"

	"github.com/ingredient-intel/iie/internal/aggregator"
	"github.com/ingredient-intel/iie/internal/capability"
	"github.com/ingredient-intel/iie/internal/catalog"
	"github.com/ingredient-intel/iie/internal/domain/ingredient"
	"github.com/ingredient-intel/iie/internal/domain/safety"
	"github.com/ingredient-intel/iie/internal/registry"
)

// Resolver implements substitution.ProfileResolver: it's the "trigger a
// synchronous fetch" referenced by spec.md §4.6 step miss-handling and
// §4.8 step 1 — fan the name out to every registry via the Scheduler,
// aggregate the resulting fragments into a SafetyProfile, and persist it
// to the Local Catalog so subsequent lookups hit in memory.
type Resolver struct {
	catalog   *catalog.Catalog
	scheduler *registry.Scheduler
	fetchers  []capability.RegistryFetcher
}

// NewResolver wires a catalog, scheduler and registry fetcher table into a
// Resolver.
func NewResolver(cat *catalog.Catalog, scheduler *registry.Scheduler, fetchers []capability.RegistryFetcher) *Resolver {
	return &Resolver{catalog: cat, scheduler: scheduler, fetchers: fetchers}
}

// Resolve returns name's SafetyProfile, fetching and aggregating from the
// registries on a catalog miss (spec.md §4.9 step 2: "on miss, enqueue a
// fetch via the Profile Aggregator").
func (r *Resolver) Resolve(ctx context.Context, name ingredient.CanonicalName) (*safety.SafetyProfile, error) {
	if p, ok := r.catalog.Get(name); ok {
		return p, nil
	}

	results := r.scheduler.FetchAll(ctx, name, r.fetchers)
	fragments := make([]*safety.RegistryFragment, 0, len(results))
	for _, res := range results {
		if res.Err != nil || res.Fragment == nil {
			continue
		}
		fragments = append(fragments, res.Fragment)
	}

	profile := aggregator.Aggregate(name, fragments)
	if err := r.catalog.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
