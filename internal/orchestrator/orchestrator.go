// Package orchestrator implements the Analysis Orchestrator (spec.md
// §4.9): normalize raw ingredient strings, resolve each to a SafetyProfile
// (in parallel, bounded), flag problematic ingredients, and attach
// substitution recommendations. Bounded fan-out uses
// golang.org/x/sync/errgroup + semaphore, matching the teacher's
// errgroup-based batch orchestration in risk_assessment.go.
package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/ingredient-intel/iie/internal/domain"
	"github.com/ingredient-intel/iie/internal/domain/ingredient"
	"github.com/ingredient-intel/iie/internal/domain/safety"
	domainsub "github.com/ingredient-intel/iie/internal/domain/substitution"
	"github.com/ingredient-intel/iie/internal/normalize"
)

// DefaultFetchConcurrency bounds how many profile resolutions run at once
// within a single Analyze call (spec.md §4.9 step 2: "parallelized across
// a bounded pool").
const DefaultFetchConcurrency = 8

// DefaultSubstitutionK is the default number of substitutes requested per
// problematic ingredient (spec.md §4.9 step 5).
const DefaultSubstitutionK = 5

// Catalog is the subset of the Local Catalog's contract the orchestrator
// needs.
type Catalog interface {
	Get(name ingredient.CanonicalName) (*safety.SafetyProfile, bool)
}

// Resolver obtains a profile for a canonical name not already in the
// catalog. *orchestrator.Resolver and substitution.ProfileResolver share
// this shape.
type Resolver interface {
	Resolve(ctx context.Context, name ingredient.CanonicalName) (*safety.SafetyProfile, error)
}

// SubstitutionFinder is the subset of substitution.Engine's contract the
// orchestrator needs.
type SubstitutionFinder interface {
	FindSubstitutes(ctx context.Context, target ingredient.CanonicalName, userConditions []string, k int) ([]*domainsub.Candidate, error)
}

// Orchestrator implements analyze(raws, user_conditions) → Analysis.
type Orchestrator struct {
	normalizer  *normalize.Normalizer
	catalog     Catalog
	resolver    Resolver
	substitutes SubstitutionFinder

	fetchConcurrency int
	substitutionK    int
}

// Config tunes the orchestrator's bounded fan-out and substitution depth.
type Config struct {
	FetchConcurrency int
	SubstitutionK    int
}

// DefaultConfig returns spec-mandated defaults (8-way fetch fan-out, 5
// substitutes per problematic ingredient).
func DefaultConfig() Config {
	return Config{FetchConcurrency: DefaultFetchConcurrency, SubstitutionK: DefaultSubstitutionK}
}

// New builds an Orchestrator from its four collaborators.
func New(normalizer *normalize.Normalizer, catalog Catalog, resolver Resolver, substitutes SubstitutionFinder, cfg Config) *Orchestrator {
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = DefaultFetchConcurrency
	}
	if cfg.SubstitutionK <= 0 {
		cfg.SubstitutionK = DefaultSubstitutionK
	}
	return &Orchestrator{
		normalizer:       normalizer,
		catalog:          catalog,
		resolver:         resolver,
		substitutes:      substitutes,
		fetchConcurrency: cfg.FetchConcurrency,
		substitutionK:    cfg.SubstitutionK,
	}
}

// Analyze implements spec.md §4.9's six steps. Safe for concurrent use; no
// lock is held across any network I/O step.
func (o *Orchestrator) Analyze(ctx context.Context, raws []ingredient.RawName, userConditions []string) (*domain.Analysis, error) {
	canonicalNames, rawByCanonical := o.normalizeAndDedupe(raws)

	perIngredient := make([]domain.IngredientResult, len(canonicalNames))
	profiles := make([]*safety.SafetyProfile, len(canonicalNames))

	// A deadline firing mid-fan-out is not a failure: whatever profiles
	// resolved before the cutoff still produce a usable Analysis, marked
	// Partial so callers can distinguish it from a complete one instead of
	// failing the whole request.
	partial := false
	if err := o.fetchProfiles(ctx, canonicalNames, profiles); err != nil {
		if !errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		partial = true
	}
	fillUnresolved(canonicalNames, profiles)

	for i, name := range canonicalNames {
		n := name
		perIngredient[i] = domain.IngredientResult{
			Raw:       rawByCanonical[name],
			Canonical: &n,
			Profile:   profiles[i],
		}
	}

	aggregateScore := meanScore(profiles)
	problematic := problematicNames(canonicalNames, profiles)

	substitutionMap, err := o.buildSubstitutionMap(ctx, problematic, userConditions)
	if err != nil {
		return nil, err
	}

	return &domain.Analysis{
		PerIngredient:        perIngredient,
		AggregateSafetyScore: aggregateScore,
		Problematic:          problematic,
		SubstitutionMap:      substitutionMap,
		GeneratedAt:          time.Now().UTC(),
		Partial:              partial,
	}, nil
}

// fillUnresolved replaces any profile left nil by a deadline cutting
// fetchProfiles short with a placeholder, so downstream scoring and
// problematic-detection never dereference a missing entry.
func fillUnresolved(names []ingredient.CanonicalName, profiles []*safety.SafetyProfile) {
	for i, p := range profiles {
		if p == nil {
			profiles[i] = safety.Placeholder(names[i])
		}
	}
}

// normalizeAndDedupe implements spec.md §4.9 step 1: normalize, drop
// nulls, preserve order, deduplicate on first occurrence.
func (o *Orchestrator) normalizeAndDedupe(raws []ingredient.RawName) ([]ingredient.CanonicalName, map[ingredient.CanonicalName]ingredient.RawName) {
	seen := map[ingredient.CanonicalName]struct{}{}
	var ordered []ingredient.CanonicalName
	rawByCanonical := map[ingredient.CanonicalName]ingredient.RawName{}

	for _, raw := range raws {
		canonical, ok := o.normalizer.Normalize(raw)
		if !ok {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		ordered = append(ordered, canonical)
		rawByCanonical[canonical] = raw
	}
	return ordered, rawByCanonical
}

// fetchProfiles implements spec.md §4.9 step 2: catalog lookup with a
// bounded-pool fallback fetch on miss. Results land in profiles at the
// same index as their name in names, preserving input order regardless of
// completion order ("the resulting Analysis is assembled in input order",
// spec.md §5 "Ordering").
func (o *Orchestrator) fetchProfiles(ctx context.Context, names []ingredient.CanonicalName, profiles []*safety.SafetyProfile) error {
	if len(names) == 0 {
		return nil
	}

	sem := semaphore.NewWeighted(int64(o.fetchConcurrency))
	group, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for i, name := range names {
		i, name := i, name
		group.Go(func() error {
			if p, ok := o.catalog.Get(name); ok {
				mu.Lock()
				profiles[i] = p
				mu.Unlock()
				return nil
			}

			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			resolved, err := o.resolver.Resolve(gctx, name)
			if err != nil {
				// Unknown-after-fetch names get the placeholder profile
				// (spec.md §4.9 step 2) rather than failing the whole
				// analysis.
				resolved = safety.Placeholder(name)
			}
			mu.Lock()
			profiles[i] = resolved
			mu.Unlock()
			return nil
		})
	}

	return group.Wait()
}

func meanScore(profiles []*safety.SafetyProfile) float64 {
	if len(profiles) == 0 {
		return 0
	}
	var sum float64
	for _, p := range profiles {
		if p != nil {
			sum += p.Score
		}
	}
	return sum / float64(len(profiles))
}

// problematicNames implements spec.md §4.9 step 4's policy: score below
// the problematic threshold, or high/critical risk.
func problematicNames(names []ingredient.CanonicalName, profiles []*safety.SafetyProfile) []ingredient.CanonicalName {
	var out []ingredient.CanonicalName
	for i, p := range profiles {
		if p != nil && p.Problematic() {
			out = append(out, names[i])
		}
	}
	return out
}

// buildSubstitutionMap implements spec.md §4.9 step 5: for each
// problematic name, call the Substitution Engine with the configured k.
func (o *Orchestrator) buildSubstitutionMap(ctx context.Context, problematic []ingredient.CanonicalName, userConditions []string) (map[ingredient.CanonicalName][]domainsub.Candidate, error) {
	out := make(map[ingredient.CanonicalName][]domainsub.Candidate, len(problematic))
	if o.substitutes == nil {
		return out, nil
	}
	for _, name := range problematic {
		candidates, err := o.substitutes.FindSubstitutes(ctx, name, userConditions, o.substitutionK)
		if err != nil {
			continue
		}
		flat := make([]domainsub.Candidate, 0, len(candidates))
		for _, c := range candidates {
			if c != nil {
				flat = append(flat, *c)
			}
		}
		out[name] = flat
	}
	return out, nil
}
