// Package substitution implements the Substitution Engine (spec.md §4.8):
// given a problematic ingredient, it ranks same-functional-category and
// embedding-proximate candidates by a blended similarity/safety-improvement
// score, grounded on enhanced_substitution_mapping.py's find_substitutes
// and calculate_functional_similarity/_embedding_similarity methods.
package substitution

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ingredient-intel/iie/internal/domain/ingredient"
	"github.com/ingredient-intel/iie/internal/domain/safety"
	"github.com/ingredient-intel/iie/internal/domain/substitution"
	"github.com/ingredient-intel/iie/internal/embedding"
	apperrors "github.com/ingredient-intel/iie/pkg/errors"
)

// DefaultCandidatePoolSize is the top-*M* embedding-proximity candidates
// added to the functional-category bucket (spec.md §4.8 step 2, "default
// M = 200").
const DefaultCandidatePoolSize = 200

// DefaultK is the default number of substitutes returned when the caller
// doesn't specify one (spec.md §4.9 step 5: "k = configurable, default 5").
const DefaultK = 5

// CacheTTL is the substitution result cache lifetime handed to the result
// cache (spec.md §4.8 step 6). *resilience.RequestCache does not apply it:
// entries there live as long as the Cache Hierarchy's tier TTLs.
const CacheTTL = 24 * time.Hour

// ProfileResolver obtains a SafetyProfile for a canonical name, fetching
// and aggregating from the registries on a cache miss (spec.md §4.8 step
// 1: "if absent, trigger a synchronous fetch and continue"). Implemented
// by whichever component wires the Registry Scheduler and Profile
// Aggregator together (internal/orchestrator, in this repo).
type ProfileResolver interface {
	Resolve(ctx context.Context, name ingredient.CanonicalName) (*safety.SafetyProfile, error)
}

// ProfileCatalog is the subset of the Local Catalog's contract the engine
// needs to enumerate candidates.
type ProfileCatalog interface {
	Get(name ingredient.CanonicalName) (*safety.SafetyProfile, bool)
	All() []*safety.SafetyProfile
}

// ResultCache is the thin cache capability the engine uses to memoize
// `substitutes:<target>:<hash(user_conditions)>` results (spec.md §4.8
// step 6). Satisfied directly by *resilience.RequestCache.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

// Engine implements find_substitutes.
type Engine struct {
	catalog  ProfileCatalog
	resolver ProfileResolver
	taxonomy *ingredient.Taxonomy
	space    *embedding.Space
	cache    ResultCache
	poolSize int
}

// New builds a Substitution Engine. cache may be nil to disable result
// memoization (useful in tests).
func New(catalog ProfileCatalog, resolver ProfileResolver, taxonomy *ingredient.Taxonomy, space *embedding.Space, cache ResultCache) *Engine {
	return &Engine{
		catalog:  catalog,
		resolver: resolver,
		taxonomy: taxonomy,
		space:    space,
		cache:    cache,
		poolSize: DefaultCandidatePoolSize,
	}
}

// FindSubstitutes implements spec.md §4.8's full algorithm.
func (e *Engine) FindSubstitutes(ctx context.Context, target ingredient.CanonicalName, userConditions []string, k int) ([]*substitution.Candidate, error) {
	if k <= 0 {
		k = DefaultK
	}

	cacheKey := substitutionCacheKey(target, userConditions)
	if e.cache != nil {
		if raw, ok := e.cache.Get(ctx, cacheKey); ok {
			if candidates, ok := decodeCandidates(raw); ok {
				return candidates, nil
			}
		}
	}

	targetProfile, ok := e.catalog.Get(target)
	if !ok || targetProfile == nil {
		if e.resolver == nil {
			return nil, apperrors.New(apperrors.CodeIngredientNotFound, fmt.Sprintf("no safety profile for %q and no resolver configured", target))
		}
		resolved, err := e.resolver.Resolve(ctx, target)
		if err != nil {
			return nil, err
		}
		targetProfile = resolved
	}

	pool := e.candidatePool(target)

	results := make([]*substitution.Candidate, 0, len(pool))
	for _, candidateName := range pool {
		candidateProfile, ok := e.catalog.Get(candidateName)
		if !ok || candidateProfile == nil {
			continue
		}
		if excludedByConditions(candidateProfile, userConditions) {
			continue
		}

		c := e.score(target, targetProfile, candidateName, candidateProfile)
		if c.SafetyImprovement < 0 && c.RiskReduction == 0 {
			// Never recommend something strictly less safe (spec.md §4.8
			// step 4).
			continue
		}
		results = append(results, c)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Confidence != results[j].Confidence {
			return results[i].Confidence > results[j].Confidence
		}
		return results[i].SimilarityScore > results[j].SimilarityScore
	})

	if k < len(results) {
		results = results[:k]
	}

	if e.cache != nil {
		if encoded, ok := encodeCandidates(results); ok {
			e.cache.Set(ctx, cacheKey, encoded)
		}
	}

	return results, nil
}

// candidatePool unions the target's functional-category bucket with the
// top-M embedding-proximate names, deduplicated, target excluded (spec.md
// §4.8 step 2).
func (e *Engine) candidatePool(target ingredient.CanonicalName) []ingredient.CanonicalName {
	seen := map[ingredient.CanonicalName]struct{}{target: {}}
	var pool []ingredient.CanonicalName

	if e.taxonomy != nil {
		for _, cat := range e.taxonomy.CategoriesOf(target) {
			for _, member := range e.taxonomy.MembersOf(cat) {
				if _, dup := seen[member]; dup {
					continue
				}
				seen[member] = struct{}{}
				pool = append(pool, member)
			}
		}
	}

	if e.space != nil {
		for _, name := range e.space.RankByProximity(target, e.poolSize) {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			pool = append(pool, name)
		}
	}

	if len(pool) == 0 {
		// Neither taxonomy nor embedding space produced anything (cold
		// start, uncategorized target): fall back to a linear scan of
		// the whole catalog so the engine still returns something.
		for _, p := range e.catalog.All() {
			if p.CanonicalName == target {
				continue
			}
			if _, dup := seen[p.CanonicalName]; dup {
				continue
			}
			seen[p.CanonicalName] = struct{}{}
			pool = append(pool, p.CanonicalName)
		}
	}

	return pool
}

// score computes one candidate's full scoring record (spec.md §4.8 step
// 3).
func (e *Engine) score(target ingredient.CanonicalName, targetProfile *safety.SafetyProfile, candidate ingredient.CanonicalName, candidateProfile *safety.SafetyProfile) *substitution.Candidate {
	sameCategory := e.taxonomy != nil && e.taxonomy.SameCategory(target, candidate)

	embedSim := 0.5
	if e.space != nil {
		embedSim = e.space.Similarity(target, candidate)
	}

	funcSim := embedSim
	if sameCategory {
		funcSim = 1.0
	}

	safetyImprovement := candidateProfile.Score - targetProfile.Score
	ecoImprovement := candidateProfile.EcoScore - targetProfile.EcoScore
	riskReduction := safety.RiskReduction(targetProfile.RiskLevel, candidateProfile.RiskLevel)

	similarityScore := 0.5*funcSim + 0.35*embedSim + 0.15*clamp01(safetyImprovement/50)
	confidence := 0.5*similarityScore + 0.25*clamp01(safetyImprovement/30) + 0.15*embedSim + 0.10*riskReduction

	sources := make([]string, 0, len(candidateProfile.Sources))
	for _, s := range candidateProfile.Sources {
		sources = append(sources, string(s))
	}

	return &substitution.Candidate{
		CandidateName:        candidate,
		SimilarityScore:       similarityScore,
		SafetyImprovement:     safetyImprovement,
		FunctionalSimilarity:  funcSim,
		EcoImprovement:        ecoImprovement,
		RiskReduction:         riskReduction,
		Confidence:            confidence,
		Reason:                buildReason(sameCategory, embedSim, safetyImprovement, ecoImprovement, riskReduction),
		Sources:               sources,
	}
}

func buildReason(sameCategory bool, embedSim, safetyImprovement, ecoImprovement, riskReduction float64) string {
	var parts []string
	if sameCategory {
		parts = append(parts, "functionally similar")
	} else if embedSim > 0.7 {
		parts = append(parts, "functionally similar")
	}
	if safetyImprovement > 10 {
		parts = append(parts, fmt.Sprintf("safer (+%.0f pts)", safetyImprovement))
	}
	if riskReduction > 0.5 {
		parts = append(parts, "lower risk")
	}
	if ecoImprovement > 10 {
		parts = append(parts, "more eco-friendly")
	}
	if len(parts) == 0 {
		return "recommended alternative"
	}
	return strings.Join(parts, ", ")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// substitutionCacheKey implements spec.md §4.8 step 6's
// `substitutes:<target>:<hash(user_conditions)>` key shape.
func substitutionCacheKey(target ingredient.CanonicalName, userConditions []string) string {
	sorted := append([]string(nil), userConditions...)
	sort.Strings(sorted)
	h := fnvHash(strings.Join(sorted, "\x1f"))
	return "substitutes:" + target.String() + ":" + strconv.FormatUint(h, 36)
}

// fnvHash is a minimal FNV-1a 64-bit hash, used only to key the
// substitution result cache (not for anything security-sensitive).
func fnvHash(s string) uint64 {
	const (
		offset = 14695981039346656037
		prime  = 1099511628211
	)
	h := uint64(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	return h
}
