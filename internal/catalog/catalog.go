// Package catalog implements the Local Catalog (spec.md §4.2): the
// authoritative in-memory map from CanonicalName to SafetyProfile, seeded
// from a bundled dataset and kept in sync with the Durable Store.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/ingredient-intel/iie/internal/capability"
	"github.com/ingredient-intel/iie/internal/domain/ingredient"
	"github.com/ingredient-intel/iie/internal/domain/safety"
	apperrors "github.com/ingredient-intel/iie/pkg/errors"
)

//go:embed seed.json
var seedData []byte

// seedRow mirrors the JSON shape of seed.json; it is translated into a full
// safety.SafetyProfile at load time.
type seedRow struct {
	CanonicalName string   `json:"canonical_name"`
	RiskLevel     string   `json:"risk_level"`
	EcoScore      float64  `json:"eco_score"`
	Score         float64  `json:"score"`
	Sources       []string `json:"sources"`
	Concerns      []string `json:"concerns"`
}

// minFuzzyRatio is the minimum best-ratio string-similarity score (spec.md
// §4.2) below which a fuzzy fallback match is rejected.
const minFuzzyRatio = 0.55

// Catalog is the Local Catalog: an in-memory, reader/writer-locked map of
// SafetyProfiles, optionally synced with a DurableStore.
type Catalog struct {
	mu      sync.RWMutex
	byName  map[ingredient.CanonicalName]*safety.SafetyProfile
	durable capability.DurableStore
}

// New constructs an empty Catalog. durable may be nil, in which case
// upserts are kept in memory only (useful for tests/offline CLI use).
func New(durable capability.DurableStore) *Catalog {
	return &Catalog{
		byName:  make(map[ingredient.CanonicalName]*safety.SafetyProfile),
		durable: durable,
	}
}

// NewSeeded constructs a Catalog pre-populated from the bundled seed
// dataset (spec.md §4.2: "Seeded from a bundled static dataset at
// startup").
func NewSeeded(durable capability.DurableStore) (*Catalog, error) {
	c := New(durable)
	var rows []seedRow
	if err := json.Unmarshal(seedData, &rows); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeLexiconLoadError, "parse bundled catalog seed")
	}
	now := time.Now().UTC()
	for _, r := range rows {
		sources := make([]safety.RegistryID, 0, len(r.Sources))
		for _, s := range r.Sources {
			sources = append(sources, safety.RegistryID(s))
		}
		profile := &safety.SafetyProfile{
			CanonicalName:     ingredient.CanonicalName(r.CanonicalName),
			Score:             r.Score,
			RiskLevel:         safety.RiskLevel(r.RiskLevel),
			EcoScore:          r.EcoScore,
			PerRegistryStatus: map[safety.RegistryID]string{},
			Concerns:          r.Concerns,
			Sources:           sources,
			LastUpdated:       now,
		}
		c.byName[profile.CanonicalName] = profile
	}
	return c, nil
}

// Get returns the profile for name, or nil if not found. On an exact miss
// it attempts the fuzzy fallback described in spec.md §4.2: first substring
// containment, then a bounded best-ratio similarity match with a minimum
// ratio of 0.55. The fuzzy result is never cached under the queried name
// ("avoid poisoning").
func (c *Catalog) Get(name ingredient.CanonicalName) (*safety.SafetyProfile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if p, ok := c.byName[name]; ok {
		return p.Clone(), true
	}

	if p := c.fuzzyMatch(name); p != nil {
		return p.Clone(), true
	}
	return nil, false
}

// fuzzyMatch must be called with at least a read lock held.
func (c *Catalog) fuzzyMatch(name ingredient.CanonicalName) *safety.SafetyProfile {
	query := name.String()
	if query == "" {
		return nil
	}

	// (a) substring containment, first match wins in map iteration order
	// is non-deterministic, so we track the longest-contained candidate to
	// keep behavior stable across runs.
	var bestSubstr *safety.SafetyProfile
	bestSubstrLen := -1
	for n, p := range c.byName {
		s := n.String()
		if strings.Contains(s, query) || strings.Contains(query, s) {
			if len(s) > bestSubstrLen {
				bestSubstr = p
				bestSubstrLen = len(s)
			}
		}
	}
	if bestSubstr != nil {
		return bestSubstr
	}

	// (b) bounded-cost best-ratio similarity match.
	var best *safety.SafetyProfile
	bestRatio := 0.0
	for n, p := range c.byName {
		r := similarityRatio(query, n.String())
		if r > bestRatio {
			bestRatio = r
			best = p
		}
	}
	if best != nil && bestRatio >= minFuzzyRatio {
		return best
	}
	return nil
}

// Upsert inserts or replaces the profile for its canonical name, and, if a
// DurableStore was provided, persists the change (spec.md §4.2: "additions
// through upsert are also persisted to the Durable Store").
func (c *Catalog) Upsert(ctx context.Context, profile *safety.SafetyProfile) error {
	if profile == nil || profile.CanonicalName.Empty() {
		return apperrors.InvalidParam("cannot upsert a nil profile or one with an empty canonical name")
	}
	c.mu.Lock()
	c.byName[profile.CanonicalName] = profile.Clone()
	c.mu.Unlock()

	if c.durable != nil {
		if err := c.durable.UpsertProfile(ctx, profile); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDBQueryError, "persist profile to durable store")
		}
	}
	return nil
}

// All returns every profile currently held by the catalog. The slice is a
// snapshot; subsequent Upserts do not affect it.
func (c *Catalog) All() []*safety.SafetyProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*safety.SafetyProfile, 0, len(c.byName))
	for _, p := range c.byName {
		out = append(out, p.Clone())
	}
	return out
}

// Size reports how many profiles the catalog currently holds.
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byName)
}

// RefreshFromDurable reloads every profile from the Durable Store,
// replacing any in-memory profile with the same canonical name (spec.md
// §4.2 contract: refresh_from_durable()). Profiles with no durable
// counterpart are left untouched.
func (c *Catalog) RefreshFromDurable(ctx context.Context) error {
	if c.durable == nil {
		return nil
	}
	rows, err := c.durable.LoadAllProfiles(ctx)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDBQueryError, "load profiles from durable store")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range rows {
		if p == nil {
			continue
		}
		c.byName[p.CanonicalName] = p.Clone()
	}
	return nil
}
