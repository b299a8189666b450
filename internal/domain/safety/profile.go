package safety

import (
	"time"

	"github.com/ingredient-intel/iie/internal/domain/ingredient"
)

// PlaceholderEcoScore is the eco_score assigned to a profile built from zero
// fragments (spec.md §4.6 step 1).
const PlaceholderEcoScore = 50.0

// ProblematicThreshold is the weighted safety score below which an
// ingredient is considered "problematic" (spec.md Glossary).
const ProblematicThreshold = 70.0

// SafetyProfile is the aggregated, per-ingredient view produced by the
// Profile Aggregator. It is owned by the Local Catalog; every other
// component holds read-only handles. Mutated only by re-aggregation.
type SafetyProfile struct {
	CanonicalName    ingredient.CanonicalName `json:"canonical_name"`
	Score            float64                  `json:"score"`
	RiskLevel        RiskLevel                `json:"risk_level"`
	EcoScore         float64                  `json:"eco_score"`
	PerRegistryStatus map[RegistryID]string   `json:"per_registry_status"`
	Concerns         []string                 `json:"concerns"`
	Sources          []RegistryID             `json:"sources"`
	LastUpdated      time.Time                `json:"last_updated"`
}

// Placeholder returns the zero-fragment profile mandated by spec.md §4.6
// step 1: risk_level unknown, eco_score 50, no sources.
func Placeholder(name ingredient.CanonicalName) *SafetyProfile {
	return &SafetyProfile{
		CanonicalName:     name,
		Score:             PlaceholderEcoScore,
		RiskLevel:         RiskUnknown,
		EcoScore:          PlaceholderEcoScore,
		PerRegistryStatus: map[RegistryID]string{},
		Concerns:          []string{},
		Sources:           []RegistryID{},
		LastUpdated:       time.Now().UTC(),
	}
}

// Problematic reports whether this profile counts as "problematic" per the
// glossary: aggregate safety score below threshold, or high/critical risk.
func (p *SafetyProfile) Problematic() bool {
	if p == nil {
		return false
	}
	return p.Score < ProblematicThreshold || p.RiskLevel == RiskHigh || p.RiskLevel == RiskCritical
}

// Clone returns a deep-enough copy safe to hand to callers outside the
// catalog's lock without risking concurrent mutation of slices/maps.
func (p *SafetyProfile) Clone() *SafetyProfile {
	if p == nil {
		return nil
	}
	cp := *p
	cp.PerRegistryStatus = make(map[RegistryID]string, len(p.PerRegistryStatus))
	for k, v := range p.PerRegistryStatus {
		cp.PerRegistryStatus[k] = v
	}
	cp.Concerns = append([]string(nil), p.Concerns...)
	cp.Sources = append([]RegistryID(nil), p.Sources...)
	return &cp
}
