// Package aggregator implements the Profile Aggregator (spec.md §4.6):
// it turns the set of RegistryFragments a Scheduler collected for one
// ingredient into a single SafetyProfile, using the weighted-scoring
// table grounded on enhanced_substitution_mapping.py's safety_standards
// map and calculate_safety_score method.
package aggregator

import (
	"strings"
	"time"

	"github.com/ingredient-intel/iie/internal/domain/ingredient"
	"github.com/ingredient-intel/iie/internal/domain/safety"
)

// registryWeight mirrors safety_standards' per-registry weight column.
// Weights sum to 1.0 across all seven registries; when some registries
// produced no fragment, the remaining weights are redistributed
// proportionally (spec.md §4.6 step 2).
var registryWeight = map[safety.RegistryID]float64{
	safety.RegistryFDA:        0.30,
	safety.RegistryEWG:        0.25,
	safety.RegistryCIR:        0.20,
	safety.RegistrySCCS:       0.15,
	safety.RegistryICCR:       0.10,
	safety.RegistryPubChem:    0.00,
	safety.RegistryINCIBeauty: 0.00,
}

const (
	ecoTermWeight  = 0.2
	riskTermWeight = 0.15
)

// subScore computes one registry's [0,100] contribution from its
// fragment, per spec.md §4.6 step 2's illustrative rule set (FDA
// approved→100 else 50; EWG 100 − min(|concerns|·20, 100); other
// registries fall back to their own risk_level).
func subScore(f *safety.RegistryFragment) float64 {
	switch f.RegistryID {
	case safety.RegistryFDA:
		if f.Status == "approved" || f.Status == "safe" || f.Status == "generally recognized as safe" {
			return 100
		}
		return 50
	case safety.RegistryEWG:
		penalty := float64(len(f.Concerns)) * 20
		if penalty > 100 {
			penalty = 100
		}
		return 100 - penalty
	default:
		return f.RiskLevel.ContextScore()
	}
}

// Aggregate implements `aggregate(canonical_name, fragments) →
// SafetyProfile` (spec.md §4.6).
func Aggregate(canonicalName ingredient.CanonicalName, fragments []*safety.RegistryFragment) *safety.SafetyProfile {
	if len(fragments) == 0 {
		return safety.Placeholder(canonicalName)
	}

	var scoreSum, weightSum float64
	var ecoSum float64
	ecoCount := 0
	perRegistryStatus := make(map[safety.RegistryID]string, len(fragments))
	var concernsRaw []string
	sources := make([]safety.RegistryID, 0, len(fragments))
	anyCritical := false
	anyHigh := false

	for _, f := range fragments {
		w := registryWeight[f.RegistryID]
		if w == 0 {
			// Registries with no assigned weight (PubChem, INCI Beauty)
			// still contribute their eco/concern data but don't enter
			// the weighted sub-score sum.
			w = 0
		} else {
			scoreSum += subScore(f) * w
			weightSum += w
		}

		if f.EcoScore != nil {
			ecoSum += *f.EcoScore
			ecoCount++
		}

		perRegistryStatus[f.RegistryID] = f.Status
		concernsRaw = append(concernsRaw, f.Concerns...)
		sources = append(sources, f.RegistryID)

		switch f.RiskLevel {
		case safety.RiskCritical:
			anyCritical = true
		case safety.RiskHigh:
			anyHigh = true
		}
	}

	ecoScore := safety.PlaceholderEcoScore
	if ecoCount > 0 {
		ecoScore = ecoSum / float64(ecoCount)
	}

	// Redistribute weight proportionally across only the registries that
	// actually contributed (spec.md §4.6 step 2).
	var weightedScore float64
	if weightSum > 0 {
		weightedScore = scoreSum / weightSum
	}

	contribSum := weightedScore*weightSum + ecoTermWeight*ecoScore
	totalWeight := weightSum + ecoTermWeight

	// The risk term needs an interim risk_level, which in turn depends on
	// the score — so it's derived from the weighted score alone first,
	// then folded in as its own context term per spec.md §4.6 step 2.
	interimRisk := deriveRiskLevel(weightedScore, anyCritical, anyHigh)
	contribSum += riskTermWeight * interimRisk.ContextScore()
	totalWeight += riskTermWeight

	finalScore := contribSum / totalWeight
	if finalScore < 0 {
		finalScore = 0
	}
	if finalScore > 100 {
		finalScore = 100
	}

	riskLevel := deriveRiskLevel(finalScore, anyCritical, anyHigh)
	concerns := dedupeConcerns(concernsRaw)

	return &safety.SafetyProfile{
		CanonicalName:     canonicalName,
		Score:             finalScore,
		RiskLevel:         riskLevel,
		EcoScore:          ecoScore,
		PerRegistryStatus: perRegistryStatus,
		Concerns:          concerns,
		Sources:           sources,
		LastUpdated:       time.Now().UTC(),
	}
}

// deriveRiskLevel implements spec.md §4.6 step 3's deterministic policy.
func deriveRiskLevel(score float64, anyCritical, anyHigh bool) safety.RiskLevel {
	switch {
	case anyCritical:
		return safety.RiskCritical
	case anyHigh && score < 50:
		return safety.RiskHigh
	case score >= 85:
		return safety.RiskSafe
	case score >= 70:
		return safety.RiskLow
	case score >= 50:
		return safety.RiskModerate
	case score >= 30:
		return safety.RiskHigh
	default:
		return safety.RiskCritical
	}
}

// dedupeConcerns unions concerns across fragments, de-duplicated after
// lowercasing/trimming (spec.md §4.6 step 4: "canonicalized by §4.1").
// Full normalizer canonicalization is intentionally not invoked here —
// concern keywords are already short lowercase tokens emitted by the
// Fetchers, not raw ingredient names — so a simple fold suffices.
func dedupeConcerns(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
