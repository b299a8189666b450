// Package domain holds the top-level Analysis result type that stitches
// together the other domain sub-packages into the Analysis Orchestrator's
// public output (spec.md §3 "Analysis").
package domain

import (
	"time"

	"github.com/ingredient-intel/iie/internal/domain/ingredient"
	"github.com/ingredient-intel/iie/internal/domain/safety"
	"github.com/ingredient-intel/iie/internal/domain/substitution"
)

// IngredientResult is one entry of Analysis.PerIngredient: the raw string as
// supplied by the caller, its canonical form (nil if unnormalizable), and
// its safety profile (a placeholder profile if it was not resolved, e.g.
// under a deadline).
type IngredientResult struct {
	Raw       ingredient.RawName        `json:"raw"`
	Canonical *ingredient.CanonicalName `json:"canonical,omitempty"`
	Profile   *safety.SafetyProfile     `json:"profile,omitempty"`
}

// Analysis is the Analysis Orchestrator's public result (spec.md §3, §4.9).
type Analysis struct {
	PerIngredient       []IngredientResult                                 `json:"per_ingredient"`
	AggregateSafetyScore float64                                            `json:"aggregate_safety_score"`
	Problematic          []ingredient.CanonicalName                        `json:"problematic"`
	SubstitutionMap       map[ingredient.CanonicalName][]substitution.Candidate `json:"substitution_map"`
	GeneratedAt           time.Time                                         `json:"generated_at"`
	Partial               bool                                              `json:"partial"`
}
