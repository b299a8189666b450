// Package substitution holds the result types shared by the Substitution
// Engine and its callers; the scoring logic itself lives in
// internal/substitution so this package stays a plain data model.
package substitution

import "github.com/ingredient-intel/iie/internal/domain/ingredient"

// Candidate is one ranked substitute suggestion for a problematic
// ingredient, scoped to a single (original, user_conditions) query.
type Candidate struct {
	CandidateName       ingredient.CanonicalName `json:"candidate"`
	SimilarityScore     float64                  `json:"similarity_score"`
	SafetyImprovement   float64                  `json:"safety_improvement"`
	FunctionalSimilarity float64                 `json:"functional_similarity"`
	EcoImprovement      float64                  `json:"eco_improvement"`
	RiskReduction       float64                  `json:"risk_reduction"`
	Confidence          float64                  `json:"confidence"`
	Reason              string                   `json:"reason"`
	Sources             []string                 `json:"sources"`
}
