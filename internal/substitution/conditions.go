package substitution

import (
	"strings"

	"github.com/ingredient-intel/iie/internal/domain/safety"
)

// conditionExclusion is one user-condition's table-driven candidate veto:
// a candidate is dropped from the pool if any of its recorded concerns
// contains one of ConcernKeywords. Weights (func_sim/embed_sim/etc.) are
// unaffected — spec.md §4.8 "User conditions … currently influence only
// the candidate-filter step".
type conditionExclusion struct {
	Condition      string
	ConcernKeywords []string
}

// conditionTable is the recognized user-condition vocabulary. Unrecognized
// condition strings are ignored rather than rejected, since the set of
// conditions a caller might submit is open-ended free text.
var conditionTable = []conditionExclusion{
	{Condition: "sensitive skin", ConcernKeywords: []string{"irritant", "sensitizer", "fragrance"}},
	{Condition: "pregnancy", ConcernKeywords: []string{"endocrine", "carcinogen", "toxic"}},
	{Condition: "acne prone", ConcernKeywords: []string{"comedogenic"}},
	{Condition: "eczema", ConcernKeywords: []string{"irritant", "allergen"}},
}

// excludedByConditions reports whether candidate should be dropped from
// the pool given the caller's user_conditions.
func excludedByConditions(candidate *safety.SafetyProfile, userConditions []string) bool {
	if len(userConditions) == 0 {
		return false
	}
	normalized := make(map[string]struct{}, len(userConditions))
	for _, c := range userConditions {
		normalized[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}

	for _, rule := range conditionTable {
		if _, active := normalized[rule.Condition]; !active {
			continue
		}
		for _, concern := range candidate.Concerns {
			lc := strings.ToLower(concern)
			for _, kw := range rule.ConcernKeywords {
				if strings.Contains(lc, kw) {
					return true
				}
			}
		}
	}
	return false
}
