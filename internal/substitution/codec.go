package substitution

import (
	"encoding/json"

	"github.com/ingredient-intel/iie/internal/domain/substitution"
)

func encodeCandidates(candidates []*substitution.Candidate) ([]byte, bool) {
	raw, err := json.Marshal(candidates)
	if err != nil {
		return nil, false
	}
	return raw, true
}

func decodeCandidates(raw []byte) ([]*substitution.Candidate, bool) {
	var candidates []*substitution.Candidate
	if err := json.Unmarshal(raw, &candidates); err != nil {
		return nil, false
	}
	return candidates, true
}
