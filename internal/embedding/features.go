package embedding

import (
	"strings"

	"github.com/ingredient-intel/iie/internal/domain/safety"
)

// numericFeatures builds the eight-dimensional numeric feature vector
// (spec.md §4.7 step 3): `[eco_norm, safety_norm, risk_value, ewg_penalty,
// fda_flag, cir_flag, sccs_flag, iccr_flag]`, every component scaled to
// [0,1]. Grounded on enhanced_substitution_mapping.py's feature-vector
// construction (eco_score/100, safety_score/100, risk mapped through a
// numeric table, len(ewg_concerns) capped and scaled, and one binary flag
// per registry's "has a concerning status" test).
func numericFeatures(p *safety.SafetyProfile) []float64 {
	ecoNorm := clamp01(p.EcoScore / 100)
	safetyNorm := clamp01(p.Score / 100)
	riskValue := 1 - clamp01(p.RiskLevel.ContextScore()/100)

	ewgPenalty := clamp01(float64(len(p.Concerns)) / 5.0)

	return []float64{
		ecoNorm,
		safetyNorm,
		riskValue,
		ewgPenalty,
		statusFlag(p.PerRegistryStatus[safety.RegistryFDA]),
		statusFlag(p.PerRegistryStatus[safety.RegistryCIR]),
		statusFlag(p.PerRegistryStatus[safety.RegistrySCCS]),
		statusFlag(p.PerRegistryStatus[safety.RegistryICCR]),
	}
}

// statusFlag returns 1.0 when a registry's recorded status text reads as a
// concern (anything other than an explicit clean bill), 0.0 otherwise,
// mirroring the original's per-registry `_flag` binary features.
func statusFlag(status string) float64 {
	s := strings.ToLower(strings.TrimSpace(status))
	switch {
	case s == "":
		return 0
	case strings.Contains(s, "safe"), strings.Contains(s, "approved"), strings.Contains(s, "accepted"), strings.Contains(s, "harmonized"):
		return 0
	default:
		return 1
	}
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

// textSignature builds the per-profile text signature used to fit and
// query the TF-IDF vectorizer (spec.md §4.7 step 1): canonical name
// tokens, risk_level, per-registry statuses, concern tokens and source
// ids, folded to the same lowercase/ASCII-token shape the Name Normalizer
// produces. The inputs here (risk levels, registry statuses, concern
// keywords) are already short normalizer-safe tokens emitted by the
// Fetchers and Aggregator, so a direct fold is used rather than re-running
// the full Normalizer pipeline.
func textSignature(p *safety.SafetyProfile) string {
	var b strings.Builder
	b.WriteString(fold(p.CanonicalName.String()))
	b.WriteByte(' ')
	b.WriteString(string(p.RiskLevel))
	for _, status := range p.PerRegistryStatus {
		b.WriteByte(' ')
		b.WriteString(fold(status))
	}
	for _, c := range p.Concerns {
		b.WriteByte(' ')
		b.WriteString(fold(c))
	}
	for _, src := range p.Sources {
		b.WriteByte(' ')
		b.WriteString(string(src))
	}
	return b.String()
}

func fold(s string) string {
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}
