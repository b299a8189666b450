package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ingredient-intel/iie/internal/domain/ingredient"
	"github.com/ingredient-intel/iie/internal/domain/safety"
)

func TestNumericFeatures_AllComponentsInUnitRange(t *testing.T) {
	p := &safety.SafetyProfile{
		CanonicalName: ingredient.CanonicalName("x"),
		Score:         40,
		EcoScore:      85,
		RiskLevel:     safety.RiskHigh,
		Concerns:      []string{"irritant", "carcinogen", "allergen", "toxic", "sensitizer", "endocrine"},
		PerRegistryStatus: map[safety.RegistryID]string{
			safety.RegistryFDA:  "restricted",
			safety.RegistryCIR:  "safe",
			safety.RegistrySCCS: "",
			safety.RegistryICCR: "harmonized",
		},
	}
	features := numericFeatures(p)
	assert.Len(t, features, 8)
	for _, f := range features {
		assert.GreaterOrEqual(t, f, 0.0)
		assert.LessOrEqual(t, f, 1.0)
	}
	// ewg_penalty caps at 1.0 even with more than 5 concerns.
	assert.Equal(t, 1.0, features[3])
	// fda restricted -> concerning flag
	assert.Equal(t, 1.0, features[4])
	// cir explicitly safe -> not concerning
	assert.Equal(t, 0.0, features[5])
	// sccs absent status -> not concerning
	assert.Equal(t, 0.0, features[6])
	// iccr harmonized -> not concerning
	assert.Equal(t, 0.0, features[7])
}

func TestTextSignature_IncludesNameRiskAndConcerns(t *testing.T) {
	p := &safety.SafetyProfile{
		CanonicalName: ingredient.CanonicalName("Phenoxyethanol"),
		RiskLevel:     safety.RiskModerate,
		Concerns:      []string{"Irritant"},
		Sources:       []safety.RegistryID{safety.RegistryEWG},
	}
	sig := textSignature(p)
	assert.Contains(t, sig, "phenoxyethanol")
	assert.Contains(t, sig, "moderate")
	assert.Contains(t, sig, "irritant")
	assert.Contains(t, sig, "ewg")
}

func TestClamp01_BoundsValues(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-5))
	assert.Equal(t, 1.0, clamp01(5))
	assert.Equal(t, 0.5, clamp01(0.5))
}
