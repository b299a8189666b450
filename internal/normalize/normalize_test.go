package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingredient-intel/iie/internal/domain/ingredient"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	lex, err := LoadLexicon()
	require.NoError(t, err)
	return New(lex, nil)
}

func TestNormalize_MeasurementRejection(t *testing.T) {
	n := newTestNormalizer(t)

	cases := []string{"500 mg", "1/2 tsp", "2 tbsp", "  ", "50ml", "100%"}
	for _, raw := range cases {
		_, ok := n.Normalize(ingredient.RawName(raw))
		assert.False(t, ok, "expected %q to be unnormalizable", raw)
	}
}

func TestNormalize_BasicSynonyms(t *testing.T) {
	n := newTestNormalizer(t)

	cases := map[string]string{
		"Aqua":                          "water",
		"DL Alpha Tocopherol Acetate":   "vitamin e",
		"ß-Carotene":                    "beta carotene",
		"Tocopheryl Acetate":            "vitamin e",
	}
	for raw, want := range cases {
		got, ok := n.Normalize(ingredient.RawName(raw))
		require.True(t, ok, "expected %q to normalize", raw)
		assert.Equal(t, want, got.String())
	}
}

func TestNormalize_ResiduesSurvive(t *testing.T) {
	n := newTestNormalizer(t)

	got, ok := n.Normalize(ingredient.RawName("1,2-Hexanediol"))
	require.True(t, ok)
	assert.Equal(t, "1 2 hexanediol", got.String())

	got, ok = n.Normalize(ingredient.RawName("Alcohol"))
	require.True(t, ok)
	assert.Equal(t, "alcohol", got.String())
}

func TestNormalize_Idempotent(t *testing.T) {
	n := newTestNormalizer(t)

	inputs := []string{"Aqua", "DL Alpha Tocopherol Acetate", "Fragrance (Parfum)", "500 mg", "Sodium Laureth Sulfate"}
	for _, raw := range inputs {
		first, ok1 := n.Normalize(ingredient.RawName(raw))
		if !ok1 {
			continue
		}
		second, ok2 := n.Normalize(ingredient.RawName(first.String()))
		require.True(t, ok2)
		assert.Equal(t, first, second, "normalize must be idempotent for %q", raw)
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	n := newTestNormalizer(t)
	_, ok := n.Normalize(ingredient.RawName(""))
	assert.False(t, ok)
}

func TestNormalize_MemoizationConsistent(t *testing.T) {
	n := newTestNormalizer(t)
	a, okA := n.Normalize(ingredient.RawName("Aqua"))
	b, okB := n.Normalize(ingredient.RawName("Aqua"))
	assert.Equal(t, okA, okB)
	assert.Equal(t, a, b)
}
