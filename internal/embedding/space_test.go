package embedding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingredient-intel/iie/internal/domain/ingredient"
	"github.com/ingredient-intel/iie/internal/domain/safety"
)

func profile(name string, score float64, risk safety.RiskLevel, concerns ...string) *safety.SafetyProfile {
	return &safety.SafetyProfile{
		CanonicalName:     ingredient.CanonicalName(name),
		Score:             score,
		RiskLevel:         risk,
		EcoScore:          60,
		PerRegistryStatus: map[safety.RegistryID]string{safety.RegistryFDA: "approved"},
		Concerns:          concerns,
		Sources:           []safety.RegistryID{safety.RegistryFDA},
		LastUpdated:       time.Now().UTC(),
	}
}

func TestSpace_BuildAndSimilarityReflexive(t *testing.T) {
	profiles := []*safety.SafetyProfile{
		profile("water", 95, safety.RiskSafe),
		profile("phenoxyethanol", 60, safety.RiskModerate, "irritant"),
	}
	sp := New(DefaultConfig())
	sp.Build(profiles)

	sim := sp.Similarity("water", "water")
	assert.InDelta(t, 1.0, sim, 0.01)
}

func TestSpace_UnindexedNameReturnsNeutralSimilarity(t *testing.T) {
	sp := New(DefaultConfig())
	sp.Build([]*safety.SafetyProfile{profile("water", 95, safety.RiskSafe)})
	assert.Equal(t, 0.5, sp.Similarity("water", "nonexistent"))
}

func TestSpace_ClustersAssignedAboveThreshold(t *testing.T) {
	profiles := []*safety.SafetyProfile{
		profile("a", 90, safety.RiskSafe),
		profile("b", 92, safety.RiskSafe),
		profile("c", 10, safety.RiskCritical, "carcinogen", "toxic"),
		profile("d", 15, safety.RiskCritical, "carcinogen", "allergen"),
	}
	sp := New(DefaultConfig())
	sp.Build(profiles)

	_, okA := sp.ClusterOf(ingredient.CanonicalName("a"))
	_, okC := sp.ClusterOf(ingredient.CanonicalName("c"))
	assert.True(t, okA)
	assert.True(t, okC)
}

func TestSpace_BelowClusterThresholdLeavesUncategorized(t *testing.T) {
	profiles := []*safety.SafetyProfile{
		profile("a", 90, safety.RiskSafe),
		profile("b", 20, safety.RiskHigh, "irritant"),
	}
	sp := New(DefaultConfig())
	sp.Build(profiles)

	_, ok := sp.ClusterOf(ingredient.CanonicalName("a"))
	assert.False(t, ok)
}

func TestSpace_RankByProximityExcludesTargetItself(t *testing.T) {
	profiles := []*safety.SafetyProfile{
		profile("a", 90, safety.RiskSafe),
		profile("b", 91, safety.RiskSafe),
		profile("c", 10, safety.RiskCritical, "carcinogen"),
	}
	sp := New(DefaultConfig())
	sp.Build(profiles)

	ranked := sp.RankByProximity(ingredient.CanonicalName("a"), 10)
	for _, n := range ranked {
		assert.NotEqual(t, ingredient.CanonicalName("a"), n)
	}
	assert.Len(t, ranked, 2)
}

func TestSpace_ShouldRebuildTriggersOnAdditionCount(t *testing.T) {
	sp := New(Config{RebuildAfterAdditions: 3, RebuildAfterPercent: 0.9, MaxVocabulary: 100})
	sp.Build([]*safety.SafetyProfile{profile("a", 90, safety.RiskSafe)})
	require.False(t, sp.ShouldRebuild())

	sp.NoteAddition()
	sp.NoteAddition()
	sp.NoteAddition()
	assert.True(t, sp.ShouldRebuild())
}

func TestSpace_BuildResetsAdditionCounter(t *testing.T) {
	sp := New(Config{RebuildAfterAdditions: 1, RebuildAfterPercent: 0.9, MaxVocabulary: 100})
	sp.Build([]*safety.SafetyProfile{profile("a", 90, safety.RiskSafe)})
	sp.NoteAddition()
	require.True(t, sp.ShouldRebuild())

	sp.Build([]*safety.SafetyProfile{profile("a", 90, safety.RiskSafe), profile("b", 50, safety.RiskModerate)})
	assert.False(t, sp.ShouldRebuild())
}
