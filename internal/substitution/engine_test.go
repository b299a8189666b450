package substitution

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingredient-intel/iie/internal/domain/ingredient"
	"github.com/ingredient-intel/iie/internal/domain/safety"
)

type fakeCatalog struct {
	profiles map[ingredient.CanonicalName]*safety.SafetyProfile
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{profiles: map[ingredient.CanonicalName]*safety.SafetyProfile{}}
}

func (f *fakeCatalog) add(p *safety.SafetyProfile) { f.profiles[p.CanonicalName] = p }

func (f *fakeCatalog) Get(name ingredient.CanonicalName) (*safety.SafetyProfile, bool) {
	p, ok := f.profiles[name]
	return p, ok
}

func (f *fakeCatalog) All() []*safety.SafetyProfile {
	out := make([]*safety.SafetyProfile, 0, len(f.profiles))
	for _, p := range f.profiles {
		out = append(out, p)
	}
	return out
}

type fakeResolver struct {
	profile *safety.SafetyProfile
	err     error
}

func (f *fakeResolver) Resolve(ctx context.Context, name ingredient.CanonicalName) (*safety.SafetyProfile, error) {
	return f.profile, f.err
}

type fakeCache struct {
	store map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{store: map[string][]byte{}} }

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, bool) {
	v, ok := c.store[key]
	return v, ok
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte) {
	c.store[key] = value
}

func prof(name string, score, eco float64, risk safety.RiskLevel, concerns ...string) *safety.SafetyProfile {
	return &safety.SafetyProfile{
		CanonicalName: ingredient.CanonicalName(name),
		Score:         score,
		EcoScore:      eco,
		RiskLevel:     risk,
		Concerns:      concerns,
		Sources:       []safety.RegistryID{safety.RegistryFDA},
	}
}

func TestFindSubstitutes_ExcludesLessSafeCandidates(t *testing.T) {
	cat := newFakeCatalog()
	cat.add(prof("parabens", 20, 40, safety.RiskHigh, "endocrine"))
	cat.add(prof("phenoxyethanol", 70, 60, safety.RiskModerate))
	cat.add(prof("worse stuff", 10, 30, safety.RiskCritical, "carcinogen"))

	engine := New(cat, nil, nil, nil, nil)
	results, err := engine.FindSubstitutes(context.Background(), ingredient.CanonicalName("parabens"), nil, 5)
	require.NoError(t, err)

	for _, r := range results {
		assert.NotEqual(t, ingredient.CanonicalName("worse stuff"), r.CandidateName)
	}
}

func TestFindSubstitutes_SortsByConfidenceDescending(t *testing.T) {
	cat := newFakeCatalog()
	cat.add(prof("parabens", 20, 40, safety.RiskHigh))
	cat.add(prof("great sub", 95, 90, safety.RiskSafe))
	cat.add(prof("mediocre sub", 40, 45, safety.RiskModerate))

	engine := New(cat, nil, nil, nil, nil)
	results, err := engine.FindSubstitutes(context.Background(), ingredient.CanonicalName("parabens"), nil, 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Confidence, results[i].Confidence)
	}
}

func TestFindSubstitutes_UserConditionExcludesIrritants(t *testing.T) {
	cat := newFakeCatalog()
	cat.add(prof("parabens", 20, 40, safety.RiskHigh))
	cat.add(prof("irritant sub", 90, 80, safety.RiskSafe, "irritant"))
	cat.add(prof("gentle sub", 85, 75, safety.RiskSafe))

	engine := New(cat, nil, nil, nil, nil)
	results, err := engine.FindSubstitutes(context.Background(), ingredient.CanonicalName("parabens"), []string{"sensitive skin"}, 5)
	require.NoError(t, err)

	for _, r := range results {
		assert.NotEqual(t, ingredient.CanonicalName("irritant sub"), r.CandidateName)
	}
}

func TestFindSubstitutes_MissingProfileTriggersResolver(t *testing.T) {
	cat := newFakeCatalog()
	cat.add(prof("safe alt", 90, 80, safety.RiskSafe))
	resolver := &fakeResolver{profile: prof("mystery", 30, 40, safety.RiskHigh)}

	engine := New(cat, resolver, nil, nil, nil)
	results, err := engine.FindSubstitutes(context.Background(), ingredient.CanonicalName("mystery"), nil, 5)
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestFindSubstitutes_NoResolverAndNoProfileErrors(t *testing.T) {
	cat := newFakeCatalog()
	engine := New(cat, nil, nil, nil, nil)
	_, err := engine.FindSubstitutes(context.Background(), ingredient.CanonicalName("unknown"), nil, 5)
	assert.Error(t, err)
}

func TestFindSubstitutes_ResultsAreCached(t *testing.T) {
	cat := newFakeCatalog()
	cat.add(prof("parabens", 20, 40, safety.RiskHigh))
	cat.add(prof("safe alt", 90, 80, safety.RiskSafe))
	fc := newFakeCache()

	engine := New(cat, nil, nil, nil, fc)
	_, err := engine.FindSubstitutes(context.Background(), ingredient.CanonicalName("parabens"), nil, 5)
	require.NoError(t, err)
	assert.Len(t, fc.store, 1)
}

func TestFindSubstitutes_RespectsKLimit(t *testing.T) {
	cat := newFakeCatalog()
	cat.add(prof("parabens", 20, 40, safety.RiskHigh))
	for i := 0; i < 10; i++ {
		cat.add(prof(string(rune('a'+i))+"-alt", 80, 70, safety.RiskSafe))
	}
	engine := New(cat, nil, nil, nil, nil)
	results, err := engine.FindSubstitutes(context.Background(), ingredient.CanonicalName("parabens"), nil, 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}
