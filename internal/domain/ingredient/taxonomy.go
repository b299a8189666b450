package ingredient

import "sync"

// Taxonomy tracks the many-to-many relation between CanonicalName and
// FunctionalCategory. It is populated from the bundled lexicon data at
// startup and consulted by the Substitution Engine to build a target's
// same-category candidate bucket (spec.md §4.8 step 2).
type Taxonomy struct {
	mu             sync.RWMutex
	byIngredient   map[CanonicalName]map[FunctionalCategory]struct{}
	byCategory     map[FunctionalCategory]map[CanonicalName]struct{}
}

// NewTaxonomy returns an empty Taxonomy ready for population.
func NewTaxonomy() *Taxonomy {
	return &Taxonomy{
		byIngredient: make(map[CanonicalName]map[FunctionalCategory]struct{}),
		byCategory:   make(map[FunctionalCategory]map[CanonicalName]struct{}),
	}
}

// Assign records that name belongs to category. Safe for concurrent use.
func (t *Taxonomy) Assign(name CanonicalName, category FunctionalCategory) {
	category = category.Normalize()
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.byIngredient[name] == nil {
		t.byIngredient[name] = make(map[FunctionalCategory]struct{})
	}
	t.byIngredient[name][category] = struct{}{}
	if t.byCategory[category] == nil {
		t.byCategory[category] = make(map[CanonicalName]struct{})
	}
	t.byCategory[category][name] = struct{}{}
}

// CategoriesOf returns every category assigned to name.
func (t *Taxonomy) CategoriesOf(name CanonicalName) []FunctionalCategory {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cats := make([]FunctionalCategory, 0, len(t.byIngredient[name]))
	for c := range t.byIngredient[name] {
		cats = append(cats, c)
	}
	return cats
}

// SameCategory reports whether a and b share at least one functional
// category. Two ingredients with no recorded category never match.
func (t *Taxonomy) SameCategory(a, b CanonicalName) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for c := range t.byIngredient[a] {
		if _, ok := t.byIngredient[b][c]; ok {
			return true
		}
	}
	return false
}

// MembersOf returns every canonical name assigned to category.
func (t *Taxonomy) MembersOf(category FunctionalCategory) []CanonicalName {
	category = category.Normalize()
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]CanonicalName, 0, len(t.byCategory[category]))
	for n := range t.byCategory[category] {
		out = append(out, n)
	}
	return out
}
