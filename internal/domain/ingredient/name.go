// Package ingredient holds the identity types shared by every layer of the
// Ingredient Intelligence Engine: canonical ingredient names and the
// functional-category taxonomy used to bucket them.
package ingredient

import "strings"

// CanonicalName is the normalized, interning-friendly identifier of an
// ingredient. Equality of the underlying string defines identity across the
// whole engine. Values are produced exclusively by internal/normalize and
// are never mutated after creation.
type CanonicalName string

// String returns the underlying string value.
func (c CanonicalName) String() string { return string(c) }

// Empty reports whether the canonical name carries no content.
func (c CanonicalName) Empty() bool { return len(c) == 0 }

// RawName is a user- or OCR-supplied ingredient string. It only exists for
// the duration of one normalization call and is never retained.
type RawName string

// FunctionalCategory is a coarse label describing what an ingredient does.
// The relation between a FunctionalCategory and a CanonicalName is
// many-to-many, tracked by the Lexicon.
type FunctionalCategory string

// Enumerated functional categories known to the lexicon. New categories can
// be added by data files without code changes; these constants exist purely
// as convenient, typo-proof references for code that needs to reason about
// a specific category (e.g. the Substitution Engine's same-category bucket).
const (
	CategoryEmollient   FunctionalCategory = "emollient"
	CategoryHumectant   FunctionalCategory = "humectant"
	CategoryEmulsifier  FunctionalCategory = "emulsifier"
	CategoryPreservative FunctionalCategory = "preservative"
	CategoryAntioxidant FunctionalCategory = "antioxidant"
	CategorySurfactant  FunctionalCategory = "surfactant"
	CategoryFragrance   FunctionalCategory = "fragrance"
	CategoryColorant    FunctionalCategory = "colorant"
	CategorySunscreen   FunctionalCategory = "sunscreen"
	CategorySolvent     FunctionalCategory = "solvent"
	CategoryActive      FunctionalCategory = "active"
	CategoryUnknown     FunctionalCategory = "unknown"
)

// Normalize lowercases and trims a raw category label so lexicon lookups are
// stable regardless of the casing used in source data files.
func (f FunctionalCategory) Normalize() FunctionalCategory {
	return FunctionalCategory(strings.ToLower(strings.TrimSpace(string(f))))
}
