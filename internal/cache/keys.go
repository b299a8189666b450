package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/ingredient-intel/iie/internal/domain/ingredient"
	"github.com/ingredient-intel/iie/internal/domain/safety"
)

// Key prefixes matching spec.md §4.3 ("callers namespace with prefixes").
const (
	prefixIngredient = "ingredient:"
	prefixFragment   = "fragment:"
	prefixAnalysis   = "analysis:"
	prefixExternal   = "external:"
	prefixSubstitute = "substitutes:"
)

// IngredientKey is the cache key for a SafetyProfile.
func IngredientKey(name ingredient.CanonicalName) string {
	return prefixIngredient + name.String()
}

// FragmentKey is the cache key for one registry's RegistryFragment.
func FragmentKey(registryID safety.RegistryID, name ingredient.CanonicalName) string {
	return fmt.Sprintf("%s%s:%s", prefixFragment, registryID, name.String())
}

// ExternalKey builds a cache key for an external call, namespaced by
// registry/endpoint/params hash. The registry fetchers do not call it;
// they key their Request Cache entries as "<registry_id>:lookup:<name>".
func ExternalKey(registryID safety.RegistryID, endpoint string, params map[string]string) string {
	return fmt.Sprintf("%s%s:%s:%s", prefixExternal, registryID, endpoint, hashParams(params))
}

// SubstituteKey is the cache key for a substitution query result.
func SubstituteKey(target ingredient.CanonicalName, userConditions []string) string {
	return fmt.Sprintf("%s%s:%s", prefixSubstitute, target.String(), hashConditions(userConditions))
}

// AnalysisKey is the cache key for an analysis result keyed by its
// normalized ingredient set.
func AnalysisKey(canonicalNames []ingredient.CanonicalName) string {
	strs := make([]string, len(canonicalNames))
	for i, n := range canonicalNames {
		strs[i] = n.String()
	}
	sort.Strings(strs)
	return prefixAnalysis + hashStrings(strs)
}

func hashParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(params[k])
		sb.WriteByte('&')
	}
	return shortHash(sb.String())
}

func hashConditions(conditions []string) string {
	sorted := append([]string(nil), conditions...)
	sort.Strings(sorted)
	return hashStrings(sorted)
}

func hashStrings(items []string) string {
	return shortHash(strings.Join(items, "|"))
}

func shortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}
