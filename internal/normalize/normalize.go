// Package normalize implements the Name Normalizer (spec.md §4.1): a pure,
// deterministic, memoizable transform from a raw ingredient string to a
// CanonicalName, or nil when the input carries no ingredient identity.
package normalize

import (
	"strconv"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ingredient-intel/iie/internal/domain/ingredient"
)

// PreNormalizer is the optional LLM-enhancement hook described in spec.md
// §9: when set, it runs before step 1 of the algorithm and its output feeds
// into the rest of the pipeline. The default Normalizer leaves this nil.
type PreNormalizer interface {
	PreNormalize(raw string) string
}

// Normalizer canonicalizes ingredient strings. It is safe for concurrent
// use: the lexicon is read-only after construction and the memo is
// guarded by memoMu.
type Normalizer struct {
	lex  *Lexicon
	pre  PreNormalizer

	// memo caches raw -> canonical (ok bool) so repeated calls with the
	// same raw string (common across many product ingredient lists) avoid
	// re-running the pipeline. Memoization is valid because normalize is
	// referentially transparent (spec.md §4.1 contract).
	memoMu sync.RWMutex
	memo   map[string]memoEntry
}

type memoEntry struct {
	canonical ingredient.CanonicalName
	ok        bool
}

// New constructs a Normalizer over the given lexicon. pre may be nil.
func New(lex *Lexicon, pre PreNormalizer) *Normalizer {
	return &Normalizer{
		lex:  lex,
		pre:  pre,
		memo: make(map[string]memoEntry),
	}
}

// stripMarks removes Unicode combining marks (accents, diacritics) left
// behind after NFKD decomposition, the idiomatic golang.org/x/text way to
// fold "café" -> "cafe" without hand-rolling a diacritic table.
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize implements spec.md §4.1's six-step algorithm. It returns
// (name, true) on success or ("", false) when the raw string reduces to a
// measurement token or the empty string.
func (n *Normalizer) Normalize(raw ingredient.RawName) (ingredient.CanonicalName, bool) {
	key := string(raw)
	if n.pre == nil {
		if v, ok := n.lookupMemo(key); ok {
			return v.canonical, v.ok
		}
	}

	s := key
	if n.pre != nil {
		s = n.pre.PreNormalize(s)
	}

	// Step 1: fixed character-substitution table.
	s = n.applyCharmap(s)

	// Step 2: Unicode compatibility decomposition, strip combining marks,
	// lowercase.
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)

	// Step 3: replace runs of non [a-z0-9] with a single space, trim.
	collapsed := collapseToAlnum(folded)

	// Step 4: empty or a bare measurement token -> null.
	if collapsed == "" {
		return n.store(key, "", false)
	}
	if _, isMeasurement := n.lex.measurementSet[collapsed]; isMeasurement {
		return n.store(key, "", false)
	}

	// Step 5: tokenize; if every token is measurement/connector/numeric or
	// ends with a known unit suffix, the whole string is noise.
	tokens := strings.Fields(collapsed)
	if allNoise(tokens, n.lex) {
		return n.store(key, "", false)
	}

	computed := strings.Join(tokens, " ")

	// Step 6: synonym table lookup (already folded on both sides at load
	// time).
	if mapped, ok := n.lex.synonyms[computed]; ok {
		return n.store(key, mapped, true)
	}
	return n.store(key, computed, true)
}

func (n *Normalizer) lookupMemo(key string) (memoEntry, bool) {
	n.memoMu.RLock()
	defer n.memoMu.RUnlock()
	v, ok := n.memo[key]
	return v, ok
}

func (n *Normalizer) store(key string, canonical string, ok bool) (ingredient.CanonicalName, bool) {
	n.memoMu.Lock()
	n.memo[key] = memoEntry{canonical: ingredient.CanonicalName(canonical), ok: ok}
	n.memoMu.Unlock()
	return ingredient.CanonicalName(canonical), ok
}

// applyCharmap performs literal substring replacement per the lexicon's
// charmap table (spec.md §4.1 step 1: "e.g., µ→micro, greek letters to
// names, ®/™ removed, fractions expanded, ß→beta").
func (n *Normalizer) applyCharmap(s string) string {
	for from, to := range n.lex.charmap {
		if from == "" {
			continue
		}
		s = strings.ReplaceAll(s, from, to)
	}
	return s
}

// collapseToAlnum implements step 3: any run of characters outside
// [a-z0-9] becomes a single space, then the result is trimmed.
func collapseToAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inGap := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			inGap = false
			continue
		}
		if !inGap {
			b.WriteByte(' ')
			inGap = true
		}
	}
	return strings.TrimSpace(b.String())
}

// allNoise implements step 5: every token must be a measurement token, a
// connector, a pure numeric literal, or end with a known unit suffix for
// the whole string to be discarded. A single real token (e.g. "hexanediol"
// in "1 2 hexanediol") keeps the whole string alive.
func allNoise(tokens []string, lex *Lexicon) bool {
	for _, t := range tokens {
		if _, ok := lex.measurementSet[t]; ok {
			continue
		}
		if _, ok := lex.connectorSet[t]; ok {
			continue
		}
		if _, err := strconv.ParseFloat(t, 64); err == nil {
			continue
		}
		if endsWithUnitSuffix(t, lex.unitSuffixes) {
			continue
		}
		return false
	}
	return true
}

// endsWithUnitSuffix reports whether token is a unit suffix glued onto a
// numeric (or empty) prefix, e.g. "500mg" -> suffix "mg", prefix "500".
// A bare alphabetic token that merely ends in a unit-like substring (e.g.
// "mg" never occurs as a real ingredient fragment, but "10mg" must not be
// confused with "vitamin e mg"-style multi-token residues, which step 5
// already tokenizes on whitespace) is only treated as noise when the
// remaining prefix is itself numeric or empty.
func endsWithUnitSuffix(token string, suffixes []string) bool {
	for _, suf := range suffixes {
		if suf == "" || !strings.HasSuffix(token, suf) {
			continue
		}
		prefix := strings.TrimSuffix(token, suf)
		if prefix == "" {
			return true
		}
		if _, err := strconv.ParseFloat(prefix, 64); err == nil {
			return true
		}
	}
	return false
}
