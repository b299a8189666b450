// Package tfidf implements a minimal term-frequency / inverse-document-
// frequency vectorizer over 1–3-gram tokenized text signatures (spec.md
// §4.7 step 2). No third-party ML/stats library in the retrieved corpus
// targets Go (see DESIGN.md); this hand-rolled vectorizer plays the role
// the original Python engine gave scikit-learn's TfidfVectorizer
// (max_features, ngram_range=(1,3)).
package tfidf

import (
	"math"
	"sort"
	"strings"
)

// Vectorizer holds a fitted vocabulary and document frequencies.
type Vectorizer struct {
	MaxFeatures int
	vocab       map[string]int // term -> column index
	idf         []float64
}

// New returns an unfitted Vectorizer capped at maxFeatures vocabulary
// terms (0 means unbounded).
func New(maxFeatures int) *Vectorizer {
	return &Vectorizer{MaxFeatures: maxFeatures}
}

// Tokenize splits already-normalized text on whitespace and emits every
// 1-, 2-, and 3-gram (spec.md §4.7 step 2: "ngram_range 1-3").
func Tokenize(text string) []string {
	words := strings.Fields(text)
	var grams []string
	for n := 1; n <= 3 && n <= len(words); n++ {
		for i := 0; i+n <= len(words); i++ {
			grams = append(grams, strings.Join(words[i:i+n], "_"))
		}
	}
	return grams
}

// Fit builds the vocabulary and IDF table from a corpus of raw
// (unnormalized-whitespace, already-tokenizable) documents.
func (v *Vectorizer) Fit(documents []string) {
	docFreq := map[string]int{}
	docsTokens := make([][]string, len(documents))
	for i, doc := range documents {
		tokens := Tokenize(doc)
		docsTokens[i] = tokens
		seen := map[string]struct{}{}
		for _, t := range tokens {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			docFreq[t]++
		}
	}

	terms := make([]string, 0, len(docFreq))
	for t := range docFreq {
		terms = append(terms, t)
	}
	// Rank by document frequency descending (most informative-but-common
	// terms first), tie-broken lexically for determinism, then truncate to
	// MaxFeatures.
	sort.Slice(terms, func(i, j int) bool {
		if docFreq[terms[i]] != docFreq[terms[j]] {
			return docFreq[terms[i]] > docFreq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		terms = terms[:v.MaxFeatures]
	}

	v.vocab = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	n := float64(len(documents))
	for i, t := range terms {
		v.vocab[t] = i
		// Smoothed IDF: ln(N / (1+df)) + 1, keeps every term's weight
		// positive even when df == N.
		v.idf[i] = math.Log(n/(1+float64(docFreq[t]))) + 1
	}
}

// Dim returns the fitted vocabulary size.
func (v *Vectorizer) Dim() int { return len(v.vocab) }

// Transform maps one document to its TF-IDF vector in the fitted
// vocabulary space. Terms outside the vocabulary are ignored.
func (v *Vectorizer) Transform(document string) []float64 {
	vec := make([]float64, len(v.vocab))
	tokens := Tokenize(document)
	if len(tokens) == 0 {
		return vec
	}
	termCount := map[string]int{}
	for _, t := range tokens {
		termCount[t]++
	}
	total := float64(len(tokens))
	for t, count := range termCount {
		idx, ok := v.vocab[t]
		if !ok {
			continue
		}
		tf := float64(count) / total
		vec[idx] = tf * v.idf[idx]
	}
	return vec
}
