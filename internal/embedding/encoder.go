package embedding

import (
	"github.com/ingredient-intel/iie/internal/domain/safety"
	"github.com/ingredient-intel/iie/internal/embedding/tfidf"
)

// Encoder turns a SafetyProfile into the feature vector a Space fits and
// queries against. The default wired implementation is TFIDFEncoder; the
// interface exists so a pre-trained text encoder could be substituted
// later (spec.md §9 design note on pluggable embedding backends) without
// touching Space's rebuild/query logic.
type Encoder interface {
	// Fit trains the encoder across every profile's text signature.
	Fit(profiles []*safety.SafetyProfile)
	// Encode maps one profile to its raw (pre-reduction) feature vector.
	Encode(profile *safety.SafetyProfile) []float64
}

// TFIDFEncoder is the Encoder this engine ships: a TF-IDF vectorizer over
// each profile's text signature, concatenated with the numeric feature
// vector from spec.md §4.7 step 3.
type TFIDFEncoder struct {
	vectorizer *tfidf.Vectorizer
}

// NewTFIDFEncoder returns an unfitted TFIDFEncoder capped at maxVocab
// TF-IDF vocabulary terms.
func NewTFIDFEncoder(maxVocab int) *TFIDFEncoder {
	return &TFIDFEncoder{vectorizer: tfidf.New(maxVocab)}
}

func (e *TFIDFEncoder) Fit(profiles []*safety.SafetyProfile) {
	signatures := make([]string, len(profiles))
	for i, p := range profiles {
		signatures[i] = textSignature(p)
	}
	e.vectorizer.Fit(signatures)
}

func (e *TFIDFEncoder) Encode(profile *safety.SafetyProfile) []float64 {
	text := e.vectorizer.Transform(textSignature(profile))
	numeric := numericFeatures(profile)
	out := make([]float64, 0, len(text)+len(numeric))
	out = append(out, text...)
	out = append(out, numeric...)
	return out
}
