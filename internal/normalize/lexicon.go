package normalize

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/ingredient-intel/iie/pkg/errors"
)

//go:embed lexicon/charmap.yaml
var charmapYAML []byte

//go:embed lexicon/measurement_tokens.yaml
var measurementYAML []byte

//go:embed lexicon/synonyms.yaml
var synonymsYAML []byte

//go:embed lexicon/categories.yaml
var categoriesYAML []byte

type charmapFile struct {
	Substitutions map[string]string `yaml:"substitutions"`
}

type measurementFile struct {
	Tokens       []string `yaml:"tokens"`
	Connectors   []string `yaml:"connectors"`
	UnitSuffixes []string `yaml:"unit_suffixes"`
}

type synonymsFile struct {
	Entries map[string]string `yaml:"entries"`
}

type categoriesFile struct {
	Assignments map[string][]string `yaml:"assignments"`
}

// Lexicon bundles every static data table the Normalizer consults. It is
// immutable after Load and safe for concurrent read access from many
// goroutines, matching spec.md §2 component 2 ("static data loaded at
// start").
type Lexicon struct {
	charmap         map[string]string
	measurementSet  map[string]struct{}
	connectorSet    map[string]struct{}
	unitSuffixes    []string
	synonyms        map[string]string
	categoryAssign  map[string][]string
}

// LoadLexicon parses the embedded YAML tables. It only fails if the bundled
// data itself is malformed, which would indicate a build-time defect rather
// than a runtime condition.
func LoadLexicon() (*Lexicon, error) {
	var cm charmapFile
	if err := yaml.Unmarshal(charmapYAML, &cm); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeLexiconLoadError, "parse charmap.yaml")
	}
	var ms measurementFile
	if err := yaml.Unmarshal(measurementYAML, &ms); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeLexiconLoadError, "parse measurement_tokens.yaml")
	}
	var sy synonymsFile
	if err := yaml.Unmarshal(synonymsYAML, &sy); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeLexiconLoadError, "parse synonyms.yaml")
	}
	var ca categoriesFile
	if err := yaml.Unmarshal(categoriesYAML, &ca); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeLexiconLoadError, "parse categories.yaml")
	}

	lex := &Lexicon{
		charmap:        cm.Substitutions,
		measurementSet: toSet(ms.Tokens),
		connectorSet:   toSet(ms.Connectors),
		unitSuffixes:   ms.UnitSuffixes,
		synonyms:       make(map[string]string, len(sy.Entries)),
		categoryAssign: ca.Assignments,
	}

	// Synonym keys/values are stored pre-folded so lookup at normalize time
	// is a single map access with no re-normalization (step 6 notes both
	// sides of the table are "canonicalized beforehand").
	for k, v := range sy.Entries {
		lex.synonyms[foldBasic(k)] = foldBasic(v)
	}
	return lex, nil
}

func toSet(items []string) map[string]struct{} {
	s := make(map[string]struct{}, len(items))
	for _, it := range items {
		s[strings.ToLower(strings.TrimSpace(it))] = struct{}{}
	}
	return s
}

// foldBasic applies just the whitespace-collapse/lowercase rules so synonym
// table entries are comparable with the Normalizer's computed output
// without re-running the full Unicode pipeline on static data.
func foldBasic(s string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	return strings.Join(fields, " ")
}

// CategoriesOf returns the raw (string) functional categories bundled for a
// canonical name, or nil if none are recorded.
func (l *Lexicon) CategoriesOf(canonical string) []string {
	return l.categoryAssign[canonical]
}

// MustLoadLexicon is a convenience wrapper for startup code paths (cmd/*)
// that treat a lexicon load failure as fatal.
func MustLoadLexicon() *Lexicon {
	lex, err := LoadLexicon()
	if err != nil {
		panic(fmt.Sprintf("normalize: failed to load bundled lexicon: %v", err))
	}
	return lex
}
