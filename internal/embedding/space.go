// Package embedding implements the Embedding Space (spec.md §4.7): a
// TF-IDF + numeric-feature vector representation of every SafetyProfile in
// the catalog, dimensionality-reduced and k-means clustered, giving the
// Substitution Engine a fast similarity metric and cluster-scoped
// candidate pre-filter.
package embedding

import (
	"sort"
	"sync"

	"github.com/ingredient-intel/iie/internal/domain/ingredient"
	"github.com/ingredient-intel/iie/internal/domain/safety"
	"github.com/ingredient-intel/iie/internal/embedding/kmeans"
)

// reductionThreshold is the raw (TF-IDF + numeric) dimension above which
// step 4's dimensionality reduction kicks in (spec.md §4.7 step 4).
const reductionThreshold = 32

// maxReducedDim is the reduction ceiling referenced by "min(10, N, D)".
const maxReducedDim = 10

// minClusterableProfiles is the N ≥ 4 threshold from spec.md §4.7 step 6.
const minClusterableProfiles = 4

// kmeansSeed/kmeansIterations parameterize the deterministic clustering
// pass (internal/embedding/kmeans has no notion of a "correct" seed; any
// fixed value keeps rebuilds reproducible).
const (
	kmeansSeed       = 1
	kmeansIterations = 50
)

// snapshot is one immutable, fully-built view of the embedding space.
// Readers only ever see a complete snapshot — never a half-built one
// (spec.md §4.7 "Concurrency").
type snapshot struct {
	vectors   map[ingredient.CanonicalName][]float64
	clusterOf map[ingredient.CanonicalName]int
	order     []ingredient.CanonicalName // stable order vectors were built in
	builtFrom int                        // profile count at last build
}

func emptySnapshot() *snapshot {
	return &snapshot{
		vectors:   map[ingredient.CanonicalName][]float64{},
		clusterOf: map[ingredient.CanonicalName]int{},
	}
}

// Space is the reader-writer-locked, atomically-replaced embedding index.
// Rebuild takes the writer lock and swaps in a new snapshot only once it's
// fully computed; queries take the reader lock against whichever snapshot
// is current.
type Space struct {
	mu      sync.RWMutex
	current *snapshot
	encoder Encoder

	// rebuildAdditions/rebuildPercent are the rebuild trigger thresholds
	// (spec.md §4.7: "≥ R additions or ≥ F percent change since last
	// build").
	rebuildAdditions int
	rebuildPercent   float64

	addedSinceBuild int
}

// Config tunes the rebuild trigger thresholds.
type Config struct {
	RebuildAfterAdditions int
	RebuildAfterPercent   float64
	MaxVocabulary         int
}

// DefaultConfig returns sane trigger defaults: rebuild after 50 additions
// or a 10% change in catalog size, TF-IDF vocabulary capped at 4096 terms.
func DefaultConfig() Config {
	return Config{RebuildAfterAdditions: 50, RebuildAfterPercent: 0.10, MaxVocabulary: 4096}
}

// New returns an empty Space. Call Build once the catalog has profiles to
// index.
func New(cfg Config) *Space {
	if cfg.RebuildAfterAdditions <= 0 {
		cfg.RebuildAfterAdditions = 50
	}
	if cfg.RebuildAfterPercent <= 0 {
		cfg.RebuildAfterPercent = 0.10
	}
	return &Space{
		encoder:          NewTFIDFEncoder(cfg.MaxVocabulary),
		rebuildAdditions: cfg.RebuildAfterAdditions,
		rebuildPercent:   cfg.RebuildAfterPercent,
		current:          emptySnapshot(),
	}
}

// NoteAddition records that one profile was added or materially changed
// since the last build, for ShouldRebuild's trigger check.
func (s *Space) NoteAddition() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addedSinceBuild++
}

// ShouldRebuild reports whether accumulated additions cross either rebuild
// trigger threshold (spec.md §4.7: "≥ R additions or ≥ F percent change").
func (s *Space) ShouldRebuild() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.addedSinceBuild >= s.rebuildAdditions {
		return true
	}
	base := s.current.builtFrom
	if base == 0 {
		return s.addedSinceBuild > 0
	}
	return float64(s.addedSinceBuild)/float64(base) >= s.rebuildPercent
}

// Build fits the encoder, computes and reduces every profile's vector,
// clusters them, and atomically replaces the current snapshot (spec.md
// §4.7 steps 1–6). All the expensive computation happens against local
// values; the snapshot pointer swap under the writer lock is the only
// part that blocks concurrent readers.
func (s *Space) Build(profiles []*safety.SafetyProfile) {
	s.mu.RLock()
	enc := s.encoder
	s.mu.RUnlock()

	enc.Fit(profiles)

	order := make([]ingredient.CanonicalName, len(profiles))
	raw := make([][]float64, len(profiles))
	for i, p := range profiles {
		order[i] = p.CanonicalName
		raw[i] = enc.Encode(p)
	}

	reduced := raw
	if len(raw) > 0 && len(raw[0]) > reductionThreshold && len(raw) > 1 {
		target := maxReducedDim
		if len(raw) < target {
			target = len(raw)
		}
		if len(raw[0]) < target {
			target = len(raw[0])
		}
		reduced = reduceDimensions(raw, target)
	}

	vectors := make(map[ingredient.CanonicalName][]float64, len(order))
	for i, name := range order {
		vectors[name] = l2Normalize(reduced[i])
	}

	clusterOf := make(map[ingredient.CanonicalName]int, len(order))
	if len(order) >= minClusterableProfiles {
		k := clampInt(len(order)/4, 2, len(order)-1)
		vecSlice := make([][]float64, len(order))
		for i, name := range order {
			vecSlice[i] = vectors[name]
		}
		result := kmeans.Run(vecSlice, k, kmeansIterations, kmeansSeed)
		for i, name := range order {
			clusterOf[name] = result.Labels[i]
		}
	}

	next := &snapshot{
		vectors:   vectors,
		clusterOf: clusterOf,
		order:     order,
		builtFrom: len(profiles),
	}

	s.mu.Lock()
	s.current = next
	s.addedSinceBuild = 0
	s.mu.Unlock()
}

// VectorOf returns a's current embedding vector, or (nil, false) if a has
// never been indexed.
func (s *Space) VectorOf(a ingredient.CanonicalName) ([]float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.current.vectors[a]
	return v, ok
}

// Similarity implements `similarity(a, b) = (⟨v_a, v_b⟩ + 1) / 2` (spec.md
// §4.7 "Query"), mapping cosine-like similarity of two unit vectors into
// [0,1]. Returns 0.5 (neutral) if either name is unindexed.
func (s *Space) Similarity(a, b ingredient.CanonicalName) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	va, okA := s.current.vectors[a]
	vb, okB := s.current.vectors[b]
	if !okA || !okB {
		return 0.5
	}
	return (dot(va, vb) + 1) / 2
}

// ClusterOf returns a's cluster id and whether it was assigned one
// (profiles are clustered only once the indexed catalog reaches
// minClusterableProfiles).
func (s *Space) ClusterOf(a ingredient.CanonicalName) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.current.clusterOf[a]
	return c, ok
}

// scoredCandidate is one RankByProximity result before the name is peeled
// back off.
type scoredCandidate struct {
	name        ingredient.CanonicalName
	sameCluster bool
	similarity  float64
}

// RankByProximity returns every indexed name other than target, ordered by
// (same-cluster-as-target, similarity) descending, per spec.md §4.7
// "Cluster use". Falls back to a plain similarity-desc linear scan when
// target is uncategorized (absent from any cluster).
func (s *Space) RankByProximity(target ingredient.CanonicalName, topM int) []ingredient.CanonicalName {
	s.mu.RLock()
	defer s.mu.RUnlock()

	targetCluster, hasCluster := s.current.clusterOf[target]
	tv, hasVec := s.current.vectors[target]

	candidates := make([]scoredCandidate, 0, len(s.current.order))
	for _, name := range s.current.order {
		if name == target {
			continue
		}
		sim := 0.5
		if hasVec {
			sim = (dot(tv, s.current.vectors[name]) + 1) / 2
		}
		same := false
		if hasCluster {
			if c, ok := s.current.clusterOf[name]; ok && c == targetCluster {
				same = true
			}
		}
		candidates = append(candidates, scoredCandidate{name: name, sameCluster: same, similarity: sim})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.sameCluster != b.sameCluster {
			return a.sameCluster
		}
		return a.similarity > b.similarity
	})

	if topM > 0 && topM < len(candidates) {
		candidates = candidates[:topM]
	}
	out := make([]ingredient.CanonicalName, len(candidates))
	for i, c := range candidates {
		out[i] = c.name
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
