// Package kmeans implements Lloyd's algorithm for k-means clustering over
// L2-normalized vectors (spec.md §4.7 step 6). Hand-rolled for the same
// reason as internal/embedding/tfidf: no Go numerical/ML library appears
// anywhere in the retrieved example corpus to ground a dependency on
// (see DESIGN.md).
package kmeans

import (
	"math"
)

// Result is one run's cluster assignment.
type Result struct {
	Labels    []int       // Labels[i] is vector i's cluster id
	Centroids [][]float64 // final centroid positions
}

// Run performs Lloyd's algorithm with deterministic k-means++-style
// initialization (see initCentroids), for maxIterations iterations or until
// assignments stop changing. seed is accepted but not used: initialization
// involves no randomness, so repeated runs on the same input agree.
func Run(vectors [][]float64, k int, maxIterations int, seed int64) Result {
	n := len(vectors)
	if n == 0 || k <= 0 {
		return Result{}
	}
	if k > n {
		k = n
	}

	centroids := initCentroids(vectors, k, seed)
	labels := make([]int, n)

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, v := range vectors {
			best, bestDist := 0, math.Inf(1)
			for c, centroid := range centroids {
				d := squaredDistance(v, centroid)
				if d < bestDist {
					best, bestDist = c, d
				}
			}
			if labels[i] != best {
				changed = true
				labels[i] = best
			}
		}

		newCentroids := recomputeCentroids(vectors, labels, k)
		centroids = newCentroids

		if !changed && iter > 0 {
			break
		}
	}

	return Result{Labels: labels, Centroids: centroids}
}

// initCentroids picks k initial centroids via a deterministic
// k-means++-style farthest-point seeding: the first centroid is the
// vector closest to the global mean, and each subsequent centroid is the
// vector farthest (in squared distance) from its nearest existing
// centroid. This avoids the nondeterminism of random seeding while
// retaining k-means++'s spread-out initialization property.
func initCentroids(vectors [][]float64, k int, seed int64) [][]float64 {
	n := len(vectors)
	dim := len(vectors[0])

	mean := make([]float64, dim)
	for _, v := range vectors {
		for j, x := range v {
			mean[j] += x
		}
	}
	for j := range mean {
		mean[j] /= float64(n)
	}

	startIdx := 0
	bestDist := math.Inf(1)
	for i, v := range vectors {
		d := squaredDistance(v, mean)
		if d < bestDist {
			bestDist, startIdx = d, i
		}
	}

	centroids := [][]float64{cloneVec(vectors[startIdx])}
	chosen := map[int]struct{}{startIdx: {}}

	for len(centroids) < k {
		farthestIdx, farthestDist := -1, -1.0
		for i, v := range vectors {
			if _, ok := chosen[i]; ok {
				continue
			}
			minDist := math.Inf(1)
			for _, c := range centroids {
				d := squaredDistance(v, c)
				if d < minDist {
					minDist = d
				}
			}
			if minDist > farthestDist {
				farthestDist, farthestIdx = minDist, i
			}
		}
		if farthestIdx < 0 {
			break
		}
		centroids = append(centroids, cloneVec(vectors[farthestIdx]))
		chosen[farthestIdx] = struct{}{}
	}

	return centroids
}

func recomputeCentroids(vectors [][]float64, labels []int, k int) [][]float64 {
	dim := len(vectors[0])
	sums := make([][]float64, k)
	counts := make([]int, k)
	for c := range sums {
		sums[c] = make([]float64, dim)
	}
	for i, v := range vectors {
		c := labels[i]
		counts[c]++
		for j, x := range v {
			sums[c][j] += x
		}
	}
	for c := range sums {
		if counts[c] == 0 {
			// Empty cluster: keep its previous position by reusing the
			// farthest point from all other centroids would require extra
			// bookkeeping; falling back to the global first vector avoids
			// a NaN centroid without materially affecting convergence on
			// the catalog sizes this engine targets.
			sums[c] = cloneVec(vectors[0])
			continue
		}
		for j := range sums[c] {
			sums[c][j] /= float64(counts[c])
		}
	}
	return sums
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func cloneVec(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
