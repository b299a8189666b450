package embedding

import "math"

// reduceDimensions implements spec.md §4.7 step 4's "linear dimensionality
// reduction to min(10, N, D) components" via power-iteration PCA: each
// principal component is found by repeatedly multiplying by the
// mean-centered covariance matrix and normalizing, deflating the matrix
// between components. No third-party linear-algebra library appears in
// the retrieved corpus, so this is hand-rolled (see DESIGN.md) — it is a
// few dozen lines for the component counts this engine needs (≤10) and
// avoids pulling in a general-purpose matrix package for one algorithm.
func reduceDimensions(vectors [][]float64, targetDim int) [][]float64 {
	n := len(vectors)
	if n == 0 {
		return vectors
	}
	d := len(vectors[0])
	if targetDim >= d || n <= 1 {
		return vectors
	}

	mean := make([]float64, d)
	for _, v := range vectors {
		for j, x := range v {
			mean[j] += x
		}
	}
	for j := range mean {
		mean[j] /= float64(n)
	}

	centered := make([][]float64, n)
	for i, v := range vectors {
		row := make([]float64, d)
		for j, x := range v {
			row[j] = x - mean[j]
		}
		centered[i] = row
	}

	components := make([][]float64, 0, targetDim)
	working := centered
	for c := 0; c < targetDim; c++ {
		pc := powerIterationComponent(working, d, 100)
		components = append(components, pc)
		working = deflate(working, pc)
	}

	projected := make([][]float64, n)
	for i, row := range centered {
		out := make([]float64, targetDim)
		for c, pc := range components {
			out[c] = dot(row, pc)
		}
		projected[i] = out
	}
	return projected
}

// powerIterationComponent finds the dominant eigenvector of X^T X via
// repeated multiplication and renormalization, without materializing the
// D×D covariance matrix (each iteration instead does two passes over the
// N×D data matrix).
func powerIterationComponent(rows [][]float64, d, iterations int) []float64 {
	v := make([]float64, d)
	for j := range v {
		// Deterministic, non-symmetric starting vector — avoids the
		// zero/degenerate seed a constant vector could hit for some
		// rotations, without depending on math/rand.
		v[j] = 1.0 / float64(j+2)
	}
	normalize(v)

	for iter := 0; iter < iterations; iter++ {
		next := make([]float64, d)
		for _, row := range rows {
			proj := dot(row, v)
			for j := range next {
				next[j] += proj * row[j]
			}
		}
		if norm(next) < 1e-12 {
			break
		}
		normalize(next)
		v = next
	}
	return v
}

// deflate removes the projection along pc from every row, so the next
// power-iteration pass finds the next-dominant orthogonal direction.
func deflate(rows [][]float64, pc []float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		proj := dot(row, pc)
		newRow := make([]float64, len(row))
		for j := range row {
			newRow[j] = row[j] - proj*pc[j]
		}
		out[i] = newRow
	}
	return out
}

// l2Normalize scales v to unit length (spec.md §4.7 step 5). A zero
// vector is left untouched.
func l2Normalize(v []float64) []float64 {
	out := append([]float64(nil), v...)
	normalize(out)
	return out
}

func normalize(v []float64) {
	n := norm(v)
	if n < 1e-12 {
		return
	}
	for i := range v {
		v[i] /= n
	}
}

func norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
