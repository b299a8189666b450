package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReduceDimensions_NoOpWhenAlreadySmall(t *testing.T) {
	vectors := [][]float64{{1, 2}, {3, 4}}
	out := reduceDimensions(vectors, 5)
	assert.Equal(t, vectors, out)
}

func TestReduceDimensions_ProjectsToTargetDimension(t *testing.T) {
	vectors := make([][]float64, 6)
	for i := range vectors {
		row := make([]float64, 20)
		for j := range row {
			row[j] = float64((i+1)*(j+1)) / 7.0
		}
		vectors[i] = row
	}
	out := reduceDimensions(vectors, 4)
	assert.Len(t, out, 6)
	for _, row := range out {
		assert.Len(t, row, 4)
	}
}

func TestL2Normalize_ProducesUnitVector(t *testing.T) {
	v := l2Normalize([]float64{3, 4})
	assert.InDelta(t, 1.0, norm(v), 1e-9)
}

func TestL2Normalize_ZeroVectorUnchanged(t *testing.T) {
	v := l2Normalize([]float64{0, 0, 0})
	assert.Equal(t, []float64{0, 0, 0}, v)
}

func TestDot_ComputesInnerProduct(t *testing.T) {
	assert.Equal(t, 11.0, dot([]float64{1, 2}, []float64{3, 4}))
}
