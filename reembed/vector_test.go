package reembed

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeVector(t *testing.T) {
	t.Run("scales to unit length", func(t *testing.T) {
		out := NormalizeVector([]float32{3, 4})
		assert.InDelta(t, 0.6, out[0], 1e-6)
		assert.InDelta(t, 0.8, out[1], 1e-6)

		var norm float64
		for _, x := range out {
			norm += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)
	})

	t.Run("zero vector unchanged", func(t *testing.T) {
		out := NormalizeVector([]float32{0, 0, 0})
		assert.Equal(t, []float32{0, 0, 0}, out)
	})

	t.Run("empty vector unchanged", func(t *testing.T) {
		assert.Empty(t, NormalizeVector(nil))
	})

	t.Run("unit vector stays put", func(t *testing.T) {
		out := NormalizeVector([]float32{1, 0})
		assert.InDelta(t, 1.0, out[0], 1e-6)
		assert.InDelta(t, 0.0, out[1], 1e-6)
	})
}
