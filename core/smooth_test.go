package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmoothCurveBelowMinPoints(t *testing.T) {
	assert.Nil(t, smoothCurve([]float64{0.1, 0.2}, []float64{1, 2}, 0.65, 3))
}

func TestSmoothCurveReproducesLine(t *testing.T) {
	// A weighted linear fit recovers linear data exactly, at every span.
	grid := DefaultThresholds()
	values := make([]float64, len(grid))
	for i, pt := range grid {
		values[i] = 0.4 - 0.3*pt
	}

	for _, span := range []float64{0.2, 0.65, 1.0} {
		smoothed := smoothCurve(grid, values, span, 3)
		require.Len(t, smoothed, len(values))
		for i := range values {
			assert.InDelta(t, values[i], smoothed[i], 1e-9)
		}
	}
}

func TestSmoothCurveReproducesConstant(t *testing.T) {
	grid := []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	values := []float64{0.25, 0.25, 0.25, 0.25, 0.25}

	smoothed := smoothCurve(grid, values, 0.65, 3)
	require.Len(t, smoothed, len(values))
	for _, v := range smoothed {
		assert.InDelta(t, 0.25, v, 1e-12)
	}
}

func TestSmoothCurveDampsNoise(t *testing.T) {
	grid := DefaultThresholds()
	values := make([]float64, len(grid))
	for i := range grid {
		values[i] = 0.2
		if i%2 == 0 {
			values[i] = 0.3
		}
	}

	smoothed := smoothCurve(grid, values, 0.65, 3)
	require.Len(t, smoothed, len(values))

	// Interior points should be pulled toward the sawtooth's mean.
	for i := 10; i < len(grid)-10; i++ {
		assert.InDelta(t, 0.25, smoothed[i], 0.02)
	}
}

func TestSmoothCurveLeavesInputAlone(t *testing.T) {
	grid := []float64{0.1, 0.2, 0.3, 0.4}
	values := []float64{1, 5, 2, 8}
	original := []float64{1, 5, 2, 8}

	_ = smoothCurve(grid, values, 0.75, 3)
	assert.Equal(t, original, values)
}
