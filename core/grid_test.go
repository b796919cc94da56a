package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultThresholds(t *testing.T) {
	grid := DefaultThresholds()

	require.Len(t, grid, 99)
	assert.InDelta(t, 0.01, grid[0], 1e-12)
	assert.InDelta(t, 0.99, grid[98], 1e-12)

	for i := 1; i < len(grid); i++ {
		assert.Greater(t, grid[i], grid[i-1])
	}
}

func TestNewThresholdGridDefault(t *testing.T) {
	grid, err := newThresholdGrid(nil)
	require.NoError(t, err)
	assert.Len(t, grid, 99)
}

func TestNewThresholdGridValidation(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   error
	}{
		{"empty", []float64{}, ErrEmptyThresholdGrid},
		{"zero", []float64{0, 0.5}, ErrInvalidThreshold},
		{"one", []float64{0.5, 1}, ErrInvalidThreshold},
		{"negative", []float64{-0.1, 0.5}, ErrInvalidThreshold},
		{"nan", []float64{0.1, math.NaN()}, ErrInvalidThreshold},
		{"duplicate", []float64{0.1, 0.1}, ErrInvalidThreshold},
		{"decreasing", []float64{0.3, 0.2}, ErrInvalidThreshold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newThresholdGrid(tt.values)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewThresholdGridCopies(t *testing.T) {
	values := []float64{0.1, 0.2, 0.3}
	grid, err := newThresholdGrid(values)
	require.NoError(t, err)

	values[0] = 0.9
	assert.InDelta(t, 0.1, grid[0], 1e-12)
}
