package core

import (
	"fmt"
	"math"
)

// Default threshold sweep parameters: a dense grid from 0.01 to 0.99.
const (
	defaultGridStart = 0.01
	defaultGridStop  = 0.99
	defaultGridStep  = 0.01
)

// DefaultThresholds returns the default dense threshold sweep. The endpoints
// 0 and 1 are excluded because the odds term pt/(1-pt) is degenerate there.
func DefaultThresholds() []float64 {
	var grid []float64
	for i := 0; ; i++ {
		pt := defaultGridStart + float64(i)*defaultGridStep
		if pt > defaultGridStop+1e-12 {
			break
		}
		grid = append(grid, pt)
	}
	return grid
}

// newThresholdGrid validates the caller-supplied grid, or falls back to the
// default sweep when values is nil. The returned slice is a private copy:
// concurrent or repeated analyses never share grid state.
func newThresholdGrid(values []float64) ([]float64, error) {
	if values == nil {
		return DefaultThresholds(), nil
	}
	if len(values) == 0 {
		return nil, ErrEmptyThresholdGrid
	}
	grid := make([]float64, len(values))
	prev := 0.0
	for i, pt := range values {
		if math.IsNaN(pt) || pt <= 0 || pt >= 1 {
			return nil, fmt.Errorf("%w: %g is outside the open interval (0,1)", ErrInvalidThreshold, pt)
		}
		if pt <= prev {
			return nil, fmt.Errorf("%w: thresholds must be strictly increasing (%g after %g)", ErrInvalidThreshold, pt, prev)
		}
		grid[i] = pt
		prev = pt
	}
	return grid, nil
}
