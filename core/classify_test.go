package core

import (
	"math"
	"testing"

	"github.com/ltin1214/dcurves/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClassifierValidation(t *testing.T) {
	tests := []struct {
		name    string
		p       schema.Predictor
		n       int
		wantErr error
	}{
		{
			name:    "length mismatch",
			p:       schema.Predictor{Name: "m", Kind: schema.ProbabilityKind, Scores: []float64{0.1}},
			n:       3,
			wantErr: ErrMismatchedLength,
		},
		{
			name:    "all missing",
			p:       schema.Predictor{Name: "m", Kind: schema.ProbabilityKind, Scores: []float64{math.NaN(), math.NaN()}},
			n:       2,
			wantErr: ErrDegenerateScore,
		},
		{
			name:    "probability outside unit interval",
			p:       schema.Predictor{Name: "m", Kind: schema.ProbabilityKind, Scores: []float64{0.2, 1.4}},
			n:       2,
			wantErr: ErrInvalidPredictorKind,
		},
		{
			name:    "indicator outside zero one",
			p:       schema.Predictor{Name: "m", Kind: schema.IndicatorKind, Scores: []float64{0, 0.5}},
			n:       2,
			wantErr: ErrInvalidPredictorKind,
		},
		{
			name:    "constant raw score",
			p:       schema.Predictor{Name: "m", Kind: schema.RawKind, Scores: []float64{3, 3, 3}},
			n:       3,
			wantErr: ErrDegenerateScore,
		},
		{
			name:    "unknown kind",
			p:       schema.Predictor{Name: "m", Kind: schema.ScoreKind("logit"), Scores: []float64{0.2}},
			n:       1,
			wantErr: ErrInvalidPredictorKind,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newClassifier(tt.p, tt.n)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewClassifierRawRescale(t *testing.T) {
	c, err := newClassifier(schema.Predictor{
		Name:   "psa",
		Kind:   schema.RawKind,
		Scores: []float64{2, 4, 6},
	}, 3)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, c.scores[0], 1e-12)
	assert.InDelta(t, 0.5, c.scores[1], 1e-12)
	assert.InDelta(t, 1.0, c.scores[2], 1e-12)
}

func TestNewClassifierDropsMissing(t *testing.T) {
	c, err := newClassifier(schema.Predictor{
		Name:   "m",
		Kind:   schema.ProbabilityKind,
		Scores: []float64{0.2, math.NaN(), 0.8},
	}, 3)
	require.NoError(t, err)

	assert.Equal(t, 2, c.n())
	assert.Equal(t, []int{0, 2}, c.index)
	assert.Equal(t, []float64{0.2, 0.8}, c.scores)
}

func TestWouldActProbability(t *testing.T) {
	c, err := newClassifier(schema.Predictor{
		Name:   "m",
		Kind:   schema.ProbabilityKind,
		Scores: []float64{0.1, 0.3, 0.3, 0.9},
	}, 4)
	require.NoError(t, err)

	// Scores exactly at the threshold act.
	assert.Equal(t, []bool{false, true, true, true}, c.wouldAct(0.3))
	assert.Equal(t, []bool{false, false, false, true}, c.wouldAct(0.5))
}

func TestWouldActIndicatorIgnoresThreshold(t *testing.T) {
	c, err := newClassifier(schema.Predictor{
		Name:   "rec",
		Kind:   schema.IndicatorKind,
		Scores: []float64{1, 0, 1},
	}, 3)
	require.NoError(t, err)

	for _, pt := range []float64{0.01, 0.5, 0.99} {
		assert.Equal(t, []bool{true, false, true}, c.wouldAct(pt))
	}
}
