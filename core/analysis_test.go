package core

import (
	"testing"

	"github.com/ltin1214/dcurves/internal/contract"
	"github.com/ltin1214/dcurves/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func binaryCohort() *schema.Cohort {
	outcome := []bool{true, true, true, false, false, false, false, false, false, false}
	scores := []float64{0.9, 0.8, 0.4, 0.6, 0.3, 0.2, 0.2, 0.1, 0.1, 0.1}
	return &schema.Cohort{
		N:       len(outcome),
		Outcome: outcome,
		Predictors: []schema.Predictor{
			{Name: "model", Kind: schema.ProbabilityKind, Scores: scores},
		},
	}
}

func TestRunBinaryTableShape(t *testing.T) {
	cfg := &contract.Config{
		Regime:     schema.BinaryRegime,
		Thresholds: []float64{0.1, 0.2, 0.3},
		Workers:    4,
	}

	result, err := Run(cfg, binaryCohort())
	require.NoError(t, err)
	require.Empty(t, result.Skipped)

	table := result.Table
	assert.Equal(t, 9, table.Len())
	assert.Equal(t, []string{schema.TreatAllStrategy, schema.TreatNoneStrategy, "model"}, table.Strategies())

	// Strategy-major, threshold-ascending ordering with references first.
	rows := table.Rows()
	assert.Equal(t, schema.TreatAllStrategy, rows[0].Strategy)
	assert.InDelta(t, 0.1, rows[0].Threshold, 1e-12)
	assert.Equal(t, schema.TreatNoneStrategy, rows[3].Strategy)
	assert.Equal(t, "model", rows[6].Strategy)
	assert.InDelta(t, 0.3, rows[8].Threshold, 1e-12)
}

func TestRunReferenceStrategies(t *testing.T) {
	cfg := &contract.Config{
		Regime:     schema.BinaryRegime,
		Thresholds: []float64{0.1, 0.3, 0.5},
		Workers:    2,
	}

	result, err := Run(cfg, binaryCohort())
	require.NoError(t, err)

	for _, r := range result.Table.Strategy(schema.TreatAllStrategy) {
		assert.InDelta(t, 0.3, r.TPRate, 1e-12)
		assert.InDelta(t, 0.7, r.FPRate, 1e-12)
		want := 0.3 - 0.7*odds(r.Threshold)
		assert.InDelta(t, want, r.NetBenefit, 1e-12)
	}

	nbAll := map[float64]float64{}
	for _, r := range result.Table.Strategy(schema.TreatAllStrategy) {
		nbAll[r.Threshold] = r.NetBenefit
	}
	for _, r := range result.Table.Strategy(schema.TreatNoneStrategy) {
		assert.Equal(t, 10, r.N)
		assert.Zero(t, r.NetBenefit)
		assert.InDelta(t, (0-nbAll[r.Threshold])/odds(r.Threshold), r.NetInterventionAvoided, 1e-12)
	}
}

func TestRunPredictorRowsMatchDirectComputation(t *testing.T) {
	coh := binaryCohort()
	cfg := &contract.Config{
		Regime:     schema.BinaryRegime,
		Thresholds: []float64{0.25, 0.5},
		Workers:    3,
		Harms:      map[string]float64{"model": 0.02},
	}

	result, err := Run(cfg, coh)
	require.NoError(t, err)

	cls, err := newClassifier(coh.Predictors[0], coh.N)
	require.NoError(t, err)
	e := &binaryEstimator{outcome: coh.Outcome}

	for _, r := range result.Table.Strategy("model") {
		est := e.estimate(cls.wouldAct(r.Threshold), r.Threshold)
		assert.InDelta(t, est.tpRate, r.TPRate, 1e-12)
		assert.InDelta(t, est.fpRate, r.FPRate, 1e-12)
		assert.InDelta(t, 0.02, r.Harm, 1e-12)
		assert.InDelta(t, netBenefit(est, r.Threshold, 0.02), r.NetBenefit, 1e-12)
	}
}

func TestRunHarmNotChargedWhenNobodyActs(t *testing.T) {
	coh := &schema.Cohort{
		N:       4,
		Outcome: []bool{true, false, false, false},
		Predictors: []schema.Predictor{
			{Name: "model", Kind: schema.ProbabilityKind, Scores: []float64{0.2, 0.1, 0.1, 0.1}},
		},
	}
	cfg := &contract.Config{
		Regime:     schema.BinaryRegime,
		Thresholds: []float64{0.1, 0.9},
		Workers:    2,
		Harms:      map[string]float64{"model": 0.05},
	}

	result, err := Run(cfg, coh)
	require.NoError(t, err)

	rows := result.Table.Strategy("model")
	require.Len(t, rows, 2)

	// At 0.1 everyone acts and the full harm applies.
	assert.InDelta(t, 0.25-0.75*odds(0.1)-0.05, rows[0].NetBenefit, 1e-12)

	// No score clears 0.9, so nothing is spent and the curve coincides
	// with treat-none instead of dipping to -harm.
	assert.Zero(t, rows[1].TPRate)
	assert.Zero(t, rows[1].FPRate)
	assert.Zero(t, rows[1].NetBenefit)
}

func TestRunSkipsBadPredictor(t *testing.T) {
	coh := binaryCohort()
	coh.Predictors = append(coh.Predictors, schema.Predictor{
		Name:   "flat",
		Kind:   schema.RawKind,
		Scores: []float64{5, 5, 5, 5, 5, 5, 5, 5, 5, 5},
	})

	cfg := &contract.Config{
		Regime:     schema.BinaryRegime,
		Thresholds: []float64{0.1, 0.2},
		Workers:    2,
	}

	result, err := Run(cfg, coh)
	require.NoError(t, err)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "flat", result.Skipped[0].Name)
	assert.ErrorIs(t, result.Skipped[0].Err, ErrDegenerateScore)

	// The healthy predictor and both references are unaffected.
	assert.Equal(t, 6, result.Table.Len())
	assert.NotContains(t, result.Table.Strategies(), "flat")
}

func TestRunIsDeterministicAcrossWorkerCounts(t *testing.T) {
	coh := binaryCohort()
	base := &contract.Config{Regime: schema.BinaryRegime, Workers: 1}
	wide := &contract.Config{Regime: schema.BinaryRegime, Workers: 8}

	one, err := Run(base, coh)
	require.NoError(t, err)
	many, err := Run(wide, coh)
	require.NoError(t, err)

	assert.Equal(t, one.Table.Rows(), many.Table.Rows())
}

func TestRunSmoothingAnnotates(t *testing.T) {
	cfg := &contract.Config{
		Regime:  schema.BinaryRegime,
		Workers: 2,
		Smooth:  true,
		Span:    0.65,
	}

	result, err := Run(cfg, binaryCohort())
	require.NoError(t, err)

	exact := map[float64]float64{}
	for _, r := range result.Table.Strategy("model") {
		assert.True(t, r.Smoothed)
		exact[r.Threshold] = r.NetBenefit
	}

	// The references are exact by definition; they never get annotated.
	for _, name := range []string{schema.TreatAllStrategy, schema.TreatNoneStrategy} {
		for _, r := range result.Table.Strategy(name) {
			assert.False(t, r.Smoothed, "%s must stay exact", name)
		}
	}

	// Smoothing annotates; the exact values stay untouched.
	unsmoothed, err := Run(&contract.Config{Regime: schema.BinaryRegime, Workers: 2}, binaryCohort())
	require.NoError(t, err)
	for _, r := range unsmoothed.Table.Strategy("model") {
		assert.InDelta(t, exact[r.Threshold], r.NetBenefit, 1e-12)
		assert.False(t, r.Smoothed)
	}
}

func TestRunSurvivalRegime(t *testing.T) {
	coh := &schema.Cohort{
		N:    6,
		Time: []float64{0.5, 1.0, 1.5, 2.0, 2.5, 3.0},
		Event: []int{
			1, 0, 1, 0, 0, 0,
		},
		Predictors: []schema.Predictor{
			{Name: "risk", Kind: schema.ProbabilityKind, Scores: []float64{0.9, 0.7, 0.8, 0.3, 0.2, 0.1}},
		},
	}
	cfg := &contract.Config{
		Regime:      schema.SurvivalRegime,
		Thresholds:  []float64{0.1, 0.5, 0.9},
		TimeHorizon: 2.0,
		MinAtRisk:   1,
		Workers:     2,
	}

	result, err := Run(cfg, coh)
	require.NoError(t, err)
	assert.Equal(t, 9, result.Table.Len())

	// At pt=0.9 only the first subject acts and their follow-up ends before
	// the horizon, so that estimate carries forward as low confidence.
	rows := result.Table.Strategy("risk")
	require.Len(t, rows, 3)
	assert.True(t, rows[2].LowConfidence)
	assert.False(t, rows[0].LowConfidence)
}

func TestRunCaseControlRegime(t *testing.T) {
	coh := &schema.Cohort{
		N:       6,
		Outcome: []bool{true, true, false, false, false, false},
		Predictors: []schema.Predictor{
			{Name: "model", Kind: schema.ProbabilityKind, Scores: []float64{0.8, 0.6, 0.7, 0.2, 0.1, 0.1}},
		},
	}
	cfg := &contract.Config{
		Regime:        schema.CaseControlRegime,
		Thresholds:    []float64{0.25, 0.5},
		Prevalence:    0.15,
		HasPrevalence: true,
		Workers:       2,
	}

	result, err := Run(cfg, coh)
	require.NoError(t, err)

	// The treat-all reference reflects the external prevalence, never the
	// sample case fraction.
	for _, r := range result.Table.Strategy(schema.TreatAllStrategy) {
		assert.InDelta(t, 0.15, r.TPRate, 1e-12)
		assert.InDelta(t, 0.85, r.FPRate, 1e-12)
	}
}

func TestRunRejectsBadGrid(t *testing.T) {
	cfg := &contract.Config{
		Regime:     schema.BinaryRegime,
		Thresholds: []float64{},
		Workers:    1,
	}

	_, err := Run(cfg, binaryCohort())
	assert.ErrorIs(t, err, ErrEmptyThresholdGrid)
}

func TestAggregatorSlots(t *testing.T) {
	grid := []float64{0.1, 0.2}
	agg := newAggregator(grid, []string{"a", "b"})

	agg.put(1, 1, schema.ResultRow{Strategy: "b", Threshold: 0.2, NetBenefit: 0.5})
	table := agg.freeze()

	rows := table.Rows()
	require.Len(t, rows, 4)
	assert.InDelta(t, 0.5, rows[3].NetBenefit, 1e-12)
	assert.Equal(t, "b", rows[3].Strategy)
}
