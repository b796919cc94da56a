package core

import (
	"fmt"

	"github.com/ltin1214/dcurves/internal/contract"
	"github.com/ltin1214/dcurves/schema"
)

// estimate is the shared output contract of every outcome estimator: the
// probability that a subject is a would-act true positive or false positive
// at one threshold, plus a low-confidence annotation for extrapolated
// survival estimates.
type estimate struct {
	tpRate        float64
	fpRate        float64
	lowConfidence bool
}

// estimator is the closed outcome-regime contract. Exactly one regime
// governs a run; all validation happens at construction so estimate itself
// cannot fail mid-grid.
type estimator interface {
	estimate(act []bool, pt float64) estimate
}

// estimatorFactory builds an estimator over the subject subset retained for
// one strategy. Factory construction errors are regime-scoped and abort the
// run; errors from the factory itself are predictor-scoped.
type estimatorFactory func(index []int) (estimator, error)

// newEstimatorFactory validates the regime against the cohort and returns
// the per-strategy constructor. The switch over regimes is exhaustive: the
// regime set is fixed and closed.
func newEstimatorFactory(cfg *contract.Config, coh *schema.Cohort) (estimatorFactory, error) {
	switch cfg.Regime {
	case schema.BinaryRegime:
		if len(coh.Outcome) != coh.N {
			return nil, fmt.Errorf("%w: outcome has %d values for %d subjects",
				ErrMismatchedLength, len(coh.Outcome), coh.N)
		}
		return func(index []int) (estimator, error) {
			return &binaryEstimator{outcome: subsetBool(coh.Outcome, index)}, nil
		}, nil

	case schema.SurvivalRegime:
		if len(coh.Time) != coh.N || len(coh.Event) != coh.N {
			return nil, fmt.Errorf("%w: time/event columns do not cover all %d subjects",
				ErrMismatchedLength, coh.N)
		}
		if err := validateTimeHorizon(coh.Time, cfg.TimeHorizon, cfg.MinAtRisk); err != nil {
			return nil, err
		}
		return func(index []int) (estimator, error) {
			return &survivalEstimator{
				times:     subsetFloat(coh.Time, index),
				events:    subsetInt(coh.Event, index),
				horizon:   cfg.TimeHorizon,
				competing: cfg.Competing,
			}, nil
		}, nil

	case schema.CaseControlRegime:
		if !cfg.HasPrevalence {
			return nil, ErrMissingPrevalence
		}
		if len(coh.Outcome) != coh.N {
			return nil, fmt.Errorf("%w: case flag has %d values for %d subjects",
				ErrMismatchedLength, len(coh.Outcome), coh.N)
		}
		return func(index []int) (estimator, error) {
			return newCaseControlEstimator(subsetBool(coh.Outcome, index), cfg.Prevalence)
		}, nil

	default:
		return nil, fmt.Errorf("unknown outcome regime %q", cfg.Regime)
	}
}

// binaryEstimator counts true and false positives directly over the subject
// set. Pure arithmetic, no estimation beyond the empirical fractions.
type binaryEstimator struct {
	outcome []bool
}

func (e *binaryEstimator) estimate(act []bool, _ float64) estimate {
	n := float64(len(act))
	var tp, fp float64
	for i, a := range act {
		if !a {
			continue
		}
		if e.outcome[i] {
			tp++
		} else {
			fp++
		}
	}
	return estimate{tpRate: tp / n, fpRate: fp / n}
}

// subsetBool gathers v at the given rows.
func subsetBool(v []bool, index []int) []bool {
	out := make([]bool, len(index))
	for i, row := range index {
		out[i] = v[row]
	}
	return out
}

// subsetFloat gathers v at the given rows.
func subsetFloat(v []float64, index []int) []float64 {
	out := make([]float64, len(index))
	for i, row := range index {
		out[i] = v[row]
	}
	return out
}

// subsetInt gathers v at the given rows.
func subsetInt(v []int, index []int) []int {
	out := make([]int, len(index))
	for i, row := range index {
		out[i] = v[row]
	}
	return out
}

// identityIndex returns 0..n-1, the subset covering the full cohort.
func identityIndex(n int) []int {
	index := make([]int, n)
	for i := range index {
		index[i] = i
	}
	return index
}
