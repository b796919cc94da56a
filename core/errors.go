package core

import "errors"

// Error taxonomy for analysis failures. All are detected synchronously at
// the start of processing the affected predictor or regime, never surfaced
// as a misleading zero/NaN row. Predictor-scoped errors skip the offending
// predictor; regime-scoped errors abort the whole run.
var (
	// ErrInvalidPredictorKind reports scores that violate their declared
	// kind, e.g. a binary indicator with values outside {0,1}.
	ErrInvalidPredictorKind = errors.New("invalid predictor kind")

	// ErrDegenerateScore reports a constant raw score, for which min-max
	// rescaling is undefined.
	ErrDegenerateScore = errors.New("degenerate score")

	// ErrInvalidTimeHorizon reports a nonpositive horizon, or one beyond the
	// maximum observed follow-up with too few subjects at risk.
	ErrInvalidTimeHorizon = errors.New("invalid time horizon")

	// ErrMissingPrevalence reports a case-control run without an external
	// prevalence. Prevalence can never be estimated from the sample.
	ErrMissingPrevalence = errors.New("missing prevalence")

	// ErrEmptyThresholdGrid reports a grid with no thresholds at all.
	ErrEmptyThresholdGrid = errors.New("empty threshold grid")

	// ErrInvalidThreshold reports a grid value outside the open interval
	// (0,1), where the odds term is undefined, or one that breaks the
	// strictly increasing ordering.
	ErrInvalidThreshold = errors.New("invalid threshold")

	// ErrMismatchedLength reports predictor and outcome arrays of different
	// lengths.
	ErrMismatchedLength = errors.New("mismatched length")
)
