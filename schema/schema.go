// Package schema has configs, models and constants for all parts of dcurves.
package schema

// Predictor is one candidate model or marker under evaluation. Scores hold
// one value per subject; NaN marks a missing value, which drops the subject
// for this predictor only.
type Predictor struct {
	Name   string    // Column name of the predictor in the subject table
	Kind   ScoreKind // How Scores map into [0,1] before classification
	Scores []float64 // One score per subject, NaN = missing
}

// Cohort is the immutable subject data for a single analysis run. Exactly one
// outcome representation is populated, matching the configured regime:
// Outcome for binary and case-control (case flag), Time and Event for
// survival. Every predictor score slice has length N.
type Cohort struct {
	N          int
	Outcome    []bool    // Event occurred (binary) or subject is a case (case-control)
	Time       []float64 // Follow-up time per subject (survival)
	Event      []int     // Event level: 0 censored, 1 event of interest, >=2 competing
	Predictors []Predictor
}

// ResultRow is one line of the long-format decision curve table: a single
// strategy evaluated at a single threshold probability. Rows are immutable
// once the table is frozen.
type ResultRow struct {
	Strategy  string  `json:"strategy"`  // Predictor name, TreatAllStrategy or TreatNoneStrategy
	Threshold float64 `json:"threshold"` // Threshold probability in (0,1)
	N         int     `json:"n"`         // Subjects contributing to this strategy's estimates

	TPRate         float64 `json:"tp_rate"`         // Estimated P(would-act and true positive)
	FPRate         float64 `json:"fp_rate"`         // Estimated P(would-act and false positive)
	TruePositives  float64 `json:"true_positives"`  // TPRate scaled to N subjects
	FalsePositives float64 `json:"false_positives"` // FPRate scaled to N subjects

	Harm                   float64 `json:"harm"`                     // Flat per-subject acting cost applied to this strategy
	NetBenefit             float64 `json:"net_benefit"`              // Net true positives per subject at this threshold
	NetInterventionAvoided float64 `json:"net_intervention_avoided"` // Net benefit relative to treat-all, in interventions per subject

	SmoothedNetBenefit float64 `json:"smoothed_net_benefit"` // Local-regression smoothed net benefit, if Smoothed
	Smoothed           bool    `json:"smoothed"`             // Whether SmoothedNetBenefit is populated
	LowConfidence      bool    `json:"low_confidence"`       // Survival estimate extrapolated beyond last observed time
}

// PredictorFailure records a predictor that was skipped without aborting the
// rest of the run.
type PredictorFailure struct {
	Name string
	Err  error
}

// AnalysisResult is the frozen output of one analysis run.
type AnalysisResult struct {
	Table   *ResultTable
	Skipped []PredictorFailure
}

// InterventionRow is the interventions-avoided projection of a result row,
// scaled to a population of a given size.
type InterventionRow struct {
	Strategy             string  `json:"strategy"`
	Threshold            float64 `json:"threshold"`
	InterventionsAvoided float64 `json:"interventions_avoided"` // Net unnecessary interventions avoided per Scale subjects
	Scale                int     `json:"scale"`
}
