package cmd

import (
	"github.com/ltin1214/dcurves/core"
	"github.com/ltin1214/dcurves/internal/contract"
	"github.com/ltin1214/dcurves/schema"
	"github.com/spf13/cobra"
)

// survivalCmd runs the threshold sweep against right-censored follow-up data.
var survivalCmd = &cobra.Command{
	Use:   "survival [data-file]",
	Short: "Decision curve analysis for right-censored survival data",
	Long: `Sweep threshold probabilities over a CSV subject table with follow-up
time and event columns, evaluated at a fixed prediction horizon.

Outcome rates come from Kaplan-Meier estimates within each acting subgroup.
With --competing, event levels of 2 or more are treated as competing risks
and the cumulative incidence accounts for them. Thresholds where the horizon
falls beyond the subgroup's observed follow-up are flagged as low confidence
rather than dropped.

Examples:
  dcurves survival cohort.csv --time-col ttcancer --event-col cancer_cr --time-horizon 1.5 -p model_prob
  dcurves survival cohort.csv --time-col ttcancer --event-col cancer_cr --time-horizon 1.5 --competing -p model_prob
  dcurves survival cohort.csv --time-col ttcancer --event-col cancer_cr --time-horizon 1.5 -p model_prob --min-at-risk 5`,
	Args:    cobra.ExactArgs(1),
	PreRunE: regimeSetupWrapper(schema.SurvivalRegime),
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDCA(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Analysis failed", err)
		}
	},
}
