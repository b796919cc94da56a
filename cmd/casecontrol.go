package cmd

import (
	"github.com/ltin1214/dcurves/core"
	"github.com/ltin1214/dcurves/internal/contract"
	"github.com/ltin1214/dcurves/schema"
	"github.com/spf13/cobra"
)

// casecontrolCmd runs the threshold sweep against a case-control sample.
var casecontrolCmd = &cobra.Command{
	Use:     "case-control [data-file]",
	Aliases: []string{"casecontrol"},
	Short:   "Decision curve analysis for a case-control sample",
	Long: `Sweep threshold probabilities over a case-control subject table.

Case-control sampling fixes the case fraction by design, so the outcome
prevalence cannot be estimated from the data and must be supplied from an
external source. Sensitivity comes from the cases, specificity from the
controls, and both are reweighted by the supplied prevalence.

Examples:
  dcurves case-control sample.csv --outcome is_case --prevalence 0.20 -p model_prob
  dcurves case-control sample.csv --outcome is_case --prevalence 0.20 -p model_prob,marker --score-kind marker=raw`,
	Args:    cobra.ExactArgs(1),
	PreRunE: regimeSetupWrapper(schema.CaseControlRegime),
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDCA(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Analysis failed", err)
		}
	},
}
