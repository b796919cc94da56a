package cmd

import (
	"github.com/ltin1214/dcurves/core"
	"github.com/ltin1214/dcurves/internal/contract"
	"github.com/ltin1214/dcurves/schema"
	"github.com/spf13/cobra"
)

// binaryCmd runs the threshold sweep against a binary outcome column.
var binaryCmd = &cobra.Command{
	Use:   "binary [data-file]",
	Short: "Decision curve analysis for a binary outcome",
	Long: `Sweep threshold probabilities over a CSV subject table with a yes/no outcome.

Each predictor column is evaluated against the treat-all and treat-none
references, with optional per-predictor harms and score kinds.

Examples:
  dcurves binary cohort.csv --outcome cancer -p model_prob
  dcurves binary cohort.csv --outcome cancer -p model_prob,marker --score-kind marker=raw
  dcurves binary cohort.csv --outcome cancer -p biopsy_rec --score-kind biopsy_rec=binary --harm biopsy_rec=0.05
  dcurves binary cohort.csv --outcome cancer -p model_prob -t 0.05:0.35:0.01 --smooth -o json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: regimeSetupWrapper(schema.BinaryRegime),
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDCA(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Analysis failed", err)
		}
	},
}
