// Package cmd provides the command-line interface for decision curve analysis.
package cmd

import (
	"github.com/ltin1214/dcurves/internal/contract"
	"github.com/ltin1214/dcurves/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(binaryCmd)
	rootCmd.AddCommand(survivalCmd)
	rootCmd.AddCommand(casecontrolCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)

	// Global flag for config file
	rootCmd.PersistentFlags().String("config", "", "Config file (default is ./.dcurves.yaml, then $HOME/.dcurves.yaml)")

	// Profiling flag
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling with given file prefix (e.g. --profile=perf creates perf.cpu.prof and perf.mem.prof)")

	// Analysis flags shared by every regime
	rootCmd.PersistentFlags().StringP("predictors", "p", "", "Comma-separated predictor column names (required)")
	rootCmd.PersistentFlags().String("score-kind", "", "Per-predictor score kinds as name=kind pairs (probability, binary, raw)")
	rootCmd.PersistentFlags().String("harm", "", "Per-predictor flat acting costs as name=value pairs")
	rootCmd.PersistentFlags().StringP("thresholds", "t", "", "Threshold grid as lo:hi:step or a comma list (default 0.01:0.99:0.01)")
	rootCmd.PersistentFlags().Bool("smooth", false, "Annotate predictor curves with lowess-smoothed net benefit")
	rootCmd.PersistentFlags().Float64("span", contract.DefaultSpan, "Lowess span fraction in (0,1]")
	rootCmd.PersistentFlags().Int("interventions-per", contract.DefaultInterventionsPer, "Population scale for the interventions-avoided view")
	rootCmd.PersistentFlags().IntP("workers", "w", contract.DefaultWorkers, "Number of concurrent workers for the threshold sweep")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal places in text and CSV output (1-6)")
	rootCmd.PersistentFlags().StringP("output", "o", string(schema.TextOut), "Output format: text, csv, json, parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Write output to file instead of stdout")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override for table output (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Use colored labels in table output (yes/no)")
	rootCmd.PersistentFlags().String("history-backend", string(schema.SQLiteBackend), "Run history backend: sqlite, mysql, postgresql, none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Connection string for mysql/postgresql history backends (prefer DCURVES_HISTORY_DB_CONNECT)")

	// Regime flags. These live on the root so config file and env lookups
	// resolve the same way regardless of subcommand.
	rootCmd.PersistentFlags().String("outcome", "", "Binary outcome or case indicator column (binary, case-control)")
	rootCmd.PersistentFlags().String("time-col", "", "Follow-up time column (survival)")
	rootCmd.PersistentFlags().String("event-col", "", "Event level column: 0 censored, 1 event, >=2 competing (survival)")
	rootCmd.PersistentFlags().Float64("time-horizon", 0, "Prediction time horizon (survival)")
	rootCmd.PersistentFlags().Bool("competing", false, "Treat event levels >=2 as competing risks (survival)")
	rootCmd.PersistentFlags().Int("min-at-risk", contract.DefaultMinAtRisk, "Minimum at-risk count required at the horizon (survival)")
	rootCmd.PersistentFlags().Float64("prevalence", -1, "External outcome prevalence in (0,1) (case-control)")

	// Bind all flags to Viper. This makes flag values available via viper.Get()
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Failed to bind flags", err)
	}
}
