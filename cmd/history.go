package cmd

import (
	"fmt"
	"strings"

	"github.com/ltin1214/dcurves/internal/contract"
	"github.com/ltin1214/dcurves/internal/outwriter"
	"github.com/ltin1214/dcurves/internal/runstore"
	"github.com/ltin1214/dcurves/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historySetup performs the minimal setup for history commands. These never
// touch subject data, so the full analysis validation does not apply.
func historySetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("history-backend")))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("history-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr

	cfg.Output = schema.OutputMode(strings.ToLower(viper.GetString("output")))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	cfg.OutputFile = viper.GetString("output-file")
	cfg.Precision = viper.GetInt("precision")
	colors, err := contract.ParseBoolString(viper.GetString("color"))
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if err := runstore.InitStores(cfg); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	storeManager = runstore.Manager
	return nil
}

// historyMigrateSetup skips store initialization so migrations can run
// against a schema the store would refuse to open.
func historyMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("history-backend")))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("history-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// requireRunStore fetches the active run store or fails for the none backend.
func requireRunStore() contract.RunStore {
	store := runstore.Manager.GetRunStore()
	if store == nil {
		contract.LogFatal("Run history is disabled", fmt.Errorf("history backend is %s", schema.NoneBackend))
	}
	return store
}

// historyCmd groups the run history subcommands.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and manage recorded analysis runs",
	Long: `Inspect and manage the analysis run history.

Every analysis records its frozen result rows to the configured history
backend (sqlite by default, under the home directory). Use these commands
to inspect, export, migrate or clear that history.`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// historyStatusCmd reports run and row counts for the active backend.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show run history totals and the most recent run",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return historySetup()
	},
	Run: func(_ *cobra.Command, _ []string) {
		store := requireRunStore()
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to read history status", err)
		}
		if err := outwriter.PrintRunStatus(status, cfg); err != nil {
			contract.LogFatal("Failed to write history status", err)
		}
	},
}

// historyRunsCmd lists recorded runs, newest first.
var historyRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded analysis runs",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return historySetup()
	},
	Run: func(cmd *cobra.Command, _ []string) {
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil || limit <= 0 {
			limit = 20
		}
		store := requireRunStore()
		runs, err := store.ListRuns(limit)
		if err != nil {
			contract.LogFatal("Failed to list runs", err)
		}
		if err := outwriter.PrintRunRecords(runs, cfg); err != nil {
			contract.LogFatal("Failed to write run records", err)
		}
	},
}

// historyClearCmd deletes all recorded runs and rows.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded runs and their result rows",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return historySetup()
	},
	Run: func(_ *cobra.Command, _ []string) {
		store := requireRunStore()
		if err := store.Clear(); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("🗑️ Run history cleared")
	},
}

// historyExportCmd exports the run history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the run history to Parquet",
	Long: `Export the recorded run history to Parquet for downstream analytics.

Requires --output-file; the run table is written to <output-file>.runs.parquet.

Example:
  dcurves history export --output-file history_snapshot`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return historySetup()
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := runstore.ExecuteRunExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Export failed", err)
		}
	},
}

// historyMigrateCmd runs schema migrations for the history backend.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run schema migrations for the history backend",
	Long: `Run schema migrations for the configured history backend.

Without --target-version the schema migrates up to the latest version.
With --target-version N the schema migrates up or down to exactly N.

Examples:
  dcurves history migrate
  dcurves history migrate --target-version 1
  dcurves history migrate --history-backend postgresql --history-db-connect "host=... dbname=..."`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return historyMigrateSetup()
	},
	Run: func(cmd *cobra.Command, _ []string) {
		targetVersion, err := cmd.Flags().GetInt("target-version")
		if err != nil {
			targetVersion = -1
		}
		if cfg.HistoryBackend == schema.NoneBackend {
			contract.LogFatal("Nothing to migrate", fmt.Errorf("history backend is %s", schema.NoneBackend))
		}
		if err := runstore.MigrateRuns(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Migration failed", err)
		}
	},
}

func init() {
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyRunsCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	historyRunsCmd.Flags().Int("limit", 20, "Maximum number of runs to list")
	historyMigrateCmd.Flags().Int("target-version", -1, "Migrate to a specific schema version (-1 = latest)")
}
