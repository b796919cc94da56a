// Package core has the classification, estimation and net benefit logic for
// decision curve analysis.
package core

import (
	"context"
	"strings"
	"time"

	"github.com/ltin1214/dcurves/internal/contract"
	"github.com/ltin1214/dcurves/internal/dataset"
	"github.com/ltin1214/dcurves/internal/outwriter"
	"github.com/ltin1214/dcurves/schema"
)

// ExecutorFunc defines the function signature for executing an analysis regime.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// ExecuteDCA loads the subject table, runs the decision curve sweep for the
// configured regime and prints the frozen table. It is the entry point shared
// by the binary, survival and case-control subcommands.
func ExecuteDCA(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	result, err := GetDecisionCurveResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintCurveResults(result, cfg, duration)
}

// GetDecisionCurveResults loads the subject table and runs the sweep,
// returning the frozen result for programmatic consumers such as the MCP
// server.
func GetDecisionCurveResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.AnalysisResult, error) {
	if !shouldSuppressHeader(ctx) {
		outwriter.LogAnalysisHeader(cfg)
	}

	coh, err := dataset.Load(cfg)
	if err != nil {
		return nil, err
	}

	// --- Begin Run Tracking (if configured) ---
	start := time.Now()
	runID := beginRunTracking(cfg, mgr, start)

	result, err := Run(cfg, coh)
	if err != nil {
		return nil, err
	}

	// --- End Run Tracking ---
	endRunTracking(mgr, runID, result)

	return result, nil
}

// beginRunTracking opens a history record for this run. Tracking failures are
// warnings, never fatal: analysis output must not depend on the history
// backend being healthy.
func beginRunTracking(cfg *contract.Config, mgr contract.StoreManager, start time.Time) int64 {
	store := mgr.GetRunStore()
	if store == nil {
		return 0
	}
	configParams := map[string]any{
		"regime":     string(cfg.Regime),
		"data_path":  cfg.DataPath,
		"predictors": strings.Join(cfg.Predictors, ","),
		"workers":    cfg.Workers,
	}
	runID, err := store.BeginRun(start, configParams)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return 0
	}
	return runID
}

// endRunTracking persists the frozen rows and closes the history record.
func endRunTracking(mgr contract.StoreManager, runID int64, result *schema.AnalysisResult) {
	store := mgr.GetRunStore()
	if store == nil || runID <= 0 {
		return
	}
	rows := result.Table.Rows()
	if err := store.RecordRows(runID, rows); err != nil {
		contract.LogWarn("Failed to record run rows", err)
	}
	if err := store.EndRun(runID, time.Now(), len(rows)); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}
