// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ltin1214/dcurves/internal/contract"
	"github.com/ltin1214/dcurves/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteCurves prints decision curve results using the configured output format.
func (ow *OutWriter) WriteCurves(result *schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	return PrintCurveResults(result, cfg, duration)
}

// WriteStatus prints run-history store status.
func (ow *OutWriter) WriteStatus(status schema.RunStatus, cfg *contract.Config) error {
	return PrintRunStatus(status, cfg)
}

// WriteRuns prints recorded run history, newest first.
func (ow *OutWriter) WriteRuns(runs []schema.RunRecord, cfg *contract.Config) error {
	return PrintRunRecords(runs, cfg)
}

// LogAnalysisHeader prints a summary of the analysis about to run.
func LogAnalysisHeader(cfg *contract.Config) {
	dataName := filepath.Base(cfg.DataPath)
	if dataName == "" || dataName == "." {
		dataName = cfg.DataPath
	}

	// Line 1: The analysis summary (Data and Regime)
	fmt.Printf("🔎 Data: %s (Regime: %s)\n", dataName, cfg.Regime)

	// Line 2: The strategies under evaluation
	fmt.Printf("📈 Predictors: %s\n", strings.Join(cfg.Predictors, ", "))
}
