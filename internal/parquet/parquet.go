// Package parquet provides data structures and functions for exporting
// decision curve data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ltin1214/dcurves/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun represents a single recorded analysis run with metadata.
// This struct maps to the dca_runs database table.
type AnalysisRun struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable, stored as TIMESTAMP with nanosecond precision)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int64 `parquet:"run_duration_ms,optional,snappy"`

	// TotalRows is the number of decision curve rows produced by this run
	TotalRows int32 `parquet:"total_rows,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// CurveRow represents one (strategy, threshold) row of the decision curve
// table. This struct maps to the dca_curve_rows database table.
type CurveRow struct {
	// Strategy is the predictor name or a reference strategy
	Strategy string `parquet:"strategy,snappy"`

	// Threshold is the threshold probability in (0,1)
	Threshold float64 `parquet:"threshold,snappy"`

	// SubjectCount is the number of subjects contributing to the estimates
	SubjectCount int32 `parquet:"subject_count,snappy"`

	// TPRate is the estimated would-act true positive fraction
	TPRate float64 `parquet:"tp_rate,snappy"`

	// FPRate is the estimated would-act false positive fraction
	FPRate float64 `parquet:"fp_rate,snappy"`

	// Harm is the flat per-subject acting cost applied to the strategy
	Harm float64 `parquet:"harm,snappy"`

	// NetBenefit is the net true positives per subject at this threshold
	NetBenefit float64 `parquet:"net_benefit,snappy"`

	// NetInterventionAvoided is the advantage over treat-all in interventions per subject
	NetInterventionAvoided float64 `parquet:"net_intervention_avoided,snappy"`

	// SmoothedNetBenefit is the local-regression annotation (nullable)
	SmoothedNetBenefit *float64 `parquet:"smoothed_net_benefit,optional,snappy"`

	// LowConfidence marks a survival estimate extrapolated past follow-up
	LowConfidence bool `parquet:"low_confidence,snappy"`
}

// WriteCurveRows writes decision curve rows to w in Parquet format.
func WriteCurveRows(w io.Writer, rows []schema.ResultRow) error {
	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the CurveRow struct tags
	writer := parquet.NewGenericWriter[CurveRow](w)

	if _, err := writer.Write(ConvertResultRows(rows)); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteCurveRowsParquet writes a slice of CurveRow structs to a Parquet file.
func WriteCurveRowsParquet(data []CurveRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[CurveRow](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteAnalysisRunsParquet writes a slice of AnalysisRun structs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the AnalysisRun struct tags
	writer := parquet.NewGenericWriter[AnalysisRun](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	// The Write method accepts a variadic slice
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// MockFetchAnalysisRuns generates sample AnalysisRun data for demonstration.
func MockFetchAnalysisRuns() []AnalysisRun {
	base := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	runs := make([]AnalysisRun, 3)
	for i := range runs {
		start := base.Add(time.Duration(i) * time.Hour)
		end := start.Add(time.Duration(i+1) * time.Second)
		durationMs := end.Sub(start).Milliseconds()
		config := fmt.Sprintf(`{"regime":"binary","workers":%d}`, 2+i)
		runs[i] = AnalysisRun{
			RunID:         int64(i + 1),
			StartTime:     start,
			EndTime:       &end,
			RunDurationMs: &durationMs,
			TotalRows:     int32(99 * (i + 2)),
			ConfigParams:  &config,
		}
	}
	return runs
}

// MockFetchCurveRows generates sample CurveRow data for demonstration.
func MockFetchCurveRows() []CurveRow {
	thresholds := []float64{0.05, 0.10, 0.15, 0.20, 0.25}
	rows := make([]CurveRow, 0, 2*len(thresholds))
	for _, pt := range thresholds {
		odds := pt / (1 - pt)
		rows = append(rows, CurveRow{
			Strategy:     "all",
			Threshold:    pt,
			SubjectCount: 750,
			TPRate:       0.14,
			FPRate:       0.86,
			NetBenefit:   0.14 - 0.86*odds,
		})
		nb := 0.12 - 0.20*odds
		rows = append(rows, CurveRow{
			Strategy:               "marker_model",
			Threshold:              pt,
			SubjectCount:           750,
			TPRate:                 0.12,
			FPRate:                 0.20,
			NetBenefit:             nb,
			NetInterventionAvoided: (nb - (0.14 - 0.86*odds)) / odds,
		})
	}
	return rows
}

// ConvertResultRows converts schema.ResultRow to CurveRow for Parquet export.
func ConvertResultRows(rows []schema.ResultRow) []CurveRow {
	result := make([]CurveRow, len(rows))
	for i, r := range rows {
		var smoothed *float64
		if r.Smoothed {
			v := r.SmoothedNetBenefit
			smoothed = &v
		}
		result[i] = CurveRow{
			Strategy:               r.Strategy,
			Threshold:              r.Threshold,
			SubjectCount:           int32(r.N),
			TPRate:                 r.TPRate,
			FPRate:                 r.FPRate,
			Harm:                   r.Harm,
			NetBenefit:             r.NetBenefit,
			NetInterventionAvoided: r.NetInterventionAvoided,
			SmoothedNetBenefit:     smoothed,
			LowConfidence:          r.LowConfidence,
		}
	}
	return result
}

// ConvertRunRecords converts schema.RunRecord to AnalysisRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		var configParams *string
		if record.ConfigParams != "" {
			v := record.ConfigParams
			configParams = &v
		}
		result[i] = AnalysisRun{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.DurationMs,
			TotalRows:     int32(record.TotalRows),
			ConfigParams:  configParams,
		}
	}
	return result
}
