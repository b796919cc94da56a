package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ltin1214/dcurves/internal/contract"
	"github.com/ltin1214/dcurves/internal/parquet"
	"github.com/ltin1214/dcurves/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintCurveResults outputs the decision curve table, dispatching based on
// the output format configured.
func PrintCurveResults(result *schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, _ := createFormatters(cfg.Precision)
	rows := result.Table.Rows()
	nbAll := treatAllByThreshold(rows)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeCurveJSONResults(rows, nbAll, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeCurveCSVResults(rows, nbAll, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteCurveRows(w, rows)
		}, "Wrote Parquet")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCurveTable(result, nbAll, cfg, fmtFloat, duration, w)
		}, "Wrote table")
	}
	return nil
}

// treatAllByThreshold indexes the treat-all net benefit per threshold so each
// row can be labeled against its reference.
func treatAllByThreshold(rows []schema.ResultRow) map[float64]float64 {
	ref := make(map[float64]float64)
	for _, r := range rows {
		if r.Strategy == schema.TreatAllStrategy {
			ref[r.Threshold] = r.NetBenefit
		}
	}
	return ref
}

// writeCurveJSONResults handles opening the file and calling the JSON writer.
func writeCurveJSONResults(rows []schema.ResultRow, nbAll map[float64]float64, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSONResultsForCurves(w, rows, nbAll)
	}, "Wrote JSON")
}

// writeCurveCSVResults handles opening the file and calling the CSV writer.
func writeCurveCSVResults(rows []schema.ResultRow, nbAll map[float64]float64, cfg *contract.Config, fmtFloat func(float64) string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVResultsForCurves(w, rows, nbAll, fmtFloat)
	}, "Wrote CSV")
}

// writeCurveTable generates and writes the human-readable table.
func writeCurveTable(result *schema.AnalysisResult, nbAll map[float64]float64, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := []string{"Strategy", "Threshold", "TP Rate", "FP Rate", "Net Benefit", fmt.Sprintf("NIA/%d", cfg.InterventionsPer), "Label"}
	if cfg.Smooth {
		headers = append(headers, "Smooth NB")
	}
	table.Header(headers)

	// 2. Configure Separators/Borders to match a minimal look
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	rows := result.Table.Rows()
	maxWidth := getMaxTableStrategyWidth(cfg)
	var data [][]string
	for _, r := range rows {
		threshold := fmtFloat(r.Threshold)
		if r.LowConfidence {
			// Mark thresholds whose survival estimate was carried forward
			// past the last observed follow-up time.
			threshold += "*"
		}
		label := contract.GetPlainLabel(r.NetBenefit, nbAll[r.Threshold])
		if cfg.UseColors {
			label = contract.GetColorLabel(r.NetBenefit, nbAll[r.Threshold])
		}
		row := []string{
			truncateName(r.Strategy, maxWidth),
			threshold,
			fmtFloat(r.TPRate),
			fmtFloat(r.FPRate),
			fmtFloat(r.NetBenefit),
			fmtFloat(r.NetInterventionAvoided * float64(cfg.InterventionsPer)),
			label,
		}
		if cfg.Smooth {
			if r.Smoothed {
				row = append(row, fmtFloat(r.SmoothedNetBenefit))
			} else {
				row = append(row, "-")
			}
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// Compute summary stats
	strategies := result.Table.Strategies()
	if _, err := fmt.Fprintf(writer, "Showing %d rows across %d strategies\n", len(rows), len(strategies)); err != nil {
		return err
	}
	for _, s := range result.Skipped {
		if _, err := fmt.Fprintf(writer, "Skipped predictor %s: %v\n", s.Name, s.Err); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(writer, "Analysis completed in %v with %d workers. History backend: %s\n", duration, cfg.Workers, cfg.HistoryBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForCurves writes the decision curve table in CSV format.
func writeCSVResultsForCurves(w io.Writer, rows []schema.ResultRow, nbAll map[float64]float64, fmtFloat func(float64) string) error {
	header := []string{
		"strategy",
		"threshold",
		"n",
		"tp_rate",
		"fp_rate",
		"true_positives",
		"false_positives",
		"harm",
		"net_benefit",
		"net_intervention_avoided",
		"smoothed_net_benefit",
		"smoothed",
		"low_confidence",
		"label",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, r := range rows {
			smoothed := ""
			if r.Smoothed {
				smoothed = fmtFloat(r.SmoothedNetBenefit)
			}
			rec := []string{
				r.Strategy,
				fmtFloat(r.Threshold),
				strconv.Itoa(r.N),
				fmtFloat(r.TPRate),
				fmtFloat(r.FPRate),
				fmtFloat(r.TruePositives),
				fmtFloat(r.FalsePositives),
				fmtFloat(r.Harm),
				fmtFloat(r.NetBenefit),
				fmtFloat(r.NetInterventionAvoided),
				smoothed,
				strconv.FormatBool(r.Smoothed),
				strconv.FormatBool(r.LowConfidence),
				contract.GetPlainLabel(r.NetBenefit, nbAll[r.Threshold]),
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeJSONResultsForCurves writes the decision curve table in JSON format.
func writeJSONResultsForCurves(w io.Writer, rows []schema.ResultRow, nbAll map[float64]float64) error {
	// 1. Prepare the data structure for JSON with the label added
	type JSONCurveRow struct {
		Label string `json:"label"`
		schema.ResultRow
	}

	output := make([]JSONCurveRow, len(rows))
	for i, r := range rows {
		output[i] = JSONCurveRow{
			Label:     contract.GetPlainLabel(r.NetBenefit, nbAll[r.Threshold]),
			ResultRow: r,
		}
	}

	// 2. Use the generic JSON writer
	return writeJSON(w, output)
}
