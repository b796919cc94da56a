package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ltin1214/dcurves/internal/contract"
	"github.com/ltin1214/dcurves/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintRunStatus outputs the run-history store status.
func PrintRunStatus(status schema.RunStatus, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			fmt.Fprintf(w, "Backend:    %s\n", status.Backend)
			fmt.Fprintf(w, "Location:   %s\n", status.Location)
			fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
			fmt.Fprintf(w, "Total rows: %d\n", status.TotalRows)
			if !status.LastRun.IsZero() {
				fmt.Fprintf(w, "Last run:   %s\n", status.LastRun.Format(contract.DateTimeFormat))
			}
			return nil
		}, "Wrote status")
	}
}

// PrintRunRecords outputs recorded analysis runs, dispatching on the output
// format configured.
func PrintRunRecords(runs []schema.RunRecord, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, runs)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForRuns(w, runs)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunTable(runs, w)
		}, "Wrote table")
	}
}

// writeRunTable generates and writes the human-readable run history table.
func writeRunTable(runs []schema.RunRecord, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Run", "Started", "Duration", "Rows"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, r := range runs {
		duration := "-"
		if r.DurationMs != nil {
			duration = (time.Duration(*r.DurationMs) * time.Millisecond).String()
		}
		data = append(data, []string{
			strconv.FormatInt(r.RunID, 10),
			r.StartTime.Format(contract.DateTimeFormat),
			duration,
			strconv.Itoa(r.TotalRows),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(writer, "Showing %d runs\n", len(runs))
	return err
}

// writeCSVResultsForRuns writes the run history in CSV format.
func writeCSVResultsForRuns(w io.Writer, runs []schema.RunRecord) error {
	header := []string{"run_id", "start_time", "end_time", "duration_ms", "total_rows"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, r := range runs {
			endTime := ""
			if r.EndTime != nil {
				endTime = r.EndTime.Format(contract.DateTimeFormat)
			}
			durationMs := ""
			if r.DurationMs != nil {
				durationMs = strconv.FormatInt(*r.DurationMs, 10)
			}
			rec := []string{
				strconv.FormatInt(r.RunID, 10),
				r.StartTime.Format(contract.DateTimeFormat),
				endTime,
				durationMs,
				strconv.Itoa(r.TotalRows),
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
