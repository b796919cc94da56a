package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ltin1214/dcurves/internal/contract"
	"github.com/ltin1214/dcurves/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRuns() []schema.RunRecord {
	start := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)
	end := start.Add(2 * time.Second)
	duration := int64(2000)
	return []schema.RunRecord{
		{RunID: 2, StartTime: start, EndTime: &end, DurationMs: &duration, TotalRows: 297},
		{RunID: 1, StartTime: start.Add(-time.Hour), TotalRows: 99},
	}
}

func TestWriteRunTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRunTable(sampleRuns(), &buf))

	out := buf.String()
	assert.Contains(t, out, "297")
	assert.Contains(t, out, "2s")
	// Runs without an end time show a dash for duration.
	assert.Contains(t, out, "-")
	assert.Contains(t, out, "Showing 2 runs")
}

func TestWriteCSVResultsForRuns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCSVResultsForRuns(&buf, sampleRuns()))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "run_id", records[0][0])
	assert.Equal(t, "2000", records[1][3])
	assert.Empty(t, records[2][3]) // no duration for the unfinished run
}

func TestPrintRunStatusJSON(t *testing.T) {
	cfg := &contract.Config{
		Output:     schema.JSONOut,
		OutputFile: filepath.Join(t.TempDir(), "status.json"),
	}
	status := schema.RunStatus{
		Backend:   schema.SQLiteBackend,
		Location:  "/tmp/history.db",
		TotalRuns: 4,
		TotalRows: 1188,
	}

	require.NoError(t, PrintRunStatus(status, cfg))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "sqlite", decoded["backend"])
	assert.InDelta(t, 4, decoded["total_runs"].(float64), 1e-12)
}

func TestPrintRunStatusText(t *testing.T) {
	cfg := &contract.Config{
		Output:     schema.TextOut,
		OutputFile: filepath.Join(t.TempDir(), "status.txt"),
	}
	status := schema.RunStatus{
		Backend:   schema.SQLiteBackend,
		TotalRuns: 1,
		LastRun:   time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC),
	}

	require.NoError(t, PrintRunStatus(status, cfg))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Total runs: 1")
	assert.Contains(t, string(data), "2026-08-20 10:30:00")
}
