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

func sampleResult() *schema.AnalysisResult {
	rows := []schema.ResultRow{
		{Strategy: schema.TreatAllStrategy, Threshold: 0.10, N: 100, TPRate: 0.20, FPRate: 0.80, NetBenefit: 0.111},
		{Strategy: schema.TreatAllStrategy, Threshold: 0.25, N: 100, TPRate: 0.20, FPRate: 0.80, NetBenefit: -0.066},
		{Strategy: schema.TreatNoneStrategy, Threshold: 0.10, N: 100, NetInterventionAvoided: -1.0},
		{Strategy: schema.TreatNoneStrategy, Threshold: 0.25, N: 100, NetInterventionAvoided: 0.2},
		{Strategy: "model", Threshold: 0.10, N: 100, TPRate: 0.18, FPRate: 0.30, TruePositives: 18, FalsePositives: 30, NetBenefit: 0.146, NetInterventionAvoided: 0.32},
		{Strategy: "model", Threshold: 0.25, N: 100, TPRate: 0.15, FPRate: 0.10, TruePositives: 15, FalsePositives: 10, NetBenefit: 0.116, NetInterventionAvoided: 0.55, LowConfidence: true},
	}
	return &schema.AnalysisResult{Table: schema.NewResultTable(rows)}
}

func sampleConfig() *contract.Config {
	return &contract.Config{
		Precision:        3,
		InterventionsPer: 100,
		Workers:          2,
		Width:            120,
		Output:           schema.TextOut,
		HistoryBackend:   schema.NoneBackend,
	}
}

func TestTreatAllByThreshold(t *testing.T) {
	nbAll := treatAllByThreshold(sampleResult().Table.Rows())
	require.Len(t, nbAll, 2)
	assert.InDelta(t, 0.111, nbAll[0.10], 1e-12)
	assert.InDelta(t, -0.066, nbAll[0.25], 1e-12)
}

func TestWriteCurveTable(t *testing.T) {
	result := sampleResult()
	cfg := sampleConfig()
	fmtFloat, _ := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	err := writeCurveTable(result, treatAllByThreshold(result.Table.Rows()), cfg, fmtFloat, 5*time.Millisecond, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "model")
	assert.Contains(t, out, "Showing 6 rows across 3 strategies")
	// The carried-forward survival estimate is starred.
	assert.Contains(t, out, "0.250*")
	// Positive net benefit above treat-all reads as superior.
	assert.Contains(t, out, contract.SuperiorValue)
}

func TestWriteCurveTableSmoothColumn(t *testing.T) {
	rows := []schema.ResultRow{
		{Strategy: "model", Threshold: 0.10, NetBenefit: 0.1, SmoothedNetBenefit: 0.095, Smoothed: true},
	}
	result := &schema.AnalysisResult{Table: schema.NewResultTable(rows)}
	cfg := sampleConfig()
	cfg.Smooth = true
	fmtFloat, _ := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	err := writeCurveTable(result, map[float64]float64{}, cfg, fmtFloat, time.Millisecond, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "0.095")
}

func TestWriteCSVResultsForCurves(t *testing.T) {
	result := sampleResult()
	fmtFloat, _ := createFormatters(3)

	var buf bytes.Buffer
	err := writeCSVResultsForCurves(&buf, result.Table.Rows(), treatAllByThreshold(result.Table.Rows()), fmtFloat)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 7) // header plus six rows

	assert.Equal(t, "strategy", records[0][0])
	assert.Equal(t, "label", records[0][13])
	assert.Equal(t, schema.TreatAllStrategy, records[1][0])
	assert.Equal(t, "true", records[6][12]) // low_confidence
}

func TestWriteJSONResultsForCurves(t *testing.T) {
	result := sampleResult()

	var buf bytes.Buffer
	err := writeJSONResultsForCurves(&buf, result.Table.Rows(), treatAllByThreshold(result.Table.Rows()))
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 6)
	assert.Equal(t, "model", decoded[4]["strategy"])
	assert.Equal(t, contract.SuperiorValue, decoded[4]["label"])
	assert.InDelta(t, 0.146, decoded[4]["net_benefit"].(float64), 1e-9)
}

func TestPrintCurveResultsToFile(t *testing.T) {
	cfg := sampleConfig()
	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "curves.json")

	require.NoError(t, PrintCurveResults(sampleResult(), cfg, time.Millisecond))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 6)
}

func TestCreateFormatters(t *testing.T) {
	fmtFloat, intFmt := createFormatters(2)
	assert.Equal(t, "0.13", fmtFloat(0.126))
	assert.Equal(t, "%d", intFmt)
}

func TestTruncateName(t *testing.T) {
	assert.Equal(t, "short", truncateName("short", 10))
	assert.Equal(t, "verylongn…", truncateName("verylongname", 10))
	assert.Equal(t, "v", truncateName("verylong", 1))
}

func TestGetMaxTableStrategyWidth(t *testing.T) {
	cfg := &contract.Config{Width: 200}
	assert.Equal(t, 40, getMaxTableStrategyWidth(cfg))

	cfg.Width = 65
	assert.Equal(t, 8, getMaxTableStrategyWidth(cfg))

	cfg.Width = 90
	assert.Equal(t, 30, getMaxTableStrategyWidth(cfg))

	cfg.Width = 90
	cfg.Smooth = true
	assert.Equal(t, 20, getMaxTableStrategyWidth(cfg))
}
