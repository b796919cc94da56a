package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ltin1214/dcurves/core"
	"github.com/ltin1214/dcurves/internal/contract"
	"github.com/ltin1214/dcurves/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// toolResult is the JSON payload returned by every analysis tool.
type toolResult struct {
	Rows    []schema.ResultRow `json:"rows"`
	Skipped []skippedPredictor `json:"skipped,omitempty"`
}

type skippedPredictor struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// defaultRawInput returns raw inputs with the same defaults as the CLI flags,
// suitable for tool calls that only supply the analysis essentials.
func defaultRawInput() *contract.ConfigRawInput {
	return &contract.ConfigRawInput{
		Span:             contract.DefaultSpan,
		InterventionsPer: contract.DefaultInterventionsPer,
		Workers:          contract.DefaultWorkers,
		Precision:        contract.DefaultPrecision,
		Output:           string(schema.JSONOut),
		Color:            "no",
		HistoryBackend:   string(schema.NoneBackend),
		MinAtRisk:        contract.DefaultMinAtRisk,
		Prevalence:       -1,
	}
}

// runTool validates the raw inputs for the regime and executes the sweep.
func (h *toolHandler) runTool(ctx context.Context, regime schema.Regime, input *contract.ConfigRawInput) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := contract.ProcessAndValidate(cfg, regime, input); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid analysis parameters: %v", err)), nil
	}

	result, err := core.GetDecisionCurveResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	payload := toolResult{Rows: result.Table.Rows()}
	for _, s := range result.Skipped {
		payload.Skipped = append(payload.Skipped, skippedPredictor{Name: s.Name, Error: s.Err.Error()})
	}
	jsonData, _ := json.MarshalIndent(payload, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleBinary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input := defaultRawInput()
	input.DataPathStr = request.GetString("data_path", "")
	input.Outcome = request.GetString("outcome", "")
	input.Predictors = request.GetString("predictors", "")
	input.ScoreKind = request.GetString("score_kind", "")
	input.Harm = request.GetString("harm", "")
	input.Thresholds = request.GetString("thresholds", "")

	return h.runTool(ctx, schema.BinaryRegime, input)
}

func (h *toolHandler) handleSurvival(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input := defaultRawInput()
	input.DataPathStr = request.GetString("data_path", "")
	input.TimeCol = request.GetString("time_col", "")
	input.EventCol = request.GetString("event_col", "")
	input.TimeHorizon = request.GetFloat("time_horizon", 0)
	input.Competing = request.GetBool("competing", false)
	input.Predictors = request.GetString("predictors", "")
	input.Thresholds = request.GetString("thresholds", "")

	return h.runTool(ctx, schema.SurvivalRegime, input)
}

func (h *toolHandler) handleCaseControl(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input := defaultRawInput()
	input.DataPathStr = request.GetString("data_path", "")
	input.Outcome = request.GetString("outcome", "")
	input.Prevalence = request.GetFloat("prevalence", -1)
	input.Predictors = request.GetString("predictors", "")
	input.Thresholds = request.GetString("thresholds", "")

	return h.runTool(ctx, schema.CaseControlRegime, input)
}
