// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/ltin1214/dcurves/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the dcurves MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Decision Curve Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: dca_binary ---
	s.AddTool(mcp.NewTool("dca_binary",
		mcp.WithDescription("Run decision curve analysis over a CSV subject table with a binary outcome."),
		mcp.WithString("data_path", mcp.Description("Path to the CSV subject table."), mcp.Required()),
		mcp.WithString("outcome", mcp.Description("Name of the binary outcome column."), mcp.Required()),
		mcp.WithString("predictors", mcp.Description("Comma-separated predictor column names."), mcp.Required()),
		mcp.WithString("score_kind", mcp.Description("Per-predictor score kinds as name=kind pairs (probability, binary, raw).")),
		mcp.WithString("harm", mcp.Description("Per-predictor flat acting costs as name=value pairs.")),
		mcp.WithString("thresholds", mcp.Description("Threshold grid as lo:hi:step or a comma list. Defaults to 0.01:0.99:0.01.")),
	), h.handleBinary)

	// --- 2. Tool: dca_survival ---
	s.AddTool(mcp.NewTool("dca_survival",
		mcp.WithDescription("Run decision curve analysis over right-censored survival data, optionally with competing risks."),
		mcp.WithString("data_path", mcp.Description("Path to the CSV subject table."), mcp.Required()),
		mcp.WithString("time_col", mcp.Description("Name of the follow-up time column."), mcp.Required()),
		mcp.WithString("event_col", mcp.Description("Name of the event level column (0 censored, 1 event, >=2 competing)."), mcp.Required()),
		mcp.WithNumber("time_horizon", mcp.Description("Prediction time horizon."), mcp.Required()),
		mcp.WithBoolean("competing", mcp.Description("Treat event levels >=2 as competing risks.")),
		mcp.WithString("predictors", mcp.Description("Comma-separated predictor column names."), mcp.Required()),
		mcp.WithString("thresholds", mcp.Description("Threshold grid as lo:hi:step or a comma list.")),
	), h.handleSurvival)

	// --- 3. Tool: dca_case_control ---
	s.AddTool(mcp.NewTool("dca_case_control",
		mcp.WithDescription("Run decision curve analysis over a case-control sample using an external outcome prevalence."),
		mcp.WithString("data_path", mcp.Description("Path to the CSV subject table."), mcp.Required()),
		mcp.WithString("outcome", mcp.Description("Name of the case indicator column."), mcp.Required()),
		mcp.WithNumber("prevalence", mcp.Description("External outcome prevalence in (0,1)."), mcp.Required()),
		mcp.WithString("predictors", mcp.Description("Comma-separated predictor column names."), mcp.Required()),
		mcp.WithString("thresholds", mcp.Description("Threshold grid as lo:hi:step or a comma list.")),
	), h.handleCaseControl)

	return s
}

// StartMCPServer starts the dcurves MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
