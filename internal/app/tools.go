package app

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/stockmind/internal/common"
	"github.com/bobmcallan/stockmind/internal/interfaces"
)

// registerTools adds the StockMind tools to the MCP server
func registerTools(s *server.MCPServer, a *App) {
	s.AddTool(createAnalyzeCompanyTool(), handleAnalyzeCompany(a.AnalyzeService, a.Logger))
	s.AddTool(createListAlertsTool(), handleListAlerts(a.AlertService))
	s.AddTool(createGetVersionTool(), handleGetVersion())
}

func createAnalyzeCompanyTool() mcp.Tool {
	return mcp.NewTool("analyze_company",
		mcp.WithDescription("Analyze a company by name: resolves its ticker, summarises the business, returns ~3 months of daily closing prices and ranks its largest competitors by market cap."),
		mcp.WithString("company_name",
			mcp.Required(),
			mcp.Description("Company name, e.g. 'Apple' or 'Nvidia'"),
		),
	)
}

func createListAlertsTool() mcp.Tool {
	return mcp.NewTool("list_alerts",
		mcp.WithDescription("List the price and RSI alerts currently held in memory."),
	)
}

func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the StockMind server version and build information."),
	)
}

func handleAnalyzeCompany(svc interfaces.AnalyzeService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("company_name")
		if err != nil || strings.TrimSpace(name) == "" {
			return errorResult("Error: company_name parameter is required"), nil
		}

		resp := svc.AnalyzeCompany(ctx, name)
		if !resp.Success {
			logger.Info().Str("company", name).Str("error", resp.Error).Msg("MCP analyze_company failed")
			return errorResult(resp.Error), nil
		}
		return jsonResult(resp)
	}
}

func handleListAlerts(svc interfaces.AlertService) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(svc.ListAlerts(ctx))
	}
}

func handleGetVersion() server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(common.GetVersionInfo())
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error: failed to encode result: " + err.Error()), nil
	}
	return textResult(string(data)), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
