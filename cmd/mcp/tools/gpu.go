package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/elC0mpa/gpu-doctor/config"
	"github.com/elC0mpa/gpu-doctor/model"
	"github.com/elC0mpa/gpu-doctor/response"
	"github.com/elC0mpa/gpu-doctor/service/aggregator"
	"github.com/elC0mpa/gpu-doctor/service/forecast"
	"github.com/elC0mpa/gpu-doctor/service/recommend"
	"github.com/elC0mpa/gpu-doctor/service/waste"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Pipeline bundles the analytical services the tools operate on. One
// pipeline is shared across tool calls so snapshots and spend history
// accumulate between them.
type Pipeline struct {
	Config      *config.Config
	Aggregator  aggregator.AggregatorService
	Detector    waste.DetectorService
	Recommender recommend.RecommenderService
	Forecaster  forecast.ForecasterService
}

// RegisterGPUTools registers all GPU cost intelligence tools with the MCP server
func RegisterGPUTools(s *server.MCPServer, pipeline *Pipeline) {
	s.AddTool(
		mcp.NewTool("gpu_get_instances",
			mcp.WithDescription("Sync all configured GPU providers and list the fleet: every instance with its GPU type, status, hourly rate and utilization"),
		),
		makeInstancesHandler(pipeline),
	)

	s.AddTool(
		mcp.NewTool("gpu_get_spend_summary",
			mcp.WithDescription("Get an aggregated GPU spend summary over a trailing period: total cost, GPU hours, idle instances and estimated waste"),
			mcp.WithNumber("days",
				mcp.Description("Trailing period length in days (default 30)"),
			),
		),
		makeSpendSummaryHandler(pipeline),
	)

	s.AddTool(
		mcp.NewTool("gpu_get_waste_report",
			mcp.WithDescription("Run the waste rules over the latest fleet snapshot: idle instances, oversized GPUs, wrong pricing models and over-provisioned GPU counts"),
		),
		makeWasteReportHandler(pipeline),
	)

	s.AddTool(
		mcp.NewTool("gpu_get_recommendations",
			mcp.WithDescription("Get prioritized cost optimization recommendations derived from the waste report, with quick wins called out"),
		),
		makeRecommendationsHandler(pipeline),
	)

	s.AddTool(
		mcp.NewTool("gpu_get_forecast",
			mcp.WithDescription("Forecast GPU spend for an upcoming period from historical daily costs, with a 95% confidence interval"),
			mcp.WithNumber("days",
				mcp.Description("Forecast horizon in days (default 30)"),
			),
		),
		makeForecastHandler(pipeline),
	)
}

func makeInstancesHandler(pipeline *Pipeline) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, _ := pipeline.Aggregator.ConnectAll(ctx)
		if snap == nil {
			return mcp.NewToolResultError("No snapshot produced"), nil
		}

		data, _ := json.MarshalIndent(response.ConvertSnapshot(snap), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func makeSpendSummaryHandler(pipeline *Pipeline) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, _ := pipeline.Aggregator.ConnectAll(ctx)
		if snap == nil {
			return mcp.NewToolResultError("No snapshot produced"), nil
		}

		days := numberArg(request, "days", 30)
		period := model.Period{Start: snap.TakenAt.AddDate(0, 0, -days), End: snap.TakenAt}
		summary := pipeline.Aggregator.GetSummary(period)

		data, _ := json.MarshalIndent(response.ConvertSummary(summary), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func makeWasteReportHandler(pipeline *Pipeline) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, _ := pipeline.Aggregator.ConnectAll(ctx)
		if snap == nil {
			return mcp.NewToolResultError("No snapshot produced"), nil
		}

		report := pipeline.Detector.Analyze(snap)
		data, _ := json.MarshalIndent(response.ConvertWasteReport(report), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func makeRecommendationsHandler(pipeline *Pipeline) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, _ := pipeline.Aggregator.ConnectAll(ctx)
		if snap == nil {
			return mcp.NewToolResultError("No snapshot produced"), nil
		}

		wasteReport := pipeline.Detector.Analyze(snap)
		report := pipeline.Recommender.Generate(wasteReport.Alerts, snap)

		data, _ := json.MarshalIndent(response.ConvertRecommendationReport(report), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func makeForecastHandler(pipeline *Pipeline) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		now := time.Now()
		lookback := model.Period{
			Start: now.AddDate(0, 0, -pipeline.Config.ForecastWindowDays),
			End:   now,
		}
		// Forecast proceeds on whatever history arrived; the interval
		// reflects sparse data
		pipeline.Aggregator.SyncSpend(ctx, lookback)

		days := numberArg(request, "days", 30)
		target := model.Period{Start: now, End: now.AddDate(0, 0, days)}
		result := pipeline.Forecaster.Forecast(pipeline.Aggregator.SpendHistory(), target)

		data, _ := json.MarshalIndent(response.ConvertForecast(result), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func numberArg(request mcp.CallToolRequest, name string, fallback int) int {
	args := request.GetArguments()
	value, ok := args[name].(float64)
	if !ok || value <= 0 {
		return fallback
	}
	return int(value)
}
