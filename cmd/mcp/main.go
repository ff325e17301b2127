package main

import (
	"context"
	"fmt"
	"os"

	"github.com/elC0mpa/gpu-doctor/cmd/mcp/tools"
	"github.com/elC0mpa/gpu-doctor/config"
	"github.com/elC0mpa/gpu-doctor/pricing"
	"github.com/elC0mpa/gpu-doctor/service/aggregator"
	"github.com/elC0mpa/gpu-doctor/service/aws"
	"github.com/elC0mpa/gpu-doctor/service/azure"
	"github.com/elC0mpa/gpu-doctor/service/forecast"
	"github.com/elC0mpa/gpu-doctor/service/gcp"
	"github.com/elC0mpa/gpu-doctor/service/lambdalabs"
	"github.com/elC0mpa/gpu-doctor/service/normalize"
	"github.com/elC0mpa/gpu-doctor/service/recommend"
	"github.com/elC0mpa/gpu-doctor/service/runpod"
	"github.com/elC0mpa/gpu-doctor/service/vastai"
	"github.com/elC0mpa/gpu-doctor/service/waste"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	providerCfg := LoadProviderConfig()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	pipeline := buildPipeline(context.Background(), cfg, providerCfg)

	s := server.NewMCPServer(
		"gpu-doctor-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	tools.RegisterGPUTools(s, pipeline)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

// buildPipeline wires the analytical services over every provider the
// environment configures. A provider that fails to initialize is
// reported and skipped; the server still runs with the rest.
func buildPipeline(ctx context.Context, cfg *config.Config, providerCfg *Config) *tools.Pipeline {
	book := pricing.DefaultBook()
	aggregatorService := aggregator.NewService(cfg, normalize.NewService(book))

	if providerCfg.HasAWS() {
		if connector, err := aws.NewService(ctx, providerCfg.AWSRegion, providerCfg.AWSProfile); err == nil {
			aggregatorService.AddConnector(connector)
		} else {
			fmt.Fprintf(os.Stderr, "Skipping AWS: %v\n", err)
		}
	}

	if providerCfg.HasGCP() {
		if connector, err := gcp.NewService(ctx, providerCfg.GCPProjectID, providerCfg.GCPBillingAccount); err == nil {
			aggregatorService.AddConnector(connector)
		} else {
			fmt.Fprintf(os.Stderr, "Skipping GCP: %v\n", err)
		}
	}

	if providerCfg.HasAzure() {
		if connector, err := azure.NewService(ctx, providerCfg.AzureSubscriptionID); err == nil {
			aggregatorService.AddConnector(connector)
		} else {
			fmt.Fprintf(os.Stderr, "Skipping Azure: %v\n", err)
		}
	}

	if providerCfg.HasRunPod() {
		aggregatorService.AddConnector(runpod.NewService(providerCfg.RunPodAPIKey))
	}
	if providerCfg.HasLambda() {
		aggregatorService.AddConnector(lambdalabs.NewService(providerCfg.LambdaAPIKey))
	}
	if providerCfg.HasVast() {
		aggregatorService.AddConnector(vastai.NewService(providerCfg.VastAPIKey))
	}

	return &tools.Pipeline{
		Config:      cfg,
		Aggregator:  aggregatorService,
		Detector:    waste.NewDetector(cfg, book),
		Recommender: recommend.NewService(),
		Forecaster:  forecast.NewService(cfg),
	}
}
