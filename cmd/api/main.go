package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/elC0mpa/gpu-doctor/api"
	"github.com/elC0mpa/gpu-doctor/config"
	"github.com/elC0mpa/gpu-doctor/pricing"
	"github.com/elC0mpa/gpu-doctor/service"
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
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	book := pricing.DefaultBook()
	aggregatorService := aggregator.NewService(cfg, normalize.NewService(book))

	for _, connector := range buildConnectors(ctx) {
		aggregatorService.AddConnector(connector)
	}

	router := api.SetupRouter(&api.Services{
		Config:      cfg,
		Aggregator:  aggregatorService,
		Detector:    waste.NewDetector(cfg, book),
		Recommender: recommend.NewService(),
		Forecaster:  forecast.NewService(cfg),
	})

	log.Fatal(router.Run(listenAddress(cfg)))
}

// buildConnectors assembles connectors for every provider the
// environment configures; failures are logged and skipped
func buildConnectors(ctx context.Context) []service.Connector {
	var connectors []service.Connector

	if connector, err := aws.NewService(ctx, envOr("AWS_REGION", "us-east-1"), os.Getenv("AWS_PROFILE")); err == nil {
		connectors = append(connectors, connector)
	} else {
		log.Printf("Skipping AWS: %v", err)
	}

	if project := os.Getenv("GCP_PROJECT_ID"); project != "" {
		if connector, err := gcp.NewService(ctx, project, os.Getenv("GCP_BILLING_ACCOUNT")); err == nil {
			connectors = append(connectors, connector)
		} else {
			log.Printf("Skipping GCP: %v", err)
		}
	}

	if subscription := os.Getenv("AZURE_SUBSCRIPTION_ID"); subscription != "" {
		if connector, err := azure.NewService(ctx, subscription); err == nil {
			connectors = append(connectors, connector)
		} else {
			log.Printf("Skipping Azure: %v", err)
		}
	}

	if key := os.Getenv("RUNPOD_API_KEY"); key != "" {
		connectors = append(connectors, runpod.NewService(key))
	}
	if key := os.Getenv("LAMBDA_API_KEY"); key != "" {
		connectors = append(connectors, lambdalabs.NewService(key))
	}
	if key := os.Getenv("VASTAI_API_KEY"); key != "" {
		connectors = append(connectors, vastai.NewService(key))
	}

	return connectors
}

func listenAddress(cfg *config.Config) string {
	if port := os.Getenv("PORT"); port != "" {
		return fmt.Sprintf(":%s", port)
	}
	return cfg.ServerAddress
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
