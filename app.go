package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/elC0mpa/gpu-doctor/config"
	"github.com/elC0mpa/gpu-doctor/model"
	"github.com/elC0mpa/gpu-doctor/pricing"
	"github.com/elC0mpa/gpu-doctor/service"
	"github.com/elC0mpa/gpu-doctor/service/aggregator"
	"github.com/elC0mpa/gpu-doctor/service/aws"
	"github.com/elC0mpa/gpu-doctor/service/azure"
	flagsvc "github.com/elC0mpa/gpu-doctor/service/flag"
	"github.com/elC0mpa/gpu-doctor/service/forecast"
	"github.com/elC0mpa/gpu-doctor/service/gcp"
	"github.com/elC0mpa/gpu-doctor/service/lambdalabs"
	"github.com/elC0mpa/gpu-doctor/service/normalize"
	"github.com/elC0mpa/gpu-doctor/service/orchestrator"
	"github.com/elC0mpa/gpu-doctor/service/recommend"
	"github.com/elC0mpa/gpu-doctor/service/runpod"
	"github.com/elC0mpa/gpu-doctor/service/vastai"
	"github.com/elC0mpa/gpu-doctor/service/waste"
	"github.com/elC0mpa/gpu-doctor/utils"
)

func main() {
	utils.DrawBanner()

	flagService := flagsvc.NewService()
	flags, err := flagService.GetParsedFlags()
	if err != nil {
		panic(err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	utils.StartSpinner()

	ctx := context.Background()

	book := pricing.DefaultBook()
	aggregatorService := aggregator.NewService(cfg, normalize.NewService(book))
	for _, connector := range buildConnectors(ctx, flags) {
		aggregatorService.AddConnector(connector)
	}

	orchestratorService := orchestrator.NewService(
		cfg,
		aggregatorService,
		waste.NewDetector(cfg, book),
		recommend.NewService(),
		forecast.NewService(cfg),
	)

	if err := orchestratorService.Orchestrate(ctx, flags); err != nil {
		utils.StopSpinner()
		panic(err)
	}
}

// buildConnectors assembles one connector per configured provider. A
// provider that fails to initialize is skipped with a warning so the
// rest of the scan proceeds.
func buildConnectors(ctx context.Context, flags model.Flags) []service.Connector {
	requested := requestedProviders(flags.Providers)
	var connectors []service.Connector

	add := func(name string, build func() (service.Connector, error)) {
		if !requested(name) {
			return
		}
		connector, err := build()
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping %s: %v\n", name, err)
			return
		}
		connectors = append(connectors, connector)
	}

	add("aws", func() (service.Connector, error) {
		return aws.NewService(ctx, flags.Region, flags.Profile)
	})

	add("gcp", func() (service.Connector, error) {
		project := firstNonEmpty(flags.Project, os.Getenv("GOOGLE_CLOUD_PROJECT"))
		if project == "" {
			return nil, fmt.Errorf("no GCP project configured")
		}
		billing := firstNonEmpty(flags.BillingAccount, os.Getenv("GCP_BILLING_ACCOUNT"))
		return gcp.NewService(ctx, project, billing)
	})

	add("azure", func() (service.Connector, error) {
		subscription := firstNonEmpty(flags.Subscription, os.Getenv("AZURE_SUBSCRIPTION_ID"))
		if subscription == "" {
			return nil, fmt.Errorf("no Azure subscription configured")
		}
		return azure.NewService(ctx, subscription)
	})

	add("runpod", func() (service.Connector, error) {
		key := os.Getenv("RUNPOD_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("RUNPOD_API_KEY not set")
		}
		return runpod.NewService(key), nil
	})

	add("lambda", func() (service.Connector, error) {
		key := os.Getenv("LAMBDA_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("LAMBDA_API_KEY not set")
		}
		return lambdalabs.NewService(key), nil
	})

	add("vastai", func() (service.Connector, error) {
		key := os.Getenv("VASTAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("VASTAI_API_KEY not set")
		}
		return vastai.NewService(key), nil
	})

	return connectors
}

// requestedProviders parses the -providers flag into a membership
// check; an empty flag selects every configured provider
func requestedProviders(csv string) func(string) bool {
	csv = strings.TrimSpace(csv)
	if csv == "" {
		return func(string) bool { return true }
	}

	selected := make(map[string]struct{})
	for _, name := range strings.Split(csv, ",") {
		selected[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	return func(name string) bool {
		_, ok := selected[name]
		return ok
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
