package orchestrator

import (
	"context"

	"github.com/elC0mpa/gpu-doctor/config"
	"github.com/elC0mpa/gpu-doctor/model"
	"github.com/elC0mpa/gpu-doctor/service/aggregator"
	"github.com/elC0mpa/gpu-doctor/service/forecast"
	"github.com/elC0mpa/gpu-doctor/service/recommend"
	"github.com/elC0mpa/gpu-doctor/service/waste"
)

type orchestratorService struct {
	cfg         *config.Config
	aggregator  aggregator.AggregatorService
	detector    waste.DetectorService
	recommender recommend.RecommenderService
	forecaster  forecast.ForecasterService
}

type OrchestratorService interface {
	Orchestrate(ctx context.Context, flags model.Flags) error
}
