package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/elC0mpa/gpu-doctor/config"
	"github.com/elC0mpa/gpu-doctor/model"
	"github.com/elC0mpa/gpu-doctor/service/aggregator"
	"github.com/elC0mpa/gpu-doctor/service/forecast"
	"github.com/elC0mpa/gpu-doctor/service/recommend"
	"github.com/elC0mpa/gpu-doctor/service/waste"
	"github.com/elC0mpa/gpu-doctor/utils"
)

func NewService(
	cfg *config.Config,
	aggregatorService aggregator.AggregatorService,
	detector waste.DetectorService,
	recommender recommend.RecommenderService,
	forecaster forecast.ForecasterService,
) *orchestratorService {
	return &orchestratorService{
		cfg:         cfg,
		aggregator:  aggregatorService,
		detector:    detector,
		recommender: recommender,
		forecaster:  forecaster,
	}
}

func (s *orchestratorService) Orchestrate(ctx context.Context, flags model.Flags) error {
	snap, _ := s.aggregator.ConnectAll(ctx)
	if snap == nil {
		return fmt.Errorf("no snapshot produced")
	}

	if flags.Waste {
		return s.wasteWorkflow(snap, flags)
	}

	if flags.Recommend {
		return s.recommendWorkflow(snap, flags)
	}

	if flags.Forecast {
		return s.forecastWorkflow(ctx, flags)
	}

	return s.statusWorkflow(snap, flags)
}

func (s *orchestratorService) statusWorkflow(snap *model.Snapshot, flags model.Flags) error {
	period := model.Period{Start: snap.TakenAt.AddDate(0, 0, -30), End: snap.TakenAt}
	summary := s.aggregator.GetSummary(period)

	utils.StopSpinner()

	if flags.JSON {
		return printJSON(map[string]any{
			"snapshot": snap,
			"summary":  summary,
		})
	}

	utils.DrawInstanceTable(snap)
	utils.DrawSummaryTable(summary)
	return nil
}

func (s *orchestratorService) wasteWorkflow(snap *model.Snapshot, flags model.Flags) error {
	report := s.detector.Analyze(snap)

	utils.StopSpinner()

	if flags.JSON {
		return printJSON(report)
	}

	utils.DrawWasteTable(report)
	return nil
}

func (s *orchestratorService) recommendWorkflow(snap *model.Snapshot, flags model.Flags) error {
	wasteReport := s.detector.Analyze(snap)
	report := s.recommender.Generate(wasteReport.Alerts, snap)

	utils.StopSpinner()

	if flags.JSON {
		return printJSON(report)
	}

	utils.DrawRecommendationTable(report)
	return nil
}

func (s *orchestratorService) forecastWorkflow(ctx context.Context, flags model.Flags) error {
	now := time.Now()
	lookback := model.Period{
		Start: now.AddDate(0, 0, -s.cfg.ForecastWindowDays),
		End:   now,
	}

	if _, diagnostics := s.aggregator.SyncSpend(ctx, lookback); len(diagnostics) > 0 {
		// Partial history still forecasts; the interval reflects it
		for _, err := range diagnostics {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	history := s.aggregator.SpendHistory()
	target := model.Period{Start: now, End: now.AddDate(0, 0, 30)}
	result := s.forecaster.Forecast(history, target)

	utils.StopSpinner()

	if flags.JSON {
		return printJSON(result)
	}

	utils.DrawForecastChart(history, result)
	return nil
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
