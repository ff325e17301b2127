package response

import (
	"math"
	"time"

	"github.com/elC0mpa/gpu-doctor/model"
)

// ConvertSnapshot converts a model.Snapshot to a response.Fleet.
// Monetary values are rounded to cents here, at the presentation
// boundary only.
func ConvertSnapshot(snap *model.Snapshot) *Fleet {
	if snap == nil {
		return nil
	}

	instances := make([]Instance, 0, len(snap.Instances))
	for _, inst := range snap.Instances {
		instances = append(instances, convertInstance(inst))
	}

	return &Fleet{
		CycleID:         snap.CycleID,
		TakenAt:         snap.TakenAt.Format(time.RFC3339),
		Instances:       instances,
		FailedProviders: snap.FailedProviders,
	}
}

func convertInstance(inst model.Instance) Instance {
	out := Instance{
		ID:            inst.ID,
		Provider:      inst.Provider,
		InstanceType:  inst.InstanceType,
		GPUType:       string(inst.GPUType),
		GPUCount:      inst.GPUCount,
		Status:        string(inst.Status),
		HourlyRate:    round2(inst.HourlyRate),
		PricingModel:  string(inst.PricingModel),
		Region:        inst.Region,
		PriceFallback: inst.PriceFallback,
	}
	if !inst.LaunchTime.IsZero() {
		out.LaunchTime = inst.LaunchTime.Format(time.RFC3339)
	}
	if inst.UtilizationKnown {
		util := round2(inst.UtilizationPct)
		out.UtilizationPct = &util
	}
	return out
}

// ConvertSummary converts a model.SpendSummary to its response shape
func ConvertSummary(summary model.SpendSummary) *SpendSummary {
	byProvider := make(map[string]float64, len(summary.ByProvider))
	for provider, cost := range summary.ByProvider {
		byProvider[provider] = round2(cost)
	}

	return &SpendSummary{
		StartDate:         summary.Period.Start.Format("2006-01-02"),
		EndDate:           summary.Period.End.Format("2006-01-02"),
		TotalCost:         round2(summary.TotalCost),
		GPUHours:          round2(summary.GPUHours),
		RunningCount:      summary.RunningCount,
		IdleInstances:     summary.IdleInstances,
		EstimatedWaste:    round2(summary.EstimatedWaste),
		DailyRunRate:      round2(summary.DailyRunRate()),
		MonthlyProjection: round2(summary.MonthlyProjection()),
		ByProvider:        byProvider,
		FailedProviders:   summary.FailedProviders,
	}
}

// ConvertWasteReport converts a model.WasteReport to its response shape
func ConvertWasteReport(report model.WasteReport) *WasteReport {
	alerts := make([]WasteAlert, 0, len(report.Alerts))
	for _, alert := range report.Alerts {
		converted := WasteAlert{
			InstanceID:   alert.InstanceID,
			Provider:     alert.Provider,
			GPUType:      string(alert.GPUType),
			Severity:     string(alert.Severity),
			Rule:         alert.RuleName,
			Reason:       alert.Reason,
			MonthlyWaste: round2(alert.EstimatedMonthlyWaste),
		}
		if !alert.Window.Start.IsZero() {
			converted.WindowStart = alert.Window.Start.Format(time.RFC3339)
			converted.WindowEnd = alert.Window.End.Format(time.RFC3339)
		}
		alerts = append(alerts, converted)
	}

	return &WasteReport{
		CycleID:           report.CycleID,
		InstancesAnalyzed: report.InstancesAnalyzed,
		Alerts:            alerts,
		DailyWaste:        round2(report.DailyWaste),
		MonthlyWaste:      round2(report.MonthlyWaste),
		AnnualWaste:       round2(report.AnnualWaste),
	}
}

// ConvertRecommendationReport converts a model.RecommendationReport to
// its response shape
func ConvertRecommendationReport(report model.RecommendationReport) *RecommendationReport {
	return &RecommendationReport{
		CycleID:             report.CycleID,
		Recommendations:     convertRecommendations(report.Recommendations),
		QuickWins:           convertRecommendations(report.QuickWins),
		TotalMonthlySavings: round2(report.TotalMonthlySavings),
		TotalAnnualSavings:  round2(report.TotalAnnualSavings),
	}
}

func convertRecommendations(recs []model.Recommendation) []Recommendation {
	out := make([]Recommendation, 0, len(recs))
	for _, rec := range recs {
		out = append(out, Recommendation{
			Type:           string(rec.Type),
			Priority:       string(rec.Priority),
			Title:          rec.Title,
			Description:    rec.Description,
			MonthlySavings: round2(rec.MonthlySavings),
			Effort:         string(rec.Effort),
			Provider:       rec.Provider,
			Targets:        rec.TargetInstanceIDs,
		})
	}
	return out
}

// ConvertForecast converts a model.ForecastResult to its response shape
func ConvertForecast(result model.ForecastResult) *Forecast {
	return &Forecast{
		StartDate:      result.Period.Start.Format("2006-01-02"),
		EndDate:        result.Period.End.Format("2006-01-02"),
		PredictedCost:  round2(result.PredictedCost),
		ConfidenceLow:  round2(result.ConfidenceLow),
		ConfidenceHigh: round2(result.ConfidenceHigh),
		SampleSizeUsed: result.SampleSizeUsed,
		Degraded:       result.Degraded,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
