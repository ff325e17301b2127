package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/elC0mpa/gpu-doctor/config"
	"github.com/elC0mpa/gpu-doctor/model"
	"github.com/elC0mpa/gpu-doctor/response"
	"github.com/elC0mpa/gpu-doctor/service/aggregator"
	"github.com/elC0mpa/gpu-doctor/service/forecast"
	"github.com/elC0mpa/gpu-doctor/service/recommend"
	"github.com/elC0mpa/gpu-doctor/service/waste"
	"github.com/gin-gonic/gin"
)

func HealthzHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// ListInstancesHandler syncs every provider and returns the fleet
func ListInstancesHandler(agg aggregator.AggregatorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, _ := agg.ConnectAll(c.Request.Context())
		if snap == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No snapshot produced"})
			return
		}

		c.JSON(http.StatusOK, response.ConvertSnapshot(snap))
	}
}

// SpendSummaryHandler returns the spend summary for a trailing period,
// ?days=N, default 30
func SpendSummaryHandler(agg aggregator.AggregatorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		days, err := daysParam(c, 30)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid days parameter: " + err.Error()})
			return
		}

		snap, _ := agg.ConnectAll(c.Request.Context())
		if snap == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No snapshot produced"})
			return
		}

		period := model.Period{Start: snap.TakenAt.AddDate(0, 0, -days), End: snap.TakenAt}
		c.JSON(http.StatusOK, response.ConvertSummary(agg.GetSummary(period)))
	}
}

// WasteReportHandler runs the waste rules over a fresh snapshot
func WasteReportHandler(agg aggregator.AggregatorService, detector waste.DetectorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, _ := agg.ConnectAll(c.Request.Context())
		if snap == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No snapshot produced"})
			return
		}

		c.JSON(http.StatusOK, response.ConvertWasteReport(detector.Analyze(snap)))
	}
}

// RecommendationsHandler returns prioritized actions from the waste report
func RecommendationsHandler(
	agg aggregator.AggregatorService,
	detector waste.DetectorService,
	recommender recommend.RecommenderService,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, _ := agg.ConnectAll(c.Request.Context())
		if snap == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No snapshot produced"})
			return
		}

		wasteReport := detector.Analyze(snap)
		c.JSON(http.StatusOK, response.ConvertRecommendationReport(recommender.Generate(wasteReport.Alerts, snap)))
	}
}

// ForecastHandler projects spend for the next ?days=N (default 30)
// from synced history
func ForecastHandler(
	cfg *config.Config,
	agg aggregator.AggregatorService,
	forecaster forecast.ForecasterService,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		days, err := daysParam(c, 30)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid days parameter: " + err.Error()})
			return
		}

		now := time.Now()
		lookback := model.Period{Start: now.AddDate(0, 0, -cfg.ForecastWindowDays), End: now}
		agg.SyncSpend(c.Request.Context(), lookback)

		target := model.Period{Start: now, End: now.AddDate(0, 0, days)}
		result := forecaster.Forecast(agg.SpendHistory(), target)

		c.JSON(http.StatusOK, response.ConvertForecast(result))
	}
}

func daysParam(c *gin.Context, fallback int) (int, error) {
	raw := c.Query("days")
	if raw == "" {
		return fallback, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if days < 1 || days > 365 {
		return 0, strconv.ErrRange
	}
	return days, nil
}
