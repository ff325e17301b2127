package api

import (
	"github.com/elC0mpa/gpu-doctor/api/handlers"
	"github.com/elC0mpa/gpu-doctor/config"
	"github.com/elC0mpa/gpu-doctor/service/aggregator"
	"github.com/elC0mpa/gpu-doctor/service/forecast"
	"github.com/elC0mpa/gpu-doctor/service/recommend"
	"github.com/elC0mpa/gpu-doctor/service/waste"
	"github.com/gin-gonic/gin"
)

// Services bundles the analytical services the API serves
type Services struct {
	Config      *config.Config
	Aggregator  aggregator.AggregatorService
	Detector    waste.DetectorService
	Recommender recommend.RecommenderService
	Forecaster  forecast.ForecasterService
}

func SetupRouter(svc *Services) *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", handlers.HealthzHandler())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/instances", handlers.ListInstancesHandler(svc.Aggregator))
		v1.GET("/summary", handlers.SpendSummaryHandler(svc.Aggregator))
		v1.GET("/waste", handlers.WasteReportHandler(svc.Aggregator, svc.Detector))
		v1.GET("/recommendations", handlers.RecommendationsHandler(svc.Aggregator, svc.Detector, svc.Recommender))
		v1.GET("/forecast", handlers.ForecastHandler(svc.Config, svc.Aggregator, svc.Forecaster))
	}

	return r
}
