package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elC0mpa/gpu-doctor/config"
	"github.com/elC0mpa/gpu-doctor/response"
	"github.com/elC0mpa/gpu-doctor/service/aggregator"
	"github.com/elC0mpa/gpu-doctor/service/forecast"
	"github.com/elC0mpa/gpu-doctor/service/normalize"
	"github.com/elC0mpa/gpu-doctor/service/recommend"
	"github.com/elC0mpa/gpu-doctor/service/waste"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	return SetupRouter(&Services{
		Config:      cfg,
		Aggregator:  aggregator.NewService(cfg, normalize.NewService(nil)),
		Detector:    waste.NewDetector(cfg, nil),
		Recommender: recommend.NewService(),
		Forecaster:  forecast.NewService(cfg),
	})
}

func TestSetupRouterRoutes(t *testing.T) {
	router := testRouter()

	expected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/healthz"},
		{http.MethodGet, "/api/v1/instances"},
		{http.MethodGet, "/api/v1/summary"},
		{http.MethodGet, "/api/v1/waste"},
		{http.MethodGet, "/api/v1/recommendations"},
		{http.MethodGet, "/api/v1/forecast"},
	}

	routes := router.Routes()
	require.Len(t, routes, len(expected))

	for _, want := range expected {
		found := false
		for _, route := range routes {
			if route.Method == want.method && route.Path == want.path {
				found = true
				break
			}
		}
		assert.True(t, found, "missing route %s %s", want.method, want.path)
	}
}

func TestHealthz(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListInstancesEmptyFleet(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/instances", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var fleet response.Fleet
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fleet))
	assert.NotEmpty(t, fleet.CycleID)
	assert.Empty(t, fleet.Instances)
}

func TestSpendSummaryRejectsInvalidDays(t *testing.T) {
	router := testRouter()

	for _, days := range []string{"0", "366", "-5", "abc"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/summary?days="+days, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "days=%s", days)
	}
}

func TestForecastEmptyHistoryDegrades(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast?days=14", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var forecastBody response.Forecast
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &forecastBody))
	assert.True(t, forecastBody.Degraded)
	assert.Zero(t, forecastBody.SampleSizeUsed)
}
