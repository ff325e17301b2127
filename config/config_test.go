package config

import (
	"testing"
	"time"

	"github.com/elC0mpa/gpu-doctor/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 10.0, cfg.IdleThresholdPct)
	assert.Equal(t, time.Hour, cfg.IdleWindow)
	assert.Equal(t, 30*time.Second, cfg.PerProviderTimeout)
	assert.Equal(t, 168*time.Hour, cfg.UtilizationRetention)
	assert.Equal(t, 30.0, cfg.SpotSavingsThresholdPct)
	assert.Equal(t, 7, cfg.OnDemandDayThreshold)
	assert.Equal(t, 90, cfg.ForecastWindowDays)
	assert.Equal(t, 14, cfg.MinForecastSamples)
	assert.Equal(t, 90, cfg.ForecastHorizonDays)
	assert.Equal(t, 1.0, cfg.DegradedIntervalFactor)
}

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{
			name:   "negative idle threshold",
			mutate: func(c *Config) { c.IdleThresholdPct = -1 },
			field:  "idle_threshold_pct",
		},
		{
			name:   "idle threshold above 100",
			mutate: func(c *Config) { c.IdleThresholdPct = 101 },
			field:  "idle_threshold_pct",
		},
		{
			name:   "zero idle window",
			mutate: func(c *Config) { c.IdleWindow = 0 },
			field:  "idle_window",
		},
		{
			name:   "zero provider timeout",
			mutate: func(c *Config) { c.PerProviderTimeout = 0 },
			field:  "per_provider_timeout",
		},
		{
			name:   "retention below idle window",
			mutate: func(c *Config) { c.UtilizationRetention = 30 * time.Minute },
			field:  "utilization_retention",
		},
		{
			name:   "spot savings threshold above 100",
			mutate: func(c *Config) { c.SpotSavingsThresholdPct = 150 },
			field:  "spot_savings_threshold_pct",
		},
		{
			name:   "zero on-demand day threshold",
			mutate: func(c *Config) { c.OnDemandDayThreshold = 0 },
			field:  "on_demand_day_threshold",
		},
		{
			name:   "single forecast sample",
			mutate: func(c *Config) { c.MinForecastSamples = 1 },
			field:  "min_forecast_samples",
		},
		{
			name:   "zero degraded interval factor",
			mutate: func(c *Config) { c.DegradedIntervalFactor = 0 },
			field:  "degraded_interval_factor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var cfgErr *model.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}
