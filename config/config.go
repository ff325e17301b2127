package config

import (
	"time"

	"github.com/elC0mpa/gpu-doctor/model"
	"github.com/spf13/viper"
)

// Config is the full analysis configuration surface. Every knob has a
// default and can be overridden through the environment.
type Config struct {
	ServerAddress string `mapstructure:"server_address"`

	// Aggregation
	PerProviderTimeout   time.Duration `mapstructure:"per_provider_timeout"`
	UtilizationRetention time.Duration `mapstructure:"utilization_retention"`

	// Idle detection
	IdleThresholdPct float64       `mapstructure:"idle_threshold_pct"`
	IdleWindow       time.Duration `mapstructure:"idle_window"`

	// Waste rules
	SpotSavingsThresholdPct float64 `mapstructure:"spot_savings_threshold_pct"`
	OnDemandDayThreshold    int     `mapstructure:"on_demand_day_threshold"`

	// Forecasting
	ForecastWindowDays     int     `mapstructure:"forecast_window_days"`
	MinForecastSamples     int     `mapstructure:"min_forecast_samples"`
	ForecastHorizonDays    int     `mapstructure:"forecast_horizon_days"`
	DegradedIntervalFactor float64 `mapstructure:"degraded_interval_factor"`
}

// LoadConfig reads configuration from the environment with defaults,
// then validates it. Validation failures are fatal by design: no
// snapshot is ever produced from an invalid configuration.
func LoadConfig() (*Config, error) {
	viper.SetDefault("server_address", ":8080")
	viper.SetDefault("per_provider_timeout", "30s")
	viper.SetDefault("utilization_retention", "168h")
	viper.SetDefault("idle_threshold_pct", 10.0)
	viper.SetDefault("idle_window", "1h")
	viper.SetDefault("spot_savings_threshold_pct", 30.0)
	viper.SetDefault("on_demand_day_threshold", 7)
	viper.SetDefault("forecast_window_days", 90)
	viper.SetDefault("min_forecast_samples", 14)
	viper.SetDefault("forecast_horizon_days", 90)
	viper.SetDefault("degraded_interval_factor", 1.0)
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the built-in configuration without touching the
// environment. It always validates.
func Default() *Config {
	return &Config{
		ServerAddress:           ":8080",
		PerProviderTimeout:      30 * time.Second,
		UtilizationRetention:    168 * time.Hour,
		IdleThresholdPct:        10,
		IdleWindow:              time.Hour,
		SpotSavingsThresholdPct: 30,
		OnDemandDayThreshold:    7,
		ForecastWindowDays:      90,
		MinForecastSamples:      14,
		ForecastHorizonDays:     90,
		DegradedIntervalFactor:  1.0,
	}
}

// Validate rejects invalid thresholds eagerly
func (c *Config) Validate() error {
	if c.IdleThresholdPct < 0 || c.IdleThresholdPct > 100 {
		return &model.ConfigurationError{Field: "idle_threshold_pct", Reason: "must be within [0, 100]"}
	}
	if c.IdleWindow <= 0 {
		return &model.ConfigurationError{Field: "idle_window", Reason: "must be positive"}
	}
	if c.PerProviderTimeout <= 0 {
		return &model.ConfigurationError{Field: "per_provider_timeout", Reason: "must be positive"}
	}
	if c.UtilizationRetention < c.IdleWindow {
		return &model.ConfigurationError{Field: "utilization_retention", Reason: "must cover at least one idle window"}
	}
	if c.SpotSavingsThresholdPct < 0 || c.SpotSavingsThresholdPct > 100 {
		return &model.ConfigurationError{Field: "spot_savings_threshold_pct", Reason: "must be within [0, 100]"}
	}
	if c.OnDemandDayThreshold < 1 {
		return &model.ConfigurationError{Field: "on_demand_day_threshold", Reason: "must be at least 1 day"}
	}
	if c.ForecastWindowDays < 1 {
		return &model.ConfigurationError{Field: "forecast_window_days", Reason: "must be at least 1 day"}
	}
	if c.MinForecastSamples < 2 {
		return &model.ConfigurationError{Field: "min_forecast_samples", Reason: "must be at least 2 periods"}
	}
	if c.ForecastHorizonDays < 1 {
		return &model.ConfigurationError{Field: "forecast_horizon_days", Reason: "must be at least 1 day"}
	}
	if c.DegradedIntervalFactor <= 0 {
		return &model.ConfigurationError{Field: "degraded_interval_factor", Reason: "must be positive"}
	}
	return nil
}
