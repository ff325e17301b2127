package response

import (
	"testing"
	"time"

	"github.com/elC0mpa/gpu-doctor/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertSnapshot(t *testing.T) {
	takenAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("nil snapshot", func(t *testing.T) {
		assert.Nil(t, ConvertSnapshot(nil))
	})

	t.Run("utilization only when measured", func(t *testing.T) {
		snap := &model.Snapshot{
			CycleID: "cycle-1",
			TakenAt: takenAt,
			Instances: []model.Instance{
				{ID: "vm-1", UtilizationPct: 42.567, UtilizationKnown: true},
				{ID: "i-blind"},
			},
		}

		fleet := ConvertSnapshot(snap)
		require.Len(t, fleet.Instances, 2)

		require.NotNil(t, fleet.Instances[0].UtilizationPct)
		assert.Equal(t, 42.57, *fleet.Instances[0].UtilizationPct)
		assert.Nil(t, fleet.Instances[1].UtilizationPct)
	})

	t.Run("rates rounded to cents", func(t *testing.T) {
		snap := &model.Snapshot{
			TakenAt:   takenAt,
			Instances: []model.Instance{{ID: "vm-1", HourlyRate: 4.09625}},
		}

		fleet := ConvertSnapshot(snap)
		assert.Equal(t, 4.1, fleet.Instances[0].HourlyRate)
	})

	t.Run("zero launch time omitted", func(t *testing.T) {
		snap := &model.Snapshot{
			TakenAt:   takenAt,
			Instances: []model.Instance{{ID: "vm-1"}},
		}

		fleet := ConvertSnapshot(snap)
		assert.Empty(t, fleet.Instances[0].LaunchTime)
	})
}

func TestConvertSummary(t *testing.T) {
	summary := model.SpendSummary{
		Period: model.Period{
			Start: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		TotalCost:  1234.5678,
		GPUHours:   480,
		ByProvider: map[string]float64{"gcp": 1234.5678},
	}

	converted := ConvertSummary(summary)
	assert.Equal(t, "2026-02-01", converted.StartDate)
	assert.Equal(t, "2026-03-01", converted.EndDate)
	assert.Equal(t, 1234.57, converted.TotalCost)
	assert.Equal(t, 1234.57, converted.ByProvider["gcp"])
	// 28-day period projected to a 30-day month
	assert.InDelta(t, 1234.5678*30/28, converted.MonthlyProjection, 0.01)
}

func TestConvertForecast(t *testing.T) {
	result := model.ForecastResult{
		Period: model.Period{
			Start: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		},
		PredictedCost:  2999.996,
		ConfidenceLow:  2800.004,
		ConfidenceHigh: 3199.999,
		SampleSizeUsed: 60,
	}

	converted := ConvertForecast(result)
	assert.Equal(t, 3000.0, converted.PredictedCost)
	assert.Equal(t, 2800.0, converted.ConfidenceLow)
	assert.Equal(t, 3200.0, converted.ConfidenceHigh)
	assert.False(t, converted.Degraded)
}
