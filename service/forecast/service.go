package forecast

import (
	"math"
	"sort"
	"time"

	"github.com/elC0mpa/gpu-doctor/config"
	"github.com/elC0mpa/gpu-doctor/model"
)

// z95 is the normal quantile for a 95% confidence interval
const z95 = 1.96

func NewService(cfg *config.Config) *forecasterService {
	return &forecasterService{cfg: cfg}
}

type forecasterService struct {
	cfg *config.Config
}

// ForecasterService projects future spend from historical rollups
type ForecasterService interface {
	Forecast(history []model.SpendRecord, target model.Period) model.ForecastResult
}

// Forecast projects spend for the target period from daily rollups of
// the spend history. The model is a robust linear trend plus weekday
// seasonality; the interval comes from the residual spread. Sparse
// history never fails: below the minimum sample threshold the result
// degrades to a wide, explicitly low-confidence interval.
func (s *forecasterService) Forecast(history []model.SpendRecord, target model.Period) model.ForecastResult {
	days := dailyRollup(history, s.cfg.ForecastWindowDays)

	if len(days) < s.cfg.MinForecastSamples {
		return s.degraded(days, target)
	}

	first := days[0].day
	xs := make([]float64, len(days))
	ys := make([]float64, len(days))
	for i, d := range days {
		xs[i] = dayIndex(first, d.day)
		ys[i] = d.cost
	}

	slope, intercept := huberFit(xs, ys)
	seasonal := weekdayOffsets(days, slope, intercept, first)

	residuals := make([]float64, len(days))
	for i, d := range days {
		fitted := intercept + slope*xs[i] + seasonal[d.day.Weekday()]
		residuals[i] = ys[i] - fitted
	}
	sigma := 1.4826 * mad(residuals)

	targetDays := periodDays(target)
	predicted := 0.0
	for _, day := range targetDays {
		estimate := intercept + slope*dayIndex(first, day) + seasonal[day.Weekday()]
		if estimate > 0 {
			predicted += estimate
		}
	}

	margin := z95 * sigma * math.Sqrt(float64(len(targetDays)))

	// Beyond the horizon cap the interval widens with distance rather
	// than the point estimate pretending to certainty
	lastObserved := days[len(days)-1].day
	gapDays := dayIndex(lastObserved, target.End)
	horizon := float64(s.cfg.ForecastHorizonDays)
	if gapDays > horizon {
		margin *= 1 + (gapDays-horizon)/horizon
	}

	return model.ForecastResult{
		Period:         target,
		PredictedCost:  predicted,
		ConfidenceLow:  math.Max(0, predicted-margin),
		ConfidenceHigh: predicted + margin,
		SampleSizeUsed: len(days),
	}
}

// degraded builds the wide low-confidence result used when history is
// below the minimum threshold. Interval width is at least
// DegradedIntervalFactor times the point estimate.
func (s *forecasterService) degraded(days []dailyCost, target model.Period) model.ForecastResult {
	meanDaily := 0.0
	if len(days) > 0 {
		for _, d := range days {
			meanDaily += d.cost
		}
		meanDaily /= float64(len(days))
	}

	predicted := meanDaily * target.Days()
	spread := predicted * s.cfg.DegradedIntervalFactor

	return model.ForecastResult{
		Period:         target,
		PredictedCost:  predicted,
		ConfidenceLow:  math.Max(0, predicted-spread),
		ConfidenceHigh: predicted + spread,
		SampleSizeUsed: len(days),
		Degraded:       true,
	}
}

type dailyCost struct {
	day  time.Time
	cost float64
}

// dailyRollup buckets spend records by UTC day over the trailing
// window, ordered oldest first
func dailyRollup(history []model.SpendRecord, windowDays int) []dailyCost {
	totals := make(map[time.Time]float64)
	var last time.Time
	for _, record := range history {
		day := record.PeriodStart.UTC().Truncate(24 * time.Hour)
		totals[day] += record.Cost
		if day.After(last) {
			last = day
		}
	}
	if len(totals) == 0 {
		return nil
	}

	cutoff := last.AddDate(0, 0, -windowDays)
	days := make([]dailyCost, 0, len(totals))
	for day, cost := range totals {
		if day.Before(cutoff) {
			continue
		}
		days = append(days, dailyCost{day: day, cost: cost})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].day.Before(days[j].day) })
	return days
}

// weekdayOffsets estimates the weekly seasonality as the median trend
// residual per weekday; weekdays with a single observation contribute
// no offset
func weekdayOffsets(days []dailyCost, slope, intercept float64, first time.Time) map[time.Weekday]float64 {
	grouped := make(map[time.Weekday][]float64)
	for _, d := range days {
		residual := d.cost - (intercept + slope*dayIndex(first, d.day))
		grouped[d.day.Weekday()] = append(grouped[d.day.Weekday()], residual)
	}

	offsets := make(map[time.Weekday]float64, len(grouped))
	for weekday, residuals := range grouped {
		if len(residuals) < 2 {
			continue
		}
		offsets[weekday] = median(residuals)
	}
	return offsets
}

func dayIndex(first, day time.Time) float64 {
	return day.Sub(first).Hours() / 24
}

func periodDays(p model.Period) []time.Time {
	var days []time.Time
	for day := p.Start.UTC().Truncate(24 * time.Hour); day.Before(p.End); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days
}
