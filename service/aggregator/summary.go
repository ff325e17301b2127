package aggregator

import (
	"github.com/elC0mpa/gpu-doctor/config"
	"github.com/elC0mpa/gpu-doctor/model"
)

// GetSummary reports spend for the period against the latest snapshot
func (s *aggregatorService) GetSummary(period model.Period) model.SpendSummary {
	snap := s.Snapshot()
	if snap == nil {
		return model.SpendSummary{Period: period}
	}
	return Summarize(snap, period, s.cfg)
}

// Summarize computes a SpendSummary from one immutable snapshot. It is
// a pure function: the snapshot's total always equals the sum of its
// per-instance costs because both come from the same rate × hours term.
func Summarize(snap *model.Snapshot, period model.Period, cfg *config.Config) model.SpendSummary {
	summary := model.SpendSummary{
		Period:          period,
		FailedProviders: snap.FailedProviders,
		ByProvider:      make(map[string]float64),
	}

	for _, inst := range snap.Instances {
		hours := RunningHours(inst, period)
		if hours > 0 {
			cost := inst.HourlyRate * hours
			summary.TotalCost += cost
			summary.GPUHours += hours * float64(inst.GPUCount)
			summary.ByProvider[inst.Provider] += cost
		}

		if inst.Status.IsBillable() {
			summary.RunningCount++
		}

		idle := idleWindowsInPeriod(snap.Samples[inst.ID], period, cfg)
		if len(idle) == 0 {
			continue
		}
		summary.IdleInstances++
		summary.EstimatedWaste += inst.HourlyRate * model.CoveredDuration(idle).Hours()
	}

	return summary
}

// RunningHours is the billable overlap between an instance's lifetime
// and the period. Terminated instances stop accruing at LastSeen;
// stopped instances accrue nothing (their stop time is unknown, so the
// conservative answer is zero).
func RunningHours(inst model.Instance, period model.Period) float64 {
	var end = period.End
	switch inst.Status {
	case model.StatusTerminated:
		if inst.LastSeen.Before(end) {
			end = inst.LastSeen
		}
	case model.StatusStopped:
		return 0
	}

	start := period.Start
	if inst.LaunchTime.After(start) {
		start = inst.LaunchTime
	}
	if !start.Before(end) {
		return 0
	}
	return end.Sub(start).Hours()
}

// idleWindowsInPeriod finds qualifying idle windows clipped strictly
// inside the period
func idleWindowsInPeriod(samples []model.UtilizationSample, period model.Period, cfg *config.Config) []model.TimeWindow {
	windows := model.IdleWindows(samples, cfg.IdleThresholdPct, cfg.IdleWindow)

	var inside []model.TimeWindow
	for _, w := range windows {
		clipped, ok := w.Clip(period)
		if !ok {
			continue
		}
		if clipped.Duration() >= cfg.IdleWindow {
			inside = append(inside, clipped)
		}
	}
	return inside
}
