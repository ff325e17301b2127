package model

import "time"

// Snapshot is an immutable point-in-time view of the whole fleet,
// produced by one sync cycle. Every analysis pass reads exactly one
// snapshot so results never blend data from two cycles.
type Snapshot struct {
	CycleID string
	TakenAt time.Time

	// Instances ordered by (provider, id)
	Instances []Instance

	// Samples holds the retained utilization series per instance id,
	// ordered by timestamp ascending
	Samples map[string][]UtilizationSample

	// FailedProviders lists providers whose connector call failed or
	// timed out this cycle; their data is absent, not stale
	FailedProviders []string
}

// Instance returns the snapshot instance with the given id
func (s *Snapshot) Instance(id string) (Instance, bool) {
	for _, inst := range s.Instances {
		if inst.ID == id {
			return inst, true
		}
	}
	return Instance{}, false
}

// SpendSummary aggregates fleet spend over one period
type SpendSummary struct {
	Period          Period
	TotalCost       float64
	GPUHours        float64
	RunningCount    int
	IdleInstances   int
	EstimatedWaste  float64
	FailedProviders []string

	ByProvider map[string]float64
}

// DailyRunRate is the average daily spend over the summary period
func (s SpendSummary) DailyRunRate() float64 {
	days := s.Period.Days()
	if days <= 0 {
		return s.TotalCost
	}
	return s.TotalCost / days
}

// MonthlyProjection extrapolates the run rate to a 30-day month
func (s SpendSummary) MonthlyProjection() float64 {
	return s.DailyRunRate() * 30
}
