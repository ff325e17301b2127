package model

import "time"

// InstanceStatus is the lifecycle state of a GPU instance
type InstanceStatus string

const (
	StatusRunning    InstanceStatus = "running"
	StatusIdle       InstanceStatus = "idle"
	StatusStopped    InstanceStatus = "stopped"
	StatusTerminated InstanceStatus = "terminated"
)

// IsBillable reports whether the instance accrues hourly charges
func (s InstanceStatus) IsBillable() bool {
	return s == StatusRunning || s == StatusIdle
}

// PricingModel is the billing arrangement for an instance
type PricingModel string

const (
	PricingOnDemand PricingModel = "on_demand"
	PricingSpot     PricingModel = "spot"
	PricingReserved PricingModel = "reserved"
)

// GPUType is the canonical provider-agnostic GPU identifier
type GPUType string

const (
	GPUA100_40GB GPUType = "a100-40gb"
	GPUA100_80GB GPUType = "a100-80gb"
	GPUH100_80GB GPUType = "h100-80gb"
	GPUH100SXM   GPUType = "h100-sxm"
	GPUV100_16GB GPUType = "v100-16gb"
	GPUV100_32GB GPUType = "v100-32gb"
	GPUA10G      GPUType = "a10g"
	GPUL4        GPUType = "l4"
	GPUL40S      GPUType = "l40s"
	GPUT4        GPUType = "t4"
	GPURTX4090   GPUType = "rtx-4090"
	GPURTX4080   GPUType = "rtx-4080"
	GPURTX3090   GPUType = "rtx-3090"
	GPUMI250X    GPUType = "mi250x"
	GPUMI300X    GPUType = "mi300x"
	GPUUnknown   GPUType = "unknown"
)

// Instance is the canonical representation of a GPU instance after
// normalization. HourlyRate carries full precision; rounding happens
// only at the presentation boundary.
type Instance struct {
	ID             string
	Provider       string
	InstanceType   string
	GPUType        GPUType
	GPUCount       int
	Status         InstanceStatus
	HourlyRate     float64
	PricingModel   PricingModel
	Region         string
	LaunchTime     time.Time
	UtilizationPct float64

	// UtilizationKnown distinguishes a measured 0% from a provider that
	// exposes no utilization telemetry at all. Instances without
	// telemetry never enter the utilization series.
	UtilizationKnown bool

	// LastSeen is the sync cycle timestamp at which the provider last
	// reported this instance. Terminated instances stop accruing cost
	// at LastSeen.
	LastSeen time.Time

	// PriceFallback is set when no exact pricing-table match existed
	// and the provider default rate was used instead.
	PriceFallback bool
}

// UtilizationSample is one point of the per-instance utilization series
type UtilizationSample struct {
	InstanceID     string
	Timestamp      time.Time
	UtilizationPct float64
}

// SpendRecord is an immutable per-instance cost record for a billing period
type SpendRecord struct {
	InstanceID  string
	Provider    string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Cost        float64
	GPUHours    float64
}

// ProviderInstance is the raw, provider-specific instance shape emitted
// by a connector before normalization
type ProviderInstance struct {
	ID             string
	Provider       string
	InstanceType   string
	GPUName        string
	GPUCount       int
	State          string
	Region         string
	PricingLabel   string
	ListedRate     float64
	LaunchTime     time.Time
	UtilizationPct float64

	// UtilizationKnown is false for providers whose API reports no
	// utilization metric
	UtilizationKnown bool
}

// ProviderCostRecord is the raw cost record shape emitted by a connector
type ProviderCostRecord struct {
	InstanceID  string
	Provider    string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Cost        float64
	GPUHours    float64
}

// Period is a half-open [Start, End) analysis interval
type Period struct {
	Start time.Time
	End   time.Time
}

// Days returns the period length in fractional days
func (p Period) Days() float64 {
	return p.End.Sub(p.Start).Hours() / 24
}

// Hours returns the period length in fractional hours
func (p Period) Hours() float64 {
	return p.End.Sub(p.Start).Hours()
}

// Contains reports whether t falls inside the period
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// TimeWindow is a concrete time span covered by a waste alert
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Duration returns the window length
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Overlaps reports whether two windows share any time
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Clip bounds the window to the given period, returning ok=false when
// nothing remains
func (w TimeWindow) Clip(p Period) (TimeWindow, bool) {
	start, end := w.Start, w.End
	if start.Before(p.Start) {
		start = p.Start
	}
	if end.After(p.End) {
		end = p.End
	}
	if !start.Before(end) {
		return TimeWindow{}, false
	}
	return TimeWindow{Start: start, End: end}, true
}
