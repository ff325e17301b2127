package waste

import (
	"fmt"
	"time"

	"github.com/elC0mpa/gpu-doctor/config"
	"github.com/elC0mpa/gpu-doctor/model"
	"github.com/elC0mpa/gpu-doctor/pricing"
)

const hoursPerMonth = 24 * 30

// Rule is one independent waste predicate. Evaluation is pure: the same
// instance, samples and snapshot always produce the same alert (or
// none), and rules never see each other's output.
type Rule interface {
	Name() string
	Evaluate(inst model.Instance, samples []model.UtilizationSample, snap *model.Snapshot) *model.WasteAlert
}

// DefaultRules returns the built-in rule set
func DefaultRules(cfg *config.Config, book *pricing.Book) []Rule {
	return []Rule{
		&IdleInstanceRule{ThresholdPct: cfg.IdleThresholdPct, MinWindow: cfg.IdleWindow},
		&OversizedGPURule{MinWindow: cfg.IdleWindow},
		&WrongPricingModelRule{
			DayThreshold:     cfg.OnDemandDayThreshold,
			SavingsThreshold: cfg.SpotSavingsThresholdPct,
			Book:             book,
		},
		&OverProvisionedCountRule{MinWindow: cfg.IdleWindow},
	}
}

// IdleInstanceRule fires when utilization stays below the idle
// threshold for at least the idle window
type IdleInstanceRule struct {
	ThresholdPct float64
	MinWindow    time.Duration
}

func (r *IdleInstanceRule) Name() string { return "IdleInstance" }

func (r *IdleInstanceRule) Evaluate(inst model.Instance, samples []model.UtilizationSample, _ *model.Snapshot) *model.WasteAlert {
	if !inst.Status.IsBillable() {
		return nil
	}

	windows := model.IdleWindows(samples, r.ThresholdPct, r.MinWindow)
	if len(windows) == 0 {
		return nil
	}

	longest := windows[0]
	for _, w := range windows[1:] {
		if w.Duration() > longest.Duration() {
			longest = w
		}
	}

	severity := model.SeverityMedium
	switch {
	case inst.HourlyRate >= 10:
		severity = model.SeverityCritical
	case inst.HourlyRate >= 1:
		severity = model.SeverityHigh
	}

	return &model.WasteAlert{
		InstanceID:            inst.ID,
		Provider:              inst.Provider,
		GPUType:               inst.GPUType,
		Severity:              severity,
		RuleName:              r.Name(),
		Reason:                fmt.Sprintf("utilization below %.0f%% for %s ($%.2f wasted in that window)", r.ThresholdPct, longest.Duration(), inst.HourlyRate*longest.Duration().Hours()),
		EstimatedMonthlyWaste: inst.HourlyRate * hoursPerMonth,
		Window:                longest,
	}
}

// OversizedGPURule fires when utilization stays persistently far below
// what the provisioned GPU's capability class is expected to sustain
type OversizedGPURule struct {
	MinWindow time.Duration
}

func (r *OversizedGPURule) Name() string { return "OversizedGPU" }

func (r *OversizedGPURule) Evaluate(inst model.Instance, samples []model.UtilizationSample, _ *model.Snapshot) *model.WasteAlert {
	if !inst.Status.IsBillable() || len(samples) < 2 {
		return nil
	}
	if inst.GPUType == model.GPUUnknown {
		return nil
	}

	span := model.TimeWindow{Start: samples[0].Timestamp, End: samples[len(samples)-1].Timestamp}
	if span.Duration() < r.MinWindow {
		return nil
	}

	expected := pricing.ExpectedMinUtilization(pricing.TierOf(inst.GPUType))
	ceiling := expected / 2
	var peak float64
	for _, s := range samples {
		if s.UtilizationPct > peak {
			peak = s.UtilizationPct
		}
	}
	if peak >= ceiling {
		return nil
	}

	target, ok := pricing.ResizeTarget(inst.GPUType)
	if !ok {
		return nil
	}

	// Resizing one class down saves roughly a third of the rate
	return &model.WasteAlert{
		InstanceID:            inst.ID,
		Provider:              inst.Provider,
		GPUType:               inst.GPUType,
		Severity:              model.SeverityMedium,
		RuleName:              r.Name(),
		Reason:                fmt.Sprintf("peak utilization %.1f%% is far below the %.0f%% expected of %s; %s would fit", peak, expected, inst.GPUType, target),
		EstimatedMonthlyWaste: inst.HourlyRate * hoursPerMonth * 0.3,
		Window:                span,
	}
}

// WrongPricingModelRule fires for on-demand instances running
// continuously past the day threshold when the provider's spot
// differential clears the configured savings threshold
type WrongPricingModelRule struct {
	DayThreshold     int
	SavingsThreshold float64
	Book             *pricing.Book
}

func (r *WrongPricingModelRule) Name() string { return "WrongPricingModel" }

func (r *WrongPricingModelRule) Evaluate(inst model.Instance, _ []model.UtilizationSample, snap *model.Snapshot) *model.WasteAlert {
	if !inst.Status.IsBillable() || inst.PricingModel != model.PricingOnDemand {
		return nil
	}
	if inst.LaunchTime.IsZero() {
		return nil
	}

	running := snap.TakenAt.Sub(inst.LaunchTime)
	if running < time.Duration(r.DayThreshold)*24*time.Hour {
		return nil
	}

	savings := r.Book.SpotSavingsFraction(inst.Provider)
	if savings*100 < r.SavingsThreshold {
		return nil
	}

	return &model.WasteAlert{
		InstanceID:            inst.ID,
		Provider:              inst.Provider,
		GPUType:               inst.GPUType,
		Severity:              model.SeverityMedium,
		RuleName:              r.Name(),
		Reason:                fmt.Sprintf("on-demand for %d+ days; spot on %s saves ~%.0f%%", r.DayThreshold, inst.Provider, savings*100),
		EstimatedMonthlyWaste: inst.HourlyRate * hoursPerMonth * savings,
		Window:                model.TimeWindow{Start: inst.LaunchTime, End: snap.TakenAt},
	}
}

// OverProvisionedCountRule fires for multi-GPU instances where the
// utilization level implies only a minority of GPUs see sustained work
type OverProvisionedCountRule struct {
	MinWindow time.Duration
}

func (r *OverProvisionedCountRule) Name() string { return "OverProvisionedCount" }

func (r *OverProvisionedCountRule) Evaluate(inst model.Instance, samples []model.UtilizationSample, _ *model.Snapshot) *model.WasteAlert {
	if !inst.Status.IsBillable() || inst.GPUCount < 2 || len(samples) < 2 {
		return nil
	}

	span := model.TimeWindow{Start: samples[0].Timestamp, End: samples[len(samples)-1].Timestamp}
	if span.Duration() < r.MinWindow {
		return nil
	}

	// Instance-level utilization is averaged across GPUs, so a level
	// sustained below 50% means fewer than half the GPUs are busy
	var peak float64
	for _, s := range samples {
		if s.UtilizationPct > peak {
			peak = s.UtilizationPct
		}
	}
	if peak >= 50 {
		return nil
	}

	activeGPUs := int(peak/100*float64(inst.GPUCount) + 0.999)
	if activeGPUs < 1 {
		activeGPUs = 1
	}
	idleFraction := float64(inst.GPUCount-activeGPUs) / float64(inst.GPUCount)

	severity := model.SeverityMedium
	if inst.GPUCount >= 8 {
		severity = model.SeverityHigh
	}

	return &model.WasteAlert{
		InstanceID:            inst.ID,
		Provider:              inst.Provider,
		GPUType:               inst.GPUType,
		Severity:              severity,
		RuleName:              r.Name(),
		Reason:                fmt.Sprintf("~%d of %d GPUs active at peak %.1f%% utilization", activeGPUs, inst.GPUCount, peak),
		EstimatedMonthlyWaste: inst.HourlyRate * hoursPerMonth * idleFraction,
		Window:                span,
	}
}
