package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/elC0mpa/gpu-doctor/model"
	"github.com/elC0mpa/gpu-doctor/pricing"
)

func NewService(book *pricing.Book) *service {
	if book == nil {
		book = pricing.DefaultBook()
	}
	return &service{book: book}
}

// Normalize maps a raw provider record into the canonical schema.
// Field-level problems never fail the sync: unmapped GPU names resolve
// to "unknown" and pricing falls back to the provider default, each
// reported as a non-fatal warning.
func (s *service) Normalize(raw model.ProviderInstance, seenAt time.Time) (model.Instance, []error) {
	var warnings []error

	gpuType, count := s.resolveGPU(raw, &warnings)

	inst := model.Instance{
		ID:               raw.ID,
		Provider:         strings.ToLower(raw.Provider),
		InstanceType:     raw.InstanceType,
		GPUType:          gpuType,
		GPUCount:         count,
		Status:           normalizeStatus(raw.State),
		PricingModel:     normalizePricing(raw.PricingLabel),
		Region:           raw.Region,
		LaunchTime:       raw.LaunchTime,
		UtilizationPct:   clampPct(raw.UtilizationPct),
		UtilizationKnown: raw.UtilizationKnown,
		LastSeen:         seenAt,
	}

	inst.HourlyRate, inst.PriceFallback = s.ResolvePrice(inst, raw.ListedRate)
	if inst.PriceFallback {
		warnings = append(warnings, &model.NormalizationError{
			Provider:   inst.Provider,
			InstanceID: inst.ID,
			Field:      "hourly_rate",
			Cause:      fmt.Errorf("no pricing entry for %s/%s in %s, using fallback", inst.Provider, gpuType, inst.Region),
		})
	}

	return inst, warnings
}

// ResolvePrice looks up (provider, gpu_type, region, pricing_model) in
// the price book. When no exact match exists it prefers the rate the
// provider itself listed, then the provider default; either fallback
// marks the instance low-confidence.
func (s *service) ResolvePrice(inst model.Instance, listedRate float64) (float64, bool) {
	if rate, ok := s.book.Rate(inst.Provider, inst.GPUType, inst.Region, inst.PricingModel); ok {
		// Book rates are per GPU; machine rate scales with count
		if inst.GPUCount > 1 {
			rate *= float64(inst.GPUCount)
		}
		return rate, false
	}
	if listedRate > 0 {
		return listedRate, true
	}
	return s.book.DefaultRate(inst.Provider), true
}

func (s *service) resolveGPU(raw model.ProviderInstance, warnings *[]error) (model.GPUType, int) {
	count := raw.GPUCount
	if count < 1 {
		count = 1
	}

	if raw.GPUName != "" {
		gpu, ok := pricing.CanonicalGPU(raw.GPUName)
		if ok {
			return gpu, count
		}
		*warnings = append(*warnings, &model.NormalizationError{
			Provider:   raw.Provider,
			InstanceID: raw.ID,
			Field:      "gpu_type",
			Cause:      fmt.Errorf("unmapped GPU name %q", raw.GPUName),
		})
		return model.GPUUnknown, count
	}

	if gpu, typeCount, ok := pricing.InstanceTypeGPU(raw.Provider, raw.InstanceType); ok {
		if raw.GPUCount == 0 {
			count = typeCount
		}
		return gpu, count
	}

	*warnings = append(*warnings, &model.NormalizationError{
		Provider:   raw.Provider,
		InstanceID: raw.ID,
		Field:      "gpu_type",
		Cause:      fmt.Errorf("instance type %q has no GPU mapping", raw.InstanceType),
	})
	return model.GPUUnknown, count
}

func normalizeStatus(state string) model.InstanceStatus {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "running", "active", "vm running", "poweredon":
		return model.StatusRunning
	case "idle":
		return model.StatusIdle
	case "stopped", "stopping", "vm deallocated", "suspended", "exited":
		return model.StatusStopped
	case "terminated", "deleted", "shutting-down":
		return model.StatusTerminated
	default:
		return model.StatusStopped
	}
}

func normalizePricing(label string) model.PricingModel {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "spot", "preemptible", "interruptible", "bid":
		return model.PricingSpot
	case "reserved", "committed", "savings-plan":
		return model.PricingReserved
	default:
		return model.PricingOnDemand
	}
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
