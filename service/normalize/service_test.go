package normalize

import (
	"testing"
	"time"

	"github.com/elC0mpa/gpu-doctor/model"
	"github.com/elC0mpa/gpu-doctor/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seenAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNormalizeGPUName(t *testing.T) {
	svc := NewService(pricing.DefaultBook())

	raw := model.ProviderInstance{
		ID:               "pod-1",
		Provider:         "RunPod",
		GPUName:          "NVIDIA GeForce RTX 4090",
		GPUCount:         2,
		State:            "RUNNING",
		Region:           "runpod-cloud",
		PricingLabel:     "on_demand",
		UtilizationPct:   42,
		UtilizationKnown: true,
	}

	inst, warnings := svc.Normalize(raw, seenAt)
	assert.Empty(t, warnings)

	assert.Equal(t, "runpod", inst.Provider)
	assert.Equal(t, model.GPURTX4090, inst.GPUType)
	assert.Equal(t, 2, inst.GPUCount)
	assert.Equal(t, model.StatusRunning, inst.Status)
	assert.Equal(t, model.PricingOnDemand, inst.PricingModel)
	assert.Equal(t, seenAt, inst.LastSeen)
	assert.True(t, inst.UtilizationKnown)
	assert.False(t, inst.PriceFallback)
	// Per-GPU book rate scales with count
	assert.InDelta(t, 0.44*2, inst.HourlyRate, 1e-9)
}

func TestNormalizeInstanceType(t *testing.T) {
	svc := NewService(pricing.DefaultBook())

	raw := model.ProviderInstance{
		ID:           "i-0abc",
		Provider:     "aws",
		InstanceType: "p4d.24xlarge",
		State:        "running",
		Region:       "us-east-1",
	}

	inst, warnings := svc.Normalize(raw, seenAt)
	assert.Empty(t, warnings)

	assert.Equal(t, model.GPUA100_40GB, inst.GPUType)
	assert.Equal(t, 8, inst.GPUCount)
	assert.False(t, inst.UtilizationKnown)
	assert.InDelta(t, 32.77, inst.HourlyRate, 1e-6)
}

func TestNormalizeUnknownGPU(t *testing.T) {
	svc := NewService(pricing.DefaultBook())

	raw := model.ProviderInstance{
		ID:       "vm-9",
		Provider: "vastai",
		GPUName:  "Radeon 780M",
		State:    "running",
	}

	inst, warnings := svc.Normalize(raw, seenAt)
	assert.Equal(t, model.GPUUnknown, inst.GPUType)
	assert.Equal(t, 1, inst.GPUCount)
	assert.True(t, inst.PriceFallback)

	// One warning for the GPU name, one for the price fallback
	require.Len(t, warnings, 2)
	var normErr *model.NormalizationError
	require.ErrorAs(t, warnings[0], &normErr)
	assert.Equal(t, "gpu_type", normErr.Field)
	require.ErrorAs(t, warnings[1], &normErr)
	assert.Equal(t, "hourly_rate", normErr.Field)
}

func TestResolvePriceFallbacks(t *testing.T) {
	svc := NewService(pricing.DefaultBook())

	t.Run("listed rate preferred over provider default", func(t *testing.T) {
		inst := model.Instance{Provider: "lambda", GPUType: model.GPUT4}
		rate, fallback := svc.ResolvePrice(inst, 0.55)
		assert.True(t, fallback)
		assert.InDelta(t, 0.55, rate, 1e-9)
	})

	t.Run("provider default when nothing listed", func(t *testing.T) {
		inst := model.Instance{Provider: "lambda", GPUType: model.GPUT4}
		rate, fallback := svc.ResolvePrice(inst, 0)
		assert.True(t, fallback)
		assert.InDelta(t, 1.29, rate, 1e-9)
	})

	t.Run("exact match keeps full confidence", func(t *testing.T) {
		inst := model.Instance{
			Provider:     "gcp",
			GPUType:      model.GPUA100_40GB,
			GPUCount:     1,
			Region:       "us-east-1",
			PricingModel: model.PricingOnDemand,
		}
		rate, fallback := svc.ResolvePrice(inst, 9.99)
		assert.False(t, fallback)
		assert.InDelta(t, 2.93, rate, 1e-9)
	})
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		state string
		want  model.InstanceStatus
	}{
		{"running", model.StatusRunning},
		{"ACTIVE", model.StatusRunning},
		{"VM running", model.StatusRunning},
		{"poweredOn", model.StatusRunning},
		{"stopped", model.StatusStopped},
		{"VM deallocated", model.StatusStopped},
		{"exited", model.StatusStopped},
		{"terminated", model.StatusTerminated},
		{"shutting-down", model.StatusTerminated},
		{"deleted", model.StatusTerminated},
		{"something-new", model.StatusStopped},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeStatus(tt.state))
		})
	}
}

func TestNormalizePricing(t *testing.T) {
	tests := []struct {
		label string
		want  model.PricingModel
	}{
		{"spot", model.PricingSpot},
		{"PREEMPTIBLE", model.PricingSpot},
		{"interruptible", model.PricingSpot},
		{"bid", model.PricingSpot},
		{"reserved", model.PricingReserved},
		{"savings-plan", model.PricingReserved},
		{"", model.PricingOnDemand},
		{"hourly", model.PricingOnDemand},
	}

	for _, tt := range tests {
		t.Run("label "+tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizePricing(tt.label))
		})
	}
}

func TestNormalizeClampsUtilization(t *testing.T) {
	svc := NewService(nil)

	raw := model.ProviderInstance{
		ID:               "vm-1",
		Provider:         "vastai",
		GPUName:          "RTX 4090",
		State:            "running",
		UtilizationPct:   140,
		UtilizationKnown: true,
	}

	inst, _ := svc.Normalize(raw, seenAt)
	assert.Equal(t, 100.0, inst.UtilizationPct)
}
