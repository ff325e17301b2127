package pricing

import (
	"strings"

	"github.com/elC0mpa/gpu-doctor/model"
)

// Book resolves hourly rates for (provider, gpu_type, region,
// pricing_model) tuples. Rates are January 2025 list prices; regional
// premiums and spot discounts are applied multiplicatively.
type Book struct {
	onDemand        map[string]map[model.GPUType]float64
	spotDiscount    map[string]float64
	regionPremium   map[string]float64
	providerDefault map[string]float64
}

// DefaultBook returns the built-in price book
func DefaultBook() *Book {
	return &Book{
		onDemand: map[string]map[model.GPUType]float64{
			"aws": {
				model.GPUA100_40GB: 32.77 / 8,
				model.GPUA100_80GB: 40.97 / 8,
				model.GPUH100_80GB: 98.32 / 8,
				model.GPUV100_16GB: 3.06,
				model.GPUA10G:      1.006,
				model.GPUT4:        0.526,
			},
			"gcp": {
				model.GPUA100_40GB: 2.93,
				model.GPUA100_80GB: 3.67,
				model.GPUH100_80GB: 10.80,
				model.GPUV100_16GB: 2.48,
				model.GPUL4:        0.81,
				model.GPUT4:        0.35,
			},
			"azure": {
				model.GPUA100_80GB: 3.67,
				model.GPUA100_40GB: 27.20 / 8,
				model.GPUH100_80GB: 98.32 / 8,
				model.GPUT4:        0.752,
			},
			"vastai": {
				model.GPURTX4090:   0.50,
				model.GPURTX3090:   0.28,
				model.GPUA100_40GB: 1.25,
				model.GPUA100_80GB: 1.55,
				model.GPUH100_80GB: 2.50,
			},
			"runpod": {
				model.GPURTX4090:   0.44,
				model.GPURTX3090:   0.22,
				model.GPUA100_80GB: 1.19,
				model.GPUH100_80GB: 2.39,
				model.GPUA10G:      0.28,
				model.GPUL4:        0.24,
			},
			"lambda": {
				model.GPUA100_40GB: 1.10,
				model.GPUA100_80GB: 1.29,
				model.GPUH100_80GB: 1.99,
				model.GPUH100SXM:   2.99,
			},
		},
		// Fraction of the on-demand rate saved by switching to spot
		spotDiscount: map[string]float64{
			"aws":    0.65,
			"gcp":    0.70,
			"azure":  0.60,
			"vastai": 0.30,
			"runpod": 0.30,
			"lambda": 0.0,
		},
		regionPremium: map[string]float64{
			"us-east-1":      1.00,
			"us-west-2":      1.00,
			"eu-west-1":      1.05,
			"eu-central-1":   1.08,
			"ap-northeast-1": 1.12,
			"ap-southeast-1": 1.10,
		},
		providerDefault: map[string]float64{
			"aws":    3.50,
			"gcp":    2.93,
			"azure":  3.67,
			"vastai": 0.80,
			"runpod": 0.90,
			"lambda": 1.29,
		},
	}
}

// Rate returns the hourly rate for an exact pricing-table match.
// ok=false means the caller should fall back to DefaultRate and flag
// the instance as low-confidence.
func (b *Book) Rate(provider string, gpu model.GPUType, region string, pm model.PricingModel) (float64, bool) {
	rates, ok := b.onDemand[strings.ToLower(provider)]
	if !ok {
		return 0, false
	}
	rate, ok := rates[gpu]
	if !ok {
		return 0, false
	}
	if premium, ok := b.regionPremium[strings.ToLower(region)]; ok {
		rate *= premium
	}
	switch pm {
	case model.PricingSpot:
		rate *= 1 - b.spotDiscount[strings.ToLower(provider)]
	case model.PricingReserved:
		// One-year commitment discount
		rate *= 0.6
	}
	return rate, true
}

// DefaultRate is the provider's listed fallback rate, used when no
// exact match exists
func (b *Book) DefaultRate(provider string) float64 {
	if rate, ok := b.providerDefault[strings.ToLower(provider)]; ok {
		return rate
	}
	return 1.0
}

// SpotSavingsFraction returns the fraction of on-demand cost saved by
// moving the provider's workload to spot capacity
func (b *Book) SpotSavingsFraction(provider string) float64 {
	return b.spotDiscount[strings.ToLower(provider)]
}
