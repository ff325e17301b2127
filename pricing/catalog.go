package pricing

import (
	"sort"
	"strings"

	"github.com/elC0mpa/gpu-doctor/model"
)

// gpuAliases maps provider-reported GPU names to canonical types.
// Matching is case-insensitive substring, longest alias first.
var gpuAliases = []struct {
	alias string
	gpu   model.GPUType
}{
	{"a100-sxm4-80gb", model.GPUA100_80GB},
	{"a100 80gb", model.GPUA100_80GB},
	{"a100-80gb", model.GPUA100_80GB},
	{"nvidia-a100-80gb", model.GPUA100_80GB},
	{"a100 40gb", model.GPUA100_40GB},
	{"a100-40gb", model.GPUA100_40GB},
	{"nvidia-tesla-a100", model.GPUA100_40GB},
	{"a100", model.GPUA100_40GB},
	{"h100 sxm", model.GPUH100SXM},
	{"h100-sxm", model.GPUH100SXM},
	{"h100 pcie", model.GPUH100_80GB},
	{"nvidia-h100-80gb", model.GPUH100_80GB},
	{"h100", model.GPUH100_80GB},
	{"v100-32gb", model.GPUV100_32GB},
	{"nvidia-tesla-v100", model.GPUV100_16GB},
	{"v100", model.GPUV100_16GB},
	{"rtx 4090", model.GPURTX4090},
	{"rtx-4090", model.GPURTX4090},
	{"rtx 4080", model.GPURTX4080},
	{"rtx-4080", model.GPURTX4080},
	{"rtx 3090", model.GPURTX3090},
	{"rtx-3090", model.GPURTX3090},
	{"a10g", model.GPUA10G},
	{"l40s", model.GPUL40S},
	{"nvidia-l4", model.GPUL4},
	{"l4", model.GPUL4},
	{"nvidia-tesla-t4", model.GPUT4},
	{"t4", model.GPUT4},
	{"mi250x", model.GPUMI250X},
	{"mi300x", model.GPUMI300X},
}

// CanonicalGPU resolves a provider GPU name to the canonical type.
// Unmapped names resolve to GPUUnknown with ok=false so callers can
// warn without failing the sync.
func CanonicalGPU(name string) (model.GPUType, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return model.GPUUnknown, false
	}
	for _, entry := range gpuAliases {
		if strings.Contains(lower, entry.alias) {
			return entry.gpu, true
		}
	}
	return model.GPUUnknown, false
}

type instanceTypeEntry struct {
	gpu   model.GPUType
	count int
}

// instanceTypes maps provider instance-type identifiers to their GPU
// configuration, for providers that report machine shapes rather than
// GPU names
var instanceTypes = map[string]map[string]instanceTypeEntry{
	"aws": {
		"p5.48xlarge":   {model.GPUH100_80GB, 8},
		"p4d.24xlarge":  {model.GPUA100_40GB, 8},
		"p4de.24xlarge": {model.GPUA100_80GB, 8},
		"p3.2xlarge":    {model.GPUV100_16GB, 1},
		"p3.8xlarge":    {model.GPUV100_16GB, 4},
		"p3.16xlarge":   {model.GPUV100_16GB, 8},
		"g5.xlarge":     {model.GPUA10G, 1},
		"g5.2xlarge":    {model.GPUA10G, 1},
		"g5.4xlarge":    {model.GPUA10G, 1},
		"g5.12xlarge":   {model.GPUA10G, 4},
		"g5.48xlarge":   {model.GPUA10G, 8},
		"g4dn.xlarge":   {model.GPUT4, 1},
		"g4dn.2xlarge":  {model.GPUT4, 1},
		"g4dn.12xlarge": {model.GPUT4, 4},
	},
	"azure": {
		"standard_nc24ads_a100_v4": {model.GPUA100_80GB, 1},
		"standard_nc48ads_a100_v4": {model.GPUA100_80GB, 2},
		"standard_nd96asr_v4":      {model.GPUA100_40GB, 8},
		"standard_nc8as_t4_v3":     {model.GPUT4, 1},
		"standard_nc16as_t4_v3":    {model.GPUT4, 1},
	},
	"lambda": {
		"gpu_1x_a100":      {model.GPUA100_40GB, 1},
		"gpu_1x_a100_sxm4": {model.GPUA100_80GB, 1},
		"gpu_8x_a100":      {model.GPUA100_40GB, 8},
		"gpu_1x_h100_pcie": {model.GPUH100_80GB, 1},
		"gpu_8x_h100_sxm5": {model.GPUH100SXM, 8},
	},
}

// InstanceTypeGPU resolves an instance type to its GPU configuration
func InstanceTypeGPU(provider, instanceType string) (model.GPUType, int, bool) {
	types, ok := instanceTypes[strings.ToLower(provider)]
	if !ok {
		return model.GPUUnknown, 0, false
	}
	entry, ok := types[strings.ToLower(instanceType)]
	if !ok {
		return model.GPUUnknown, 0, false
	}
	return entry.gpu, entry.count, true
}

// InstanceTypesFor returns the known GPU instance types of a provider in
// sorted order, for connectors that filter inventory or billing queries
// by machine shape
func InstanceTypesFor(provider string) []string {
	types := instanceTypes[strings.ToLower(provider)]
	out := make([]string, 0, len(types))
	for name := range types {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Tier classifies GPUs by capability so waste rules can compare observed
// utilization against what the hardware class is provisioned for
type Tier int

const (
	TierConsumer Tier = iota
	TierInference
	TierDatacenter
	TierFlagship
)

var gpuTiers = map[model.GPUType]Tier{
	model.GPUH100SXM:   TierFlagship,
	model.GPUH100_80GB: TierFlagship,
	model.GPUMI300X:    TierFlagship,
	model.GPUA100_80GB: TierDatacenter,
	model.GPUA100_40GB: TierDatacenter,
	model.GPUV100_32GB: TierDatacenter,
	model.GPUV100_16GB: TierDatacenter,
	model.GPUMI250X:    TierDatacenter,
	model.GPUA10G:      TierInference,
	model.GPUL4:        TierInference,
	model.GPUL40S:      TierInference,
	model.GPUT4:        TierInference,
	model.GPURTX4090:   TierConsumer,
	model.GPURTX4080:   TierConsumer,
	model.GPURTX3090:   TierConsumer,
}

// TierOf returns the capability tier for a GPU type, TierConsumer for
// unknown types
func TierOf(gpu model.GPUType) Tier {
	return gpuTiers[gpu]
}

// ExpectedMinUtilization is the utilization floor below which a GPU of
// the given tier is considered oversized for its workload
func ExpectedMinUtilization(t Tier) float64 {
	switch t {
	case TierFlagship:
		return 40
	case TierDatacenter:
		return 30
	case TierInference:
		return 20
	default:
		return 15
	}
}

// ResizeTarget suggests the next GPU class down, used by resize
// recommendations. ok=false when the GPU is already the smallest
// sensible option.
func ResizeTarget(gpu model.GPUType) (model.GPUType, bool) {
	targets := map[model.GPUType]model.GPUType{
		model.GPUH100SXM:   model.GPUH100_80GB,
		model.GPUH100_80GB: model.GPUA100_80GB,
		model.GPUA100_80GB: model.GPUA100_40GB,
		model.GPUA100_40GB: model.GPUA10G,
		model.GPUV100_32GB: model.GPUV100_16GB,
		model.GPURTX4090:   model.GPURTX4080,
	}
	target, ok := targets[gpu]
	return target, ok
}
