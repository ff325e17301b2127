package recommend

import (
	"testing"

	"github.com/elC0mpa/gpu-doctor/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(instances ...model.Instance) *model.Snapshot {
	return &model.Snapshot{CycleID: "cycle-1", Instances: instances}
}

func idleAlert(id string, monthly float64) model.WasteAlert {
	return model.WasteAlert{
		InstanceID:            id,
		Provider:              "gcp",
		GPUType:               model.GPUA100_40GB,
		Severity:              model.SeverityHigh,
		RuleName:              "IdleInstance",
		Reason:                "utilization below 10% for 2h0m0s",
		EstimatedMonthlyWaste: monthly,
	}
}

func overProvisionedAlert(id, provider string, monthly float64) model.WasteAlert {
	return model.WasteAlert{
		InstanceID:            id,
		Provider:              provider,
		GPUType:               model.GPUA100_40GB,
		Severity:              model.SeverityHigh,
		RuleName:              "OverProvisionedCount",
		Reason:                "~2 of 8 GPUs active",
		EstimatedMonthlyWaste: monthly,
	}
}

func TestGenerateFromIdleAlert(t *testing.T) {
	svc := NewService()
	snap := testSnapshot(model.Instance{ID: "vm-1", Provider: "gcp"})

	report := svc.Generate([]model.WasteAlert{idleAlert("vm-1", 2109.6)}, snap)

	assert.Equal(t, "cycle-1", report.CycleID)
	require.Len(t, report.Recommendations, 1)

	rec := report.Recommendations[0]
	assert.Equal(t, model.RecTerminateIdle, rec.Type)
	assert.Equal(t, model.PriorityHigh, rec.Priority)
	assert.Equal(t, model.EffortLow, rec.Effort)
	assert.Equal(t, []string{"vm-1"}, rec.TargetInstanceIDs)
	assert.InDelta(t, 2109.6, rec.MonthlySavings, 1e-9)

	// Low effort at high priority makes it a quick win
	require.Len(t, report.QuickWins, 1)
	assert.Equal(t, rec, report.QuickWins[0])

	assert.InDelta(t, 2109.6, report.TotalMonthlySavings, 1e-9)
	assert.InDelta(t, 2109.6*12, report.TotalAnnualSavings, 1e-9)
}

func TestGenerateIsPure(t *testing.T) {
	svc := NewService()
	snap := testSnapshot(
		model.Instance{ID: "vm-1", Provider: "gcp", GPUCount: 8},
		model.Instance{ID: "vm-2", Provider: "gcp", GPUCount: 8},
	)
	alerts := []model.WasteAlert{
		idleAlert("vm-1", 2109.6),
		overProvisionedAlert("vm-1", "gcp", 1500),
		overProvisionedAlert("vm-2", "gcp", 900),
	}

	first := svc.Generate(alerts, snap)
	second := svc.Generate(alerts, snap)

	assert.Equal(t, first, second)
}

func TestGenerateConsolidation(t *testing.T) {
	svc := NewService()
	snap := testSnapshot(
		model.Instance{ID: "i-2", Provider: "aws", GPUCount: 8},
		model.Instance{ID: "i-1", Provider: "aws", GPUCount: 8},
	)
	alerts := []model.WasteAlert{
		overProvisionedAlert("i-2", "aws", 1000),
		overProvisionedAlert("i-1", "aws", 500),
	}

	report := svc.Generate(alerts, snap)

	var consolidations []model.Recommendation
	for _, rec := range report.Recommendations {
		if rec.Type == model.RecConsolidate {
			consolidations = append(consolidations, rec)
		}
	}
	require.Len(t, consolidations, 1)

	rec := consolidations[0]
	assert.Equal(t, []string{"i-1", "i-2"}, rec.TargetInstanceIDs)
	assert.Equal(t, model.EffortHigh, rec.Effort)
	assert.InDelta(t, 1500*0.8, rec.MonthlySavings, 1e-9)
}

func TestGenerateNoConsolidationForSingleAlert(t *testing.T) {
	svc := NewService()
	snap := testSnapshot(model.Instance{ID: "i-1", Provider: "aws", GPUCount: 8})

	report := svc.Generate([]model.WasteAlert{overProvisionedAlert("i-1", "aws", 1000)}, snap)
	for _, rec := range report.Recommendations {
		assert.NotEqual(t, model.RecConsolidate, rec.Type)
	}
}

func TestGenerateDeduplicates(t *testing.T) {
	svc := NewService()
	snap := testSnapshot(model.Instance{ID: "vm-1", Provider: "gcp"})

	// Two analysis passes surfacing the same instance keep only the
	// higher-ranked candidate per (type, targets)
	report := svc.Generate([]model.WasteAlert{
		idleAlert("vm-1", 800),
		idleAlert("vm-1", 2109.6),
	}, snap)

	require.Len(t, report.Recommendations, 1)
	assert.InDelta(t, 2109.6, report.Recommendations[0].MonthlySavings, 1e-9)
}

func TestGenerateOrdering(t *testing.T) {
	svc := NewService()
	snap := testSnapshot(
		model.Instance{ID: "vm-cheap", Provider: "gcp"},
		model.Instance{ID: "vm-costly", Provider: "gcp"},
		model.Instance{ID: "vm-mid", Provider: "gcp"},
	)

	costly := idleAlert("vm-costly", 9000)
	costly.Severity = model.SeverityCritical
	mid := idleAlert("vm-mid", 2000)
	cheap := idleAlert("vm-cheap", 50)
	cheap.Severity = model.SeverityLow

	report := svc.Generate([]model.WasteAlert{cheap, mid, costly}, snap)

	require.Len(t, report.Recommendations, 3)
	assert.Equal(t, []string{"vm-costly"}, report.Recommendations[0].TargetInstanceIDs)
	assert.Equal(t, []string{"vm-mid"}, report.Recommendations[1].TargetInstanceIDs)
	assert.Equal(t, []string{"vm-cheap"}, report.Recommendations[2].TargetInstanceIDs)
}

func TestGenerateEmptyAlerts(t *testing.T) {
	report := NewService().Generate(nil, testSnapshot())
	assert.Equal(t, "cycle-1", report.CycleID)
	assert.Empty(t, report.Recommendations)
	assert.Empty(t, report.QuickWins)
	assert.Zero(t, report.TotalMonthlySavings)
}

func TestTier(t *testing.T) {
	tests := []struct {
		name     string
		severity model.Severity
		savings  float64
		want     model.Priority
	}{
		{"savings can outrank severity", model.SeverityLow, 6000, model.PriorityCritical},
		{"severity can outrank savings", model.SeverityCritical, 10, model.PriorityCritical},
		{"medium either way", model.SeverityMedium, 50, model.PriorityMedium},
		{"savings promote to medium", model.SeverityLow, 150, model.PriorityMedium},
		{"nothing urgent", model.Severity(""), 10, model.PriorityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tier(tt.severity, tt.savings))
		})
	}
}
