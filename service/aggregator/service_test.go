package aggregator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/elC0mpa/gpu-doctor/config"
	"github.com/elC0mpa/gpu-doctor/model"
	"github.com/elC0mpa/gpu-doctor/service/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConnector struct {
	name      string
	instances []model.ProviderInstance
	spend     []model.ProviderCostRecord
	listErr   error
	spendErr  error
}

func (f *fakeConnector) ProviderName() string { return f.name }

func (f *fakeConnector) ListInstances(ctx context.Context) ([]model.ProviderInstance, error) {
	return f.instances, f.listErr
}

func (f *fakeConnector) ListSpend(ctx context.Context, period model.Period) ([]model.ProviderCostRecord, error) {
	return f.spend, f.spendErr
}

var cycleStart = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func newTestService(clock ...time.Time) *aggregatorService {
	svc := NewService(config.Default(), normalize.NewService(nil))
	if len(clock) > 0 {
		i := 0
		svc.now = func() time.Time {
			t := clock[i]
			if i < len(clock)-1 {
				i++
			}
			return t
		}
	}
	return svc
}

func runningInstance(id, provider string, utilPct float64) model.ProviderInstance {
	return model.ProviderInstance{
		ID:               id,
		Provider:         provider,
		GPUName:          "A100",
		GPUCount:         1,
		State:            "running",
		Region:           "us-east-1",
		LaunchTime:       cycleStart.Add(-10 * time.Hour),
		UtilizationPct:   utilPct,
		UtilizationKnown: true,
	}
}

func TestConnectAllPartialFailure(t *testing.T) {
	svc := newTestService(cycleStart)
	svc.AddConnector(&fakeConnector{
		name:      "gcp",
		instances: []model.ProviderInstance{runningInstance("vm-1", "gcp", 80)},
	})
	svc.AddConnector(&fakeConnector{name: "azure", listErr: errors.New("throttled")})

	snap, diagnostics := svc.ConnectAll(context.Background())
	require.NotNil(t, snap)

	assert.Equal(t, []string{"azure"}, snap.FailedProviders)
	require.Len(t, snap.Instances, 1)
	assert.Equal(t, "vm-1", snap.Instances[0].ID)

	require.Len(t, diagnostics, 1)
	var connErr *model.ConnectorError
	require.ErrorAs(t, diagnostics[0], &connErr)
	assert.Equal(t, "azure", connErr.Provider)
}

func TestConnectAllSnapshotsAreIsolated(t *testing.T) {
	connector := &fakeConnector{
		name:      "gcp",
		instances: []model.ProviderInstance{runningInstance("vm-1", "gcp", 80)},
	}
	svc := newTestService(cycleStart, cycleStart.Add(time.Hour))
	svc.AddConnector(connector)

	first, _ := svc.ConnectAll(context.Background())
	require.NotNil(t, first)

	connector.instances = []model.ProviderInstance{
		runningInstance("vm-1", "gcp", 80),
		runningInstance("vm-2", "gcp", 80),
	}
	second, _ := svc.ConnectAll(context.Background())

	assert.NotEqual(t, first.CycleID, second.CycleID)
	assert.Len(t, first.Instances, 1)
	assert.Len(t, second.Instances, 2)
	assert.Same(t, second, svc.Snapshot())
}

func TestMergePreservesLaunchTime(t *testing.T) {
	launched := cycleStart.Add(-72 * time.Hour)
	inst := runningInstance("vm-1", "gcp", 50)
	inst.LaunchTime = launched
	connector := &fakeConnector{name: "gcp", instances: []model.ProviderInstance{inst}}

	svc := newTestService(cycleStart, cycleStart.Add(time.Hour))
	svc.AddConnector(connector)
	svc.ConnectAll(context.Background())

	// The provider drifts: same instance, different launch time
	drifted := inst
	drifted.LaunchTime = cycleStart
	connector.instances = []model.ProviderInstance{drifted}
	snap, _ := svc.ConnectAll(context.Background())

	require.Len(t, snap.Instances, 1)
	assert.Equal(t, launched, snap.Instances[0].LaunchTime)
}

func TestMergeMarksAbsentTerminated(t *testing.T) {
	connector := &fakeConnector{
		name: "gcp",
		instances: []model.ProviderInstance{
			runningInstance("vm-1", "gcp", 50),
			runningInstance("vm-2", "gcp", 50),
		},
	}
	svc := newTestService(cycleStart, cycleStart.Add(time.Hour), cycleStart.Add(2*time.Hour))
	svc.AddConnector(connector)
	svc.ConnectAll(context.Background())

	connector.instances = []model.ProviderInstance{runningInstance("vm-1", "gcp", 50)}
	snap, _ := svc.ConnectAll(context.Background())

	require.Len(t, snap.Instances, 2)
	byID := map[string]model.Instance{}
	for _, inst := range snap.Instances {
		byID[inst.ID] = inst
	}
	assert.Equal(t, model.StatusRunning, byID["vm-1"].Status)
	assert.Equal(t, model.StatusTerminated, byID["vm-2"].Status)

	// Terminated instances survive subsequent cycles
	snap, _ = svc.ConnectAll(context.Background())
	assert.Len(t, snap.Instances, 2)
}

func TestSamplesOnlyForKnownUtilization(t *testing.T) {
	blind := runningInstance("i-blind", "aws", 0)
	blind.UtilizationKnown = false
	connector := &fakeConnector{
		name: "aws",
		instances: []model.ProviderInstance{
			runningInstance("vm-1", "aws", 5),
			blind,
		},
	}
	svc := newTestService(cycleStart)
	svc.AddConnector(connector)

	snap, _ := svc.ConnectAll(context.Background())
	assert.Contains(t, snap.Samples, "vm-1")
	assert.NotContains(t, snap.Samples, "i-blind")
}

func TestSampleRetention(t *testing.T) {
	connector := &fakeConnector{
		name:      "gcp",
		instances: []model.ProviderInstance{runningInstance("vm-1", "gcp", 50)},
	}
	svc := newTestService(cycleStart, cycleStart.Add(90*time.Minute), cycleStart.Add(3*time.Hour))
	svc.cfg.UtilizationRetention = 2 * time.Hour
	svc.AddConnector(connector)

	svc.ConnectAll(context.Background())
	svc.ConnectAll(context.Background())
	snap, _ := svc.ConnectAll(context.Background())

	// The cycle-one sample is past retention by the third cycle
	require.Len(t, snap.Samples["vm-1"], 2)
	assert.Equal(t, cycleStart.Add(90*time.Minute), snap.Samples["vm-1"][0].Timestamp)
}

func TestSyncSpendIdempotent(t *testing.T) {
	records := []model.ProviderCostRecord{
		{
			InstanceID:  "vm-1",
			Provider:    "gcp",
			PeriodStart: cycleStart,
			PeriodEnd:   cycleStart.Add(24 * time.Hour),
			Cost:        70.32,
			GPUHours:    24,
		},
		{
			InstanceID:  "vm-1",
			Provider:    "gcp",
			PeriodStart: cycleStart.Add(24 * time.Hour),
			PeriodEnd:   cycleStart.Add(48 * time.Hour),
			Cost:        70.32,
			GPUHours:    24,
		},
	}
	svc := newTestService(cycleStart)
	svc.AddConnector(&fakeConnector{name: "gcp", spend: records})

	period := model.Period{Start: cycleStart, End: cycleStart.Add(48 * time.Hour)}

	added, diagnostics := svc.SyncSpend(context.Background(), period)
	assert.Equal(t, 2, added)
	assert.Empty(t, diagnostics)

	added, _ = svc.SyncSpend(context.Background(), period)
	assert.Zero(t, added)
	assert.Len(t, svc.SpendHistory(), 2)
}

func TestSyncSpendSkipsNegativeRecords(t *testing.T) {
	svc := newTestService(cycleStart)
	svc.AddConnector(&fakeConnector{name: "gcp", spend: []model.ProviderCostRecord{
		{InstanceID: "vm-1", PeriodStart: cycleStart, PeriodEnd: cycleStart.Add(time.Hour), Cost: -3},
	}})

	added, _ := svc.SyncSpend(context.Background(), model.Period{Start: cycleStart, End: cycleStart.Add(time.Hour)})
	assert.Zero(t, added)
	assert.Empty(t, svc.SpendHistory())
}

func TestSyncSpendReportsFailedProvider(t *testing.T) {
	svc := newTestService(cycleStart)
	svc.AddConnector(&fakeConnector{name: "azure", spendErr: errors.New("quota exceeded")})

	added, diagnostics := svc.SyncSpend(context.Background(), model.Period{Start: cycleStart, End: cycleStart.Add(time.Hour)})
	assert.Zero(t, added)
	require.Len(t, diagnostics, 1)

	var connErr *model.ConnectorError
	require.ErrorAs(t, diagnostics[0], &connErr)
	assert.Equal(t, "azure", connErr.Provider)
}

func TestGetSummaryIdleScenario(t *testing.T) {
	connector := &fakeConnector{
		name:      "gcp",
		instances: []model.ProviderInstance{runningInstance("vm-1", "gcp", 5)},
	}
	t1 := cycleStart.Add(time.Hour)
	t2 := cycleStart.Add(2 * time.Hour)
	svc := newTestService(cycleStart, t1, t2)
	svc.AddConnector(connector)

	svc.ConnectAll(context.Background())
	svc.ConnectAll(context.Background())
	snap, _ := svc.ConnectAll(context.Background())
	require.NotNil(t, snap)

	summary := svc.GetSummary(model.Period{Start: cycleStart, End: t2})

	// A100 on GCP at $2.93/hr, idle for the whole 2h window
	assert.Equal(t, 1, summary.RunningCount)
	assert.Equal(t, 1, summary.IdleInstances)
	assert.InDelta(t, 2.93*2, summary.TotalCost, 1e-6)
	assert.InDelta(t, 2.0, summary.GPUHours, 1e-9)
	assert.InDelta(t, 2.93*2, summary.EstimatedWaste, 1e-6)
	assert.InDelta(t, 2.93*2, summary.ByProvider["gcp"], 1e-6)
}

func TestGetSummaryBeforeFirstCycle(t *testing.T) {
	svc := newTestService()
	period := model.Period{Start: cycleStart, End: cycleStart.Add(time.Hour)}

	summary := svc.GetSummary(period)
	assert.Equal(t, period, summary.Period)
	assert.Zero(t, summary.TotalCost)
	assert.Nil(t, svc.Snapshot())
	assert.Nil(t, svc.GetInstances())
}

func TestRunningHours(t *testing.T) {
	period := model.Period{Start: cycleStart, End: cycleStart.Add(10 * time.Hour)}

	t.Run("launch inside period trims the start", func(t *testing.T) {
		inst := model.Instance{Status: model.StatusRunning, LaunchTime: cycleStart.Add(4 * time.Hour)}
		assert.InDelta(t, 6.0, RunningHours(inst, period), 1e-9)
	})

	t.Run("terminated stops accruing at last seen", func(t *testing.T) {
		inst := model.Instance{
			Status:     model.StatusTerminated,
			LaunchTime: cycleStart.Add(-time.Hour),
			LastSeen:   cycleStart.Add(3 * time.Hour),
		}
		assert.InDelta(t, 3.0, RunningHours(inst, period), 1e-9)
	})

	t.Run("stopped accrues nothing", func(t *testing.T) {
		inst := model.Instance{Status: model.StatusStopped, LaunchTime: cycleStart.Add(-time.Hour)}
		assert.Zero(t, RunningHours(inst, period))
	})

	t.Run("launched after the period", func(t *testing.T) {
		inst := model.Instance{Status: model.StatusRunning, LaunchTime: period.End.Add(time.Hour)}
		assert.Zero(t, RunningHours(inst, period))
	})
}
