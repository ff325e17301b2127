package aggregator

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/elC0mpa/gpu-doctor/config"
	"github.com/elC0mpa/gpu-doctor/model"
	"github.com/elC0mpa/gpu-doctor/service"
	"github.com/elC0mpa/gpu-doctor/service/normalize"
	"github.com/google/uuid"
)

func NewService(cfg *config.Config, normalizer normalize.Service) *aggregatorService {
	return &aggregatorService{
		cfg:        cfg,
		normalizer: normalizer,
		now:        time.Now,
		fleet:      make(map[string]model.Instance),
		samples:    make(map[string][]model.UtilizationSample),
		spendSeen:  make(map[spendKey]struct{}),
	}
}

// AddConnector registers a provider connector. The registry is explicit
// and injected; there is no global connector state.
func (s *aggregatorService) AddConnector(c service.Connector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connectors = append(s.connectors, c)
}

type providerResult struct {
	provider string
	records  []model.ProviderInstance
	err      error
}

// ConnectAll runs one sync cycle: every connector is called
// concurrently under its own timeout, whatever arrives is merged, and a
// new snapshot is published atomically under a fresh cycle ID. A failed
// or timed-out provider is reported in the snapshot's FailedProviders
// and in the returned diagnostics; it never aborts the cycle.
func (s *aggregatorService) ConnectAll(ctx context.Context) (*model.Snapshot, []error) {
	s.mu.RLock()
	connectors := make([]service.Connector, len(s.connectors))
	copy(connectors, s.connectors)
	s.mu.RUnlock()

	results := s.fanOut(ctx, connectors)

	seenAt := s.now()
	var diagnostics []error

	s.mu.Lock()
	defer s.mu.Unlock()

	var failed []string
	for _, result := range results {
		if result.err != nil {
			failed = append(failed, result.provider)
			diagnostics = append(diagnostics, &model.ConnectorError{
				Provider: result.provider,
				Cause:    result.err,
			})
			continue
		}
		warnings := s.mergeProvider(result.provider, result.records, seenAt)
		diagnostics = append(diagnostics, warnings...)
	}
	sort.Strings(failed)

	s.trimSamples(seenAt)
	s.snapshot = s.buildSnapshot(seenAt, failed)

	return s.snapshot, diagnostics
}

func (s *aggregatorService) fanOut(ctx context.Context, connectors []service.Connector) []providerResult {
	results := make([]providerResult, len(connectors))
	var wg sync.WaitGroup

	for i, connector := range connectors {
		wg.Add(1)
		go func(i int, c service.Connector) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, s.cfg.PerProviderTimeout)
			defer cancel()

			records, err := c.ListInstances(callCtx)
			results[i] = providerResult{
				provider: c.ProviderName(),
				records:  records,
				err:      err,
			}
		}(i, connector)
	}

	wg.Wait()
	return results
}

// mergeProvider folds one provider's records into the fleet: merge by
// id preserving launch_time, and mark instances the provider no longer
// reports as terminated. Terminated instances are kept for historical
// reporting, never deleted.
func (s *aggregatorService) mergeProvider(provider string, records []model.ProviderInstance, seenAt time.Time) []error {
	var warnings []error

	reported := make(map[string]struct{}, len(records))
	for _, raw := range records {
		inst, w := s.normalizer.Normalize(raw, seenAt)
		warnings = append(warnings, w...)
		reported[inst.ID] = struct{}{}

		if prev, ok := s.fleet[inst.ID]; ok && !prev.LaunchTime.IsZero() {
			inst.LaunchTime = prev.LaunchTime
		}
		s.fleet[inst.ID] = inst

		if inst.Status.IsBillable() && inst.UtilizationKnown {
			s.samples[inst.ID] = append(s.samples[inst.ID], model.UtilizationSample{
				InstanceID:     inst.ID,
				Timestamp:      seenAt,
				UtilizationPct: inst.UtilizationPct,
			})
		}
	}

	for id, inst := range s.fleet {
		if inst.Provider != provider || inst.Status == model.StatusTerminated {
			continue
		}
		if _, ok := reported[id]; !ok {
			inst.Status = model.StatusTerminated
			s.fleet[id] = inst
		}
	}

	return warnings
}

func (s *aggregatorService) trimSamples(now time.Time) {
	cutoff := now.Add(-s.cfg.UtilizationRetention)
	for id, series := range s.samples {
		keep := series
		for len(keep) > 0 && keep[0].Timestamp.Before(cutoff) {
			keep = keep[1:]
		}
		if len(keep) == 0 {
			delete(s.samples, id)
			continue
		}
		s.samples[id] = keep
	}
}

// buildSnapshot deep-copies the mutable fleet state so published
// snapshots stay immutable while the next cycle writes
func (s *aggregatorService) buildSnapshot(takenAt time.Time, failed []string) *model.Snapshot {
	instances := make([]model.Instance, 0, len(s.fleet))
	for _, inst := range s.fleet {
		instances = append(instances, inst)
	}
	sort.Slice(instances, func(i, j int) bool {
		if instances[i].Provider != instances[j].Provider {
			return instances[i].Provider < instances[j].Provider
		}
		return instances[i].ID < instances[j].ID
	})

	samples := make(map[string][]model.UtilizationSample, len(s.samples))
	for id, series := range s.samples {
		copied := make([]model.UtilizationSample, len(series))
		copy(copied, series)
		samples[id] = copied
	}

	return &model.Snapshot{
		CycleID:         uuid.NewString(),
		TakenAt:         takenAt,
		Instances:       instances,
		Samples:         samples,
		FailedProviders: failed,
	}
}

// SyncSpend pulls per-provider cost records for a period into the
// append-only spend store. Records are immutable once written; repeated
// syncs of the same period are idempotent.
func (s *aggregatorService) SyncSpend(ctx context.Context, period model.Period) (int, []error) {
	s.mu.RLock()
	connectors := make([]service.Connector, len(s.connectors))
	copy(connectors, s.connectors)
	s.mu.RUnlock()

	type spendResult struct {
		provider string
		records  []model.ProviderCostRecord
		err      error
	}

	results := make([]spendResult, len(connectors))
	var wg sync.WaitGroup
	for i, connector := range connectors {
		wg.Add(1)
		go func(i int, c service.Connector) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, s.cfg.PerProviderTimeout)
			defer cancel()

			records, err := c.ListSpend(callCtx, period)
			results[i] = spendResult{provider: c.ProviderName(), records: records, err: err}
		}(i, connector)
	}
	wg.Wait()

	var diagnostics []error
	added := 0

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, result := range results {
		if result.err != nil {
			diagnostics = append(diagnostics, &model.ConnectorError{
				Provider: result.provider,
				Cause:    result.err,
			})
			continue
		}
		for _, raw := range result.records {
			if raw.Cost < 0 || raw.GPUHours < 0 {
				continue
			}
			key := spendKey{
				instanceID: raw.InstanceID,
				start:      raw.PeriodStart.Unix(),
				end:        raw.PeriodEnd.Unix(),
			}
			if _, ok := s.spendSeen[key]; ok {
				continue
			}
			s.spendSeen[key] = struct{}{}
			s.spend = append(s.spend, model.SpendRecord{
				InstanceID:  raw.InstanceID,
				Provider:    result.provider,
				PeriodStart: raw.PeriodStart,
				PeriodEnd:   raw.PeriodEnd,
				Cost:        raw.Cost,
				GPUHours:    raw.GPUHours,
			})
			added++
		}
	}

	sort.Slice(s.spend, func(i, j int) bool {
		return s.spend[i].PeriodStart.Before(s.spend[j].PeriodStart)
	})

	return added, diagnostics
}

// Snapshot returns the latest published snapshot, or nil before the
// first cycle completes
func (s *aggregatorService) Snapshot() *model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// GetInstances returns the instances of the latest consistent snapshot
// only; it never blends two sync cycles
func (s *aggregatorService) GetInstances() []model.Instance {
	snap := s.Snapshot()
	if snap == nil {
		return nil
	}
	out := make([]model.Instance, len(snap.Instances))
	copy(out, snap.Instances)
	return out
}

// SpendHistory returns a copy of the append-only spend series, ordered
// by period start
func (s *aggregatorService) SpendHistory() []model.SpendRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.SpendRecord, len(s.spend))
	copy(out, s.spend)
	return out
}
