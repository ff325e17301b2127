package vastai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elC0mpa/gpu-doctor/model"
)

const baseURL = "https://console.vast.ai/api/v0"

func NewService(apiKey string) *service {
	return &service{
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
		now:    time.Now,
	}
}

func (s *service) ProviderName() string {
	return "vastai"
}

type vastInstance struct {
	ID           int64    `json:"id"`
	GPUName      string   `json:"gpu_name"`
	NumGPUs      int      `json:"num_gpus"`
	ActualStatus string   `json:"actual_status"`
	DPHTotal     float64  `json:"dph_total"`
	StartDate    float64  `json:"start_date"`
	GPUUtil      *float64 `json:"gpu_util"`
	Geolocation  string   `json:"geolocation"`
}

// ListInstances returns the account's rented machines. Vast reports GPU
// utilization and an hourly rate per machine.
func (s *service) ListInstances(ctx context.Context) ([]model.ProviderInstance, error) {
	instances, err := s.listRentals(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.ProviderInstance, 0, len(instances))
	for _, instance := range instances {
		region := instance.Geolocation
		if region == "" {
			region = "vastai-market"
		}

		record := model.ProviderInstance{
			ID:           strconv.FormatInt(instance.ID, 10),
			Provider:     "vastai",
			InstanceType: instance.GPUName,
			GPUName:      instance.GPUName,
			GPUCount:     instance.NumGPUs,
			State:        instance.ActualStatus,
			Region:       region,
			ListedRate:   instance.DPHTotal,
			PricingLabel: "interruptible",
			LaunchTime:   unixTime(instance.StartDate),
		}
		if instance.GPUUtil != nil {
			record.UtilizationPct = *instance.GPUUtil
			record.UtilizationKnown = true
		}

		out = append(out, record)
	}

	return out, nil
}

// ListSpend derives spend from rental start times and hourly rates,
// since Vast exposes no billing history API
func (s *service) ListSpend(ctx context.Context, period model.Period) ([]model.ProviderCostRecord, error) {
	instances, err := s.listRentals(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var records []model.ProviderCostRecord
	for _, instance := range instances {
		started := unixTime(instance.StartDate)
		if started.IsZero() {
			continue
		}

		window, ok := (model.TimeWindow{Start: started, End: now}).Clip(period)
		if !ok {
			continue
		}

		hours := window.Duration().Hours()
		records = append(records, model.ProviderCostRecord{
			InstanceID:  strconv.FormatInt(instance.ID, 10),
			Provider:    "vastai",
			PeriodStart: window.Start,
			PeriodEnd:   window.End,
			Cost:        instance.DPHTotal * hours,
			GPUHours:    hours * float64(instance.NumGPUs),
		})
	}

	return records, nil
}

func (s *service) listRentals(ctx context.Context) ([]vastInstance, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/instances/", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query Vast API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Vast API returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Instances []vastInstance `json:"instances"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode Vast response: %w", err)
	}

	return parsed.Instances, nil
}

func unixTime(seconds float64) time.Time {
	if seconds <= 0 {
		return time.Time{}
	}
	return time.Unix(int64(seconds), 0).UTC()
}
