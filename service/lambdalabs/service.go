package lambdalabs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elC0mpa/gpu-doctor/model"
)

const baseURL = "https://cloud.lambdalabs.com/api/v1"

func NewService(apiKey string) *service {
	return &service{
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *service) ProviderName() string {
	return "lambda"
}

// ListInstances returns the account's instances. Lambda reports machine
// shapes (gpu_1x_a100, ...) and no utilization metric.
func (s *service) ListInstances(ctx context.Context) ([]model.ProviderInstance, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/instances", nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(s.apiKey, "")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query Lambda API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Lambda API returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Data []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
			Region struct {
				Name string `json:"name"`
			} `json:"region"`
			InstanceType struct {
				Name              string `json:"name"`
				PriceCentsPerHour int    `json:"price_cents_per_hour"`
				Specs             struct {
					GPUs int `json:"gpus"`
				} `json:"specs"`
			} `json:"instance_type"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode Lambda response: %w", err)
	}

	out := make([]model.ProviderInstance, 0, len(parsed.Data))
	for _, instance := range parsed.Data {
		out = append(out, model.ProviderInstance{
			ID:           instance.ID,
			Provider:     "lambda",
			InstanceType: instance.InstanceType.Name,
			GPUCount:     instance.InstanceType.Specs.GPUs,
			State:        instance.Status,
			Region:       instance.Region.Name,
			ListedRate:   float64(instance.InstanceType.PriceCentsPerHour) / 100,
			PricingLabel: "on_demand",
		})
	}

	return out, nil
}

// ListSpend returns nothing: Lambda exposes neither billing history nor
// instance start times, so there is no defensible way to attribute cost
// to a past period
func (s *service) ListSpend(ctx context.Context, period model.Period) ([]model.ProviderCostRecord, error) {
	return nil, nil
}
