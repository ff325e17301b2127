package runpod

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elC0mpa/gpu-doctor/model"
)

const apiURL = "https://api.runpod.io/graphql"

func NewService(apiKey string) *service {
	return &service{
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
		now:    time.Now,
	}
}

func (s *service) ProviderName() string {
	return "runpod"
}

const podsQuery = `
query {
	myself {
		pods {
			id
			costPerHr
			desiredStatus
			gpuUtilPercent
			runtime {
				uptimeInSeconds
				gpuCount
				gpus {
					name
				}
			}
		}
	}
}`

type pod struct {
	ID             string   `json:"id"`
	CostPerHr      float64  `json:"costPerHr"`
	DesiredStatus  string   `json:"desiredStatus"`
	GPUUtilPercent *float64 `json:"gpuUtilPercent"`
	Runtime        *struct {
		UptimeInSeconds int64 `json:"uptimeInSeconds"`
		GPUCount        int   `json:"gpuCount"`
		GPUs            []struct {
			Name string `json:"name"`
		} `json:"gpus"`
	} `json:"runtime"`
}

// ListInstances returns the account's pods. RunPod reports per-GPU
// utilization, so the records carry it.
func (s *service) ListInstances(ctx context.Context) ([]model.ProviderInstance, error) {
	pods, err := s.listPods(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.ProviderInstance, 0, len(pods))
	for _, p := range pods {
		record := model.ProviderInstance{
			ID:           p.ID,
			Provider:     "runpod",
			Region:       "runpod-cloud",
			State:        strings.ToLower(p.DesiredStatus),
			ListedRate:   p.CostPerHr,
			PricingLabel: "on_demand",
		}

		if p.GPUUtilPercent != nil {
			record.UtilizationPct = *p.GPUUtilPercent
			record.UtilizationKnown = true
		}
		if p.Runtime != nil {
			record.GPUCount = p.Runtime.GPUCount
			if len(p.Runtime.GPUs) > 0 {
				record.GPUName = p.Runtime.GPUs[0].Name
				record.InstanceType = p.Runtime.GPUs[0].Name
			}
		}

		out = append(out, record)
	}

	return out, nil
}

// ListSpend derives spend from pod uptime and hourly rate, since RunPod
// exposes no billing history API. Each running pod contributes its rate
// over the overlap of its uptime with the period.
func (s *service) ListSpend(ctx context.Context, period model.Period) ([]model.ProviderCostRecord, error) {
	pods, err := s.listPods(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var records []model.ProviderCostRecord
	for _, p := range pods {
		if p.Runtime == nil || p.Runtime.UptimeInSeconds <= 0 {
			continue
		}

		started := now.Add(-time.Duration(p.Runtime.UptimeInSeconds) * time.Second)
		window, ok := (model.TimeWindow{Start: started, End: now}).Clip(period)
		if !ok {
			continue
		}

		hours := window.Duration().Hours()
		records = append(records, model.ProviderCostRecord{
			InstanceID:  p.ID,
			Provider:    "runpod",
			PeriodStart: window.Start,
			PeriodEnd:   window.End,
			Cost:        p.CostPerHr * hours,
			GPUHours:    hours * float64(p.Runtime.GPUCount),
		})
	}

	return records, nil
}

func (s *service) listPods(ctx context.Context) ([]pod, error) {
	body, err := json.Marshal(map[string]string{"query": podsQuery})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query RunPod API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("RunPod API returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Data struct {
			Myself struct {
				Pods []pod `json:"pods"`
			} `json:"myself"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode RunPod response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("RunPod API error: %s", parsed.Errors[0].Message)
	}

	return parsed.Data.Myself.Pods, nil
}
