package gcp

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/elC0mpa/gpu-doctor/model"
	"google.golang.org/api/compute/v1"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

func NewService(ctx context.Context, projectID, billingAccount string) (*service, error) {
	computeClient, err := compute.NewService(ctx, option.WithScopes(
		compute.ComputeReadonlyScope,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create Compute client: %w", err)
	}

	bqClient, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create BigQuery client: %w", err)
	}

	return &service{
		projectID:      projectID,
		billingAccount: billingAccount,
		computeClient:  computeClient,
		bqClient:       bqClient,
	}, nil
}

// Close closes the BigQuery client
func (s *service) Close() error {
	return s.bqClient.Close()
}

func (s *service) ProviderName() string {
	return "gcp"
}

// ListInstances returns every VM with attached accelerators across all
// zones of the project. Zones that fail to list are skipped rather than
// failing the whole scan.
func (s *service) ListInstances(ctx context.Context) ([]model.ProviderInstance, error) {
	zonesResp, err := s.computeClient.Zones.List(s.projectID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}

	var out []model.ProviderInstance
	for _, zone := range zonesResp.Items {
		instancesResp, err := s.computeClient.Instances.List(s.projectID, zone.Name).Context(ctx).Do()
		if err != nil {
			continue
		}

		for _, instance := range instancesResp.Items {
			if len(instance.GuestAccelerators) == 0 {
				continue
			}
			out = append(out, toProviderInstance(instance, zone.Name))
		}
	}

	return out, nil
}

func toProviderInstance(instance *compute.Instance, zone string) model.ProviderInstance {
	gpuName := ""
	gpuCount := 0
	for _, accelerator := range instance.GuestAccelerators {
		if gpuName == "" {
			gpuName = path.Base(accelerator.AcceleratorType)
		}
		gpuCount += int(accelerator.AcceleratorCount)
	}

	pricingLabel := ""
	if instance.Scheduling != nil &&
		(instance.Scheduling.Preemptible || instance.Scheduling.ProvisioningModel == "SPOT") {
		pricingLabel = "preemptible"
	}

	var launched time.Time
	if created, err := time.Parse(time.RFC3339, instance.CreationTimestamp); err == nil {
		launched = created
	}

	return model.ProviderInstance{
		ID:           instance.Name,
		Provider:     "gcp",
		InstanceType: path.Base(instance.MachineType),
		GPUName:      gpuName,
		GPUCount:     gpuCount,
		State:        mapState(instance.Status),
		Region:       zoneRegion(zone),
		PricingLabel: pricingLabel,
		LaunchTime:   launched,
	}
}

// mapState translates GCE statuses; on GCE "TERMINATED" means the VM is
// stopped, not gone
func mapState(status string) string {
	switch status {
	case "RUNNING":
		return "running"
	case "TERMINATED", "STOPPED", "STOPPING":
		return "stopped"
	case "SUSPENDED", "SUSPENDING":
		return "suspended"
	default:
		return strings.ToLower(status)
	}
}

// zoneRegion strips the zone suffix: us-central1-a -> us-central1
func zoneRegion(zone string) string {
	if i := strings.LastIndex(zone, "-"); i > 0 {
		return zone[:i]
	}
	return zone
}

// ListSpend queries the BigQuery billing export for daily per-resource
// GPU costs over the period. Requires resource-level billing export
// enabled on the billing account.
func (s *service) ListSpend(ctx context.Context, period model.Period) ([]model.ProviderCostRecord, error) {
	// Table name format: project.dataset.gcp_billing_export_resource_v1_BILLING_ACCOUNT_ID
	billingAccountID := strings.ReplaceAll(s.billingAccount, "billingAccounts/", "")
	billingAccountID = strings.ReplaceAll(billingAccountID, "-", "_")

	query := fmt.Sprintf(`
		SELECT
			IFNULL(resource.name, 'unattributed') AS instance_name,
			CAST(DATE(usage_start_time) AS STRING) AS usage_day,
			SUM(cost) AS total_cost,
			SUM(usage.amount_in_pricing_units) AS usage_amount
		FROM %s.%s.gcp_billing_export_resource_v1_%s
		WHERE
			project.id = @projectID
			AND LOWER(sku.description) LIKE '%%gpu%%'
			AND usage_start_time >= @startDate
			AND usage_start_time < @endDate
		GROUP BY instance_name, usage_day
		ORDER BY usage_day
	`, s.projectID, "billing_export", billingAccountID)

	q := s.bqClient.Query(query)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "projectID", Value: s.projectID},
		{Name: "startDate", Value: period.Start.Format("2006-01-02")},
		{Name: "endDate", Value: period.End.Format("2006-01-02")},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to execute BigQuery query: %w", err)
	}

	var records []model.ProviderCostRecord
	for {
		var row struct {
			InstanceName string  `bigquery:"instance_name"`
			UsageDay     string  `bigquery:"usage_day"`
			TotalCost    float64 `bigquery:"total_cost"`
			UsageAmount  float64 `bigquery:"usage_amount"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read BigQuery row: %w", err)
		}

		day, err := time.Parse("2006-01-02", row.UsageDay)
		if err != nil {
			continue
		}

		records = append(records, model.ProviderCostRecord{
			InstanceID:  row.InstanceName,
			Provider:    "gcp",
			PeriodStart: day,
			PeriodEnd:   day.AddDate(0, 0, 1),
			Cost:        row.TotalCost,
			GPUHours:    row.UsageAmount,
		})
	}

	return records, nil
}
