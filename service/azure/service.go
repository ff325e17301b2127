package azure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v5"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
	"github.com/elC0mpa/gpu-doctor/model"
)

func NewService(ctx context.Context, subscriptionID string) (*service, error) {
	// DefaultAzureCredential covers environment variables, managed
	// identity and az login
	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	vmClient, err := armcompute.NewVirtualMachinesClient(subscriptionID, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create VM client: %w", err)
	}

	costClient, err := armcostmanagement.NewQueryClient(credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cost management client: %w", err)
	}

	subsClient, err := armsubscriptions.NewClient(credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscriptions client: %w", err)
	}

	s := &service{
		subscriptionID: subscriptionID,
		vmClient:       vmClient,
		costClient:     costClient,
		subsClient:     subsClient,
	}

	if _, err := s.SubscriptionName(ctx); err != nil {
		return nil, fmt.Errorf("failed to verify Azure subscription: %w", err)
	}

	return s, nil
}

func (s *service) ProviderName() string {
	return "azure"
}

// SubscriptionName resolves the display name of the configured subscription
func (s *service) SubscriptionName(ctx context.Context) (string, error) {
	resp, err := s.subsClient.Get(ctx, s.subscriptionID, nil)
	if err != nil {
		return "", err
	}
	if resp.DisplayName == nil {
		return s.subscriptionID, nil
	}
	return *resp.DisplayName, nil
}

// ListInstances returns every VM of a GPU size family (NC, ND, NG, NV
// series) across the subscription. Azure reports no utilization metric
// through the compute API, so the records carry none.
func (s *service) ListInstances(ctx context.Context) ([]model.ProviderInstance, error) {
	var out []model.ProviderInstance

	pager := s.vmClient.NewListAllPager(&armcompute.VirtualMachinesClientListAllOptions{
		StatusOnly: to.Ptr("true"),
	})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list VMs: %w", err)
		}

		for _, vm := range page.Value {
			if vm == nil || vm.Properties == nil || vm.Properties.HardwareProfile == nil {
				continue
			}
			size := string(*vm.Properties.HardwareProfile.VMSize)
			if !isGPUSize(size) {
				continue
			}
			out = append(out, s.toProviderInstance(vm, size))
		}
	}

	return out, nil
}

func (s *service) toProviderInstance(vm *armcompute.VirtualMachine, size string) model.ProviderInstance {
	name := ""
	if vm.Name != nil {
		name = *vm.Name
	}

	region := ""
	if vm.Location != nil {
		region = *vm.Location
	}

	pricingLabel := ""
	if vm.Properties.Priority != nil && *vm.Properties.Priority == armcompute.VirtualMachinePriorityTypesSpot {
		pricingLabel = "spot"
	}

	var launched time.Time
	if vm.Properties.TimeCreated != nil {
		launched = *vm.Properties.TimeCreated
	}

	return model.ProviderInstance{
		ID:           name,
		Provider:     "azure",
		InstanceType: size,
		State:        powerState(vm),
		Region:       region,
		PricingLabel: pricingLabel,
		LaunchTime:   launched,
	}
}

// powerState extracts the "PowerState/..." status from the instance
// view, formatted as "vm running" / "vm deallocated"
func powerState(vm *armcompute.VirtualMachine) string {
	if vm.Properties.InstanceView == nil {
		return ""
	}
	for _, status := range vm.Properties.InstanceView.Statuses {
		if status == nil || status.Code == nil {
			continue
		}
		if state, ok := strings.CutPrefix(*status.Code, "PowerState/"); ok {
			return "vm " + state
		}
	}
	return ""
}

func isGPUSize(size string) bool {
	lower := strings.ToLower(size)
	for _, prefix := range []string{"standard_nc", "standard_nd", "standard_ng", "standard_nv"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// ListSpend queries Cost Management for daily VM costs grouped by
// resource over the period
func (s *service) ListSpend(ctx context.Context, period model.Period) ([]model.ProviderCostRecord, error) {
	scope := fmt.Sprintf("/subscriptions/%s", s.subscriptionID)

	queryDefinition := armcostmanagement.QueryDefinition{
		Type:      to.Ptr(armcostmanagement.ExportTypeActualCost),
		Timeframe: to.Ptr(armcostmanagement.TimeframeTypeCustom),
		TimePeriod: &armcostmanagement.QueryTimePeriod{
			From: to.Ptr(period.Start),
			To:   to.Ptr(period.End),
		},
		Dataset: &armcostmanagement.QueryDataset{
			Granularity: to.Ptr(armcostmanagement.GranularityTypeDaily),
			Aggregation: map[string]*armcostmanagement.QueryAggregation{
				"totalCost": {
					Name:     to.Ptr("Cost"),
					Function: to.Ptr(armcostmanagement.FunctionTypeSum),
				},
			},
			Grouping: []*armcostmanagement.QueryGrouping{
				{
					Type: to.Ptr(armcostmanagement.QueryColumnTypeDimension),
					Name: to.Ptr("ResourceId"),
				},
			},
			Filter: &armcostmanagement.QueryFilter{
				Dimensions: &armcostmanagement.QueryComparisonExpression{
					Name:     to.Ptr("ServiceName"),
					Operator: to.Ptr(armcostmanagement.QueryOperatorTypeIn),
					Values:   []*string{to.Ptr("Virtual Machines")},
				},
			},
		},
	}

	resp, err := s.costClient.Usage(ctx, scope, queryDefinition, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query costs: %w", err)
	}

	var records []model.ProviderCostRecord
	if resp.Properties == nil || resp.Properties.Rows == nil {
		return records, nil
	}

	// Row format with daily granularity and one grouping:
	// [cost, usageDate, resourceId, currency]
	for _, row := range resp.Properties.Rows {
		if len(row) < 3 {
			continue
		}
		cost, ok := row[0].(float64)
		if !ok {
			continue
		}
		usageDate, ok := row[1].(float64)
		if !ok {
			continue
		}
		resourceID, ok := row[2].(string)
		if !ok {
			continue
		}

		day, err := time.Parse("20060102", fmt.Sprintf("%.0f", usageDate))
		if err != nil {
			continue
		}

		// The instance name is the last segment of the ARM resource id
		segments := strings.Split(resourceID, "/")
		instanceID := segments[len(segments)-1]

		records = append(records, model.ProviderCostRecord{
			InstanceID:  instanceID,
			Provider:    "azure",
			PeriodStart: day,
			PeriodEnd:   day.AddDate(0, 0, 1),
			Cost:        cost,
		})
	}

	return records, nil
}
