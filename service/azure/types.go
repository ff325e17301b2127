package azure

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v5"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
	"github.com/elC0mpa/gpu-doctor/model"
)

// Credential is passed to allow reuse across clients
type Credential = azidentity.DefaultAzureCredential

type service struct {
	subscriptionID string
	vmClient       *armcompute.VirtualMachinesClient
	costClient     *armcostmanagement.QueryClient
	subsClient     *armsubscriptions.Client
}

type ConnectorService interface {
	ProviderName() string
	ListInstances(ctx context.Context) ([]model.ProviderInstance, error)
	ListSpend(ctx context.Context, period model.Period) ([]model.ProviderCostRecord, error)
	SubscriptionName(ctx context.Context) (string, error)
}
