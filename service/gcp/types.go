package gcp

import (
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/elC0mpa/gpu-doctor/model"
	"google.golang.org/api/compute/v1"
)

type service struct {
	projectID      string
	billingAccount string
	computeClient  *compute.Service
	bqClient       *bigquery.Client
}

type ConnectorService interface {
	ProviderName() string
	ListInstances(ctx context.Context) ([]model.ProviderInstance, error)
	ListSpend(ctx context.Context, period model.Period) ([]model.ProviderCostRecord, error)
	Close() error
}
