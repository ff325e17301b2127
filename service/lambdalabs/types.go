package lambdalabs

import (
	"context"
	"net/http"

	"github.com/elC0mpa/gpu-doctor/model"
)

type service struct {
	apiKey string
	client *http.Client
}

type ConnectorService interface {
	ProviderName() string
	ListInstances(ctx context.Context) ([]model.ProviderInstance, error)
	ListSpend(ctx context.Context, period model.Period) ([]model.ProviderCostRecord, error)
}
