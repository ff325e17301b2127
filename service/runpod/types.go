package runpod

import (
	"context"
	"net/http"
	"time"

	"github.com/elC0mpa/gpu-doctor/model"
)

type service struct {
	apiKey string
	client *http.Client
	now    func() time.Time
}

type ConnectorService interface {
	ProviderName() string
	ListInstances(ctx context.Context) ([]model.ProviderInstance, error)
	ListSpend(ctx context.Context, period model.Period) ([]model.ProviderCostRecord, error)
}
