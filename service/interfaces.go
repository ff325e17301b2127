package service

import (
	"context"

	"github.com/elC0mpa/gpu-doctor/model"
)

// Connector is the capability every provider integration exposes.
// Implementations are thin I/O wrappers: they fetch and translate, the
// analytical core never sees provider-specific shapes.
type Connector interface {
	ProviderName() string
	ListInstances(ctx context.Context) ([]model.ProviderInstance, error)
	ListSpend(ctx context.Context, period model.Period) ([]model.ProviderCostRecord, error)
}
