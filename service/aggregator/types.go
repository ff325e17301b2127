package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/elC0mpa/gpu-doctor/config"
	"github.com/elC0mpa/gpu-doctor/model"
	"github.com/elC0mpa/gpu-doctor/service"
	"github.com/elC0mpa/gpu-doctor/service/normalize"
)

type aggregatorService struct {
	cfg        *config.Config
	normalizer normalize.Service
	now        func() time.Time

	// mu enforces the single-writer discipline on snapshot publishing.
	// Readers only ever see a fully published snapshot.
	mu         sync.RWMutex
	connectors []service.Connector
	fleet      map[string]model.Instance
	samples    map[string][]model.UtilizationSample
	spend      []model.SpendRecord
	spendSeen  map[spendKey]struct{}
	snapshot   *model.Snapshot
}

type spendKey struct {
	instanceID string
	start      int64
	end        int64
}

// AggregatorService merges per-provider data into immutable snapshots
// and answers spend questions about them
type AggregatorService interface {
	AddConnector(c service.Connector)
	ConnectAll(ctx context.Context) (*model.Snapshot, []error)
	SyncSpend(ctx context.Context, period model.Period) (int, []error)
	Snapshot() *model.Snapshot
	GetInstances() []model.Instance
	GetSummary(period model.Period) model.SpendSummary
	SpendHistory() []model.SpendRecord
}
