package normalize

import (
	"time"

	"github.com/elC0mpa/gpu-doctor/model"
	"github.com/elC0mpa/gpu-doctor/pricing"
)

type service struct {
	book *pricing.Book
}

// Service converts raw provider records into canonical instances
type Service interface {
	Normalize(raw model.ProviderInstance, seenAt time.Time) (model.Instance, []error)
	ResolvePrice(inst model.Instance, listedRate float64) (float64, bool)
}
