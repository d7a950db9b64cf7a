package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-estate-dashboard/components/analytics"
)

// HousePricesInput requests the map markers.
type HousePricesInput struct{}

type housePriceService interface {
	HousePrices(ctx context.Context) ([]analytics.PriceMarker, error)
}

// HousePricesQuery loads banded house price markers.
type HousePricesQuery struct {
	service housePriceService
}

// NewHousePricesQuery builds the query.
func NewHousePricesQuery(service housePriceService) *HousePricesQuery {
	return &HousePricesQuery{service: service}
}

var _ gocommand.Querier[HousePricesInput, []analytics.PriceMarker] = (*HousePricesQuery)(nil)

// Query fetches the markers.
func (q *HousePricesQuery) Query(ctx context.Context, _ HousePricesInput) ([]analytics.PriceMarker, error) {
	return q.service.HousePrices(ctx)
}
