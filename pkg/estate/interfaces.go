package estate

import (
	"github.com/goliatone/go-estate-dashboard/components/analytics"
)

// Client is the full backend surface: both analytics reads, predictions and
// the house price map.
type Client interface {
	analytics.Client
}

var (
	_ Client = (*HTTPClient)(nil)
	_ Client = (*MockClient)(nil)
)
