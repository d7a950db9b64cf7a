package analytics

import (
	"context"
	"io"
)

// ExploratorySource loads the EDA payload.
type ExploratorySource interface {
	FetchExploratoryDataset(ctx context.Context) (ExploratoryDataset, error)
}

// PerformanceSource loads model evaluation metrics.
type PerformanceSource interface {
	FetchModelPerformance(ctx context.Context) (ModelPerformanceDataset, error)
}

// DataSource is the pair of reads the analytics view depends on.
type DataSource interface {
	ExploratorySource
	PerformanceSource
}

// Predictor submits feature vectors to the prediction service.
type Predictor interface {
	SubmitPrediction(ctx context.Context, req PredictionRequest) (PredictionResult, error)
}

// HousePriceSource loads geolocated prices for the map view.
type HousePriceSource interface {
	FetchHousePrices(ctx context.Context) ([]HousePrice, error)
}

// Client is a convenience union for backends that serve every call.
type Client interface {
	DataSource
	Predictor
	HousePriceSource
}

// Renderer describes the template renderer used for pages and fragments.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}
