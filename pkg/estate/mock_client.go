package estate

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-estate-dashboard/components/analytics"
)

// MockData seeds deterministic responses for tests or local demos.
type MockData struct {
	Exploratory analytics.ExploratoryDataset      `yaml:"exploratory"`
	Performance []analytics.ModelPerformanceEntry `yaml:"model_performance"`
	HousePrices []analytics.HousePrice            `yaml:"house_prices"`
	// PredictedPrice is returned for every valid prediction.
	PredictedPrice float64 `yaml:"predicted_price"`
}

// MockErrors forces failures per call.
type MockErrors struct {
	Exploratory error
	Performance error
	Predict     error
	HousePrices error
}

// MockClient implements Client using in-memory fixtures.
type MockClient struct {
	mu          sync.RWMutex
	data        MockData
	errs        MockErrors
	predictions []analytics.PredictionRequest
}

// NewMockClient builds a mock client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	return &MockClient{data: data}
}

// LoadMockData reads fixtures from a YAML file.
func LoadMockData(path string) (MockData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return MockData{}, fmt.Errorf("estate: read fixtures: %w", err)
	}
	return ParseMockData(raw)
}

// ParseMockData decodes YAML fixtures.
func ParseMockData(raw []byte) (MockData, error) {
	var data MockData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return MockData{}, fmt.Errorf("estate: decode fixtures: %w", err)
	}
	return data, nil
}

// SetErrors replaces the forced failures.
func (c *MockClient) SetErrors(errs MockErrors) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = errs
}

// FetchExploratoryDataset returns the configured dataset.
func (c *MockClient) FetchExploratoryDataset(ctx context.Context) (analytics.ExploratoryDataset, error) {
	if err := ctx.Err(); err != nil {
		return analytics.ExploratoryDataset{}, &analytics.NetworkError{Op: "fetch exploratory dataset", Err: err}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.errs.Exploratory != nil {
		return analytics.ExploratoryDataset{}, c.errs.Exploratory
	}
	return cloneExploratory(c.data.Exploratory), nil
}

// FetchModelPerformance returns the configured metrics in fixture order.
func (c *MockClient) FetchModelPerformance(ctx context.Context) (analytics.ModelPerformanceDataset, error) {
	if err := ctx.Err(); err != nil {
		return analytics.ModelPerformanceDataset{}, &analytics.NetworkError{Op: "fetch model performance", Err: err}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.errs.Performance != nil {
		return analytics.ModelPerformanceDataset{}, c.errs.Performance
	}
	return analytics.NewModelPerformanceDataset(c.data.Performance...), nil
}

// SubmitPrediction records the request and returns the fixed price.
func (c *MockClient) SubmitPrediction(ctx context.Context, req analytics.PredictionRequest) (analytics.PredictionResult, error) {
	if err := ctx.Err(); err != nil {
		return analytics.PredictionResult{}, &analytics.NetworkError{Op: "submit prediction", Err: err}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.predictions = append(c.predictions, req)
	if c.errs.Predict != nil {
		return analytics.PredictionResult{}, c.errs.Predict
	}
	return analytics.PredictionResult{PredictedPrice: c.data.PredictedPrice}, nil
}

// FetchHousePrices returns the configured price points.
func (c *MockClient) FetchHousePrices(ctx context.Context) ([]analytics.HousePrice, error) {
	if err := ctx.Err(); err != nil {
		return nil, &analytics.NetworkError{Op: "fetch house prices", Err: err}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.errs.HousePrices != nil {
		return nil, c.errs.HousePrices
	}
	return append([]analytics.HousePrice(nil), c.data.HousePrices...), nil
}

// Predictions returns the requests submitted so far.
func (c *MockClient) Predictions() []analytics.PredictionRequest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]analytics.PredictionRequest(nil), c.predictions...)
}

func cloneExploratory(ds analytics.ExploratoryDataset) analytics.ExploratoryDataset {
	return analytics.ExploratoryDataset{
		BedroomDistribution:  append([]analytics.DistributionEntry(nil), ds.BedroomDistribution...),
		BathroomDistribution: append([]analytics.DistributionEntry(nil), ds.BathroomDistribution...),
		SqftLotVsPrice:       append([]analytics.SqftLotPoint(nil), ds.SqftLotVsPrice...),
		FloorsVsPrice:        append([]analytics.FloorsPoint(nil), ds.FloorsVsPrice...),
	}
}
