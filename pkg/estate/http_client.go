package estate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-estate-dashboard/components/analytics"
)

// DefaultTimeout bounds every backend request when no client is injected.
const DefaultTimeout = 10 * time.Second

const maxErrorBody = 4 << 10

// Backend paths.
const (
	PathExploratory = "/eda_data"
	PathPerformance = "/model_performance"
	PathPredict     = "/predict"
	PathHousePrices = "/house-prices"
)

// HTTPConfig configures the HTTP estate client.
type HTTPConfig struct {
	BaseURL string
	// PriceMapURL serves /house-prices when the map runs on a separate host.
	PriceMapURL string
	APIKey      string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// HTTPClient talks to the model service over its REST endpoints.
type HTTPClient struct {
	baseURL     string
	priceMapURL string
	apiKey      string
	client      *http.Client
}

// NewHTTPClient builds a client for a live prediction backend.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("estate: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	priceMapURL := cfg.PriceMapURL
	if priceMapURL == "" {
		priceMapURL = cfg.BaseURL
	}
	return &HTTPClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		priceMapURL: strings.TrimRight(priceMapURL, "/"),
		apiKey:      cfg.APIKey,
		client:      httpClient,
	}, nil
}

// FetchExploratoryDataset implements analytics.ExploratorySource.
func (c *HTTPClient) FetchExploratoryDataset(ctx context.Context) (analytics.ExploratoryDataset, error) {
	const op = "fetch exploratory dataset"
	var resp edaResponse
	if err := c.do(ctx, op, http.MethodGet, c.baseURL+PathExploratory, nil, &resp); err != nil {
		return analytics.ExploratoryDataset{}, err
	}
	ds, err := resp.toDataset()
	if err != nil {
		return analytics.ExploratoryDataset{}, &analytics.NetworkError{Op: op, Err: err}
	}
	return ds, nil
}

// FetchModelPerformance implements analytics.PerformanceSource. Backend key
// order is kept.
func (c *HTTPClient) FetchModelPerformance(ctx context.Context) (analytics.ModelPerformanceDataset, error) {
	var ds analytics.ModelPerformanceDataset
	if err := c.do(ctx, "fetch model performance", http.MethodGet, c.baseURL+PathPerformance, nil, &ds); err != nil {
		return analytics.ModelPerformanceDataset{}, err
	}
	return ds, nil
}

// SubmitPrediction implements analytics.Predictor. A 400 or 422 answer is a
// *analytics.ValidationError carrying the backend's message.
func (c *HTTPClient) SubmitPrediction(ctx context.Context, req analytics.PredictionRequest) (analytics.PredictionResult, error) {
	var resp predictResponse
	err := c.do(ctx, "submit prediction", http.MethodPost, c.baseURL+PathPredict, req, &resp)
	if err != nil {
		var netErr *analytics.NetworkError
		if errors.As(err, &netErr) && isValidationStatus(netErr.StatusCode) {
			return analytics.PredictionResult{}, &analytics.ValidationError{
				Message: backendMessage(netErr.Body, netErr.StatusCode),
				Err:     err,
			}
		}
		return analytics.PredictionResult{}, err
	}
	if resp.Error != "" {
		return analytics.PredictionResult{}, &analytics.ValidationError{Message: resp.Error}
	}
	if resp.PredictedPrice == nil {
		return analytics.PredictionResult{}, &analytics.NetworkError{
			Op:  "submit prediction",
			Err: errors.New("response missing predicted_price"),
		}
	}
	return analytics.PredictionResult{PredictedPrice: *resp.PredictedPrice}, nil
}

// FetchHousePrices implements analytics.HousePriceSource.
func (c *HTTPClient) FetchHousePrices(ctx context.Context) ([]analytics.HousePrice, error) {
	var prices []analytics.HousePrice
	if err := c.do(ctx, "fetch house prices", http.MethodGet, c.priceMapURL+PathHousePrices, nil, &prices); err != nil {
		return nil, err
	}
	return prices, nil
}

func (c *HTTPClient) do(ctx context.Context, op, method, url string, payload any, target any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("estate: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("estate: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return &analytics.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &analytics.NetworkError{Op: op, StatusCode: resp.StatusCode, Body: string(data)}
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return &analytics.NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func isValidationStatus(status int) bool {
	return status == http.StatusBadRequest || status == http.StatusUnprocessableEntity
}

func backendMessage(body string, status int) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	if trimmed := strings.TrimSpace(body); trimmed != "" {
		return trimmed
	}
	return http.StatusText(status)
}
