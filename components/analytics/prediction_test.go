package analytics

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-estate-dashboard/internal/testutil"
)

type stubPredictor struct {
	mu       sync.Mutex
	result   PredictionResult
	err      error
	requests []PredictionRequest
}

func (p *stubPredictor) SubmitPrediction(ctx context.Context, req PredictionRequest) (PredictionResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	return p.result, p.err
}

func (p *stubPredictor) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

func validPrediction() PredictionRequest {
	return PredictionRequest{
		Bedrooms:   3,
		Bathrooms:  2,
		SqftLiving: 1800,
		SqftLot:    5000,
		Floors:     1,
		Waterfront: 0,
		Model:      string(ModelRidge),
	}
}

func newTestForm(t *testing.T, predictor Predictor) *PredictionForm {
	return NewPredictionForm(PredictionFormOptions{
		Predictor: predictor,
		Logger:    testutil.NewTestLogger(t),
	})
}

func TestPredictionFormSuccess(t *testing.T) {
	predictor := &stubPredictor{result: PredictionResult{PredictedPrice: 452317.89}}
	outcome := newTestForm(t, predictor).Submit(context.Background(), validPrediction())

	assert.True(t, outcome.HasPrice)
	assert.Equal(t, 452317.89, outcome.Price)
	assert.Equal(t, "Predicted Price: $452317.89", outcome.Message)
	assert.Empty(t, outcome.Error)
	assert.NoError(t, outcome.Err)
	assert.Equal(t, []PredictionRequest{validPrediction()}, predictor.requests)
}

func TestPredictionFormAcceptsNumericStrings(t *testing.T) {
	predictor := &stubPredictor{result: PredictionResult{PredictedPrice: 1}}
	req := validPrediction()
	req.Bedrooms = "3"
	req.Floors = " 1.5 "
	req.SqftLot = "5e3"

	outcome := newTestForm(t, predictor).Submit(context.Background(), req)
	assert.True(t, outcome.HasPrice, outcome.Err)
}

func TestPredictionFormRejectsInvalidInputLocally(t *testing.T) {
	cases := map[string]struct {
		mutate func(*PredictionRequest)
		field  string
	}{
		"missing feature": {func(r *PredictionRequest) { r.Floors = nil }, "floors"},
		"empty feature":   {func(r *PredictionRequest) { r.Bathrooms = "" }, "bathrooms"},
		"not a number":    {func(r *PredictionRequest) { r.SqftLiving = "big" }, "sqft_living"},
		"unknown model":   {func(r *PredictionRequest) { r.Model = "xgboost" }, "model"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			predictor := &stubPredictor{}
			req := validPrediction()
			tc.mutate(&req)

			outcome := newTestForm(t, predictor).Submit(context.Background(), req)
			assert.False(t, outcome.HasPrice)
			assert.Equal(t, MessagePredictionFailed, outcome.Error)
			var verr *ValidationError
			require.ErrorAs(t, outcome.Err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Zero(t, predictor.calls())
		})
	}
}

func TestPredictionFormBackendFailure(t *testing.T) {
	predictor := &stubPredictor{err: &NetworkError{Op: "submit prediction", StatusCode: 500}}
	outcome := newTestForm(t, predictor).Submit(context.Background(), validPrediction())

	assert.False(t, outcome.HasPrice)
	assert.Equal(t, MessagePredictionFailed, outcome.Error)
	assert.ErrorIs(t, outcome.Err, ErrNetwork)
}

func TestPredictionFormWithoutPredictor(t *testing.T) {
	outcome := newTestForm(t, nil).Submit(context.Background(), validPrediction())
	assert.ErrorIs(t, outcome.Err, ErrNetwork)
	assert.True(t, errors.Is(outcome.Err, errMissingPredictor))
}

func TestPredictionRequestFromForm(t *testing.T) {
	values := url.Values{
		"bedrooms":    {" 3 "},
		"bathrooms":   {"2"},
		"sqft_living": {"1800"},
		"sqft_lot":    {"5000"},
		"waterfront":  {"0"},
	}
	req := PredictionRequestFromForm(values)
	assert.Equal(t, "3", req.Bedrooms)
	assert.Nil(t, req.Floors)
	assert.Equal(t, string(DefaultPredictionModel), req.Model)

	values.Set("model", "random_forest")
	assert.Equal(t, "random_forest", PredictionRequestFromForm(values).Model)
}

func TestPredictionModelOptions(t *testing.T) {
	opts := PredictionModelOptions()
	require.Len(t, opts, 3)
	assert.Equal(t, Option{Value: "ridge", Label: "Ridge Regression", Selected: true}, opts[0])
	assert.False(t, opts[1].Selected)
	assert.Equal(t, "Decision Tree", opts[1].Label)
}

func TestFormatPredictedPrice(t *testing.T) {
	assert.Equal(t, "Predicted Price: $452317.89", FormatPredictedPrice(452317.89))
	assert.Equal(t, "Predicted Price: $100.00", FormatPredictedPrice(100))
}
