package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// PredictionModel identifies a trained model on the prediction service.
type PredictionModel string

const (
	ModelRidge        PredictionModel = "ridge"
	ModelDecisionTree PredictionModel = "decision_tree"
	ModelRandomForest PredictionModel = "random_forest"
)

// DefaultPredictionModel is preselected on the form.
const DefaultPredictionModel = ModelRidge

// PredictionModels lists the models offered on the form.
func PredictionModels() []PredictionModel {
	return []PredictionModel{ModelRidge, ModelDecisionTree, ModelRandomForest}
}

// MessagePredictionFailed is shown on the form for any submission failure.
const MessagePredictionFailed = "Error predicting price. Please try again."

// PredictionRequest is the feature vector sent to POST /predict. Feature
// values may be numbers or numeric strings.
type PredictionRequest struct {
	Bedrooms   any    `json:"bedrooms"`
	Bathrooms  any    `json:"bathrooms"`
	SqftLiving any    `json:"sqft_living"`
	SqftLot    any    `json:"sqft_lot"`
	Floors     any    `json:"floors"`
	Waterfront any    `json:"waterfront"`
	Model      string `json:"model"`
}

// PredictionResult is the service response.
type PredictionResult struct {
	PredictedPrice float64 `json:"predicted_price"`
}

// PredictionModelOptions returns the model select options with the default selected.
func PredictionModelOptions() []Option {
	out := make([]Option, 0, 3)
	for _, m := range PredictionModels() {
		out = append(out, Option{
			Value:    string(m),
			Label:    ModelLabel(string(m)),
			Selected: m == DefaultPredictionModel,
		})
	}
	return out
}

var predictionFormFields = []string{"bedrooms", "bathrooms", "sqft_living", "sqft_lot", "floors", "waterfront"}

// PredictionRequestFromForm reads a submitted form. Missing features stay nil
// and fail validation; a missing model falls back to the default.
func PredictionRequestFromForm(values url.Values) PredictionRequest {
	field := func(name string) any {
		if !values.Has(name) {
			return nil
		}
		return strings.TrimSpace(values.Get(name))
	}
	model := strings.TrimSpace(values.Get("model"))
	if model == "" {
		model = string(DefaultPredictionModel)
	}
	return PredictionRequest{
		Bedrooms:   field("bedrooms"),
		Bathrooms:  field("bathrooms"),
		SqftLiving: field("sqft_living"),
		SqftLot:    field("sqft_lot"),
		Floors:     field("floors"),
		Waterfront: field("waterfront"),
		Model:      model,
	}
}

// FormatPredictedPrice renders the result line shown under the form.
func FormatPredictedPrice(price float64) string {
	return fmt.Sprintf("Predicted Price: $%.2f", price)
}

// PredictionOutcome is what the form displays after a submission.
type PredictionOutcome struct {
	Price    float64 `json:"price,omitempty"`
	HasPrice bool    `json:"has_price"`
	Message  string  `json:"message,omitempty"`
	Error    string  `json:"error,omitempty"`
	Err      error   `json:"-"`
}

// PredictionFormOptions configures a PredictionForm.
type PredictionFormOptions struct {
	Predictor Predictor
	Validator RequestValidator
	Logger    *slog.Logger
	Telemetry Telemetry
}

// PredictionForm validates and submits prediction requests. It never touches
// analytics view state.
type PredictionForm struct {
	predictor Predictor
	validator RequestValidator
	logger    *slog.Logger
	telemetry Telemetry
}

// NewPredictionForm builds a form with schema validation by default.
func NewPredictionForm(opts PredictionFormOptions) *PredictionForm {
	validator := opts.Validator
	if validator == nil {
		validator = NewSchemaValidator()
	}
	return &PredictionForm{
		predictor: opts.Predictor,
		validator: validator,
		logger:    normalizeLogger(opts.Logger),
		telemetry: normalizeTelemetry(opts.Telemetry),
	}
}

// Submit validates req, sends it and converts the result into display text.
func (f *PredictionForm) Submit(ctx context.Context, req PredictionRequest) PredictionOutcome {
	result, err := f.submit(ctx, req)
	if err != nil {
		f.logger.Warn("analytics: prediction failed", "model", req.Model, "error", err)
		f.telemetry.Record(ctx, "analytics.prediction.failed", map[string]any{
			"model":      req.Model,
			"validation": errors.Is(err, ErrValidation),
		})
		return PredictionOutcome{Error: MessagePredictionFailed, Err: err}
	}
	f.telemetry.Record(ctx, "analytics.prediction.succeeded", map[string]any{"model": req.Model})
	return PredictionOutcome{
		Price:    result.PredictedPrice,
		HasPrice: true,
		Message:  FormatPredictedPrice(result.PredictedPrice),
	}
}

func (f *PredictionForm) submit(ctx context.Context, req PredictionRequest) (PredictionResult, error) {
	if err := f.validator.ValidatePrediction(req); err != nil {
		return PredictionResult{}, err
	}
	if f.predictor == nil {
		return PredictionResult{}, &NetworkError{Op: "submit prediction", Err: errMissingPredictor}
	}
	return f.predictor.SubmitPrediction(ctx, req)
}
