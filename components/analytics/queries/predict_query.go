package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-estate-dashboard/components/analytics"
)

type predictService interface {
	Predict(ctx context.Context, req analytics.PredictionRequest) analytics.PredictionOutcome
}

// PredictQuery submits the prediction form. Failures are reported in the
// outcome, never as an error.
type PredictQuery struct {
	service predictService
}

// NewPredictQuery builds the query.
func NewPredictQuery(service predictService) *PredictQuery {
	return &PredictQuery{service: service}
}

var _ gocommand.Querier[analytics.PredictionRequest, analytics.PredictionOutcome] = (*PredictQuery)(nil)

// Query validates and sends the request.
func (q *PredictQuery) Query(ctx context.Context, input analytics.PredictionRequest) (analytics.PredictionOutcome, error) {
	return q.service.Predict(ctx, input), nil
}
