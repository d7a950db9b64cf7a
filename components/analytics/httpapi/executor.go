package httpapi

import (
	"context"
	"errors"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-estate-dashboard/components/analytics"
	"github.com/goliatone/go-estate-dashboard/components/analytics/commands"
	"github.com/goliatone/go-estate-dashboard/components/analytics/queries"
)

// Executor is the transport-neutral surface shared by the net/http handlers
// and the go-router adapter.
type Executor interface {
	SetFilters(ctx context.Context, req analytics.SetFiltersRequest) error
	SetMode(ctx context.Context, req analytics.SetModeRequest) error
	Refresh(ctx context.Context, input commands.RefreshViewInput) error
	CloseView(ctx context.Context, input commands.CloseViewInput) error
	ViewModel(ctx context.Context, input queries.ViewModelInput) (analytics.ViewModel, error)
	Predict(ctx context.Context, req analytics.PredictionRequest) (analytics.PredictionOutcome, error)
	HousePrices(ctx context.Context) ([]analytics.PriceMarker, error)
}

// CommandExecutor dispatches to go-command commanders and queriers.
type CommandExecutor struct {
	Filters     gocommand.Commander[analytics.SetFiltersRequest]
	Mode        gocommand.Commander[analytics.SetModeRequest]
	Refresher   gocommand.Commander[commands.RefreshViewInput]
	Closer      gocommand.Commander[commands.CloseViewInput]
	Views       gocommand.Querier[queries.ViewModelInput, analytics.ViewModel]
	Predictions gocommand.Querier[analytics.PredictionRequest, analytics.PredictionOutcome]
	Prices      gocommand.Querier[queries.HousePricesInput, []analytics.PriceMarker]
}

// NewCommandExecutor wires every command and query to the analytics service.
func NewCommandExecutor(service *analytics.Service, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		Filters:     commands.NewSetFiltersCommand(service, telemetry),
		Mode:        commands.NewSetChartModeCommand(service, telemetry),
		Refresher:   commands.NewRefreshViewCommand(service, telemetry),
		Closer:      commands.NewCloseViewCommand(service, telemetry),
		Views:       queries.NewViewModelQuery(service),
		Predictions: queries.NewPredictQuery(service),
		Prices:      queries.NewHousePricesQuery(service),
	}
}

var _ Executor = (*CommandExecutor)(nil)

var errNotConfigured = errors.New("httpapi: operation not configured")

func (e *CommandExecutor) SetFilters(ctx context.Context, req analytics.SetFiltersRequest) error {
	if e.Filters == nil {
		return errNotConfigured
	}
	return e.Filters.Execute(ctx, req)
}

func (e *CommandExecutor) SetMode(ctx context.Context, req analytics.SetModeRequest) error {
	if e.Mode == nil {
		return errNotConfigured
	}
	return e.Mode.Execute(ctx, req)
}

func (e *CommandExecutor) Refresh(ctx context.Context, input commands.RefreshViewInput) error {
	if e.Refresher == nil {
		return errNotConfigured
	}
	return e.Refresher.Execute(ctx, input)
}

func (e *CommandExecutor) CloseView(ctx context.Context, input commands.CloseViewInput) error {
	if e.Closer == nil {
		return errNotConfigured
	}
	return e.Closer.Execute(ctx, input)
}

func (e *CommandExecutor) ViewModel(ctx context.Context, input queries.ViewModelInput) (analytics.ViewModel, error) {
	if e.Views == nil {
		return analytics.ViewModel{}, errNotConfigured
	}
	return e.Views.Query(ctx, input)
}

func (e *CommandExecutor) Predict(ctx context.Context, req analytics.PredictionRequest) (analytics.PredictionOutcome, error) {
	if e.Predictions == nil {
		return analytics.PredictionOutcome{}, errNotConfigured
	}
	return e.Predictions.Query(ctx, req)
}

func (e *CommandExecutor) HousePrices(ctx context.Context) ([]analytics.PriceMarker, error) {
	if e.Prices == nil {
		return nil, errNotConfigured
	}
	return e.Prices.Query(ctx, queries.HousePricesInput{})
}

// StatusFor maps analytics errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, analytics.ErrViewNotFound):
		return http.StatusNotFound
	case errors.Is(err, analytics.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, analytics.ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, errNotConfigured):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// PredictionStatus is the status code for a prediction outcome.
func PredictionStatus(outcome analytics.PredictionOutcome) int {
	if outcome.Error == "" {
		return http.StatusOK
	}
	if outcome.Err == nil {
		return http.StatusInternalServerError
	}
	return StatusFor(outcome.Err)
}
