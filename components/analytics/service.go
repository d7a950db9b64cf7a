package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	errMissingViewID      error = &ValidationError{Field: "view_id", Message: "view id is required"}
	errMissingHousePrices = errors.New("analytics: house price source not configured")
)

// Options configures the analytics Service. Collaborators are interfaces so
// applications can swap the backend client without touching view code.
type Options struct {
	Source      DataSource
	Predictor   Predictor
	HousePrices HousePriceSource
	Validator   RequestValidator
	Charts      *EChartsRenderer
	Modes       *ModeController
	Renderer    Renderer
	Logger      *slog.Logger
	Telemetry   Telemetry
	MaxViews    int
}

// Service owns the live analytics views and the prediction form.
type Service struct {
	opts  Options
	views *ViewRegistry
	form  *PredictionForm
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	opts.Logger = normalizeLogger(opts.Logger)
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.Charts == nil {
		opts.Charts = NewEChartsRenderer()
	}
	if opts.Modes == nil {
		opts.Modes = NewModeController(EChartsPerformanceRenderers(opts.Charts)...)
	}
	if opts.Predictor == nil {
		if p, ok := opts.Source.(Predictor); ok {
			opts.Predictor = p
		}
	}
	if opts.HousePrices == nil {
		if h, ok := opts.Source.(HousePriceSource); ok {
			opts.HousePrices = h
		}
	}
	s := &Service{opts: opts}
	s.views = NewViewRegistry(s.newView, opts.MaxViews)
	s.form = NewPredictionForm(PredictionFormOptions{
		Predictor: opts.Predictor,
		Validator: opts.Validator,
		Logger:    opts.Logger,
		Telemetry: opts.Telemetry,
	})
	return s
}

func (s *Service) newView(id string) (*View, error) {
	store := NewStore(StoreOptions{
		Source:    s.opts.Source,
		Logger:    s.opts.Logger.With("view_id", id),
		Telemetry: s.opts.Telemetry,
	})
	return NewView(ViewOptions{
		ID:       id,
		Store:    store,
		Charts:   s.opts.Charts,
		Modes:    s.opts.Modes,
		Renderer: s.opts.Renderer,
		Logger:   s.opts.Logger,
	})
}

// OpenView registers a new view and starts its fetches.
func (s *Service) OpenView(ctx context.Context) (*View, error) {
	view, err := s.views.Open()
	if err != nil {
		return nil, err
	}
	view.Activate(ctx)
	s.opts.Telemetry.Record(ctx, "analytics.view.open", map[string]any{"view_id": view.ID()})
	return view, nil
}

// View returns a live view.
func (s *Service) View(id string) (*View, error) {
	if id == "" {
		return nil, errMissingViewID
	}
	return s.views.Get(id)
}

// CloseView releases a view. In-flight fetches for it are discarded.
func (s *Service) CloseView(ctx context.Context, id string) error {
	if id == "" {
		return errMissingViewID
	}
	s.views.Release(id)
	s.opts.Telemetry.Record(ctx, "analytics.view.close", map[string]any{"view_id": id})
	return nil
}

// ViewModel derives the current view model of a view.
func (s *Service) ViewModel(id string) (ViewModel, error) {
	view, err := s.View(id)
	if err != nil {
		return ViewModel{}, err
	}
	return view.Model()
}

// SetFiltersRequest replaces both filter constraints of a view. Nil clears one.
type SetFiltersRequest struct {
	ViewID   string `json:"view_id"`
	Bedroom  *int   `json:"bedroom"`
	Bathroom *int   `json:"bathroom"`
}

// SetFilters updates the filter selection of a view.
func (s *Service) SetFilters(ctx context.Context, req SetFiltersRequest) error {
	view, err := s.View(req.ViewID)
	if err != nil {
		return err
	}
	view.Store().SetBedroomFilter(req.Bedroom)
	view.Store().SetBathroomFilter(req.Bathroom)
	s.opts.Telemetry.Record(ctx, "analytics.filters.set", map[string]any{
		"view_id":  req.ViewID,
		"bedroom":  filterPayload(req.Bedroom),
		"bathroom": filterPayload(req.Bathroom),
	})
	return nil
}

func filterPayload(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// SetModeRequest switches the chart mode of a view.
type SetModeRequest struct {
	ViewID string `json:"view_id"`
	Mode   string `json:"mode"`
}

// SetMode validates and applies a chart mode.
func (s *Service) SetMode(ctx context.Context, req SetModeRequest) error {
	view, err := s.View(req.ViewID)
	if err != nil {
		return err
	}
	mode, err := ParseChartMode(req.Mode)
	if err != nil {
		return err
	}
	if err := view.Store().SetChartMode(mode); err != nil {
		return err
	}
	s.opts.Telemetry.Record(ctx, "analytics.mode.set", map[string]any{
		"view_id": req.ViewID,
		"mode":    string(mode),
	})
	return nil
}

// Refresh re-runs both fetches of a view and returns the settle channel.
func (s *Service) Refresh(ctx context.Context, id string) (<-chan struct{}, error) {
	view, err := s.View(id)
	if err != nil {
		return nil, err
	}
	return view.Refresh(ctx), nil
}

// Predict submits a prediction through the form.
func (s *Service) Predict(ctx context.Context, req PredictionRequest) PredictionOutcome {
	return s.form.Submit(ctx, req)
}

// HousePrices loads the map markers.
func (s *Service) HousePrices(ctx context.Context) ([]PriceMarker, error) {
	if s.opts.HousePrices == nil {
		return nil, errMissingHousePrices
	}
	prices, err := s.opts.HousePrices.FetchHousePrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: house prices: %w", err)
	}
	return ToPriceMarkers(prices), nil
}

// Close releases every live view.
func (s *Service) Close() {
	s.views.Close()
}
