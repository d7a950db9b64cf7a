package analytics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
)

// Panel keys.
const (
	PanelBedrooms         = "bedroom_distribution"
	PanelBathrooms        = "bathroom_distribution"
	PanelSqftLotVsPrice   = "sqft_lot_vs_price"
	PanelFloorsVsPrice    = "floors_vs_price"
	PanelModelPerformance = "model_performance"
)

// Template names rendered by a view.
const (
	TemplatePage   = "analytics"
	TemplatePanels = "analytics_panels"
)

const filterOptionAll = ""

// Panel is one rendered chart.
type Panel struct {
	Key     string             `json:"key"`
	Title   string             `json:"title"`
	Kind    string             `json:"kind"`
	Chart   string             `json:"chart_html"`
	Slices  []CategoricalSlice `json:"slices,omitempty"`
	Grouped *GroupedSeries     `json:"grouped,omitempty"`
}

// Option is one entry of a select control.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// Controls are the filter and mode selects. They render in every state.
type Controls struct {
	Bedroom  []Option `json:"bedroom"`
	Bathroom []Option `json:"bathroom"`
	Mode     []Option `json:"mode"`
}

// ViewModel is the render-ready projection of a ViewState.
type ViewModel struct {
	ID          string          `json:"id"`
	Generation  int             `json:"generation"`
	Exploratory SlotState       `json:"exploratory"`
	Performance SlotState       `json:"performance"`
	Mode        ChartMode       `json:"mode"`
	Filters     FilterSelection `json:"filters"`
	Error       string          `json:"error,omitempty"`
	Controls    Controls        `json:"controls"`
	Panels      []Panel         `json:"panels"`
}

// Panel looks up a panel by key.
func (vm ViewModel) Panel(key string) (Panel, bool) {
	for _, p := range vm.Panels {
		if p.Key == key {
			return p, true
		}
	}
	return Panel{}, false
}

// ViewOptions configures a View.
type ViewOptions struct {
	ID       string
	Store    *Store
	Charts   *EChartsRenderer
	Modes    *ModeController
	Renderer Renderer
	Logger   *slog.Logger
}

// View composes the store, filters, adapters and renderers of one analytics
// page activation.
type View struct {
	id       string
	store    *Store
	charts   *EChartsRenderer
	modes    *ModeController
	renderer Renderer
	logger   *slog.Logger

	activate sync.Once
	settled  <-chan struct{}
}

// NewView builds a view around an existing store.
func NewView(opts ViewOptions) (*View, error) {
	if opts.Store == nil {
		return nil, errors.New("analytics: view requires a store")
	}
	charts := opts.Charts
	if charts == nil {
		charts = NewEChartsRenderer()
	}
	modes := opts.Modes
	if modes == nil {
		modes = NewModeController(EChartsPerformanceRenderers(charts)...)
	}
	return &View{
		id:       opts.ID,
		store:    opts.Store,
		charts:   charts,
		modes:    modes,
		renderer: opts.Renderer,
		logger:   normalizeLogger(opts.Logger),
	}, nil
}

// ID returns the view identifier.
func (v *View) ID() string { return v.id }

// Store exposes the view's state owner.
func (v *View) Store() *Store { return v.store }

// Activate starts both dataset fetches. Only the first call fetches; every
// call returns the channel closed once that first attempt settled.
func (v *View) Activate(ctx context.Context) <-chan struct{} {
	settled, _ := v.activateOnce(ctx)
	return settled
}

// Refresh re-runs both fetches on explicit user request. On a view that was
// never activated it performs the activation fetch instead.
func (v *View) Refresh(ctx context.Context) <-chan struct{} {
	if settled, first := v.activateOnce(ctx); first {
		return settled
	}
	return v.store.BeginFetches(ctx)
}

func (v *View) activateOnce(ctx context.Context) (<-chan struct{}, bool) {
	first := false
	v.activate.Do(func() {
		first = true
		v.settled = v.store.BeginFetches(ctx)
	})
	return v.settled, first
}

// Model derives the view model from the current state.
func (v *View) Model() (ViewModel, error) {
	return v.Derive(v.store.Snapshot())
}

// Derive is a pure projection of state into panels and controls.
func (v *View) Derive(state ViewState) (ViewModel, error) {
	vm := ViewModel{
		ID:          v.id,
		Generation:  state.Generation,
		Exploratory: state.Exploratory.State,
		Performance: state.Performance.State,
		Mode:        state.Mode,
		Filters:     state.Filters.clone(),
		Controls:    deriveControls(state),
		Panels:      []Panel{},
	}
	if state.Exploratory.State == SlotFailed || state.Performance.State == SlotFailed {
		vm.Error = state.Error
	}
	if state.Exploratory.State == SlotPresent {
		panels, err := v.exploratoryPanels(state.Exploratory.Data, state.Filters)
		if err != nil {
			return ViewModel{}, err
		}
		vm.Panels = append(vm.Panels, panels...)
	}
	if state.Performance.State == SlotPresent {
		panel, err := v.performancePanel(state.Performance.Data, state.Mode)
		if err != nil {
			return ViewModel{}, err
		}
		vm.Panels = append(vm.Panels, panel)
	}
	return vm, nil
}

func (v *View) exploratoryPanels(ds ExploratoryDataset, filters FilterSelection) ([]Panel, error) {
	bedrooms, bathrooms := filters.Apply(ds)
	panels := make([]Panel, 0, 4)
	for _, dist := range []struct {
		key, title string
		entries    []DistributionEntry
	}{
		{PanelBedrooms, "Bedroom Distribution", bedrooms},
		{PanelBathrooms, "Bathroom Distribution", bathrooms},
	} {
		slices := ToCategoricalSlices(dist.entries)
		chart, err := v.charts.Pie(dist.title, slices)
		if err != nil {
			return nil, fmt.Errorf("analytics: render %s: %w", dist.key, err)
		}
		panels = append(panels, Panel{Key: dist.key, Title: dist.title, Kind: "pie", Chart: chart, Slices: slices})
	}

	sqft := ToScatterSeries(ds.SqftLotVsPrice)
	chart, err := v.charts.Scatter("Sqft Lot vs Price", Axes{X: "sqft_lot", Y: "price"}, xyPairs(sqft))
	if err != nil {
		return nil, fmt.Errorf("analytics: render %s: %w", PanelSqftLotVsPrice, err)
	}
	panels = append(panels, Panel{Key: PanelSqftLotVsPrice, Title: "Sqft Lot vs Price", Kind: "scatter", Chart: chart})

	floors := ToScatterSeries(ds.FloorsVsPrice)
	chart, err = v.charts.Line("Floors vs Price", Axes{X: "floors", Y: "price"}, xyPairs(floors))
	if err != nil {
		return nil, fmt.Errorf("analytics: render %s: %w", PanelFloorsVsPrice, err)
	}
	panels = append(panels, Panel{Key: PanelFloorsVsPrice, Title: "Floors vs Price", Kind: "line", Chart: chart})
	return panels, nil
}

func (v *View) performancePanel(ds ModelPerformanceDataset, mode ChartMode) (Panel, error) {
	const title = "Model Performance"
	series := ToPerformanceSeries(ds)
	chart, err := v.modes.Render(mode, title, series)
	if err != nil {
		return Panel{}, fmt.Errorf("analytics: render %s: %w", PanelModelPerformance, err)
	}
	grouped := ToGroupedSeries(series)
	return Panel{
		Key:     PanelModelPerformance,
		Title:   title,
		Kind:    string(mode),
		Chart:   chart,
		Grouped: &grouped,
	}, nil
}

func deriveControls(state ViewState) Controls {
	var bedroomValues, bathroomValues []int
	if state.Exploratory.State == SlotPresent {
		bedroomValues = FilterOptions(state.Exploratory.Data.BedroomDistribution)
		bathroomValues = FilterOptions(state.Exploratory.Data.BathroomDistribution)
	}
	modes := make([]Option, 0, 3)
	for _, mode := range ChartModes() {
		modes = append(modes, Option{
			Value:    string(mode),
			Label:    modeLabel(mode),
			Selected: mode == state.Mode,
		})
	}
	return Controls{
		Bedroom:  filterOptions(bedroomValues, state.Filters.Bedroom, "Bedrooms"),
		Bathroom: filterOptions(bathroomValues, state.Filters.Bathroom, "Bathrooms"),
		Mode:     modes,
	}
}

func filterOptions(values []int, selected *int, noun string) []Option {
	out := make([]Option, 0, len(values)+2)
	out = append(out, Option{Value: filterOptionAll, Label: "All " + noun, Selected: selected == nil})
	found := selected == nil
	for _, v := range values {
		match := selected != nil && *selected == v
		found = found || match
		out = append(out, Option{Value: strconv.Itoa(v), Label: strconv.Itoa(v), Selected: match})
	}
	// keep an active filter selectable even when the data no longer offers it
	if !found {
		out = append(out, Option{Value: strconv.Itoa(*selected), Label: strconv.Itoa(*selected), Selected: true})
	}
	return out
}

func modeLabel(mode ChartMode) string {
	switch mode {
	case ChartModeScatter:
		return "Scatter"
	case ChartModeLine:
		return "Line"
	case ChartModeBar:
		return "Bar"
	default:
		return string(mode)
	}
}

// ParseFilterValue reads a select value. Empty means no constraint.
func ParseFilterValue(value string) (*int, error) {
	if value == filterOptionAll {
		return nil, nil
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return nil, &ValidationError{Field: "filter", Message: fmt.Sprintf("invalid filter value %q", value), Err: err}
	}
	return &v, nil
}

// Render writes the named template with the current view model under "view".
// Extra values are passed through to the template.
func (v *View) Render(w io.Writer, name string, extra map[string]any) error {
	if v.renderer == nil {
		return errors.New("analytics: view renderer not configured")
	}
	vm, err := v.Model()
	if err != nil {
		return err
	}
	values := make(map[string]any, len(extra)+1)
	for k, val := range extra {
		values[k] = val
	}
	values["view"] = vm
	data, err := TemplateData(values)
	if err != nil {
		return err
	}
	if _, err := v.renderer.Render(name, data, w); err != nil {
		return fmt.Errorf("analytics: render template %s: %w", name, err)
	}
	return nil
}

// Close releases the view; in-flight fetch results are discarded.
func (v *View) Close() {
	v.store.Close()
}
