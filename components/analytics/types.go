package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SlotState tracks the lifecycle of one fetched dataset.
type SlotState string

const (
	SlotAbsent  SlotState = "absent"
	SlotLoading SlotState = "loading"
	SlotPresent SlotState = "present"
	SlotFailed  SlotState = "failed"
)

// ChartMode selects the visualization family used for model performance.
type ChartMode string

const (
	ChartModeScatter ChartMode = "scatter"
	ChartModeLine    ChartMode = "line"
	ChartModeBar     ChartMode = "bar"
)

// DefaultChartMode is used until the viewer picks another one.
const DefaultChartMode = ChartModeScatter

// ChartModes lists the supported modes in display order.
func ChartModes() []ChartMode {
	return []ChartMode{ChartModeScatter, ChartModeLine, ChartModeBar}
}

// Valid reports whether the mode is one of the supported modes.
func (m ChartMode) Valid() bool {
	switch m {
	case ChartModeScatter, ChartModeLine, ChartModeBar:
		return true
	default:
		return false
	}
}

// ParseChartMode normalizes user input into a ChartMode.
func ParseChartMode(value string) (ChartMode, error) {
	mode := ChartMode(strings.ToLower(strings.TrimSpace(value)))
	if !mode.Valid() {
		return "", &ValidationError{Field: "mode", Message: fmt.Sprintf("unsupported chart mode %q", value)}
	}
	return mode, nil
}

// DistributionEntry is a single category of a distribution dataset.
type DistributionEntry struct {
	Category float64 `json:"category" yaml:"category"`
	Count    float64 `json:"count" yaml:"count"`
	Label    string  `json:"label,omitempty" yaml:"label,omitempty"`
}

// SqftLotPoint pairs a lot size with its sale price.
type SqftLotPoint struct {
	SqftLot float64 `json:"sqft_lot" yaml:"sqft_lot"`
	Price   float64 `json:"price" yaml:"price"`
}

// FloorsPoint pairs a floor count with its sale price.
type FloorsPoint struct {
	Floors float64 `json:"floors" yaml:"floors"`
	Price  float64 `json:"price" yaml:"price"`
}

// ExploratoryDataset carries the precomputed EDA payload.
type ExploratoryDataset struct {
	BedroomDistribution  []DistributionEntry `json:"bedroom_distribution" yaml:"bedroom_distribution"`
	BathroomDistribution []DistributionEntry `json:"bathroom_distribution" yaml:"bathroom_distribution"`
	SqftLotVsPrice       []SqftLotPoint      `json:"sqft_lot_vs_price" yaml:"sqft_lot_vs_price"`
	FloorsVsPrice        []FloorsPoint       `json:"floors_vs_price" yaml:"floors_vs_price"`
}

// ModelMetrics holds the evaluation scores of a single model.
type ModelMetrics struct {
	MSE float64 `json:"mse" yaml:"mse"`
	R2  float64 `json:"r2" yaml:"r2"`
}

// ModelPerformanceEntry is a model id with its metrics.
type ModelPerformanceEntry struct {
	Model   string       `json:"model" yaml:"model"`
	Metrics ModelMetrics `json:"metrics" yaml:"metrics"`
}

// ModelPerformanceDataset maps model ids to metrics while keeping the order
// the backend sent them in.
type ModelPerformanceDataset struct {
	order   []string
	metrics map[string]ModelMetrics
}

// NewModelPerformanceDataset builds a dataset from ordered entries. A repeated
// model keeps its first position and its last metrics.
func NewModelPerformanceDataset(entries ...ModelPerformanceEntry) ModelPerformanceDataset {
	ds := ModelPerformanceDataset{}
	for _, entry := range entries {
		ds.set(entry.Model, entry.Metrics)
	}
	return ds
}

func (d *ModelPerformanceDataset) set(model string, metrics ModelMetrics) {
	if d.metrics == nil {
		d.metrics = make(map[string]ModelMetrics)
	}
	if _, ok := d.metrics[model]; !ok {
		d.order = append(d.order, model)
	}
	d.metrics[model] = metrics
}

// Len returns the number of models.
func (d ModelPerformanceDataset) Len() int {
	return len(d.order)
}

// Models returns the model ids in dataset order.
func (d ModelPerformanceDataset) Models() []string {
	return append([]string(nil), d.order...)
}

// Metrics looks up the metrics for a model.
func (d ModelPerformanceDataset) Metrics(model string) (ModelMetrics, bool) {
	m, ok := d.metrics[model]
	return m, ok
}

// Entries returns the dataset as ordered entries.
func (d ModelPerformanceDataset) Entries() []ModelPerformanceEntry {
	out := make([]ModelPerformanceEntry, len(d.order))
	for i, model := range d.order {
		out[i] = ModelPerformanceEntry{Model: model, Metrics: d.metrics[model]}
	}
	return out
}

// AsMap copies the dataset into a plain map. Order is lost.
func (d ModelPerformanceDataset) AsMap() map[string]ModelMetrics {
	out := make(map[string]ModelMetrics, len(d.metrics))
	for k, v := range d.metrics {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the dataset as an object with keys in dataset order.
func (d ModelPerformanceDataset) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, model := range d.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(model)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(d.metrics[model])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keyed by model id, preserving key order.
func (d *ModelPerformanceDataset) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*d = ModelPerformanceDataset{}
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("analytics: decode model performance: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("analytics: model performance must be an object, got %v", tok)
	}
	out := ModelPerformanceDataset{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("analytics: decode model performance key: %w", err)
		}
		model, ok := tok.(string)
		if !ok {
			return fmt.Errorf("analytics: unexpected model performance key %v", tok)
		}
		var metrics ModelMetrics
		if err := dec.Decode(&metrics); err != nil {
			return fmt.Errorf("analytics: decode metrics for %s: %w", model, err)
		}
		out.set(model, metrics)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("analytics: decode model performance: %w", err)
	}
	*d = out
	return nil
}

// FilterSelection constrains the distribution panels. Nil means no constraint.
type FilterSelection struct {
	Bedroom  *int `json:"bedroom,omitempty"`
	Bathroom *int `json:"bathroom,omitempty"`
}

// FilterValue returns a filter constraint for v.
func FilterValue(v int) *int {
	return &v
}

func (f FilterSelection) clone() FilterSelection {
	return FilterSelection{Bedroom: cloneInt(f.Bedroom), Bathroom: cloneInt(f.Bathroom)}
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

// DatasetSlot holds one dataset and where it is in its fetch lifecycle.
type DatasetSlot[T any] struct {
	State SlotState
	Data  T
	Err   error
}

// ViewState is everything a view needs to redraw its panels.
type ViewState struct {
	Exploratory DatasetSlot[ExploratoryDataset]
	Performance DatasetSlot[ModelPerformanceDataset]
	Filters     FilterSelection
	Mode        ChartMode
	Error       string
	Generation  int
}

func newViewState() ViewState {
	return ViewState{
		Exploratory: DatasetSlot[ExploratoryDataset]{State: SlotAbsent},
		Performance: DatasetSlot[ModelPerformanceDataset]{State: SlotAbsent},
		Mode:        DefaultChartMode,
	}
}

// clone copies the mutable parts. Dataset payloads are replaced wholesale and
// never mutated, so they are shared.
func (s ViewState) clone() ViewState {
	out := s
	out.Filters = s.Filters.clone()
	return out
}
