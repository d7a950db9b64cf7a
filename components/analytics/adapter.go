package analytics

import (
	"strconv"
	"strings"

	"github.com/ettle/strcase"
)

// CategoricalPalette is assigned to slices by position, cycling.
var CategoricalPalette = [...]string{"#0088FE", "#00C49F", "#FFBB28", "#FF8042"}

const (
	seriesKeyMSE = "mse"
	seriesKeyR2  = "r2"
)

// PerformanceSeriesKeys returns the metric keys plotted per model, in order.
func PerformanceSeriesKeys() []string {
	return []string{seriesKeyMSE, seriesKeyR2}
}

// CategoricalSlice is one pie slice.
type CategoricalSlice struct {
	Label      string  `json:"label"`
	Value      float64 `json:"value"`
	ColorIndex int     `json:"color_index"`
}

// Color resolves the palette entry of the slice.
func (s CategoricalSlice) Color() string {
	return CategoricalPalette[s.ColorIndex%len(CategoricalPalette)]
}

// DisplayLabel prefers the backend label and falls back to the category.
func (e DistributionEntry) DisplayLabel() string {
	if label := strings.TrimSpace(e.Label); label != "" {
		return label
	}
	return strconv.FormatFloat(e.Category, 'f', -1, 64)
}

// ToCategoricalSlices maps a distribution to pie slices colored by position.
func ToCategoricalSlices(dist []DistributionEntry) []CategoricalSlice {
	out := make([]CategoricalSlice, len(dist))
	for i, entry := range dist {
		out[i] = CategoricalSlice{
			Label:      entry.DisplayLabel(),
			Value:      entry.Count,
			ColorIndex: i % len(CategoricalPalette),
		}
	}
	return out
}

// PerformancePoint is one model row of the performance series.
type PerformancePoint struct {
	Model string  `json:"model"`
	MSE   float64 `json:"mse"`
	R2    float64 `json:"r2"`
}

// ToPerformanceSeries flattens the dataset in its own order.
func ToPerformanceSeries(ds ModelPerformanceDataset) []PerformancePoint {
	out := make([]PerformancePoint, 0, ds.Len())
	for _, entry := range ds.Entries() {
		out = append(out, PerformancePoint{
			Model: entry.Model,
			MSE:   entry.Metrics.MSE,
			R2:    entry.Metrics.R2,
		})
	}
	return out
}

// DatasetFromSeries rebuilds a dataset from a performance series.
func DatasetFromSeries(series []PerformancePoint) ModelPerformanceDataset {
	entries := make([]ModelPerformanceEntry, len(series))
	for i, point := range series {
		entries[i] = ModelPerformanceEntry{
			Model:   point.Model,
			Metrics: ModelMetrics{MSE: point.MSE, R2: point.R2},
		}
	}
	return NewModelPerformanceDataset(entries...)
}

// ToScatterSeries passes bivariate points through untouched.
func ToScatterSeries[P any](pairs []P) []P {
	return pairs
}

// NamedSeries is one metric plotted across every category.
type NamedSeries struct {
	Key    string    `json:"key"`
	Values []float64 `json:"values"`
}

// GroupedSeries lays the performance series out per metric, one category per model.
type GroupedSeries struct {
	Categories []string      `json:"categories"`
	Series     []NamedSeries `json:"series"`
}

// Keys returns the series keys in order.
func (g GroupedSeries) Keys() []string {
	keys := make([]string, len(g.Series))
	for i, s := range g.Series {
		keys[i] = s.Key
	}
	return keys
}

// ToGroupedSeries pivots the performance series into metric series keyed by model.
func ToGroupedSeries(series []PerformancePoint) GroupedSeries {
	grouped := GroupedSeries{
		Categories: make([]string, len(series)),
		Series: []NamedSeries{
			{Key: seriesKeyMSE, Values: make([]float64, len(series))},
			{Key: seriesKeyR2, Values: make([]float64, len(series))},
		},
	}
	for i, point := range series {
		grouped.Categories[i] = point.Model
		grouped.Series[0].Values[i] = point.MSE
		grouped.Series[1].Values[i] = point.R2
	}
	return grouped
}

var modelLabels = map[string]string{
	string(ModelRidge):        "Ridge Regression",
	string(ModelDecisionTree): "Decision Tree",
	string(ModelRandomForest): "Random Forest",
}

// ModelLabel returns the display name of a model id.
func ModelLabel(model string) string {
	if label, ok := modelLabels[model]; ok {
		return label
	}
	return strcase.ToCase(model, strcase.TitleCase, ' ')
}
