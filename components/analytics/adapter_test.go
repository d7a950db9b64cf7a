package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCategoricalSlicesCyclesPalette(t *testing.T) {
	dist := make([]DistributionEntry, 6)
	for i := range dist {
		dist[i] = DistributionEntry{Category: float64(i + 1), Count: float64(10 * (i + 1))}
	}
	slices := ToCategoricalSlices(dist)
	require.Len(t, slices, 6)
	for i, slice := range slices {
		assert.Equal(t, i%4, slice.ColorIndex)
		assert.Equal(t, dist[i].Count, slice.Value)
	}
	assert.Equal(t, "#0088FE", slices[4].Color())
	assert.Equal(t, "#00C49F", slices[5].Color())
}

func TestToCategoricalSlicesPrefersBackendLabel(t *testing.T) {
	slices := ToCategoricalSlices([]DistributionEntry{
		{Category: 4, Count: 7, Label: "4+ Bedrooms"},
		{Category: 2.5, Count: 3},
	})
	assert.Equal(t, "4+ Bedrooms", slices[0].Label)
	assert.Equal(t, "2.5", slices[1].Label)
}

func TestToCategoricalSlicesIsIdempotent(t *testing.T) {
	dist := sampleBedrooms()
	assert.Equal(t, ToCategoricalSlices(dist), ToCategoricalSlices(dist))
}

func scenarioPerformance() ModelPerformanceDataset {
	return NewModelPerformanceDataset(
		ModelPerformanceEntry{Model: "ridge", Metrics: ModelMetrics{MSE: 12000, R2: 0.81}},
		ModelPerformanceEntry{Model: "random_forest", Metrics: ModelMetrics{MSE: 9000, R2: 0.88}},
	)
}

func TestPerformanceSeriesRoundTrip(t *testing.T) {
	ds := scenarioPerformance()
	series := ToPerformanceSeries(ds)
	assert.Equal(t, []PerformancePoint{
		{Model: "ridge", MSE: 12000, R2: 0.81},
		{Model: "random_forest", MSE: 9000, R2: 0.88},
	}, series)
	assert.Equal(t, ds.Entries(), DatasetFromSeries(series).Entries())
}

func TestToGroupedSeriesMatchesSource(t *testing.T) {
	grouped := ToGroupedSeries(ToPerformanceSeries(scenarioPerformance()))
	assert.Equal(t, []string{"mse", "r2"}, grouped.Keys())
	assert.Equal(t, PerformanceSeriesKeys(), grouped.Keys())
	assert.Equal(t, []string{"ridge", "random_forest"}, grouped.Categories)
	assert.Equal(t, []float64{12000, 9000}, grouped.Series[0].Values)
	assert.Equal(t, []float64{0.81, 0.88}, grouped.Series[1].Values)
}

func TestToScatterSeriesPassesThrough(t *testing.T) {
	points := []SqftLotPoint{{SqftLot: 5000, Price: 400000}, {SqftLot: 7000, Price: 520000}}
	assert.Equal(t, points, ToScatterSeries(points))
}

func TestModelLabel(t *testing.T) {
	assert.Equal(t, "Ridge Regression", ModelLabel("ridge"))
	assert.Equal(t, "Random Forest", ModelLabel("random_forest"))
	assert.Equal(t, "Gradient Boosting", ModelLabel("gradient_boosting"))
}
