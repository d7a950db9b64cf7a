package analytics

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-estate-dashboard/internal/testutil"
)

type stubClient struct {
	staticSource
	stubPredictor
	prices []HousePrice
}

func (c *stubClient) FetchHousePrices(ctx context.Context) ([]HousePrice, error) {
	return c.prices, nil
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingTelemetry) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

func newTestService(t *testing.T) (*Service, *stubClient, *recordingTelemetry) {
	t.Helper()
	client := &stubClient{
		staticSource:  staticSource{exploratory: scenarioExploratory(), performance: scenarioPerformance()},
		stubPredictor: stubPredictor{result: PredictionResult{PredictedPrice: 452317.89}},
		prices:        []HousePrice{{Latitude: 47.6, Longitude: -122.3, Price: 950000}},
	}
	telemetry := &recordingTelemetry{}
	svc := NewService(Options{
		Source:    client,
		Logger:    testutil.NewTestLogger(t),
		Telemetry: telemetry,
	})
	t.Cleanup(svc.Close)
	return svc, client, telemetry
}

func TestServiceOpenViewFetchesBothDatasets(t *testing.T) {
	svc, _, telemetry := newTestService(t)

	view, err := svc.OpenView(context.Background())
	require.NoError(t, err)
	waitSettled(t, view.Activate(context.Background()))

	vm, err := svc.ViewModel(view.ID())
	require.NoError(t, err)
	assert.Equal(t, SlotPresent, vm.Exploratory)
	assert.Equal(t, SlotPresent, vm.Performance)
	assert.Len(t, vm.Panels, 5)
	assert.True(t, telemetry.has("analytics.view.open"))
	assert.True(t, telemetry.has("analytics.fetch.resolved"))
}

func TestServiceViewsAreIsolated(t *testing.T) {
	svc, _, _ := newTestService(t)

	a, err := svc.OpenView(context.Background())
	require.NoError(t, err)
	b, err := svc.OpenView(context.Background())
	require.NoError(t, err)
	waitSettled(t, a.Activate(context.Background()))
	waitSettled(t, b.Activate(context.Background()))

	require.NoError(t, svc.SetFilters(context.Background(), SetFiltersRequest{ViewID: a.ID(), Bedroom: FilterValue(2)}))

	vmA, _ := svc.ViewModel(a.ID())
	vmB, _ := svc.ViewModel(b.ID())
	require.NotNil(t, vmA.Filters.Bedroom)
	assert.Nil(t, vmB.Filters.Bedroom)
}

func TestServiceSetFiltersReplacesBothConstraints(t *testing.T) {
	svc, client, telemetry := newTestService(t)
	view, err := svc.OpenView(context.Background())
	require.NoError(t, err)
	waitSettled(t, view.Activate(context.Background()))
	calls := client.staticSource.calls.Load()

	req := SetFiltersRequest{ViewID: view.ID(), Bedroom: FilterValue(3), Bathroom: FilterValue(1)}
	require.NoError(t, svc.SetFilters(context.Background(), req))
	require.NoError(t, svc.SetFilters(context.Background(), SetFiltersRequest{ViewID: view.ID(), Bathroom: FilterValue(2)}))

	filters := view.Store().Snapshot().Filters
	assert.Nil(t, filters.Bedroom)
	assert.Equal(t, 2, *filters.Bathroom)
	assert.Equal(t, calls, client.staticSource.calls.Load())
	assert.True(t, telemetry.has("analytics.filters.set"))
}

func TestServiceSetMode(t *testing.T) {
	svc, _, _ := newTestService(t)
	view, err := svc.OpenView(context.Background())
	require.NoError(t, err)

	require.NoError(t, svc.SetMode(context.Background(), SetModeRequest{ViewID: view.ID(), Mode: "LINE"}))
	assert.Equal(t, ChartModeLine, view.Store().Snapshot().Mode)

	err = svc.SetMode(context.Background(), SetModeRequest{ViewID: view.ID(), Mode: "pie"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, ChartModeLine, view.Store().Snapshot().Mode)
}

func TestServiceUnknownAndMissingViews(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.View("")
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.SetFilters(context.Background(), SetFiltersRequest{ViewID: "nope"})
	assert.ErrorIs(t, err, ErrViewNotFound)

	_, err = svc.Refresh(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrViewNotFound)

	assert.ErrorIs(t, svc.CloseView(context.Background(), ""), ErrValidation)
}

func TestServiceCloseViewReleasesIt(t *testing.T) {
	svc, _, telemetry := newTestService(t)
	view, err := svc.OpenView(context.Background())
	require.NoError(t, err)
	waitSettled(t, view.Activate(context.Background()))

	require.NoError(t, svc.CloseView(context.Background(), view.ID()))
	_, err = svc.View(view.ID())
	assert.ErrorIs(t, err, ErrViewNotFound)
	assert.True(t, telemetry.has("analytics.view.close"))
}

func TestServiceRefresh(t *testing.T) {
	svc, _, _ := newTestService(t)
	view, err := svc.OpenView(context.Background())
	require.NoError(t, err)
	waitSettled(t, view.Activate(context.Background()))

	done, err := svc.Refresh(context.Background(), view.ID())
	require.NoError(t, err)
	waitSettled(t, done)
	assert.Equal(t, 2, view.Store().Snapshot().Generation)
}

func TestServicePredictUsesSourceAsPredictor(t *testing.T) {
	svc, client, _ := newTestService(t)

	outcome := svc.Predict(context.Background(), validPrediction())
	assert.Equal(t, "Predicted Price: $452317.89", outcome.Message)
	assert.Equal(t, 1, client.stubPredictor.calls())
}

func TestServiceHousePrices(t *testing.T) {
	svc, _, _ := newTestService(t)

	markers, err := svc.HousePrices(context.Background())
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, PriceBandHigh, markers[0].Band)

	bare := NewService(Options{Source: &staticSource{}})
	defer bare.Close()
	_, err = bare.HousePrices(context.Background())
	assert.ErrorIs(t, err, errMissingHousePrices)
}
