package analytics

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

const (
	// MessageExploratoryFetchFailed is shown when the EDA fetch fails.
	MessageExploratoryFetchFailed = "Error fetching EDA data."
	// MessagePerformanceFetchFailed is shown when the model performance fetch fails.
	MessagePerformanceFetchFailed = "Error fetching model performance data."
)

// StateChange names the transition that produced a StateEvent.
type StateChange string

const (
	ChangeFetchBegin  StateChange = "fetch.begin"
	ChangeExploratory StateChange = "exploratory.resolved"
	ChangePerformance StateChange = "performance.resolved"
	ChangeFilters     StateChange = "filters"
	ChangeMode        StateChange = "mode"
)

// StateEvent is published after every state transition.
type StateEvent struct {
	Change StateChange
	State  ViewState
}

// StoreOptions configures a Store.
type StoreOptions struct {
	Source    DataSource
	Logger    *slog.Logger
	Telemetry Telemetry
}

// Store owns the state of a single analytics view.
type Store struct {
	source    DataSource
	logger    *slog.Logger
	telemetry Telemetry

	mu     sync.RWMutex
	state  ViewState
	closed bool
	subs   map[int]chan StateEvent
	next   int
}

// NewStore builds a store with both dataset slots absent.
func NewStore(opts StoreOptions) *Store {
	source := opts.Source
	if source == nil {
		source = missingSource{}
	}
	return &Store{
		source:    source,
		logger:    normalizeLogger(opts.Logger),
		telemetry: normalizeTelemetry(opts.Telemetry),
		state:     newViewState(),
		subs:      make(map[int]chan StateEvent),
	}
}

// BeginFetches moves both slots to loading and fetches the two datasets
// concurrently. Each fetch resolves only its own slot. The returned channel is
// closed once both fetches have settled. Issued fetches are not cancelled when
// ctx is; results that arrive after a newer attempt or after Close are dropped.
func (s *Store) BeginFetches(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(done)
		return done
	}
	s.state.Generation++
	generation := s.state.Generation
	s.state.Exploratory = DatasetSlot[ExploratoryDataset]{State: SlotLoading}
	s.state.Performance = DatasetSlot[ModelPerformanceDataset]{State: SlotLoading}
	s.state.Error = ""
	s.publishLocked(ChangeFetchBegin)
	s.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	s.telemetry.Record(ctx, "analytics.fetch.begin", map[string]any{"generation": generation})

	var group errgroup.Group
	group.Go(func() error {
		data, err := s.source.FetchExploratoryDataset(ctx)
		s.resolveExploratory(ctx, generation, data, err)
		return nil
	})
	group.Go(func() error {
		data, err := s.source.FetchModelPerformance(ctx)
		s.resolvePerformance(ctx, generation, data, err)
		return nil
	})
	go func() {
		_ = group.Wait()
		close(done)
	}()
	return done
}

func (s *Store) resolveExploratory(ctx context.Context, generation int, data ExploratoryDataset, err error) {
	s.mu.Lock()
	if !s.acceptLocked(generation) {
		s.mu.Unlock()
		s.logger.Debug("analytics: dropping stale exploratory result", "generation", generation)
		return
	}
	if err != nil {
		s.state.Exploratory = DatasetSlot[ExploratoryDataset]{State: SlotFailed, Err: err}
		s.state.Error = MessageExploratoryFetchFailed
	} else {
		s.state.Exploratory = DatasetSlot[ExploratoryDataset]{State: SlotPresent, Data: data}
	}
	s.publishLocked(ChangeExploratory)
	s.mu.Unlock()

	s.recordResolution(ctx, "exploratory", generation, err)
}

func (s *Store) resolvePerformance(ctx context.Context, generation int, data ModelPerformanceDataset, err error) {
	s.mu.Lock()
	if !s.acceptLocked(generation) {
		s.mu.Unlock()
		s.logger.Debug("analytics: dropping stale model performance result", "generation", generation)
		return
	}
	if err != nil {
		s.state.Performance = DatasetSlot[ModelPerformanceDataset]{State: SlotFailed, Err: err}
		s.state.Error = MessagePerformanceFetchFailed
	} else {
		s.state.Performance = DatasetSlot[ModelPerformanceDataset]{State: SlotPresent, Data: data}
	}
	s.publishLocked(ChangePerformance)
	s.mu.Unlock()

	s.recordResolution(ctx, "model_performance", generation, err)
}

func (s *Store) acceptLocked(generation int) bool {
	return !s.closed && generation == s.state.Generation
}

func (s *Store) recordResolution(ctx context.Context, dataset string, generation int, err error) {
	state := SlotPresent
	if err != nil {
		state = SlotFailed
		s.logger.Error("analytics: fetch failed", "dataset", dataset, "generation", generation, "error", err)
	}
	s.telemetry.Record(ctx, "analytics.fetch.resolved", map[string]any{
		"dataset":    dataset,
		"generation": generation,
		"state":      string(state),
	})
}

// SetBedroomFilter replaces the bedroom constraint. Nil clears it.
func (s *Store) SetBedroomFilter(value *int) {
	s.update(ChangeFilters, func(state *ViewState) {
		state.Filters.Bedroom = cloneInt(value)
	})
}

// SetBathroomFilter replaces the bathroom constraint. Nil clears it.
func (s *Store) SetBathroomFilter(value *int) {
	s.update(ChangeFilters, func(state *ViewState) {
		state.Filters.Bathroom = cloneInt(value)
	})
}

// SetChartMode switches the model performance rendering.
func (s *Store) SetChartMode(mode ChartMode) error {
	if !mode.Valid() {
		return &ValidationError{Field: "mode", Message: "unsupported chart mode " + string(mode)}
	}
	s.update(ChangeMode, func(state *ViewState) {
		state.Mode = mode
	})
	return nil
}

func (s *Store) update(change StateChange, fn func(*ViewState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	fn(&s.state)
	s.publishLocked(change)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() ViewState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe returns a channel of state events and a cancel func. Slow
// subscribers miss events; Snapshot always has the latest state.
func (s *Store) Subscribe() (<-chan StateEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan StateEvent, 16)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.next
	s.next++
	s.subs[id] = ch
	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (s *Store) publishLocked(change StateChange) {
	if len(s.subs) == 0 {
		return
	}
	event := StateEvent{Change: change, State: s.state.clone()}
	for _, ch := range s.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close detaches subscribers and discards results still in flight.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

type missingSource struct{}

func (missingSource) FetchExploratoryDataset(context.Context) (ExploratoryDataset, error) {
	return ExploratoryDataset{}, &NetworkError{Op: "fetch exploratory dataset", Err: errMissingSource}
}

func (missingSource) FetchModelPerformance(context.Context) (ModelPerformanceDataset, error) {
	return ModelPerformanceDataset{}, &NetworkError{Op: "fetch model performance", Err: errMissingSource}
}
