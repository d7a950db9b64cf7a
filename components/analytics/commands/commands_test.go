package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-estate-dashboard/components/analytics"
)

type stubService struct {
	filters   []analytics.SetFiltersRequest
	modes     []analytics.SetModeRequest
	refreshed []string
	closed    []string
	settled   chan struct{}
	err       error
}

func (s *stubService) SetFilters(_ context.Context, req analytics.SetFiltersRequest) error {
	s.filters = append(s.filters, req)
	return s.err
}

func (s *stubService) SetMode(_ context.Context, req analytics.SetModeRequest) error {
	s.modes = append(s.modes, req)
	return s.err
}

func (s *stubService) Refresh(_ context.Context, id string) (<-chan struct{}, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.refreshed = append(s.refreshed, id)
	return s.settled, nil
}

func (s *stubService) CloseView(_ context.Context, id string) error {
	s.closed = append(s.closed, id)
	return s.err
}

type stubTelemetry struct {
	events []string
}

func (s *stubTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	s.events = append(s.events, event)
}

func TestSetFiltersCommand(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	cmd := NewSetFiltersCommand(service, telemetry)
	bedroom := 2
	req := analytics.SetFiltersRequest{ViewID: "v1", Bedroom: &bedroom}
	if err := cmd.Execute(context.Background(), req); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(service.filters) != 1 || *service.filters[0].Bedroom != 2 {
		t.Fatalf("expected filters to be forwarded, got %+v", service.filters)
	}
	if len(telemetry.events) != 1 || telemetry.events[0] != "analytics.command.set_filters" {
		t.Fatalf("unexpected telemetry %v", telemetry.events)
	}
}

func TestSetFiltersCommandPropagatesError(t *testing.T) {
	service := &stubService{err: analytics.ErrViewNotFound}
	telemetry := &stubTelemetry{}
	cmd := NewSetFiltersCommand(service, telemetry)
	err := cmd.Execute(context.Background(), analytics.SetFiltersRequest{ViewID: "missing"})
	if !errors.Is(err, analytics.ErrViewNotFound) {
		t.Fatalf("expected ErrViewNotFound, got %v", err)
	}
	if len(telemetry.events) != 0 {
		t.Fatalf("expected no telemetry on failure")
	}
}

func TestSetChartModeCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewSetChartModeCommand(service, nil)
	if err := cmd.Execute(context.Background(), analytics.SetModeRequest{ViewID: "v1", Mode: "bar"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(service.modes) != 1 || service.modes[0].Mode != "bar" {
		t.Fatalf("expected mode call, got %+v", service.modes)
	}
}

func TestRefreshViewCommandWaitsForSettle(t *testing.T) {
	settled := make(chan struct{})
	service := &stubService{settled: settled}
	cmd := NewRefreshViewCommand(service, nil)

	done := make(chan error, 1)
	go func() {
		done <- cmd.Execute(context.Background(), RefreshViewInput{ViewID: "v1", Wait: true})
	}()
	select {
	case <-done:
		t.Fatalf("expected Execute to block until fetches settle")
	case <-time.After(20 * time.Millisecond):
	}
	close(settled)
	if err := <-done; err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
}

func TestRefreshViewCommandWithoutWait(t *testing.T) {
	service := &stubService{settled: make(chan struct{})}
	cmd := NewRefreshViewCommand(service, nil)
	if err := cmd.Execute(context.Background(), RefreshViewInput{ViewID: "v1"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(service.refreshed) != 1 {
		t.Fatalf("expected refresh call")
	}
}

func TestRefreshViewCommandHonoursContext(t *testing.T) {
	service := &stubService{settled: make(chan struct{})}
	cmd := NewRefreshViewCommand(service, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := cmd.Execute(ctx, RefreshViewInput{ViewID: "v1", Wait: true})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCloseViewCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewCloseViewCommand(service, nil)
	if err := cmd.Execute(context.Background(), CloseViewInput{ViewID: "v1"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(service.closed) != 1 || service.closed[0] != "v1" {
		t.Fatalf("expected close call, got %v", service.closed)
	}
}

func TestCommandsRequireService(t *testing.T) {
	ctx := context.Background()
	if err := NewSetFiltersCommand(nil, nil).Execute(ctx, analytics.SetFiltersRequest{}); err == nil {
		t.Fatalf("expected error without service")
	}
	if err := NewSetChartModeCommand(nil, nil).Execute(ctx, analytics.SetModeRequest{}); err == nil {
		t.Fatalf("expected error without service")
	}
	if err := NewRefreshViewCommand(nil, nil).Execute(ctx, RefreshViewInput{}); err == nil {
		t.Fatalf("expected error without service")
	}
	if err := NewCloseViewCommand(nil, nil).Execute(ctx, CloseViewInput{}); err == nil {
		t.Fatalf("expected error without service")
	}
}
