package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-estate-dashboard/components/analytics"
)

type filterService interface {
	SetFilters(ctx context.Context, req analytics.SetFiltersRequest) error
}

// SetFiltersCommand replaces the filter selection of a view.
type SetFiltersCommand struct {
	service   filterService
	telemetry Telemetry
}

// NewSetFiltersCommand creates a command instance.
func NewSetFiltersCommand(service filterService, telemetry Telemetry) *SetFiltersCommand {
	return &SetFiltersCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[analytics.SetFiltersRequest] = (*SetFiltersCommand)(nil)

// Execute delegates to the analytics service.
func (c *SetFiltersCommand) Execute(ctx context.Context, msg analytics.SetFiltersRequest) error {
	if c.service == nil {
		return errors.New("set filters command requires service")
	}
	if err := c.service.SetFilters(ctx, msg); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "analytics.command.set_filters", map[string]any{
		"view_id": msg.ViewID,
	})
	return nil
}
