package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-estate-dashboard/components/analytics"
)

type modeService interface {
	SetMode(ctx context.Context, req analytics.SetModeRequest) error
}

// SetChartModeCommand switches how model performance is drawn.
type SetChartModeCommand struct {
	service   modeService
	telemetry Telemetry
}

// NewSetChartModeCommand creates the command.
func NewSetChartModeCommand(service modeService, telemetry Telemetry) *SetChartModeCommand {
	return &SetChartModeCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[analytics.SetModeRequest] = (*SetChartModeCommand)(nil)

// Execute validates and applies the mode.
func (c *SetChartModeCommand) Execute(ctx context.Context, msg analytics.SetModeRequest) error {
	if c.service == nil {
		return errors.New("set chart mode command requires service")
	}
	if err := c.service.SetMode(ctx, msg); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "analytics.command.set_mode", map[string]any{
		"view_id": msg.ViewID,
		"mode":    msg.Mode,
	})
	return nil
}
