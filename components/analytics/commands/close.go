package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// CloseViewInput identifies the view to release.
type CloseViewInput struct {
	ViewID string `json:"view_id"`
}

type closeService interface {
	CloseView(ctx context.Context, id string) error
}

// CloseViewCommand releases a view and discards its in-flight fetches.
type CloseViewCommand struct {
	service   closeService
	telemetry Telemetry
}

// NewCloseViewCommand creates the command.
func NewCloseViewCommand(service closeService, telemetry Telemetry) *CloseViewCommand {
	return &CloseViewCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[CloseViewInput] = (*CloseViewCommand)(nil)

// Execute delegates to the analytics service.
func (c *CloseViewCommand) Execute(ctx context.Context, msg CloseViewInput) error {
	if c.service == nil {
		return errors.New("close view command requires service")
	}
	if err := c.service.CloseView(ctx, msg.ViewID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "analytics.command.close_view", map[string]any{
		"view_id": msg.ViewID,
	})
	return nil
}
