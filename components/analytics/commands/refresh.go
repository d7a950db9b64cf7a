package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// RefreshViewInput re-runs the fetches of a view.
type RefreshViewInput struct {
	ViewID string `json:"view_id"`
	// Wait blocks until both fetches settled or ctx is done.
	Wait bool `json:"wait"`
}

type refreshService interface {
	Refresh(ctx context.Context, id string) (<-chan struct{}, error)
}

// RefreshViewCommand re-triggers both dataset fetches.
type RefreshViewCommand struct {
	service   refreshService
	telemetry Telemetry
}

// NewRefreshViewCommand creates the command.
func NewRefreshViewCommand(service refreshService, telemetry Telemetry) *RefreshViewCommand {
	return &RefreshViewCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshViewInput] = (*RefreshViewCommand)(nil)

// Execute starts the fetches and optionally waits for them.
func (c *RefreshViewCommand) Execute(ctx context.Context, msg RefreshViewInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	settled, err := c.service.Refresh(ctx, msg.ViewID)
	if err != nil {
		return err
	}
	if msg.Wait {
		select {
		case <-settled:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.telemetry.Record(ctx, "analytics.command.refresh", map[string]any{
		"view_id": msg.ViewID,
	})
	return nil
}
