package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// ClearDatasetInput drops the session dataset.
type ClearDatasetInput struct{}

type clearer interface {
	Clear(ctx context.Context) error
}

// ClearDatasetCommand removes the loaded dataset.
type ClearDatasetCommand struct {
	service   clearer
	telemetry Telemetry
}

// NewClearDatasetCommand creates the command.
func NewClearDatasetCommand(service clearer, telemetry Telemetry) *ClearDatasetCommand {
	return &ClearDatasetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ClearDatasetInput] = (*ClearDatasetCommand)(nil)

// Execute drops the dataset.
func (c *ClearDatasetCommand) Execute(ctx context.Context, _ ClearDatasetInput) error {
	if c.service == nil {
		return errors.New("clear command requires service")
	}
	if err := c.service.Clear(ctx); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "explorer.command.clear", nil)
	return nil
}
