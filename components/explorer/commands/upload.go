package commands

import (
	"bytes"
	"context"
	"errors"
	"io"

	gocommand "github.com/goliatone/go-command"
	explorer "github.com/goliatone/go-datascope/components/explorer"
)

// UploadDatasetInput carries one uploaded file.
type UploadDatasetInput struct {
	FileName string
	Content  []byte
}

type uploader interface {
	Upload(ctx context.Context, fileName string, r io.Reader) (*explorer.Dataset, error)
}

// UploadDatasetCommand parses an upload and replaces the session
// dataset.
type UploadDatasetCommand struct {
	service   uploader
	telemetry Telemetry
}

// NewUploadDatasetCommand creates the command.
func NewUploadDatasetCommand(service uploader, telemetry Telemetry) *UploadDatasetCommand {
	return &UploadDatasetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UploadDatasetInput] = (*UploadDatasetCommand)(nil)

// Execute parses the payload; on parse failure nothing is replaced.
func (c *UploadDatasetCommand) Execute(ctx context.Context, msg UploadDatasetInput) error {
	if c.service == nil {
		return errors.New("upload command requires service")
	}
	if msg.FileName == "" {
		return errors.New("upload command requires a file name")
	}
	ds, err := c.service.Upload(ctx, msg.FileName, bytes.NewReader(msg.Content))
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "explorer.command.upload", map[string]any{
		"dataset_id": ds.ID,
		"file_name":  ds.FileName,
	})
	return nil
}
