package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	explorer "github.com/goliatone/go-datascope/components/explorer"
	"github.com/goliatone/go-datascope/components/explorer/commands"
	"github.com/goliatone/go-datascope/components/explorer/queries"
)

// Executor is the API surface transports mount: upload, clear, chart,
// report — all backed by shared commands/queries.
type Executor interface {
	Upload(ctx context.Context, input commands.UploadDatasetInput) error
	Clear(ctx context.Context, input commands.ClearDatasetInput) error
	Chart(ctx context.Context, req explorer.ChartRequest) (explorer.ChartResult, error)
	Report(ctx context.Context) (explorer.Report, error)
}

// CommandExecutor wires go-command commanders/queriers into an Executor.
type CommandExecutor struct {
	UploadCommander gocommand.Commander[commands.UploadDatasetInput]
	ClearCommander  gocommand.Commander[commands.ClearDatasetInput]
	ChartQuerier    gocommand.Querier[explorer.ChartRequest, explorer.ChartResult]
	ReportQuerier   gocommand.Querier[queries.ReportInput, explorer.Report]
}

// Upload executes the upload command.
func (e *CommandExecutor) Upload(ctx context.Context, input commands.UploadDatasetInput) error {
	if e.UploadCommander == nil {
		return errors.New("httpapi: upload commander not configured")
	}
	return e.UploadCommander.Execute(ctx, input)
}

// Clear executes the clear command.
func (e *CommandExecutor) Clear(ctx context.Context, input commands.ClearDatasetInput) error {
	if e.ClearCommander == nil {
		return errors.New("httpapi: clear commander not configured")
	}
	return e.ClearCommander.Execute(ctx, input)
}

// Chart runs the chart query.
func (e *CommandExecutor) Chart(ctx context.Context, req explorer.ChartRequest) (explorer.ChartResult, error) {
	if e.ChartQuerier == nil {
		return explorer.ChartResult{}, errors.New("httpapi: chart querier not configured")
	}
	return e.ChartQuerier.Query(ctx, req)
}

// Report runs the report query.
func (e *CommandExecutor) Report(ctx context.Context) (explorer.Report, error) {
	if e.ReportQuerier == nil {
		return explorer.Report{}, errors.New("httpapi: report querier not configured")
	}
	return e.ReportQuerier.Query(ctx, queries.ReportInput{})
}

// Handlers exposes net/http endpoints backed by the executor.
type Handlers struct {
	API            Executor
	MaxUploadBytes int64
}

// HandleUpload accepts a multipart upload and replaces the dataset.
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if h.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	input := commands.UploadDatasetInput{FileName: header.Filename, Content: content}
	if err := h.API.Upload(r.Context(), input); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// HandleClear drops the loaded dataset.
func (h *Handlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.API.Clear(r.Context(), commands.ClearDatasetInput{}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleChart renders one chart from a JSON chart request.
func (h *Handlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	var req explorer.ChartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := h.API.Chart(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, explorer.ErrNoDataset) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleReport returns the overview metrics and summaries as JSON.
func (h *Handlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.API.Report(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, explorer.ErrNoDataset) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
