package explorer

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Options configures the explorer Service. Every collaborator is
// provided via interface so applications can swap implementations.
type Options struct {
	Store       DatasetStore
	Providers   *Registry
	Validator   RequestValidator
	Telemetry   Telemetry
	VizRowLimit int
	PreviewRows int
}

// Service orchestrates the upload → overview → selection → chart flow.
type Service struct {
	opts Options
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Store == nil {
		opts.Store = NewInMemoryDatasetStore()
	}
	if opts.Providers == nil {
		opts.Providers = NewRegistry()
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.VizRowLimit <= 0 {
		opts.VizRowLimit = DefaultVizRowLimit
	}
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = DefaultPreviewRows
	}
	return &Service{opts: opts}
}

// DatasetInfo describes the loaded dataset for transports and tooling.
type DatasetInfo struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	FileName   string    `json:"file_name"`
	Rows       int       `json:"rows"`
	Cols       int       `json:"cols"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Report bundles the overview metrics and all three summary views.
type Report struct {
	Dataset     DatasetInfo          `json:"dataset"`
	Overview    Overview             `json:"overview"`
	Schema      []ColumnSchema       `json:"schema"`
	Numeric     []NumericSummary     `json:"numeric"`
	Categorical []CategoricalSummary `json:"categorical"`
}

// ChartResult is one rendered chart plus the request it derived from.
type ChartResult struct {
	Kind    ChartKind    `json:"kind"`
	Title   string       `json:"title"`
	HTML    string       `json:"html"`
	Request ChartRequest `json:"request"`
}

// Upload parses the file and replaces the current dataset. On parse
// failure nothing is replaced and the error is returned for display.
func (s *Service) Upload(ctx context.Context, fileName string, r io.Reader) (*Dataset, error) {
	ds, err := ParseUpload(fileName, r)
	if err != nil {
		s.opts.Telemetry.Record(ctx, "explorer.upload.failed", map[string]any{
			"file_name": fileName,
			"error":     err.Error(),
		})
		return nil, err
	}
	if err := s.opts.Store.Replace(ctx, ds); err != nil {
		return nil, err
	}
	s.opts.Telemetry.Record(ctx, "explorer.upload", map[string]any{
		"dataset_id": ds.ID,
		"file_name":  ds.FileName,
		"rows":       ds.Rows(),
		"cols":       ds.Cols(),
	})
	return ds, nil
}

// Current returns the loaded dataset or ErrNoDataset.
func (s *Service) Current(ctx context.Context) (*Dataset, error) {
	return s.opts.Store.Current(ctx)
}

// Clear drops the loaded dataset.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.opts.Store.Clear(ctx); err != nil {
		return err
	}
	s.opts.Telemetry.Record(ctx, "explorer.dataset.clear", nil)
	return nil
}

// Preview returns the first preview rows across all columns.
func (s *Service) Preview(ctx context.Context) (Selection, error) {
	ds, err := s.Current(ctx)
	if err != nil {
		return Selection{}, err
	}
	head := ds.Head(s.opts.PreviewRows)
	return Selection{Columns: ds.Columns(), Rows: head, RowCount: len(head)}, nil
}

// Overview computes the headline metrics for the loaded dataset.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	ds, err := s.Current(ctx)
	if err != nil {
		return Overview{}, err
	}
	return Summarize(ds), nil
}

// Report assembles the overview plus all summary views.
func (s *Service) Report(ctx context.Context) (Report, error) {
	ds, err := s.Current(ctx)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Dataset: DatasetInfo{
			ID:         ds.ID,
			Code:       ds.Code,
			FileName:   ds.FileName,
			Rows:       ds.Rows(),
			Cols:       ds.Cols(),
			UploadedAt: ds.UploadedAt,
		},
		Overview:    Summarize(ds),
		Schema:      Schema(ds),
		Numeric:     DescribeNumeric(ds),
		Categorical: DescribeCategorical(ds),
	}, nil
}

// SelectColumns builds the column-selection table.
func (s *Service) SelectColumns(ctx context.Context, names []string, rows int) (Selection, error) {
	ds, err := s.Current(ctx)
	if err != nil {
		return Selection{}, err
	}
	return SelectColumns(ds, names, rows)
}

// AggregationOptions lists the modes available for an axis pair.
func (s *Service) AggregationOptions(x, y string) []AggregationMode {
	return AggregationOptions(x, y)
}

// RenderChart validates the request, derives the visualization subset,
// and renders it through the registered provider for the chart kind.
func (s *Service) RenderChart(ctx context.Context, req ChartRequest) (ChartResult, error) {
	if err := s.opts.Validator.Validate(req.Normalize()); err != nil {
		return ChartResult{}, err
	}
	ds, err := s.Current(ctx)
	if err != nil {
		return ChartResult{}, err
	}
	frame, err := BuildFrame(ds, req, s.opts.VizRowLimit)
	if err != nil {
		return ChartResult{}, err
	}
	provider, ok := s.opts.Providers.Provider(req.Kind)
	if !ok {
		return ChartResult{}, fmt.Errorf("explorer: no provider for chart kind %q", req.Kind)
	}
	html, err := provider.Render(ctx, ChartView{
		DatasetID: ds.ID,
		Request:   req.Normalize(),
		Frame:     frame,
	})
	if err != nil {
		return ChartResult{}, err
	}
	s.opts.Telemetry.Record(ctx, "explorer.chart.render", map[string]any{
		"dataset_id": ds.ID,
		"kind":       string(req.Kind),
		"aggregate":  string(frame.Aggregate),
		"rows":       frame.Len(),
	})
	return ChartResult{
		Kind:    req.Kind,
		Title:   ChartTitle(req.Kind, frame),
		HTML:    html,
		Request: req.Normalize(),
	}, nil
}

// VizRowLimit exposes the configured subset limit for the page view.
func (s *Service) VizRowLimit() int { return s.opts.VizRowLimit }
