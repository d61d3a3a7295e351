package explorer

import (
	"context"
	"errors"
	"io"
)

// PageState carries the widget values of one render cycle, decoded from
// the incoming request. The whole page is re-derived from these values
// on every cycle.
type PageState struct {
	SelectedColumns []string
	RowCount        int
	XAxis           string
	YAxis           string
	Aggregate       AggregationMode
	AllRows         bool
	ChartKind       ChartKind // empty means no chart was requested
	UploadError     string
}

// ControllerOptions wires the service and renderer into a controller.
type ControllerOptions struct {
	Service  *Service
	Renderer Renderer
	BasePath string
}

// Controller composes the single-page view model and renders it.
type Controller struct {
	service  *Service
	renderer Renderer
	basePath string
}

// NewController builds a controller, defaulting to the embedded
// template renderer.
func NewController(opts ControllerOptions) (*Controller, error) {
	if opts.Service == nil {
		return nil, errors.New("explorer: controller requires a service")
	}
	if opts.Renderer == nil {
		renderer, err := NewTemplateRenderer()
		if err != nil {
			return nil, err
		}
		opts.Renderer = renderer
	}
	if opts.BasePath == "" {
		opts.BasePath = "/explore"
	}
	return &Controller{
		service:  opts.Service,
		renderer: opts.Renderer,
		basePath: opts.BasePath,
	}, nil
}

// RenderPage renders the dashboard page for the given widget state.
func (c *Controller) RenderPage(ctx context.Context, state PageState, out io.Writer) error {
	payload, err := c.PagePayload(ctx, state)
	if err != nil {
		return err
	}
	_, err = c.renderer.Render("explorer", payload, out)
	return err
}

// PagePayload builds the template data for one render cycle. Without a
// dataset only the upload panel is populated; with one, every section
// is re-derived from the current widget state.
func (c *Controller) PagePayload(ctx context.Context, state PageState) (map[string]any, error) {
	payload := map[string]any{
		"base_path":    c.basePath,
		"accept":       AcceptedExtensions,
		"upload_error": state.UploadError,
		"has_dataset":  false,
	}

	ds, err := c.service.Current(ctx)
	if errors.Is(err, ErrNoDataset) {
		return payload, nil
	}
	if err != nil {
		return nil, err
	}

	report, err := c.service.Report(ctx)
	if err != nil {
		return nil, err
	}
	preview, err := c.service.Preview(ctx)
	if err != nil {
		return nil, err
	}
	selection, err := c.service.SelectColumns(ctx, state.SelectedColumns, state.RowCount)
	if err != nil {
		return nil, err
	}

	x, y := state.XAxis, state.YAxis
	if x == "" {
		x = ds.Columns()[0]
	}
	if y == "" {
		y = ds.Columns()[0]
	}
	aggOptions := c.service.AggregationOptions(x, y)
	aggregate := ChartRequest{XAxis: x, YAxis: y, Aggregate: state.Aggregate}.Normalize().Aggregate

	payload["has_dataset"] = true
	payload["dataset"] = report.Dataset
	payload["overview"] = report.Overview
	payload["schema"] = report.Schema
	payload["numeric"] = report.Numeric
	payload["categorical"] = report.Categorical
	payload["preview"] = preview
	payload["selection"] = selection
	payload["selected_columns"] = state.SelectedColumns
	payload["columns"] = ds.Columns()
	payload["row_min"] = MinSelectionRows
	payload["row_max"] = maxSelectableRows(ds.Rows())
	payload["row_count"] = ClampRowCount(state.RowCount, ds.Rows())
	payload["viz"] = map[string]any{
		"x":           x,
		"y":           y,
		"aggregate":   string(aggregate),
		"agg_options": aggOptions,
		"all_rows":    state.AllRows,
		"row_limit":   c.service.VizRowLimit(),
		"kinds":       ChartKinds(),
		"forced_raw":  x == y,
	}

	// Charts render only on an explicit trigger, never from stale state.
	if state.ChartKind != "" {
		result, err := c.service.RenderChart(ctx, ChartRequest{
			XAxis:     x,
			YAxis:     y,
			Aggregate: aggregate,
			Kind:      state.ChartKind,
			AllRows:   state.AllRows,
		})
		if err != nil {
			payload["chart_error"] = err.Error()
		} else {
			payload["chart"] = map[string]any{
				"kind":  string(result.Kind),
				"title": result.Title,
				"html":  result.HTML,
			}
		}
	}
	return payload, nil
}

func maxSelectableRows(rows int) int {
	if rows > MaxSelectionRows {
		return MaxSelectionRows
	}
	if rows < MinSelectionRows {
		return MinSelectionRows
	}
	return rows
}
