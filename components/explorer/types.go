package explorer

import "context"

// AggregationMode selects how Y values are reduced per distinct X value.
type AggregationMode string

const (
	AggregationRaw     AggregationMode = "raw"
	AggregationSum     AggregationMode = "sum"
	AggregationAverage AggregationMode = "average"
)

// Label returns the display form used in chart titles and option lists.
func (m AggregationMode) Label() string {
	switch m {
	case AggregationSum:
		return "Sum"
	case AggregationAverage:
		return "Average"
	default:
		return "Raw"
	}
}

// ChartKind identifies one of the supported chart renderers.
type ChartKind string

const (
	ChartLine    ChartKind = "line"
	ChartScatter ChartKind = "scatter"
	ChartBar     ChartKind = "bar"
	ChartPie     ChartKind = "pie"
)

// ChartKinds returns the supported kinds in display order.
func ChartKinds() []ChartKind {
	return []ChartKind{ChartLine, ChartScatter, ChartBar, ChartPie}
}

// ChartRequest captures the widget state behind a single chart render.
// It is rebuilt from the current control values on every interaction and
// never stored.
type ChartRequest struct {
	XAxis     string          `json:"x_axis"`
	YAxis     string          `json:"y_axis"`
	Aggregate AggregationMode `json:"aggregate,omitempty"`
	Kind      ChartKind       `json:"kind"`
	AllRows   bool            `json:"all_rows,omitempty"`
}

// Normalize applies the aggregation invariant: grouping a column by
// itself is disallowed, so identical axes force Raw. An empty mode also
// defaults to Raw.
func (r ChartRequest) Normalize() ChartRequest {
	if r.Aggregate == "" || r.XAxis == r.YAxis {
		r.Aggregate = AggregationRaw
	}
	return r
}

// DatasetStore holds the dataset for the active session. Implementations
// ensure thread safety; the dataset is replaced wholesale on each upload
// and never persisted.
type DatasetStore interface {
	Replace(ctx context.Context, ds *Dataset) error
	Current(ctx context.Context) (*Dataset, error)
	Clear(ctx context.Context) error
}

// ChartProvider renders chart HTML for a prepared visualization frame.
type ChartProvider interface {
	Render(ctx context.Context, view ChartView) (string, error)
}

// ChartProviderFunc adapts a function to the ChartProvider interface.
type ChartProviderFunc func(ctx context.Context, view ChartView) (string, error)

// Render implements ChartProvider.
func (f ChartProviderFunc) Render(ctx context.Context, view ChartView) (string, error) {
	return f(ctx, view)
}

// ChartView bundles everything a provider needs for one render.
type ChartView struct {
	DatasetID string
	Request   ChartRequest
	Frame     VizFrame
}

// RequestValidator validates chart requests arriving over transports.
type RequestValidator interface {
	Validate(req ChartRequest) error
}
