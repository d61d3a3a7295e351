package explorer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "420px"

var sharedChartCache = NewChartCache(5 * time.Minute)

// EChartsProvider renders server-side chart HTML for one chart kind.
type EChartsProvider struct {
	kind       ChartKind
	cache      RenderCache
	theme      string
	assetsHost string
	pieTopN    int
}

// EChartsProviderOption customizes provider behavior.
type EChartsProviderOption func(*EChartsProvider)

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.cache = cache
	}
}

// WithChartTheme sets the chart theme (defaults to Westeros).
func WithChartTheme(theme string) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.theme = theme
	}
}

// WithChartAssetsHost rewrites the assets host so the ECharts runtime
// loads from a CDN or self-hosted path.
func WithChartAssetsHost(host string) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.assetsHost = host
	}
}

// WithPieTopN changes how many slices a pie chart keeps.
func WithPieTopN(n int) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.pieTopN = n
	}
}

// NewEChartsProvider builds a provider for a specific chart kind.
func NewEChartsProvider(kind ChartKind, options ...EChartsProviderOption) *EChartsProvider {
	p := &EChartsProvider{
		kind:    kind,
		cache:   sharedChartCache,
		theme:   string(types.ThemeWesteros),
		pieTopN: PieTopN,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Render converts a visualization frame into go-echarts markup.
func (p *EChartsProvider) Render(_ context.Context, view ChartView) (string, error) {
	renderFn := func() (string, error) {
		return p.render(view.Frame)
	}
	if p.cache != nil {
		key := fmt.Sprintf("%s:%s:%s", view.DatasetID, p.kind, requestHash(view.Request))
		return p.cache.GetOrRender(key, renderFn)
	}
	return renderFn()
}

func (p *EChartsProvider) render(frame VizFrame) (string, error) {
	switch p.kind {
	case ChartLine:
		return p.renderLineChart(frame)
	case ChartScatter:
		return p.renderScatterChart(frame)
	case ChartBar:
		return p.renderBarChart(frame)
	case ChartPie:
		return p.renderPieChart(frame)
	default:
		return "", fmt.Errorf("explorer: unsupported chart kind: %s", p.kind)
	}
}

// ChartTitle builds the heading shown above a rendered chart.
func ChartTitle(kind ChartKind, frame VizFrame) string {
	mode := frame.Aggregate.Label()
	switch kind {
	case ChartLine:
		return fmt.Sprintf("Line Chart: %s vs %s (%s)", frame.XName, frame.YName, mode)
	case ChartScatter:
		return fmt.Sprintf("Scatter Plot: %s vs %s (%s)", frame.XName, frame.YName, mode)
	case ChartBar:
		return fmt.Sprintf("Bar Chart: %s vs %s (%s)", frame.XName, frame.YName, mode)
	case ChartPie:
		return fmt.Sprintf("Pie Chart: %s distribution (%s)", frame.XName, mode)
	default:
		return fmt.Sprintf("%s vs %s (%s)", frame.XName, frame.YName, mode)
	}
}

func (p *EChartsProvider) renderLineChart(frame VizFrame) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(p.globalChartOptions(ChartTitle(ChartLine, frame), frame)...)
	line.SetXAxis(frame.Labels)
	line.AddSeries(frame.YName, toLineData(frame.YValues))
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return renderChart(line)
}

func (p *EChartsProvider) renderBarChart(frame VizFrame) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(p.globalChartOptions(ChartTitle(ChartBar, frame), frame)...)
	bar.SetXAxis(frame.Labels)
	bar.AddSeries(frame.YName, toBarData(frame.YValues))
	return renderChart(bar)
}

func (p *EChartsProvider) renderScatterChart(frame VizFrame) (string, error) {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(p.globalChartOptions(ChartTitle(ChartScatter, frame), frame)...)
	scatter.SetXAxis(frame.Labels)
	scatter.AddSeries(frame.YName, toScatterData(frame))
	return renderChart(scatter)
}

func (p *EChartsProvider) renderPieChart(frame VizFrame) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(p.globalChartOptions(ChartTitle(ChartPie, frame), frame)...)
	pie.AddSeries(frame.XName, toPieData(frame.FrequencyCounts(p.pieTopN)))
	pie.SetSeriesOptions(charts.WithLabelOpts(opts.Label{
		Show:      opts.Bool(true),
		Formatter: "{b}: {d}%",
	}))
	return renderChart(pie)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (p *EChartsProvider) globalChartOptions(title string, frame VizFrame) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  p.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if p.assetsHost != "" {
		initOpts.AssetsHost = p.assetsHost
	}
	subtitle := ""
	if frame.Aggregate != AggregationRaw {
		subtitle = fmt.Sprintf("%s of %s per %s", frame.Aggregate.Label(), frame.YName, frame.XName)
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithToolboxOpts(opts.Toolbox{Show: opts.Bool(true)}),
	}
}

func toLineData(values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{Value: v}
	}
	return data
}

func toBarData(values []float64) []opts.BarData {
	data := make([]opts.BarData, len(values))
	for i, v := range values {
		data[i] = opts.BarData{Value: v}
	}
	return data
}

func toScatterData(frame VizFrame) []opts.ScatterData {
	data := make([]opts.ScatterData, len(frame.YValues))
	for i, y := range frame.YValues {
		value := []float64{float64(i + 1), y}
		if frame.XNumeric && i < len(frame.XValues) {
			value = []float64{frame.XValues[i], y}
		}
		data[i] = opts.ScatterData{Value: value}
	}
	return data
}

func toPieData(slices []PieSlice) []opts.PieData {
	data := make([]opts.PieData, len(slices))
	for i, slice := range slices {
		data[i] = opts.PieData{
			Name:  slice.Label,
			Value: slice.Count,
		}
	}
	return data
}
