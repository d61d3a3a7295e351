package explorer

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gota/gota/series"
)

const (
	// DefaultVizRowLimit truncates the visualization subset unless the
	// "use all rows" toggle is on.
	DefaultVizRowLimit = 1000
	// PieTopN keeps only the most frequent X values in a pie chart.
	PieTopN = 10
)

// AggregationOptions lists the modes available for an axis pair. When
// both axes reference the same column only Raw is offered.
func AggregationOptions(x, y string) []AggregationMode {
	if x == y {
		return []AggregationMode{AggregationRaw}
	}
	return []AggregationMode{AggregationRaw, AggregationSum, AggregationAverage}
}

// VizFrame is the visualization subset: the (possibly truncated,
// possibly aggregated) rows handed to a chart renderer.
type VizFrame struct {
	XName     string
	YName     string
	Aggregate AggregationMode

	// Labels holds X records in subset row order (group order after
	// aggregation). XValues carries parsed X when the column is numeric.
	Labels   []string
	XValues  []float64
	XNumeric bool
	YValues  []float64
}

// Len reports the number of plotted rows/groups.
func (f VizFrame) Len() int { return len(f.Labels) }

// PieSlice is one frequency bucket of the X-axis column.
type PieSlice struct {
	Label string
	Count int
}

// BuildFrame derives the visualization subset for a chart request:
// first `limit` rows unless AllRows, then group/reduce when Sum or
// Average is in effect. Identical axes force Raw via Normalize.
func BuildFrame(d *Dataset, req ChartRequest, limit int) (VizFrame, error) {
	req = req.Normalize()
	if !d.HasColumn(req.XAxis) {
		return VizFrame{}, fmt.Errorf("explorer: unknown column %q", req.XAxis)
	}
	if !d.HasColumn(req.YAxis) {
		return VizFrame{}, fmt.Errorf("explorer: unknown column %q", req.YAxis)
	}

	sub := d.Frame()
	if !req.AllRows && limit > 0 && d.Rows() > limit {
		sub = d.Subset(limit)
	}

	x := sub.Col(req.XAxis)
	y := sub.Col(req.YAxis)
	frame := VizFrame{
		XName:     req.XAxis,
		YName:     req.YAxis,
		Aggregate: req.Aggregate,
	}

	switch req.Aggregate {
	case AggregationSum, AggregationAverage:
		frame.Labels, frame.YValues = groupReduce(x.Records(), y.Float(), req.Aggregate)
	default:
		frame.Labels = x.Records()
		frame.YValues = y.Float()
		if t := x.Type(); t == series.Int || t == series.Float {
			frame.XNumeric = true
			frame.XValues = x.Float()
		}
	}
	return frame, nil
}

// groupReduce groups Y values by X label, preserving first-appearance
// order of the labels so aggregated output is deterministic. Unparsable
// Y values are skipped; a group with no numeric Y reduces to NaN under
// Average.
func groupReduce(labels []string, ys []float64, mode AggregationMode) ([]string, []float64) {
	var order []string
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for i, label := range labels {
		if _, ok := counts[label]; !ok {
			order = append(order, label)
			counts[label] = 0
		}
		if i < len(ys) && !math.IsNaN(ys[i]) {
			sums[label] += ys[i]
			counts[label]++
		}
	}

	values := make([]float64, len(order))
	for i, label := range order {
		switch {
		case mode == AggregationAverage && counts[label] > 0:
			values[i] = sums[label] / float64(counts[label])
		case mode == AggregationAverage:
			values[i] = math.NaN()
		default:
			values[i] = sums[label]
		}
	}
	return order, values
}

// FrequencyCounts tallies the frame's X values, most frequent first,
// keeping the top n slices. Ties break by first occurrence so the cut
// is deterministic. The NA marker is excluded, as are missing entries.
func (f VizFrame) FrequencyCounts(n int) []PieSlice {
	counts := make(map[string]int)
	first := make(map[string]int)
	for i, label := range f.Labels {
		if label == "NaN" {
			continue
		}
		if _, ok := counts[label]; !ok {
			first[label] = i
		}
		counts[label]++
	}

	slices := make([]PieSlice, 0, len(counts))
	for label, count := range counts {
		slices = append(slices, PieSlice{Label: label, Count: count})
	}
	sort.SliceStable(slices, func(i, j int) bool {
		if slices[i].Count != slices[j].Count {
			return slices[i].Count > slices[j].Count
		}
		return first[slices[i].Label] < first[slices[j].Label]
	})
	if n > 0 && len(slices) > n {
		slices = slices[:n]
	}
	return slices
}
