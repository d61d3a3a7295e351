package explorer

import (
	"strings"
)

// Overview carries the headline metrics shown above the summary tabs.
type Overview struct {
	Rows       int `json:"rows"`
	Cols       int `json:"cols"`
	Missing    int `json:"missing"`
	Duplicates int `json:"duplicates"`
}

// ColumnSchema describes one column in the structural summary.
type ColumnSchema struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	NonNull int    `json:"non_null"`
}

// NumericSummary holds descriptive statistics for one numeric column.
type NumericSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// CategoricalSummary holds descriptive statistics for one text column.
type CategoricalSummary struct {
	Column    string `json:"column"`
	Count     int    `json:"count"`
	Unique    int    `json:"unique"`
	Top       string `json:"top"`
	Frequency int    `json:"frequency"`
}

// Summarize computes the overview metrics: dimensions, total missing
// entries summed over all columns, and rows that duplicate an earlier
// row exactly.
func Summarize(d *Dataset) Overview {
	ov := Overview{Rows: d.Rows(), Cols: d.Cols()}
	for _, name := range d.Columns() {
		col := d.frame.Col(name)
		for i := 0; i < col.Len(); i++ {
			if col.Elem(i).IsNA() {
				ov.Missing++
			}
		}
	}

	seen := make(map[string]struct{}, ov.Rows)
	for _, row := range d.Head(-1) {
		key := strings.Join(row, "\x1f")
		if _, ok := seen[key]; ok {
			ov.Duplicates++
			continue
		}
		seen[key] = struct{}{}
	}
	return ov
}

// Schema returns the structural summary: names, types, and non-null
// counts, in original column order.
func Schema(d *Dataset) []ColumnSchema {
	out := make([]ColumnSchema, 0, d.Cols())
	for _, name := range d.Columns() {
		col := d.frame.Col(name)
		out = append(out, ColumnSchema{
			Name:    name,
			Type:    string(col.Type()),
			NonNull: nonNullCount(d, name),
		})
	}
	return out
}

// DescribeNumeric computes count/mean/std/min/quartiles/max for every
// numeric column. An empty result means the dataset has no numeric data.
func DescribeNumeric(d *Dataset) []NumericSummary {
	var out []NumericSummary
	for _, name := range d.numericColumns() {
		col := d.frame.Col(name)
		var idx []int
		for i := 0; i < col.Len(); i++ {
			if !col.Elem(i).IsNA() {
				idx = append(idx, i)
			}
		}
		summary := NumericSummary{Column: name, Count: len(idx)}
		if len(idx) > 0 {
			vals := col.Subset(idx)
			summary.Mean = vals.Mean()
			summary.Std = vals.StdDev()
			summary.Min = vals.Min()
			summary.Q25 = vals.Quantile(0.25)
			summary.Median = vals.Quantile(0.5)
			summary.Q75 = vals.Quantile(0.75)
			summary.Max = vals.Max()
		}
		out = append(out, summary)
	}
	return out
}

// DescribeCategorical computes count/unique/top/frequency for every
// boolean or text column. An empty result means the dataset has no
// non-numeric data.
func DescribeCategorical(d *Dataset) []CategoricalSummary {
	var out []CategoricalSummary
	for _, name := range d.categoricalColumns() {
		col := d.frame.Col(name)
		records := col.Records()

		counts := make(map[string]int)
		var order []string
		for i := 0; i < col.Len(); i++ {
			if col.Elem(i).IsNA() {
				continue
			}
			if _, ok := counts[records[i]]; !ok {
				order = append(order, records[i])
			}
			counts[records[i]]++
		}

		summary := CategoricalSummary{Column: name, Unique: len(counts)}
		for _, value := range order {
			summary.Count += counts[value]
			if counts[value] > summary.Frequency {
				summary.Top = value
				summary.Frequency = counts[value]
			}
		}
		out = append(out, summary)
	}
	return out
}

func nonNullCount(d *Dataset, name string) int {
	col := d.frame.Col(name)
	count := 0
	for i := 0; i < col.Len(); i++ {
		if !col.Elem(i).IsNA() {
			count++
		}
	}
	return count
}
