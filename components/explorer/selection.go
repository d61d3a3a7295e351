package explorer

import "fmt"

const (
	// MinSelectionRows is the lower bound of the row-count control.
	MinSelectionRows = 5
	// MaxSelectionRows caps the row-count control regardless of size.
	MaxSelectionRows = 100
	// DefaultSelectionRows is used when the control carries no value.
	DefaultSelectionRows = 10
	// DefaultPreviewRows is shown when no columns are selected.
	DefaultPreviewRows = 5
)

// Selection is the table rendered for the column-selection step.
type Selection struct {
	Columns  []string   `json:"columns"`
	Rows     [][]string `json:"rows"`
	RowCount int        `json:"row_count"`
}

// ClampRowCount bounds a requested row count to [5, min(datasetRows, 100)].
func ClampRowCount(requested, datasetRows int) int {
	if requested <= 0 {
		requested = DefaultSelectionRows
	}
	upper := datasetRows
	if upper > MaxSelectionRows {
		upper = MaxSelectionRows
	}
	if upper < MinSelectionRows {
		upper = MinSelectionRows
	}
	if requested < MinSelectionRows {
		return MinSelectionRows
	}
	if requested > upper {
		return upper
	}
	return requested
}

// SelectColumns builds the selection table. With no columns selected the
// first 5 rows of the whole dataset are shown; otherwise the clamped row
// count restricted to the selected columns, in original column order.
func SelectColumns(d *Dataset, names []string, requested int) (Selection, error) {
	if len(names) == 0 {
		head := d.Head(DefaultPreviewRows)
		return Selection{
			Columns:  d.Columns(),
			Rows:     head,
			RowCount: len(head),
		}, nil
	}

	for _, name := range names {
		if !d.HasColumn(name) {
			return Selection{}, fmt.Errorf("explorer: unknown column %q", name)
		}
	}

	// Selection order is the dataset's column order, not click order.
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}
	var ordered []string
	for _, name := range d.Columns() {
		if _, ok := wanted[name]; ok {
			ordered = append(ordered, name)
		}
	}

	n := ClampRowCount(requested, d.Rows())
	records := d.frame.Select(ordered).Records()
	body := records[1:]
	if n < len(body) {
		body = body[:n]
	}
	return Selection{
		Columns:  ordered,
		Rows:     body,
		RowCount: len(body),
	}, nil
}
