package explorer

import (
	"strings"
	"testing"
)

func TestClampRowCount(t *testing.T) {
	cases := []struct {
		name      string
		requested int
		rows      int
		want      int
	}{
		{"zero uses default", 0, 50, 10},
		{"below minimum", 2, 50, 5},
		{"within range", 25, 50, 25},
		{"above dataset size", 80, 50, 50},
		{"above hard cap", 500, 5000, 100},
		{"tiny dataset keeps minimum", 20, 3, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClampRowCount(tc.requested, tc.rows); got != tc.want {
				t.Fatalf("ClampRowCount(%d, %d) = %d, want %d", tc.requested, tc.rows, got, tc.want)
			}
		})
	}
}

func wideCSV(rows int) string {
	var b strings.Builder
	b.WriteString("city,sales,price\n")
	for i := 0; i < rows; i++ {
		b.WriteString("A,1,2\n")
	}
	return b.String()
}

func TestSelectColumnsDefaultsToPreview(t *testing.T) {
	ds := mustDataset(t, wideCSV(20))

	sel, err := SelectColumns(ds, nil, 0)
	if err != nil {
		t.Fatalf("SelectColumns returned error: %v", err)
	}
	if len(sel.Columns) != 3 {
		t.Fatalf("expected all columns, got %v", sel.Columns)
	}
	if sel.RowCount != DefaultPreviewRows || len(sel.Rows) != DefaultPreviewRows {
		t.Fatalf("expected %d preview rows, got %d", DefaultPreviewRows, sel.RowCount)
	}
}

func TestSelectColumnsKeepsDatasetOrder(t *testing.T) {
	ds := mustDataset(t, wideCSV(20))

	sel, err := SelectColumns(ds, []string{"price", "city"}, 8)
	if err != nil {
		t.Fatalf("SelectColumns returned error: %v", err)
	}
	if len(sel.Columns) != 2 || sel.Columns[0] != "city" || sel.Columns[1] != "price" {
		t.Fatalf("expected dataset column order, got %v", sel.Columns)
	}
	if sel.RowCount != 8 {
		t.Fatalf("expected 8 rows, got %d", sel.RowCount)
	}
}

func TestSelectColumnsClampsRowCount(t *testing.T) {
	ds := mustDataset(t, wideCSV(20))

	sel, err := SelectColumns(ds, []string{"city"}, 3)
	if err != nil {
		t.Fatalf("SelectColumns returned error: %v", err)
	}
	if sel.RowCount != MinSelectionRows {
		t.Fatalf("expected clamp to %d, got %d", MinSelectionRows, sel.RowCount)
	}

	sel, err = SelectColumns(ds, []string{"city"}, 500)
	if err != nil {
		t.Fatalf("SelectColumns returned error: %v", err)
	}
	if sel.RowCount != 20 {
		t.Fatalf("expected clamp to dataset size, got %d", sel.RowCount)
	}
}

func TestSelectColumnsUnknownColumn(t *testing.T) {
	ds := mustDataset(t, wideCSV(20))

	if _, err := SelectColumns(ds, []string{"city", "nope"}, 10); err == nil {
		t.Fatalf("expected unknown column error")
	}
}
