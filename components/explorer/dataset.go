package explorer

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/ettle/strcase"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// AcceptedExtensions lists the upload extensions the parser handles.
var AcceptedExtensions = []string{".csv", ".xlsx", ".xls"}

// missingTokens are treated as missing values when loading records.
var missingTokens = []string{"", "NA", "N/A", "NaN", "null"}

// Dataset is the in-memory tabular structure derived from one uploaded
// file. It is created once per upload and replaced wholesale by the next
// one.
type Dataset struct {
	ID         string
	Code       string
	FileName   string
	UploadedAt time.Time

	frame dataframe.DataFrame
}

func loadOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingTokens),
	}
}

// ParseUpload reads an uploaded file into a Dataset, dispatching on the
// file extension. Any parse failure is fail-stop: an error is returned
// and no partial dataset exists.
func ParseUpload(fileName string, r io.Reader) (*Dataset, error) {
	var df dataframe.DataFrame
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".csv":
		df = dataframe.ReadCSV(r, loadOptions()...)
		if df.Err != nil {
			return nil, fmt.Errorf("explorer: parse %s: %w", fileName, df.Err)
		}
	case ".xlsx", ".xls":
		var err error
		df, err = readSpreadsheet(r)
		if err != nil {
			return nil, fmt.Errorf("explorer: parse %s: %w", fileName, err)
		}
	default:
		return nil, fmt.Errorf("explorer: unsupported file extension %q", ext)
	}
	if df.Ncol() == 0 {
		return nil, fmt.Errorf("explorer: %s contains no columns", fileName)
	}

	base := filepath.Base(fileName)
	return &Dataset{
		ID:         uuid.NewString(),
		Code:       strcase.ToSnake(strings.TrimSuffix(base, filepath.Ext(base))),
		FileName:   base,
		UploadedAt: time.Now().UTC(),
		frame:      normalizeColumns(df),
	}, nil
}

func readSpreadsheet(r io.Reader) (dataframe.DataFrame, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if len(rows) == 0 {
		return dataframe.DataFrame{}, errors.New("spreadsheet has no rows")
	}

	// excelize trims trailing empty cells, so square the records off
	// against the header width before loading.
	width := len(rows[0])
	for i, row := range rows {
		if len(row) < width {
			rows[i] = append(row, make([]string, width-len(row))...)
		} else if len(row) > width {
			rows[i] = row[:width]
		}
	}

	df := dataframe.LoadRecords(rows, loadOptions()...)
	if df.Err != nil {
		return dataframe.DataFrame{}, df.Err
	}
	return df, nil
}

// normalizeColumns coerces boolean and text columns to their string
// representation so downstream summary rendering stays uniform. The
// conversion is lossy and display-only; missing entries survive the
// round trip as gota's NA marker.
func normalizeColumns(df dataframe.DataFrame) dataframe.DataFrame {
	for _, name := range df.Names() {
		col := df.Col(name)
		switch col.Type() {
		case series.Bool, series.String:
			df = df.Mutate(series.New(col.Records(), series.String, name))
		}
	}
	return df
}

// Rows reports the number of data rows.
func (d *Dataset) Rows() int { return d.frame.Nrow() }

// Cols reports the number of columns.
func (d *Dataset) Cols() int { return d.frame.Ncol() }

// Columns returns column names in their original order.
func (d *Dataset) Columns() []string { return d.frame.Names() }

// HasColumn reports whether the dataset contains the named column.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.frame.Names() {
		if c == name {
			return true
		}
	}
	return false
}

// Column returns the named column series.
func (d *Dataset) Column(name string) (series.Series, bool) {
	if !d.HasColumn(name) {
		return series.Series{}, false
	}
	return d.frame.Col(name), true
}

// Head returns up to n data rows across all columns, header excluded.
func (d *Dataset) Head(n int) [][]string {
	records := d.frame.Records()
	if len(records) <= 1 {
		return nil
	}
	body := records[1:]
	if n >= 0 && n < len(body) {
		body = body[:n]
	}
	return body
}

// Subset returns a dataframe restricted to the first n rows. The full
// frame is returned when n covers every row.
func (d *Dataset) Subset(n int) dataframe.DataFrame {
	if n < 0 || n >= d.Rows() {
		return d.frame
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return d.frame.Subset(idx)
}

// Frame exposes the backing dataframe for read-only use.
func (d *Dataset) Frame() dataframe.DataFrame { return d.frame }

func (d *Dataset) numericColumns() []string {
	var out []string
	names := d.frame.Names()
	for i, t := range d.frame.Types() {
		if t == series.Int || t == series.Float {
			out = append(out, names[i])
		}
	}
	return out
}

func (d *Dataset) categoricalColumns() []string {
	var out []string
	names := d.frame.Names()
	for i, t := range d.frame.Types() {
		if t == series.String || t == series.Bool {
			out = append(out, names[i])
		}
	}
	return out
}
