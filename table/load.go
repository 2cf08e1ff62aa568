package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const DefaultDateColumn = "ds"

var (
	ErrUnsupportedFormat = errors.New("unsupported table file format")
	ErrNoDateColumn      = errors.New("date column not found")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidValue      = errors.New("invalid forecast value")
	ErrDuplicateDate     = errors.New("duplicate date")
	ErrDuplicateColumn   = errors.New("duplicate column")
	ErrNoHeader          = errors.New("no header row")
)

var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
}

// LoadOptions configures how a table file is parsed.
type LoadOptions struct {
	DateColumn  string   `mapstructure:"date_column" yaml:"date_column" json:"date_column"`
	DropColumns []string `mapstructure:"drop_columns" yaml:"drop_columns" json:"drop_columns"`
}

// NewDefaultLoadOptions returns load options reading the date from the ds column
func NewDefaultLoadOptions() *LoadOptions {
	return &LoadOptions{
		DateColumn: DefaultDateColumn,
	}
}

func (o *LoadOptions) dateColumn() string {
	if o == nil || o.DateColumn == "" {
		return DefaultDateColumn
	}
	return o.DateColumn
}

// dropped reports whether a header names a column that is not a forecast. Blank and Unnamed
// headers are the row index written alongside a dataframe.
func (o *LoadOptions) dropped(header string) bool {
	if header == "" || strings.HasPrefix(header, "Unnamed") {
		return true
	}
	if o == nil {
		return false
	}
	return slices.Contains(o.DropColumns, header)
}

// Load reads a forecast table from a csv or xlsx file. The table is named after the file.
func Load(path string, opt *LoadOptions) (*Table, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return Read(name, f, opt)
	case ".xlsx":
		return loadXLSX(name, path, opt)
	default:
		return nil, fmt.Errorf("%s, %w", path, ErrUnsupportedFormat)
	}
}

// Read parses a csv forecast table.
func Read(name string, r io.Reader, opt *LoadOptions) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to read csv, %w", err)
	}
	return fromRecords(name, records, opt, parseDate)
}

func loadXLSX(name, path string, opt *LoadOptions) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open xlsx, %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoHeader
	}
	// raw values keep date cells as serial numbers regardless of their display format
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet %s, %w", sheets[0], err)
	}

	var date1904 bool
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	return fromRecords(name, rows, opt, xlsxDateParser(date1904))
}

// xlsxDateParser accepts the text layouts as well as excel date serial numbers.
func xlsxDateParser(date1904 bool) func(string) (time.Time, error) {
	return func(s string) (time.Time, error) {
		t, err := parseDate(s)
		if err == nil {
			return t, nil
		}
		serial, perr := strconv.ParseFloat(s, 64)
		if perr != nil || serial <= 0 {
			return time.Time{}, err
		}
		t, perr = excelize.ExcelDateToTime(serial, date1904)
		if perr != nil {
			return time.Time{}, err
		}
		return t.UTC().Round(time.Second), nil
	}
}

type row struct {
	t    time.Time
	vals []float64
	line int
}

func fromRecords(name string, records [][]string, opt *LoadOptions, dateParser func(string) (time.Time, error)) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrNoHeader
	}

	header := records[0]
	dateCol := opt.dateColumn()
	dateIdx := -1
	var cols []string
	var colIdx []int
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == dateCol {
			if dateIdx >= 0 {
				return nil, fmt.Errorf("%s at row 1, %w", h, ErrDuplicateColumn)
			}
			dateIdx = i
			continue
		}
		if opt.dropped(h) {
			continue
		}
		if seen[h] {
			return nil, fmt.Errorf("%s at row 1, %w", h, ErrDuplicateColumn)
		}
		seen[h] = true
		cols = append(cols, h)
		colIdx = append(colIdx, i)
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("%s, %w", dateCol, ErrNoDateColumn)
	}

	rows := make([]row, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		if isBlank(rec) {
			continue
		}

		t, err := dateParser(cell(rec, dateIdx))
		if err != nil {
			return nil, fmt.Errorf("row %d, %w", line, err)
		}
		vals := make([]float64, len(colIdx))
		for j, idx := range colIdx {
			v, err := parseValue(cell(rec, idx))
			if err != nil {
				return nil, fmt.Errorf("row %d column %s, %w", line, cols[j], err)
			}
			vals[j] = v
		}
		rows = append(rows, row{t: t, vals: vals, line: line})
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].t.Before(rows[j].t)
	})

	t := make([]time.Time, len(rows))
	y := make(map[string][]float64, len(cols))
	for _, col := range cols {
		y[col] = make([]float64, len(rows))
	}
	for i, r := range rows {
		if i > 0 && r.t.Equal(t[i-1]) {
			return nil, fmt.Errorf("%s at row %d, %w", r.t.Format(time.DateOnly), r.line, ErrDuplicateDate)
		}
		t[i] = r.t
		for j, col := range cols {
			y[col][i] = r.vals[j]
		}
	}
	return New(name, t, cols, y)
}

func cell(rec []string, idx int) string {
	if idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q, %w", s, ErrInvalidDate)
}

func parseValue(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "", "nan", "null", "na":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q, %w", s, ErrInvalidValue)
	}
	return v, nil
}
