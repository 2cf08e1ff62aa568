// Package table holds forecast tables: one row per date with one forecast column per region.
package table

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrNoData             = errors.New("no forecast data")
	ErrNonMonotonic       = errors.New("dates are not strictly increasing")
	ErrDatasetLenMismatch = errors.New("column has a different length than dates")
	ErrUnknownColumn      = errors.New("unknown column")
)

// Table represents a forecast table storing a slice of dates and one series per region column.
// Every series must be the same length as T.
type Table struct {
	Name string
	T    []time.Time
	Cols []string
	Y    map[string]Series
}

// New returns a Table given dates, the ordered column names and their values. Inputs are copied.
func New(name string, t []time.Time, cols []string, y map[string][]float64) (*Table, error) {
	if len(t) == 0 {
		return nil, ErrNoData
	}

	var lastT time.Time
	for i := 0; i < len(t); i++ {
		currT := t[i]
		if i > 0 && !currT.After(lastT) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMonotonic)
		}
		lastT = currT
	}

	tbl := &Table{
		Name: name,
		T:    slices.Clone(t),
		Cols: make([]string, 0, len(cols)),
		Y:    make(map[string]Series, len(cols)),
	}
	for _, col := range cols {
		vals, exists := y[col]
		if !exists {
			return nil, fmt.Errorf("%s, %w", col, ErrUnknownColumn)
		}
		if len(vals) != len(t) {
			return nil, fmt.Errorf(
				"column %s has length of %d, but dates has a length of %d, %w",
				col, len(vals), len(t), ErrDatasetLenMismatch,
			)
		}
		tbl.Cols = append(tbl.Cols, col)
		tbl.Y[col] = Series(slices.Clone(vals))
	}
	return tbl, nil
}

// Copy returns a deep copy of the table.
func (tbl *Table) Copy() *Table {
	if tbl == nil {
		return nil
	}
	next := &Table{
		Name: tbl.Name,
		T:    slices.Clone(tbl.T),
		Cols: slices.Clone(tbl.Cols),
		Y:    make(map[string]Series, len(tbl.Y)),
	}
	for _, col := range tbl.Cols {
		next.Y[col] = Series(slices.Clone(tbl.Y[col]))
	}
	return next
}

// Len returns the number of rows.
func (tbl *Table) Len() int {
	if tbl == nil {
		return 0
	}
	return len(tbl.T)
}

// Has reports whether the table carries the column.
func (tbl *Table) Has(col string) bool {
	if tbl == nil {
		return false
	}
	_, exists := tbl.Y[col]
	return exists
}

// Column returns the values of a column.
func (tbl *Table) Column(col string) (Series, bool) {
	if tbl == nil {
		return nil, false
	}
	vals, exists := tbl.Y[col]
	return vals, exists
}

// StartTime returns the earliest date or the zero time for an empty table.
func (tbl *Table) StartTime() time.Time {
	if tbl == nil {
		return time.Time{}
	}
	return TimeSlice(tbl.T).StartTime()
}

// EndTime returns the latest date or the zero time for an empty table.
func (tbl *Table) EndTime() time.Time {
	if tbl == nil {
		return time.Time{}
	}
	return TimeSlice(tbl.T).EndTime()
}

// Filter keeps the rows where start <= date <= end. The result may hold no rows.
func (tbl *Table) Filter(start, end time.Time) *Table {
	if tbl == nil {
		return nil
	}
	lo, hi := TimeSlice(tbl.T).Bounds(start, end)

	next := &Table{
		Name: tbl.Name,
		T:    slices.Clone(tbl.T[lo:hi]),
		Cols: slices.Clone(tbl.Cols),
		Y:    make(map[string]Series, len(tbl.Cols)),
	}
	for _, col := range tbl.Cols {
		next.Y[col] = Series(slices.Clone(tbl.Y[col][lo:hi]))
	}
	return next
}

// Select returns a table with only the requested columns in the requested order. Columns the
// table does not carry are skipped.
func (tbl *Table) Select(cols []string) *Table {
	if tbl == nil {
		return nil
	}
	next := &Table{
		Name: tbl.Name,
		T:    slices.Clone(tbl.T),
		Cols: make([]string, 0, len(cols)),
		Y:    make(map[string]Series, len(cols)),
	}
	for _, col := range cols {
		vals, exists := tbl.Y[col]
		if !exists {
			continue
		}
		if _, dup := next.Y[col]; dup {
			continue
		}
		next.Cols = append(next.Cols, col)
		next.Y[col] = Series(slices.Clone(vals))
	}
	return next
}

// Values returns the column series in column order, suitable for plotting.
func (tbl *Table) Values() [][]float64 {
	if tbl == nil {
		return nil
	}
	y := make([][]float64, 0, len(tbl.Cols))
	for _, col := range tbl.Cols {
		y = append(y, tbl.Y[col])
	}
	return y
}

type Series []float64

// Add sums src into s element-wise. NaN in either operand yields NaN.
func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}
