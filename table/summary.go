package table

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ColumnSummary describes the non-NaN values of a single column.
type ColumnSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Sum    float64 `json:"sum"`
}

// Summarize returns a summary per column in column order. Columns without any values report
// NaN statistics.
func (tbl *Table) Summarize() []ColumnSummary {
	if tbl == nil {
		return nil
	}
	res := make([]ColumnSummary, 0, len(tbl.Cols))
	for _, col := range tbl.Cols {
		vals := dropNaN(tbl.Y[col])
		cs := ColumnSummary{
			Column: col,
			Count:  len(vals),
			Mean:   math.NaN(),
			Min:    math.NaN(),
			Max:    math.NaN(),
			Sum:    math.NaN(),
		}
		if len(vals) > 0 {
			cs.Mean = stat.Mean(vals, nil)
			cs.Min = floats.Min(vals)
			cs.Max = floats.Max(vals)
			cs.Sum = floats.Sum(vals)
		}
		res = append(res, cs)
	}
	return res
}

func dropNaN(y []float64) []float64 {
	res := make([]float64, 0, len(y))
	for _, v := range y {
		if math.IsNaN(v) {
			continue
		}
		res = append(res, v)
	}
	return res
}
