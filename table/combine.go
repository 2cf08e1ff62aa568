package table

import (
	"log/slog"
	"slices"
	"time"
)

const DefaultCombinedPrefix = "total_"

// Combine inner joins adult and pediatric on date and sums every adult column that pediatric
// also carries into a column named prefix+column. Column order follows adult.
func Combine(name string, adult, pediatric *Table, prefix string) (*Table, error) {
	if adult == nil || pediatric == nil {
		return nil, ErrNoData
	}
	if prefix == "" {
		prefix = DefaultCombinedPrefix
	}

	// both sides are sorted so a merge walk yields the matching row indices
	var t []time.Time
	var adultIdx, pedIdx []int
	for i, j := 0, 0; i < len(adult.T) && j < len(pediatric.T); {
		switch {
		case adult.T[i].Before(pediatric.T[j]):
			i++
		case pediatric.T[j].Before(adult.T[i]):
			j++
		default:
			t = append(t, adult.T[i])
			adultIdx = append(adultIdx, i)
			pedIdx = append(pedIdx, j)
			i++
			j++
		}
	}

	combined := &Table{
		Name: name,
		T:    t,
		Cols: make([]string, 0, len(adult.Cols)),
		Y:    make(map[string]Series, len(adult.Cols)),
	}
	for _, col := range adult.Cols {
		pedVals, exists := pediatric.Y[col]
		if !exists {
			slog.Warn("column missing from pediatric table, not combining", "column", col)
			continue
		}
		adultVals := adult.Y[col]

		total := make(Series, len(t))
		other := make(Series, len(t))
		for k := range t {
			total[k] = adultVals[adultIdx[k]]
			other[k] = pedVals[pedIdx[k]]
		}
		totalCol := prefix + col
		if slices.Contains(combined.Cols, totalCol) {
			continue
		}
		combined.Cols = append(combined.Cols, totalCol)
		combined.Y[totalCol] = total.Add(other)
	}
	return combined, nil
}
