package table

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func setupTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := New(
		"pediatric_forecast",
		[]time.Time{day(1), day(2), day(3), day(4)},
		[]string{"forecast_CA", "forecast_NY"},
		map[string][]float64{
			"forecast_CA": {1, 2, 3, 4},
			"forecast_NY": {10, 20, 30, 40},
		},
	)
	require.Nil(t, err)
	return tbl
}

func TestNew(t *testing.T) {
	testData := map[string]struct {
		t        []time.Time
		cols     []string
		y        map[string][]float64
		expected *Table
		err      error
	}{
		"no data": {
			err: ErrNoData,
		},
		"length mismatch": {
			t:    []time.Time{day(1), day(2)},
			cols: []string{"forecast_CA"},
			y:    map[string][]float64{"forecast_CA": {1}},
			err:  ErrDatasetLenMismatch,
		},
		"unknown column": {
			t:    []time.Time{day(1)},
			cols: []string{"forecast_CA"},
			y:    map[string][]float64{},
			err:  ErrUnknownColumn,
		},
		"non increasing time": {
			t:    []time.Time{day(2), day(1)},
			cols: []string{"forecast_CA"},
			y:    map[string][]float64{"forecast_CA": {1, 2}},
			err:  ErrNonMonotonic,
		},
		"repeated time": {
			t:    []time.Time{day(1), day(1)},
			cols: []string{"forecast_CA"},
			y:    map[string][]float64{"forecast_CA": {1, 2}},
			err:  ErrNonMonotonic,
		},
		"valid": {
			t:    []time.Time{day(1), day(2)},
			cols: []string{"forecast_CA"},
			y:    map[string][]float64{"forecast_CA": {1, 2}},
			expected: &Table{
				Name: "test",
				T:    []time.Time{day(1), day(2)},
				Cols: []string{"forecast_CA"},
				Y:    map[string]Series{"forecast_CA": {1, 2}},
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			tbl, err := New("test", td.t, td.cols, td.y)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, tbl)
		})
	}
}

func TestCopy(t *testing.T) {
	tbl := setupTable(t)

	next := tbl.Copy()
	require.Equal(t, tbl, next)

	tbl.Y["forecast_CA"][0] = 100
	tbl.T[0] = day(9)
	assert.NotEqual(t, tbl, next)
	assert.Equal(t, 1.0, next.Y["forecast_CA"][0])

	var nilTbl *Table
	assert.Nil(t, nilTbl.Copy())
}

func TestFilter(t *testing.T) {
	tbl := setupTable(t)

	testData := map[string]struct {
		start    time.Time
		end      time.Time
		expected []time.Time
		ca       Series
	}{
		"full range": {
			start:    day(1),
			end:      day(4),
			expected: []time.Time{day(1), day(2), day(3), day(4)},
			ca:       Series{1, 2, 3, 4},
		},
		"inclusive bounds": {
			start:    day(2),
			end:      day(3),
			expected: []time.Time{day(2), day(3)},
			ca:       Series{2, 3},
		},
		"between rows": {
			start:    day(1).Add(time.Hour),
			end:      day(3).Add(-time.Hour),
			expected: []time.Time{day(2)},
			ca:       Series{2},
		},
		"outside range": {
			start:    day(10),
			end:      day(20),
			expected: []time.Time{},
			ca:       Series{},
		},
		"start after end": {
			start:    day(4),
			end:      day(1),
			expected: []time.Time{},
			ca:       Series{},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := tbl.Filter(td.start, td.end)
			assert.Equal(t, td.expected, res.T)
			assert.Equal(t, td.ca, res.Y["forecast_CA"])
			assert.Equal(t, tbl.Cols, res.Cols)
			assert.Len(t, res.Y["forecast_NY"], len(td.expected))
		})
	}

	// filtering does not modify the source table
	assert.Equal(t, 4, tbl.Len())
}

func TestSelect(t *testing.T) {
	tbl := setupTable(t)

	testData := map[string]struct {
		cols     []string
		expected []string
	}{
		"none":            {cols: nil, expected: []string{}},
		"requested order": {cols: []string{"forecast_NY", "forecast_CA"}, expected: []string{"forecast_NY", "forecast_CA"}},
		"unknown skipped": {cols: []string{"forecast_MA", "forecast_CA"}, expected: []string{"forecast_CA"}},
		"duplicates":      {cols: []string{"forecast_CA", "forecast_CA"}, expected: []string{"forecast_CA"}},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := tbl.Select(td.cols)
			assert.Equal(t, td.expected, res.Cols)
			assert.Len(t, res.Y, len(td.expected))
			assert.Equal(t, tbl.T, res.T)
		})
	}
}

func TestAccessors(t *testing.T) {
	tbl := setupTable(t)

	assert.True(t, tbl.Has("forecast_CA"))
	assert.False(t, tbl.Has("forecast_MA"))

	vals, ok := tbl.Column("forecast_NY")
	require.True(t, ok)
	assert.Equal(t, Series{10, 20, 30, 40}, vals)

	assert.Equal(t, day(1), tbl.StartTime())
	assert.Equal(t, day(4), tbl.EndTime())
	assert.Equal(t, [][]float64{{1, 2, 3, 4}, {10, 20, 30, 40}}, tbl.Values())

	var nilTbl *Table
	assert.Equal(t, 0, nilTbl.Len())
	assert.False(t, nilTbl.Has("forecast_CA"))
	assert.True(t, nilTbl.StartTime().IsZero())
	assert.True(t, nilTbl.EndTime().IsZero())
}

func TestSummarize(t *testing.T) {
	tbl, err := New(
		"test",
		[]time.Time{day(1), day(2), day(3)},
		[]string{"forecast_CA", "forecast_NY"},
		map[string][]float64{
			"forecast_CA": {1, math.NaN(), 5},
			"forecast_NY": {math.NaN(), math.NaN(), math.NaN()},
		},
	)
	require.Nil(t, err)

	res := tbl.Summarize()
	require.Len(t, res, 2)

	assert.Equal(t, "forecast_CA", res[0].Column)
	assert.Equal(t, 2, res[0].Count)
	assert.InDelta(t, 3.0, res[0].Mean, 1e-9)
	assert.Equal(t, 1.0, res[0].Min)
	assert.Equal(t, 5.0, res[0].Max)
	assert.Equal(t, 6.0, res[0].Sum)

	assert.Equal(t, 0, res[1].Count)
	assert.True(t, math.IsNaN(res[1].Mean))
}

func TestBounds(t *testing.T) {
	ts := TimeSlice{day(1), day(2), day(3)}

	lo, hi := ts.Bounds(day(2), day(2))
	assert.Equal(t, 1, lo)
	assert.Equal(t, 2, hi)

	lo, hi = ts.Bounds(day(3), day(1))
	assert.Equal(t, lo, hi)

	lo, hi = TimeSlice{}.Bounds(day(1), day(3))
	assert.Equal(t, 0, lo)
	assert.Equal(t, 0, hi)
}
