package table

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCombine(t *testing.T) {
	adult, err := New(
		"adult_forecast",
		[]time.Time{day(1), day(2), day(3), day(5)},
		[]string{"forecast_NY", "forecast_CA", "forecast_MA"},
		map[string][]float64{
			"forecast_NY": {100, 200, 300, 500},
			"forecast_CA": {1, 2, math.NaN(), 5},
			"forecast_MA": {7, 7, 7, 7},
		},
	)
	require.Nil(t, err)

	pediatric, err := New(
		"pediatric_forecast",
		[]time.Time{day(2), day(3), day(4), day(5)},
		[]string{"forecast_CA", "forecast_NY"},
		map[string][]float64{
			"forecast_CA": {20, 30, 40, 50},
			"forecast_NY": {2, 3, 4, 5},
		},
	)
	require.Nil(t, err)

	res, err := Combine("combined_forecast", adult, pediatric, "")
	require.Nil(t, err)

	assert.Equal(t, "combined_forecast", res.Name)
	assert.Equal(t, []time.Time{day(2), day(3), day(5)}, res.T)

	// adult column order and only columns present in both
	assert.Equal(t, []string{"total_forecast_NY", "total_forecast_CA"}, res.Cols)
	assert.Equal(t, Series{202, 303, 505}, res.Y["total_forecast_NY"])

	ca := res.Y["total_forecast_CA"]
	require.Len(t, ca, 3)
	assert.Equal(t, 22.0, ca[0])
	assert.True(t, math.IsNaN(ca[1]))
	assert.Equal(t, 55.0, ca[2])

	// inputs are untouched
	assert.Equal(t, Series{100, 200, 300, 500}, adult.Y["forecast_NY"])
	assert.Equal(t, Series{20, 30, 40, 50}, pediatric.Y["forecast_CA"])
}

func TestCombinePrefix(t *testing.T) {
	tbl := setupTable(t)

	res, err := Combine("combined", tbl, tbl, "sum_")
	require.Nil(t, err)
	assert.Equal(t, []string{"sum_forecast_CA", "sum_forecast_NY"}, res.Cols)
	assert.Equal(t, Series{2, 4, 6, 8}, res.Y["sum_forecast_CA"])
}

func TestCombineNoOverlap(t *testing.T) {
	tbl := setupTable(t)
	later := tbl.Copy()
	for i := range later.T {
		later.T[i] = later.T[i].AddDate(1, 0, 0)
	}

	res, err := Combine("combined", tbl, later, "")
	require.Nil(t, err)
	assert.Equal(t, 0, res.Len())
	assert.Equal(t, []string{"total_forecast_CA", "total_forecast_NY"}, res.Cols)
}

func TestCombineNil(t *testing.T) {
	_, err := Combine("combined", nil, setupTable(t), "")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestWriteXLSX(t *testing.T) {
	tbl := setupTable(t)
	tbl.Y["forecast_NY"][1] = math.NaN()

	other := tbl.Select([]string{"forecast_CA"})
	other.Name = "adult_forecast"

	var buf bytes.Buffer
	require.Nil(t, WriteXLSX(&buf, tbl, other))

	f, err := excelize.OpenReader(&buf)
	require.Nil(t, err)
	defer f.Close()

	assert.Equal(t, []string{"pediatric_forecast", "adult_forecast"}, f.GetSheetList())

	rows, err := f.GetRows("pediatric_forecast")
	require.Nil(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"ds", "forecast_CA", "forecast_NY"}, rows[0])
	assert.Equal(t, []string{"2024-01-01", "1", "10"}, rows[1])
	assert.Equal(t, []string{"2024-01-02", "2"}, rows[2])

	assert.ErrorIs(t, WriteXLSX(&buf), ErrNoData)
}
