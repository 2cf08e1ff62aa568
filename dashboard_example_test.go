package callforecast

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/aouyang1/go-callforecast/table"
)

func Example_combinedForecast() {
	opt := NewDefaultOptions()
	opt.PediatricPath = filepath.Join("testdata", "pediatric_forecast.csv")
	opt.AdultPath = filepath.Join("testdata", "adult_forecast.csv")
	opt.Holidays = []string{"thanksgiving"}

	d, err := New(opt)
	if err != nil {
		panic(err)
	}

	v, err := d.Build(Filters{
		CombinedRegions: []string{"total_forecast_NY", "total_forecast_XX"},
		CombinedStart:   time.Date(2024, 11, 25, 0, 0, 0, 0, time.UTC),
		CombinedEnd:     time.Date(2024, 11, 27, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		panic(err)
	}

	for _, col := range v.Combined.Cols {
		for i, t := range v.Combined.T {
			fmt.Printf("%s %s %.2f\n", table.FormatDate(t), col, v.Combined.Y[col][i])
		}
	}
	for _, m := range v.Markers {
		fmt.Println(m.Name, table.FormatDate(m.Date))
	}
	// Output:
	// 2024-11-25 total_forecast_NY 208.17
	// 2024-11-26 total_forecast_NY 234.17
	// 2024-11-27 total_forecast_NY 241.84
	// Thanksgiving_Day_2024 2024-11-28
}
