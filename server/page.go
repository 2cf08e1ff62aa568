package server

import (
	"html/template"
	"math"
	"slices"
	"strconv"

	callforecast "github.com/aouyang1/go-callforecast"
	"github.com/aouyang1/go-callforecast/table"
)

// display precision of table cells and summaries
const valuePrecision = 4

type pageData struct {
	Title string

	Pediatric selectData
	Adult     selectData
	Combined  selectData

	Start         string
	End           string
	CombinedStart string
	CombinedEnd   string
	MinDate       string
	MaxDate       string

	Sections []sectionData
	Datasets []datasetData
}

type selectData struct {
	Name    string
	Label   string
	Options []optionData
}

type optionData struct {
	Value    string
	Selected bool
}

type sectionData struct {
	Header string
	// Src is the chart frame url, already query encoded
	Src template.URL
}

type datasetData struct {
	Header  string
	Columns []string
	Rows    [][]string
	Summary [][]string
}

func newPageData(v *callforecast.View) pageData {
	ped := v.Full.Pediatric
	return pageData{
		Title:         v.Title,
		Pediatric:     newSelectData(paramPediatric, "Select Pediatric Agegroup Regions Forecast", v.Regions.Pediatric, v.Filters.PediatricRegions),
		Adult:         newSelectData(paramAdult, "Select Adult Agegroup Regions Forecast", v.Regions.Adult, v.Filters.AdultRegions),
		Combined:      newSelectData(paramCombined, "Select Combined Agegroup Regions Forecast", v.Regions.Combined, v.Filters.CombinedRegions),
		Start:         formatDay(v.Filters.Start),
		End:           formatDay(v.Filters.End),
		CombinedStart: formatDay(v.Filters.CombinedStart),
		CombinedEnd:   formatDay(v.Filters.CombinedEnd),
		MinDate:       formatDay(ped.StartTime()),
		MaxDate:       formatDay(ped.EndTime()),
		Sections: []sectionData{
			{Header: "Pediatric Age Group Forecast:", Src: chartURL(v.Filters, chartPediatric)},
			{Header: "Adult Age Group Forecast:", Src: chartURL(v.Filters, chartAdult)},
			{Header: "Combined Age Group Forecast:", Src: chartURL(v.Filters, chartCombined)},
		},
		Datasets: []datasetData{
			newDatasetData("PEDIATRIC FORECAST DATASET: ", v.Full.Pediatric),
			newDatasetData("ADULT FORECAST DATASET: ", v.Full.Adult),
			newDatasetData("COMBINED FORECAST DATASET: ", v.Full.Combined),
		},
	}
}

func chartURL(f callforecast.Filters, name string) template.URL {
	q := encodeFilters(f)
	q.Set(paramChart, name)
	return template.URL("/charts?" + q.Encode())
}

func newSelectData(name, label string, options, selected []string) selectData {
	s := selectData{
		Name:    name,
		Label:   label,
		Options: make([]optionData, 0, len(options)),
	}
	for _, o := range options {
		s.Options = append(s.Options, optionData{
			Value:    o,
			Selected: slices.Contains(selected, o),
		})
	}
	return s
}

func newDatasetData(header string, tbl *table.Table) datasetData {
	d := datasetData{
		Header:  header,
		Columns: append([]string{table.DefaultDateColumn}, tbl.Cols...),
		Rows:    make([][]string, 0, tbl.Len()),
	}
	for i, t := range tbl.T {
		row := make([]string, 0, len(tbl.Cols)+1)
		row = append(row, table.FormatDate(t))
		for _, col := range tbl.Cols {
			row = append(row, formatValue(tbl.Y[col][i]))
		}
		d.Rows = append(d.Rows, row)
	}

	summaries := tbl.Summarize()
	stats := []struct {
		name string
		val  func(cs table.ColumnSummary) float64
	}{
		{"count", func(cs table.ColumnSummary) float64 { return float64(cs.Count) }},
		{"mean", func(cs table.ColumnSummary) float64 { return cs.Mean }},
		{"min", func(cs table.ColumnSummary) float64 { return cs.Min }},
		{"max", func(cs table.ColumnSummary) float64 { return cs.Max }},
		{"sum", func(cs table.ColumnSummary) float64 { return cs.Sum }},
	}
	for _, stat := range stats {
		row := make([]string, 0, len(summaries)+1)
		row = append(row, stat.name)
		for _, cs := range summaries {
			row = append(row, formatValue(stat.val(cs)))
		}
		d.Summary = append(d.Summary, row)
	}
	return d
}

// formatValue leaves missing values blank
func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', valuePrecision, 64)
}
