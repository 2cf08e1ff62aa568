package server

import (
	"math"

	callforecast "github.com/aouyang1/go-callforecast"
	"github.com/aouyang1/go-callforecast/holiday"
	"github.com/aouyang1/go-callforecast/table"
)

// json cannot encode NaN so missing values are sent as null

type viewResponse struct {
	Title           string               `json:"title"`
	Filters         filtersResponse      `json:"filters"`
	Regions         callforecast.Regions `json:"regions"`
	Pediatric       tableResponse        `json:"pediatric"`
	Adult           tableResponse        `json:"adult"`
	Combined        tableResponse        `json:"combined"`
	Markers         []holiday.Marker     `json:"markers"`
	CombinedMarkers []holiday.Marker     `json:"combined_markers"`
}

type filtersResponse struct {
	PediatricRegions []string `json:"pediatric_regions"`
	AdultRegions     []string `json:"adult_regions"`
	CombinedRegions  []string `json:"combined_regions"`
	Start            string   `json:"start"`
	End              string   `json:"end"`
	CombinedStart    string   `json:"combined_start"`
	CombinedEnd      string   `json:"combined_end"`
}

type tableResponse struct {
	Name    string                `json:"name"`
	Dates   []string              `json:"dates"`
	Columns []string              `json:"columns"`
	Values  map[string][]*float64 `json:"values"`
	Summary []summaryResponse     `json:"summary"`
}

type summaryResponse struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
	Sum    *float64 `json:"sum"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newViewResponse(v *callforecast.View) viewResponse {
	return viewResponse{
		Title: v.Title,
		Filters: filtersResponse{
			PediatricRegions: v.Filters.PediatricRegions,
			AdultRegions:     v.Filters.AdultRegions,
			CombinedRegions:  v.Filters.CombinedRegions,
			Start:            formatDay(v.Filters.Start),
			End:              formatDay(v.Filters.End),
			CombinedStart:    formatDay(v.Filters.CombinedStart),
			CombinedEnd:      formatDay(v.Filters.CombinedEnd),
		},
		Regions:         v.Regions,
		Pediatric:       newTableResponse(v.Pediatric),
		Adult:           newTableResponse(v.Adult),
		Combined:        newTableResponse(v.Combined),
		Markers:         v.Markers,
		CombinedMarkers: v.CombinedMarkers,
	}
}

func newTableResponse(tbl *table.Table) tableResponse {
	res := tableResponse{
		Dates:   []string{},
		Columns: []string{},
		Values:  map[string][]*float64{},
		Summary: []summaryResponse{},
	}
	if tbl == nil {
		return res
	}
	res.Name = tbl.Name
	for _, t := range tbl.T {
		res.Dates = append(res.Dates, table.FormatDate(t))
	}
	res.Columns = append(res.Columns, tbl.Cols...)
	for _, col := range tbl.Cols {
		vals := make([]*float64, len(tbl.Y[col]))
		for i, v := range tbl.Y[col] {
			vals[i] = nullable(v)
		}
		res.Values[col] = vals
	}
	for _, cs := range tbl.Summarize() {
		res.Summary = append(res.Summary, summaryResponse{
			Column: cs.Column,
			Count:  cs.Count,
			Mean:   nullable(cs.Mean),
			Min:    nullable(cs.Min),
			Max:    nullable(cs.Max),
			Sum:    nullable(cs.Sum),
		})
	}
	return res
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
