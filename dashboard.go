// Package callforecast builds an interactive view over pediatric and adult call volume
// forecasts. Every request runs the full pipeline: load, filter, plot and display.
package callforecast

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/aouyang1/go-callforecast/chart"
	"github.com/aouyang1/go-callforecast/holiday"
	"github.com/aouyang1/go-callforecast/table"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/rickar/cal/v2"
)

var (
	ErrInvalidDateRange = errors.New("start date is after end date")
	ErrNoLoader         = errors.New("no forecast table loader")
)

// Dashboard filters the forecast tables and renders their charts. It is safe for concurrent
// use as long as its Loader is.
type Dashboard struct {
	opt    *Options
	loader Loader
	hols   []*cal.Holiday
}

// New creates a dashboard reading the forecast tables from the paths in the options. If no
// options are provided, the defaults are used. Both tables are loaded once up front so a bad
// file is reported immediately.
func New(opt *Options) (*Dashboard, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	opt.setDefaults()

	loader := NewFileLoader(opt.PediatricPath, opt.AdultPath, opt.LoadOptions, opt.CombinedPrefix)
	return NewWithLoader(opt, loader)
}

// NewWithLoader creates a dashboard over an arbitrary table loader.
func NewWithLoader(opt *Options, loader Loader) (*Dashboard, error) {
	if loader == nil {
		return nil, ErrNoLoader
	}
	if opt == nil {
		opt = NewDefaultOptions()
	}
	opt.setDefaults()

	hols, err := holiday.Holidays(opt.Holidays)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		opt:    opt,
		loader: loader,
		hols:   hols,
	}
	if _, err := loader.Tables(); err != nil {
		return nil, err
	}
	return d, nil
}

// Options returns the options the dashboard was created with
func (d *Dashboard) Options() *Options {
	return d.opt
}

// Tables returns the current snapshot of the forecast tables.
func (d *Dashboard) Tables() (*Tables, error) {
	return d.loader.Tables()
}

// Filters are the user selections driving a view. Start and End bound the pediatric and adult
// charts while the combined chart has its own range. Zero dates take the pediatric table's
// first and last date.
type Filters struct {
	PediatricRegions []string  `json:"pediatric_regions"`
	AdultRegions     []string  `json:"adult_regions"`
	CombinedRegions  []string  `json:"combined_regions"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	CombinedStart    time.Time `json:"combined_start"`
	CombinedEnd      time.Time `json:"combined_end"`
}

// Regions lists the selectable regions for each chart.
type Regions struct {
	Pediatric []string `json:"pediatric"`
	Adult     []string `json:"adult"`
	Combined  []string `json:"combined"`
}

// DefaultFilters spans every date of the pediatric table for both ranges with no regions
// selected.
func (d *Dashboard) DefaultFilters() (Filters, error) {
	tables, err := d.loader.Tables()
	if err != nil {
		return Filters{}, err
	}
	return defaultFilters(tables), nil
}

func defaultFilters(tables *Tables) Filters {
	start, end := tables.Pediatric.StartTime(), tables.Pediatric.EndTime()
	return Filters{
		Start:         start,
		End:           end,
		CombinedStart: start,
		CombinedEnd:   end,
	}
}

func (f Filters) withDefaults(def Filters) Filters {
	if f.Start.IsZero() {
		f.Start = def.Start
	}
	if f.End.IsZero() {
		f.End = def.End
	}
	if f.CombinedStart.IsZero() {
		f.CombinedStart = def.CombinedStart
	}
	if f.CombinedEnd.IsZero() {
		f.CombinedEnd = def.CombinedEnd
	}
	return f
}

// Validate checks that both date ranges are ordered.
func (f Filters) Validate() error {
	if f.Start.After(f.End) {
		return fmt.Errorf("%s > %s, %w", table.FormatDate(f.Start), table.FormatDate(f.End), ErrInvalidDateRange)
	}
	if f.CombinedStart.After(f.CombinedEnd) {
		return fmt.Errorf("combined %s > %s, %w",
			table.FormatDate(f.CombinedStart), table.FormatDate(f.CombinedEnd), ErrInvalidDateRange)
	}
	return nil
}

// View is the result of running the filters over the current tables.
type View struct {
	Title   string
	Filters Filters
	Regions Regions

	// filtered tables holding only the selected regions
	Pediatric *table.Table
	Adult     *table.Table
	Combined  *table.Table

	// unfiltered tables for display
	Full *Tables

	Markers         []holiday.Marker
	CombinedMarkers []holiday.Marker
}

// Build filters the current tables by date range and selected regions.
func (d *Dashboard) Build(f Filters) (*View, error) {
	tables, err := d.loader.Tables()
	if err != nil {
		return nil, err
	}

	f = f.withDefaults(defaultFilters(tables))
	if err := f.Validate(); err != nil {
		return nil, err
	}

	regions := d.regions(tables)
	v := &View{
		Title:   d.opt.Title,
		Filters: f,
		Regions: regions,
		Pediatric: tables.Pediatric.
			Filter(f.Start, f.End).
			Select(offered(f.PediatricRegions, regions.Pediatric)),
		Adult: tables.Adult.
			Filter(f.Start, f.End).
			Select(offered(f.AdultRegions, regions.Adult)),
		Combined: tables.Combined.
			Filter(f.CombinedStart, f.CombinedEnd).
			Select(offered(f.CombinedRegions, regions.Combined)),
		Full:            tables,
		Markers:         holiday.Between(d.hols, f.Start, f.End),
		CombinedMarkers: holiday.Between(d.hols, f.CombinedStart, f.CombinedEnd),
	}
	return v, nil
}

func (d *Dashboard) regions(tables *Tables) Regions {
	r := Regions{
		Pediatric: d.opt.PediatricRegions,
		Adult:     d.opt.AdultRegions,
		Combined:  d.opt.CombinedRegions,
	}
	if len(r.Pediatric) == 0 {
		r.Pediatric = tables.Pediatric.Cols
	}
	if len(r.Adult) == 0 {
		r.Adult = tables.Adult.Cols
	}
	if len(r.Combined) == 0 {
		r.Combined = tables.Combined.Cols
	}
	return Regions{
		Pediatric: slices.Clone(r.Pediatric),
		Adult:     slices.Clone(r.Adult),
		Combined:  slices.Clone(r.Combined),
	}
}

// offered keeps the selections that are listed as region options
func offered(selected, options []string) []string {
	res := make([]string, 0, len(selected))
	for _, s := range selected {
		if slices.Contains(options, s) {
			res = append(res, s)
		}
	}
	return res
}

// Charts returns the pediatric, adult and combined line charts of the view
func (d *Dashboard) Charts(v *View) []*charts.Line {
	opt := *d.opt.ChartOptions
	opt.Markers = v.Markers

	combinedOpt := *d.opt.ChartOptions
	combinedOpt.Markers = v.CombinedMarkers

	return []*charts.Line{
		chart.FromTable(TitlePediatric, v.Pediatric, &opt),
		chart.FromTable(TitleAdult, v.Adult, &opt),
		chart.FromTable(TitleCombined, v.Combined, &combinedOpt),
	}
}

// Plot uses the Apache Echarts library to write an html page of the pediatric, adult and
// combined forecasts for the given filters.
func (d *Dashboard) Plot(w io.Writer, f Filters) error {
	v, err := d.Build(f)
	if err != nil {
		return err
	}
	return chart.Render(w, d.opt.Title, d.Charts(v)...)
}
