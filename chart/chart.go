// Package chart renders forecast tables as Apache Echarts line charts.
package chart

import (
	"io"
	"math"
	"slices"
	"time"

	"github.com/aouyang1/go-callforecast/holiday"
	"github.com/aouyang1/go-callforecast/table"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// echarts leaves a gap in the line for this value
const missingValue = "-"

// Options configures axis naming, sizing and calendar annotations of a chart.
type Options struct {
	XAxisName string           `mapstructure:"x_axis_name" yaml:"x_axis_name" json:"x_axis_name"`
	YAxisName string           `mapstructure:"y_axis_name" yaml:"y_axis_name" json:"y_axis_name"`
	Width     string           `mapstructure:"width" yaml:"width" json:"width"`
	Height    string           `mapstructure:"height" yaml:"height" json:"height"`
	Markers   []holiday.Marker `mapstructure:"-" yaml:"-" json:"markers,omitempty"`
}

// NewDefaultOptions returns chart options labelling the axes with dates and forecasted calls
func NewDefaultOptions() *Options {
	return &Options{
		XAxisName: "Date",
		YAxisName: "Forecasted Calls",
		Width:     "900px",
		Height:    "420px",
	}
}

// LineTSeries generates an echart multi-line chart for some arbitrary time/value combination. The input
// y is a slice of series that must have the same length as the input time slice.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64, opt *Options) *charts.Line {
	if opt == nil {
		opt = NewDefaultOptions()
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(
			opts.Initialization{
				Width:  opt.Width,
				Height: opt.Height,
			},
		),
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
		charts.WithTooltipOpts(
			opts.Tooltip{
				Show:    opts.Bool(true),
				Trigger: "axis",
			},
		),
		charts.WithLegendOpts(
			opts.Legend{
				Show: opts.Bool(true),
				Top:  "bottom",
			},
		),
		charts.WithXAxisOpts(
			opts.XAxis{
				Name: opt.XAxisName,
			},
		),
		charts.WithYAxisOpts(
			opts.YAxis{
				Name: opt.YAxisName,
			},
		),
		charts.WithDataZoomOpts(
			opts.DataZoom{
				Type:  "slider",
				Start: 0,
				End:   100,
			},
		),
	)

	xAxis := make([]string, len(t))
	for i, tPnt := range t {
		xAxis[i] = table.FormatDate(tPnt)
	}
	line = line.SetXAxis(xAxis)

	markLines := markLineOpts(opt.Markers, xAxis)
	for i, series := range seriesName {
		if i >= len(y) {
			break
		}
		lineData := make([]opts.LineData, 0, len(y[i]))
		for j := 0; j < len(y[i]); j++ {
			if math.IsNaN(y[i][j]) {
				lineData = append(lineData, opts.LineData{Value: missingValue})
				continue
			}
			lineData = append(lineData, opts.LineData{Value: y[i][j]})
		}

		var seriesOpts []charts.SeriesOpts
		if i == 0 && len(markLines) > 0 {
			seriesOpts = append(seriesOpts, charts.WithMarkLineNameXAxisItemOpts(markLines...))
		}
		line = line.AddSeries(series, lineData, seriesOpts...)
	}

	return line
}

// FromTable plots every column of the table as its own line.
func FromTable(title string, tbl *table.Table, opt *Options) *charts.Line {
	if tbl == nil {
		return LineTSeries(title, nil, nil, nil, opt)
	}
	return LineTSeries(title, tbl.Cols, tbl.T, tbl.Values(), opt)
}

// markers outside of the plotted dates are dropped since a category axis cannot place them
func markLineOpts(markers []holiday.Marker, xAxis []string) []opts.MarkLineNameXAxisItem {
	var items []opts.MarkLineNameXAxisItem
	for _, m := range markers {
		label := table.FormatDate(m.Date)
		if !slices.Contains(xAxis, label) {
			continue
		}
		items = append(items, opts.MarkLineNameXAxisItem{
			Name:  m.Name,
			XAxis: label,
		})
	}
	return items
}

// NewPage places the charts on a single html page in a flex layout
func NewPage(title string, lines ...*charts.Line) *components.Page {
	page := components.NewPage()
	page.PageTitle = title
	page.SetLayout(components.PageFlexLayout)
	for _, line := range lines {
		page.AddCharts(line)
	}
	return page
}

// Render writes the page as a standalone html document.
func Render(w io.Writer, title string, lines ...*charts.Line) error {
	return NewPage(title, lines...).Render(w)
}
