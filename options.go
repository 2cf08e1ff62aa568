package callforecast

import (
	"github.com/aouyang1/go-callforecast/chart"
	"github.com/aouyang1/go-callforecast/table"
)

const (
	DefaultTitle         = "CALLS FORECAST DASHBOARD"
	DefaultPediatricPath = "pediatric_forecast.csv"
	DefaultAdultPath     = "adult_forecast.csv"

	TitlePediatric = "Pediatric Forecast"
	TitleAdult     = "Adult Forecast"
	TitleCombined  = "Combined Age Group Forecast"
)

// Options configures where the forecast tables are read from and which regions are offered
// in the region selectors. Empty region lists offer every column of the corresponding table.
type Options struct {
	Title string `mapstructure:"title" yaml:"title" json:"title"`

	PediatricPath string             `mapstructure:"pediatric_path" yaml:"pediatric_path" json:"pediatric_path"`
	AdultPath     string             `mapstructure:"adult_path" yaml:"adult_path" json:"adult_path"`
	LoadOptions   *table.LoadOptions `mapstructure:"load" yaml:"load" json:"load"`

	CombinedPrefix string `mapstructure:"combined_prefix" yaml:"combined_prefix" json:"combined_prefix"`

	PediatricRegions []string `mapstructure:"pediatric_regions" yaml:"pediatric_regions" json:"pediatric_regions"`
	AdultRegions     []string `mapstructure:"adult_regions" yaml:"adult_regions" json:"adult_regions"`
	CombinedRegions  []string `mapstructure:"combined_regions" yaml:"combined_regions" json:"combined_regions"`

	// names of US holidays to mark on every chart
	Holidays []string `mapstructure:"holidays" yaml:"holidays" json:"holidays"`

	ChartOptions *chart.Options `mapstructure:"chart" yaml:"chart" json:"chart"`
}

// NewDefaultOptions returns options reading both forecast csv files from the working directory
func NewDefaultOptions() *Options {
	return &Options{
		Title:          DefaultTitle,
		PediatricPath:  DefaultPediatricPath,
		AdultPath:      DefaultAdultPath,
		LoadOptions:    table.NewDefaultLoadOptions(),
		CombinedPrefix: table.DefaultCombinedPrefix,
		ChartOptions:   chart.NewDefaultOptions(),
	}
}

func (o *Options) setDefaults() {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.LoadOptions == nil {
		o.LoadOptions = table.NewDefaultLoadOptions()
	}
	if o.CombinedPrefix == "" {
		o.CombinedPrefix = table.DefaultCombinedPrefix
	}
	if o.ChartOptions == nil {
		o.ChartOptions = chart.NewDefaultOptions()
	}
}
