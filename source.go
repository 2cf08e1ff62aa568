package callforecast

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aouyang1/go-callforecast/table"
)

const (
	namePediatric = "pediatric_forecast"
	nameAdult     = "adult_forecast"
	nameCombined  = "combined_forecast"
)

// Tables is a consistent snapshot of the two input tables and the combined table derived
// from them. Snapshots are never modified once returned.
type Tables struct {
	Pediatric *table.Table
	Adult     *table.Table
	Combined  *table.Table
}

func newTables(pediatric, adult *table.Table, prefix string) (*Tables, error) {
	pediatric = pediatric.Copy()
	adult = adult.Copy()
	pediatric.Name = namePediatric
	adult.Name = nameAdult

	combined, err := table.Combine(nameCombined, adult, pediatric, prefix)
	if err != nil {
		return nil, fmt.Errorf("unable to combine forecasts, %w", err)
	}
	return &Tables{
		Pediatric: pediatric,
		Adult:     adult,
		Combined:  combined,
	}, nil
}

// Loader supplies the current forecast tables.
type Loader interface {
	Tables() (*Tables, error)
}

// StaticLoader serves tables held in memory
type StaticLoader struct {
	tables *Tables
}

// NewStaticLoader combines the tables once and serves that snapshot on every call.
func NewStaticLoader(pediatric, adult *table.Table, prefix string) (*StaticLoader, error) {
	if pediatric == nil || adult == nil {
		return nil, table.ErrNoData
	}
	tables, err := newTables(pediatric, adult, prefix)
	if err != nil {
		return nil, err
	}
	return &StaticLoader{tables: tables}, nil
}

func (l *StaticLoader) Tables() (*Tables, error) {
	return l.tables, nil
}

// FileLoader reads the forecast tables from disk and reads them again whenever either file's
// modification time changes. It is safe for concurrent use.
type FileLoader struct {
	pediatricPath string
	adultPath     string
	loadOpt       *table.LoadOptions
	prefix        string

	mu             sync.Mutex
	pediatricMTime time.Time
	adultMTime     time.Time
	tables         *Tables
}

func NewFileLoader(pediatricPath, adultPath string, loadOpt *table.LoadOptions, prefix string) *FileLoader {
	return &FileLoader{
		pediatricPath: pediatricPath,
		adultPath:     adultPath,
		loadOpt:       loadOpt,
		prefix:        prefix,
	}
}

func (l *FileLoader) Tables() (*Tables, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pedInfo, err := os.Stat(l.pediatricPath)
	if err != nil {
		return nil, fmt.Errorf("unable to stat pediatric forecast %s, %w", l.pediatricPath, err)
	}
	adultInfo, err := os.Stat(l.adultPath)
	if err != nil {
		return nil, fmt.Errorf("unable to stat adult forecast %s, %w", l.adultPath, err)
	}

	if l.tables != nil &&
		pedInfo.ModTime().Equal(l.pediatricMTime) &&
		adultInfo.ModTime().Equal(l.adultMTime) {
		return l.tables, nil
	}

	pediatric, err := table.Load(l.pediatricPath, l.loadOpt)
	if err != nil {
		return nil, fmt.Errorf("unable to load pediatric forecast %s, %w", l.pediatricPath, err)
	}
	adult, err := table.Load(l.adultPath, l.loadOpt)
	if err != nil {
		return nil, fmt.Errorf("unable to load adult forecast %s, %w", l.adultPath, err)
	}
	tables, err := newTables(pediatric, adult, l.prefix)
	if err != nil {
		return nil, err
	}

	slog.Info("loaded forecast tables",
		"pediatric_path", l.pediatricPath,
		"pediatric_rows", tables.Pediatric.Len(),
		"adult_path", l.adultPath,
		"adult_rows", tables.Adult.Len(),
		"combined_rows", tables.Combined.Len(),
		"combined_columns", len(tables.Combined.Cols),
	)

	l.tables = tables
	l.pediatricMTime = pedInfo.ModTime()
	l.adultMTime = adultInfo.ModTime()
	return tables, nil
}
