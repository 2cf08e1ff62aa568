// Package holiday resolves US holidays into dated markers for annotating forecast charts.
package holiday

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

var ErrUnknownHoliday = errors.New("unknown holiday")

var registry = map[string]*cal.Holiday{
	"new_year":     us.NewYear,
	"mlk":          us.MlkDay,
	"presidents":   us.PresidentsDay,
	"memorial":     us.MemorialDay,
	"juneteenth":   us.Juneteenth,
	"independence": us.IndependenceDay,
	"labor":        us.LaborDay,
	"columbus":     us.ColumbusDay,
	"veterans":     us.VeteransDay,
	"thanksgiving": us.ThanksgivingDay,
	"christmas":    us.ChristmasDay,
}

// Names returns every holiday name accepted by Holidays, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Holidays looks up holidays by name
func Holidays(names []string) ([]*cal.Holiday, error) {
	hols := make([]*cal.Holiday, 0, len(names))
	for _, name := range names {
		hol, exists := registry[strings.ToLower(strings.TrimSpace(name))]
		if !exists {
			return nil, fmt.Errorf("%s, %w", name, ErrUnknownHoliday)
		}
		hols = append(hols, hol)
	}
	return hols, nil
}

// Marker is the observed date of a holiday in a given year.
type Marker struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// Between returns the observed date of every holiday falling within [start, end], expressed at
// midnight in the location of start.
func Between(hols []*cal.Holiday, start, end time.Time) []Marker {
	markers := []Marker{}
	if start.After(end) {
		return markers
	}

	startLoc := start.Location()
	_, startOffset := start.Zone()
	for _, hol := range hols {
		for i := start.Year(); i <= end.Year(); i++ {
			_, observed := hol.Calc(i)
			if observed.IsZero() {
				continue
			}
			_, offset := observed.Zone()

			observed = observed.Add(time.Duration(offset) * time.Second).In(startLoc).Add(time.Duration(-startOffset) * time.Second)

			if (observed.After(start) || observed.Equal(start)) && (observed.Before(end) || observed.Equal(end)) {
				markers = append(markers, Marker{
					Name: strings.ReplaceAll(fmt.Sprintf("%s_%d", hol.Name, i), " ", "_"),
					Date: observed,
				})
			}
		}
	}

	sort.SliceStable(markers, func(i, j int) bool {
		return markers[i].Date.Before(markers[j].Date)
	})
	return markers
}
