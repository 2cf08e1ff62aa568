package server

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	callforecast "github.com/aouyang1/go-callforecast"
	"github.com/gin-gonic/gin"
)

// query parameters shared by every dashboard route
const (
	paramPediatric     = "pediatric"
	paramAdult         = "adult"
	paramCombined      = "combined"
	paramStart         = "start"
	paramEnd           = "end"
	paramCombinedStart = "combined_start"
	paramCombinedEnd   = "combined_end"
	paramChart         = "chart"
)

const dateLayout = time.DateOnly

var ErrInvalidQuery = errors.New("invalid query parameter")

// parseFilters reads the dashboard selections from the request query. Missing dates are left
// zero so the dashboard falls back to the table's range.
func parseFilters(c *gin.Context) (callforecast.Filters, error) {
	f := callforecast.Filters{
		PediatricRegions: nonEmpty(c.QueryArray(paramPediatric)),
		AdultRegions:     nonEmpty(c.QueryArray(paramAdult)),
		CombinedRegions:  nonEmpty(c.QueryArray(paramCombined)),
	}

	dates := []struct {
		param string
		dst   *time.Time
	}{
		{paramStart, &f.Start},
		{paramEnd, &f.End},
		{paramCombinedStart, &f.CombinedStart},
		{paramCombinedEnd, &f.CombinedEnd},
	}
	for _, d := range dates {
		val := c.Query(d.param)
		if val == "" {
			continue
		}
		t, err := time.ParseInLocation(dateLayout, val, time.UTC)
		if err != nil {
			return f, fmt.Errorf("%s=%q expected YYYY-MM-DD, %w", d.param, val, ErrInvalidQuery)
		}
		*d.dst = t
	}
	return f, nil
}

// encodeFilters is the inverse of parseFilters with every date set
func encodeFilters(f callforecast.Filters) url.Values {
	q := url.Values{}
	for _, r := range f.PediatricRegions {
		q.Add(paramPediatric, r)
	}
	for _, r := range f.AdultRegions {
		q.Add(paramAdult, r)
	}
	for _, r := range f.CombinedRegions {
		q.Add(paramCombined, r)
	}
	q.Set(paramStart, formatDay(f.Start))
	q.Set(paramEnd, formatDay(f.End))
	q.Set(paramCombinedStart, formatDay(f.CombinedStart))
	q.Set(paramCombinedEnd, formatDay(f.CombinedEnd))
	return q
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func nonEmpty(vals []string) []string {
	res := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			res = append(res, v)
		}
	}
	return res
}
