package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	callforecast "github.com/aouyang1/go-callforecast"
	"github.com/aouyang1/go-callforecast/chart"
	"github.com/aouyang1/go-callforecast/table"
	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/goccy/go-json"
)

const (
	chartPediatric = "pediatric"
	chartAdult     = "adult"
	chartCombined  = "combined"

	exportFilename = "call_forecasts.xlsx"
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var ErrUnknownChart = errors.New("unknown chart")

func (s *Server) handleIndex(c *gin.Context) {
	v, err := s.buildView(c)
	if err != nil {
		s.htmlError(c, err)
		return
	}
	c.HTML(http.StatusOK, "index.html", newPageData(v))
}

func (s *Server) handleCharts(c *gin.Context) {
	v, err := s.buildView(c)
	if err != nil {
		s.htmlError(c, err)
		return
	}

	lines, err := selectCharts(s.dash.Charts(v), c.Query(paramChart))
	if err != nil {
		s.htmlError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf, v.Title, lines...); err != nil {
		s.htmlError(c, fmt.Errorf("unable to render charts, %w", err))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// selectCharts picks a single chart by name, or all of them when no name is given
func selectCharts(lines []*charts.Line, name string) ([]*charts.Line, error) {
	switch name {
	case "":
		return lines, nil
	case chartPediatric:
		return lines[:1], nil
	case chartAdult:
		return lines[1:2], nil
	case chartCombined:
		return lines[2:3], nil
	}
	return nil, fmt.Errorf("%s=%q, %w", paramChart, name, ErrUnknownChart)
}

func (s *Server) handleView(c *gin.Context) {
	v, err := s.buildView(c)
	if err != nil {
		s.jsonError(c, err)
		return
	}
	s.writeJSON(c, http.StatusOK, newViewResponse(v))
}

func (s *Server) handleExport(c *gin.Context) {
	tables, err := s.dash.Tables()
	if err != nil {
		s.jsonError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := table.WriteXLSX(&buf, tables.Pediatric, tables.Adult, tables.Combined); err != nil {
		s.jsonError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename))
	c.Data(http.StatusOK, xlsxMIME, buf.Bytes())
}

func (s *Server) handleHealth(c *gin.Context) {
	tables, err := s.dash.Tables()
	if err != nil {
		c.Error(err)
		s.writeJSON(c, http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	s.recordTables(tables)
	s.writeJSON(c, http.StatusOK, gin.H{
		"status":         "ok",
		"pediatric_rows": tables.Pediatric.Len(),
		"adult_rows":     tables.Adult.Len(),
		"combined_rows":  tables.Combined.Len(),
	})
}

func (s *Server) buildView(c *gin.Context) (*callforecast.View, error) {
	f, err := parseFilters(c)
	if err != nil {
		return nil, err
	}
	v, err := s.dash.Build(f)
	if err != nil {
		return nil, err
	}
	s.recordTables(v.Full)
	return v, nil
}

func (s *Server) recordTables(tables *callforecast.Tables) {
	for _, tbl := range []*table.Table{tables.Pediatric, tables.Adult, tables.Combined} {
		s.collector.RecordGauge("table_rows", float64(tbl.Len()), "table", tbl.Name)
	}
}

// statusCode maps bad user input to 400 and everything else to 500
func statusCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidQuery),
		errors.Is(err, ErrUnknownChart),
		errors.Is(err, callforecast.ErrInvalidDateRange):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) htmlError(c *gin.Context, err error) {
	c.Error(err)
	status := statusCode(err)
	c.HTML(status, "error.html", gin.H{
		"Title":   s.dash.Options().Title,
		"Status":  status,
		"Message": err.Error(),
	})
}

func (s *Server) jsonError(c *gin.Context, err error) {
	c.Error(err)
	s.writeJSON(c, statusCode(err), errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(c *gin.Context, status int, obj any) {
	b, err := json.Marshal(obj)
	if err != nil {
		c.Error(err)
		c.Data(http.StatusInternalServerError, "application/json; charset=utf-8",
			[]byte(`{"error":"unable to encode response"}`))
		return
	}
	c.Data(status, "application/json; charset=utf-8", b)
}
