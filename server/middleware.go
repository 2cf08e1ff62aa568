package server

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/aouyang1/go-callforecast/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// requestID keeps a caller supplied request id or assigns a new one, echoing it on the response.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			slog.Warn("request failed", append(attrs, "error", c.Errors.String())...)
			return
		}
		slog.Debug("request", attrs...)
	}
}

func requestMetrics(collector metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		collector.IncrementCounter("http_requests_total",
			"route", route,
			"method", c.Request.Method,
			"status", strconv.Itoa(c.Writer.Status()),
		)
		collector.RecordHistogram("http_request_duration_seconds", time.Since(start).Seconds(),
			"route", route,
			"method", c.Request.Method,
		)
	}
}
