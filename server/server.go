// Package server exposes the forecast dashboard over HTTP.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	callforecast "github.com/aouyang1/go-callforecast"
	"github.com/aouyang1/go-callforecast/metrics"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

var ErrNoDashboard = errors.New("no dashboard to serve")

// Options configures the HTTP surface around a dashboard.
type Options struct {
	// Metrics is exposed at MetricsPath when set; otherwise metrics are discarded
	Metrics     *metrics.PrometheusCollector
	MetricsPath string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// NewDefaultOptions returns server options without metrics
func NewDefaultOptions() *Options {
	return &Options{
		MetricsPath:     "/metrics",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server routes dashboard requests. Every request re-runs the dashboard pipeline.
type Server struct {
	opt       *Options
	dash      *callforecast.Dashboard
	engine    *gin.Engine
	collector metrics.Collector
}

// New builds the gin engine for a dashboard. If no options are provided, the defaults are used.
func New(dash *callforecast.Dashboard, opt *Options) (*Server, error) {
	if dash == nil {
		return nil, ErrNoDashboard
	}
	if opt == nil {
		opt = NewDefaultOptions()
	}

	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates, %w", err)
	}

	var collector metrics.Collector = metrics.NewNoOpCollector()
	if opt.Metrics != nil {
		collector = opt.Metrics
	}

	s := &Server{
		opt:       opt,
		dash:      dash,
		engine:    gin.New(),
		collector: collector,
	}
	s.engine.SetHTMLTemplate(tmpl)
	s.engine.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(),
		requestMetrics(collector),
	)
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.engine.GET("/", s.handleIndex)
	s.engine.GET("/charts", s.handleCharts)
	s.engine.GET("/api/view", s.handleView)
	s.engine.GET("/export.xlsx", s.handleExport)
	s.engine.GET("/healthz", s.handleHealth)

	if s.opt.Metrics != nil {
		path := s.opt.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.engine.GET(path, gin.WrapH(s.opt.Metrics.Handler()))
	}
}

// Handler returns the http handler serving the dashboard
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully within
// the shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create listener, %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on the listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.opt.ReadTimeout,
		WriteTimeout: s.opt.WriteTimeout,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		slog.Info("dashboard listening", "address", listener.Addr().String())
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- fmt.Errorf("server error, %w", err)
		}
		close(serverErrCh)
	}()

	select {
	case err := <-serverErrCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("starting graceful shutdown", "timeout", s.opt.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opt.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down, %w", err)
	}
	slog.Info("server shutdown complete")
	return nil
}
