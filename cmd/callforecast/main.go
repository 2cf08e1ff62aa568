// Package main provides the entry point for the call forecast dashboard.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	callforecast "github.com/aouyang1/go-callforecast"
	"github.com/aouyang1/go-callforecast/config"
	"github.com/aouyang1/go-callforecast/metrics"
	"github.com/aouyang1/go-callforecast/server"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version information (set by build flags)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var errUnknownProfile = errors.New("unknown profile mode, expected cpu or mem")

// config keys populated from command line flags
var flagKeys = map[string]string{
	"address":                  "address",
	"log_level":                "log-level",
	"log_format":               "log-format",
	"shutdown_timeout":         "shutdown-timeout",
	"metrics.enabled":          "metrics",
	"metrics.path":             "metrics-path",
	"dashboard.title":          "title",
	"dashboard.pediatric_path": "pediatric",
	"dashboard.adult_path":     "adult",
	"dashboard.holidays":       "holidays",
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	def := config.Default()

	rootCmd := &cobra.Command{
		Use:   "callforecast",
		Short: "Pediatric and adult call forecast dashboard",
		Long: `An interactive dashboard over pediatric and adult call volume forecasts.

The combined forecast joins both tables on date and sums matching regions.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file path")
	flags.String("env-file", "", "dotenv file of CALLFORECAST_ variables to load before the environment is read")
	flags.String("title", def.Dashboard.Title, "dashboard title")
	flags.String("pediatric", def.Dashboard.PediatricPath, "pediatric forecast table (.csv or .xlsx)")
	flags.String("adult", def.Dashboard.AdultPath, "adult forecast table (.csv or .xlsx)")
	flags.StringSlice("holidays", nil, "US holidays to mark on the charts, e.g. thanksgiving,christmas")
	flags.String("log-level", def.LogLevel, "log level (debug, info, warn, error)")
	flags.String("log-format", def.LogFormat, "log format (text, json)")
	flags.String("profile", "", "profile the command (cpu, mem)")
	flags.String("profile-path", ".", "directory to write profiles to")

	rootCmd.AddCommand(newServeCmd(def), newRenderCmd(), newVersionCmd())
	return rootCmd
}

func newServeCmd(def *config.Config) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard server",
		Long: `Start the dashboard server with the specified configuration.

Example:
  callforecast serve --config ./config.yaml
  callforecast serve --address 0.0.0.0:8501 --pediatric pediatric_forecast.csv --adult adult_forecast.csv`,
		RunE: withProfile(runServe),
	}
	serveCmd.Flags().String("address", def.Address, "server listen address")
	serveCmd.Flags().Duration("shutdown-timeout", def.ShutdownTimeout, "graceful shutdown timeout")
	serveCmd.Flags().Bool("metrics", def.Metrics.Enabled, "enable Prometheus metrics")
	serveCmd.Flags().String("metrics-path", def.Metrics.Path, "metrics route")
	return serveCmd
}

func newRenderCmd() *cobra.Command {
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Write the forecast charts to an html file",
		Long: `Write the pediatric, adult and combined forecast charts for the given filters to a
standalone html file.

Example:
  callforecast render --out forecast.html --pediatric-regions forecast_NY --combined-regions total_forecast_NY`,
		RunE: withProfile(runRender),
	}
	renderCmd.Flags().StringP("out", "o", "forecast.html", "output html file")
	renderCmd.Flags().StringSlice("pediatric-regions", nil, "pediatric regions to plot")
	renderCmd.Flags().StringSlice("adult-regions", nil, "adult regions to plot")
	renderCmd.Flags().StringSlice("combined-regions", nil, "combined regions to plot")
	renderCmd.Flags().String("start", "", "start date of the pediatric and adult charts (YYYY-MM-DD)")
	renderCmd.Flags().String("end", "", "end date of the pediatric and adult charts (YYYY-MM-DD)")
	renderCmd.Flags().String("combined-start", "", "start date of the combined chart (YYYY-MM-DD)")
	renderCmd.Flags().String("combined-end", "", "end date of the combined chart (YYYY-MM-DD)")
	return renderCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Call Forecast Dashboard\n")
			fmt.Fprintf(out, "Version:    %s\n", version)
			fmt.Fprintf(out, "Commit:     %s\n", commit)
			fmt.Fprintf(out, "Build Date: %s\n", buildDate)
		},
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration, %w", err)
	}

	setupLogging(cfg.LogLevel, cfg.LogFormat)
	slog.Info("starting call forecast dashboard",
		"version", version,
		"commit", commit,
		"build_date", buildDate,
	)

	if strings.EqualFold(cfg.LogLevel, "debug") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	dash, err := callforecast.New(&cfg.Dashboard)
	if err != nil {
		return fmt.Errorf("failed to create dashboard, %w", err)
	}

	opt := &server.Options{
		MetricsPath:     cfg.Metrics.Path,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}
	if cfg.Metrics.Enabled {
		opt.Metrics = metrics.NewPrometheusCollector()
	}

	srv, err := server.New(dash, opt)
	if err != nil {
		return fmt.Errorf("failed to create server, %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, cfg.Address)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration, %w", err)
	}
	setupLogging(cfg.LogLevel, cfg.LogFormat)

	filters, err := renderFilters(cmd)
	if err != nil {
		return err
	}

	dash, err := callforecast.New(&cfg.Dashboard)
	if err != nil {
		return fmt.Errorf("failed to create dashboard, %w", err)
	}

	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s, %w", out, err)
	}
	defer f.Close()

	if err := dash.Plot(f, filters); err != nil {
		return fmt.Errorf("failed to render charts, %w", err)
	}
	slog.Info("rendered forecast charts", "path", out)
	return nil
}

func renderFilters(cmd *cobra.Command) (callforecast.Filters, error) {
	var f callforecast.Filters
	var err error

	regions := []struct {
		flag string
		dst  *[]string
	}{
		{"pediatric-regions", &f.PediatricRegions},
		{"adult-regions", &f.AdultRegions},
		{"combined-regions", &f.CombinedRegions},
	}
	for _, r := range regions {
		if *r.dst, err = cmd.Flags().GetStringSlice(r.flag); err != nil {
			return f, err
		}
	}

	dates := []struct {
		flag string
		dst  *time.Time
	}{
		{"start", &f.Start},
		{"end", &f.End},
		{"combined-start", &f.CombinedStart},
		{"combined-end", &f.CombinedEnd},
	}
	for _, d := range dates {
		val, err := cmd.Flags().GetString(d.flag)
		if err != nil {
			return f, err
		}
		if *d.dst, err = parseDate(val); err != nil {
			return f, fmt.Errorf("--%s, %w", d.flag, err)
		}
	}
	return f, nil
}

// parseDate reads a YYYY-MM-DD date in UTC. An empty string is the zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(time.DateOnly, s, time.UTC)
}

// loadConfig binds the flags of cmd onto a fresh viper instance and loads the configuration,
// so flags override environment variables which override the config file. Variables from an
// env file never replace ones already set in the environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return nil, err
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s, %w", envFile, err)
		}
	}

	v := viper.New()
	for key, name := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s, %w", name, err)
		}
	}

	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.Load(v, configFile)
}

func setupLogging(level, format string) *slog.Logger {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel = slog.LevelInfo
	}

	handlerOpt := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, handlerOpt)
	default:
		handler = slog.NewTextHandler(os.Stderr, handlerOpt)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// withProfile profiles run when --profile is set. The profile is flushed even if run fails.
func withProfile(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		profiler, err := startProfile(cmd)
		if err != nil {
			return err
		}
		if profiler != nil {
			defer profiler.Stop()
		}
		return run(cmd, args)
	}
}

func startProfile(cmd *cobra.Command) (interface{ Stop() }, error) {
	mode, err := cmd.Flags().GetString("profile")
	if err != nil {
		return nil, err
	}
	dir, err := cmd.Flags().GetString("profile-path")
	if err != nil {
		return nil, err
	}

	var profileMode func(*profile.Profile)
	switch strings.ToLower(mode) {
	case "":
		return nil, nil
	case "cpu":
		profileMode = profile.CPUProfile
	case "mem":
		profileMode = profile.MemProfile
	default:
		return nil, fmt.Errorf("%q, %w", mode, errUnknownProfile)
	}
	return profile.Start(profileMode, profile.ProfilePath(dir), profile.NoShutdownHook, profile.Quiet), nil
}
