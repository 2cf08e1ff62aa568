// Package config provides the configuration of the forecast dashboard server.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	callforecast "github.com/aouyang1/go-callforecast"
	"github.com/aouyang1/go-callforecast/holiday"
	"github.com/spf13/viper"
)

const EnvPrefix = "CALLFORECAST"

var (
	ErrNoAddress        = errors.New("server address is required")
	ErrNoTablePath      = errors.New("pediatric and adult table paths are required")
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("invalid log format")
	ErrInvalidTimeout   = errors.New("timeouts must not be negative")
	ErrInvalidPath      = errors.New("metrics path must start with /")
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Config represents the server configuration.
type Config struct {
	Address         string        `mapstructure:"address" yaml:"address" json:"address"`
	LogLevel        string        `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	LogFormat       string        `mapstructure:"log_format" yaml:"log_format" json:"log_format"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`

	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`

	Dashboard callforecast.Options `mapstructure:"dashboard" yaml:"dashboard" json:"dashboard"`
}

// MetricsConfig represents metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Path    string `mapstructure:"path" yaml:"path" json:"path"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Address:         "0.0.0.0:8501",
		LogLevel:        "info",
		LogFormat:       "text",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Dashboard: *callforecast.NewDefaultOptions(),
	}
}

// SetDefaults registers every default with v so that environment variables and config files
// can override any key.
func SetDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("address", def.Address)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)
	v.SetDefault("read_timeout", def.ReadTimeout)
	v.SetDefault("write_timeout", def.WriteTimeout)
	v.SetDefault("shutdown_timeout", def.ShutdownTimeout)

	v.SetDefault("metrics.enabled", def.Metrics.Enabled)
	v.SetDefault("metrics.path", def.Metrics.Path)

	dash := def.Dashboard
	v.SetDefault("dashboard.title", dash.Title)
	v.SetDefault("dashboard.pediatric_path", dash.PediatricPath)
	v.SetDefault("dashboard.adult_path", dash.AdultPath)
	v.SetDefault("dashboard.load.date_column", dash.LoadOptions.DateColumn)
	v.SetDefault("dashboard.load.drop_columns", []string{})
	v.SetDefault("dashboard.combined_prefix", dash.CombinedPrefix)
	v.SetDefault("dashboard.pediatric_regions", []string{})
	v.SetDefault("dashboard.adult_regions", []string{})
	v.SetDefault("dashboard.combined_regions", []string{})
	v.SetDefault("dashboard.holidays", []string{})
	v.SetDefault("dashboard.chart.x_axis_name", dash.ChartOptions.XAxisName)
	v.SetDefault("dashboard.chart.y_axis_name", dash.ChartOptions.YAxisName)
	v.SetDefault("dashboard.chart.width", dash.ChartOptions.Width)
	v.SetDefault("dashboard.chart.height", dash.ChartOptions.Height)
}

// Load builds the configuration from v, reading the config file first if one is named. Nested
// keys map to environment variables with the prefix and dots replaced by underscores, for
// example CALLFORECAST_DASHBOARD_PEDIATRIC_PATH.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config, %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration, %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Address == "" {
		return ErrNoAddress
	}
	if !slices.Contains(logLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("%q, %w", c.LogLevel, ErrInvalidLogLevel)
	}
	if !slices.Contains(logFormats, strings.ToLower(c.LogFormat)) {
		return fmt.Errorf("%q, %w", c.LogFormat, ErrInvalidLogFormat)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.ShutdownTimeout < 0 {
		return ErrInvalidTimeout
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("%q, %w", c.Metrics.Path, ErrInvalidPath)
	}
	if c.Dashboard.PediatricPath == "" || c.Dashboard.AdultPath == "" {
		return ErrNoTablePath
	}
	if _, err := holiday.Holidays(c.Dashboard.Holidays); err != nil {
		return err
	}
	return nil
}
