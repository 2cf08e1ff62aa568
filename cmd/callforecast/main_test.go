package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pediatricPath = filepath.Join("..", "..", "testdata", "pediatric_forecast.csv")
	adultPath     = filepath.Join("..", "..", "testdata", "adult_forecast.csv")
)

func TestParseDate(t *testing.T) {
	testData := map[string]struct {
		input    string
		expected time.Time
		hasErr   bool
	}{
		"empty":  {input: "", expected: time.Time{}},
		"date":   {input: "2024-11-28", expected: time.Date(2024, 11, 28, 0, 0, 0, 0, time.UTC)},
		"layout": {input: "11/28/2024", hasErr: true},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := parseDate(td.input)
			if td.hasErr {
				assert.Error(t, err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestSetupLogging(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	testData := map[string]struct {
		level        string
		format       string
		debugEnabled bool
		warnEnabled  bool
	}{
		"debug text": {level: "debug", format: "text", debugEnabled: true, warnEnabled: true},
		"warn json":  {level: "warn", format: "json", warnEnabled: true},
		"unknown":    {level: "verbose", format: "", warnEnabled: true},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			logger := setupLogging(td.level, td.format)
			assert.Equal(t, td.debugEnabled, logger.Enabled(context.Background(), slog.LevelDebug))
			assert.Equal(t, td.warnEnabled, logger.Enabled(context.Background(), slog.LevelWarn))
		})
	}
}

func TestVersion(t *testing.T) {
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"version"})

	require.Nil(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Version:    dev")
}

func TestRender(t *testing.T) {
	out := filepath.Join(t.TempDir(), "forecast.html")

	cmd := newRootCmd()
	cmd.SetArgs([]string{
		"render",
		"--pediatric", pediatricPath,
		"--adult", adultPath,
		"--holidays", "thanksgiving",
		"--log-level", "error",
		"--combined-regions", "total_forecast_NY",
		"--combined-start", "2024-11-20",
		"--combined-end", "2024-11-30",
		"--out", out,
	})
	require.Nil(t, cmd.Execute())

	b, err := os.ReadFile(out)
	require.Nil(t, err)
	page := string(b)
	assert.Contains(t, page, "<title>CALLS FORECAST DASHBOARD</title>")
	assert.Contains(t, page, "Combined Age Group Forecast")
	assert.Contains(t, page, "total_forecast_NY")
	assert.Contains(t, page, "Thanksgiving_Day_2024")
}

func TestRenderEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	contents := "CALLFORECAST_DASHBOARD_TITLE=NIGHT SHIFT FORECAST\n" +
		"CALLFORECAST_DASHBOARD_PEDIATRIC_PATH=" + pediatricPath + "\n" +
		"CALLFORECAST_DASHBOARD_ADULT_PATH=" + adultPath + "\n"
	require.Nil(t, os.WriteFile(envFile, []byte(contents), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("CALLFORECAST_DASHBOARD_TITLE")
		os.Unsetenv("CALLFORECAST_DASHBOARD_PEDIATRIC_PATH")
		os.Unsetenv("CALLFORECAST_DASHBOARD_ADULT_PATH")
	})

	out := filepath.Join(dir, "forecast.html")
	cmd := newRootCmd()
	cmd.SetArgs([]string{"render", "--env-file", envFile, "--log-level", "error", "--out", out})
	require.Nil(t, cmd.Execute())

	b, err := os.ReadFile(out)
	require.Nil(t, err)
	assert.Contains(t, string(b), "<title>NIGHT SHIFT FORECAST</title>")
}

func TestRenderErrors(t *testing.T) {
	testData := map[string]struct {
		args []string
		err  error
	}{
		"bad date": {
			args: []string{"--start", "tomorrow"},
		},
		"reversed range": {
			args: []string{"--start", "2024-12-02", "--end", "2024-12-01"},
		},
		"missing table": {
			args: []string{"--pediatric", filepath.Join("testdata", "missing.csv")},
		},
		"unknown holiday": {
			args: []string{"--holidays", "festivus"},
		},
		"missing env file": {
			args: []string{"--env-file", filepath.Join("testdata", "missing.env")},
		},
		"unknown profile": {
			args: []string{"--profile", "block"},
			err:  errUnknownProfile,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			args := []string{
				"render",
				"--pediatric", pediatricPath,
				"--adult", adultPath,
				"--log-level", "error",
				"--out", filepath.Join(t.TempDir(), "forecast.html"),
			}
			cmd := newRootCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(append(args, td.args...))

			err := cmd.Execute()
			require.Error(t, err)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
			}
		})
	}
}

func TestRenderProfileOnError(t *testing.T) {
	testData := map[string]struct {
		mode     string
		filename string
	}{
		"cpu": {mode: "cpu", filename: "cpu.pprof"},
		"mem": {mode: "mem", filename: "mem.pprof"},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			cmd := newRootCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs([]string{
				"render",
				"--pediatric", pediatricPath,
				"--adult", adultPath,
				"--log-level", "error",
				"--profile", td.mode,
				"--profile-path", dir,
				"--start", "tomorrow",
				"--out", filepath.Join(dir, "forecast.html"),
			})
			require.Error(t, cmd.Execute())

			info, err := os.Stat(filepath.Join(dir, td.filename))
			require.Nil(t, err)
			assert.False(t, info.IsDir())
		})
	}
}
