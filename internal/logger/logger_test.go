package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/aleister1102/filemonitor/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultLogger(t *testing.T) {
	cfg := config.NewDefaultLogConfig()
	cfg.LogDir = t.TempDir()
	cfg.Console = false

	log, err := New(cfg)
	require.NoError(t, err)
	defer func() { _ = log.Close() }()

	assert.Equal(t, filepath.Join(cfg.LogDir, FileNameFor("file_monitor", time.Now())), log.FilePath())
	assert.Equal(t, zerolog.InfoLevel, log.Level())
}

func TestTextFormatLine(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLoggerBuilder().
		WithFormat(FormatText).
		WithConsoleOutput(&buf).
		WithoutStdlibRedirect().
		Build()
	require.NoError(t, err)

	log.GetZerolog().Info().Int("index", 7).Msg("Checking file")

	line := buf.String()
	assert.Regexp(t, regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} \[INFO\] Checking file index=7`), line)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLoggerBuilder().
		WithLevel(zerolog.WarnLevel).
		WithConsoleOutput(&buf).
		WithoutStdlibRedirect().
		Build()
	require.NoError(t, err)

	log.GetZerolog().Info().Msg("hidden")
	log.GetZerolog().Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "[WARN] shown")
}

func TestFileOutput(t *testing.T) {
	dir := t.TempDir()
	log, err := NewLoggerBuilder().
		WithConsole(false).
		WithDailyFile(dir, "file_monitor").
		WithoutStdlibRedirect().
		Build()
	require.NoError(t, err)

	log.GetZerolog().Error().Msg("disk full")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(filepath.Join(dir, FileNameFor("file_monitor", time.Now())))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[ERROR] disk full")
}

func TestBuild_NoWriters(t *testing.T) {
	_, err := NewLoggerBuilder().WithConsole(false).WithoutStdlibRedirect().Build()
	assert.Error(t, err)
}

func TestDailyFileWriter_SwitchesOnDateChange(t *testing.T) {
	dir := t.TempDir()
	w, err := NewDailyFileWriter(dir, "file_monitor", 10, 1)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	day1 := time.Date(2026, 3, 1, 23, 59, 0, 0, time.Local)
	day2 := day1.Add(2 * time.Minute)

	w.now = func() time.Time { return day1 }
	_, err = w.Write([]byte("first\n"))
	require.NoError(t, err)

	w.now = func() time.Time { return day2 }
	_, err = w.Write([]byte("second\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "file_monitor_20260302.log"), w.Path())

	first, err := os.ReadFile(filepath.Join(dir, "file_monitor_20260301.log"))
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(first))

	second, err := os.ReadFile(filepath.Join(dir, "file_monitor_20260302.log"))
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(second))
}

func TestParsers(t *testing.T) {
	level, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)

	level, err = ParseLevel("warning")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, level)

	level, err = ParseLevel("loud")
	assert.Error(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)

	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatConsole, ParseFormat("console"))
	assert.Equal(t, FormatText, ParseFormat("anything"))
}
