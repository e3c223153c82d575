package config

import (
	"math"
	"strings"
	"time"
)

// MonitorConfig defines the index range to probe and how to probe it
type MonitorConfig struct {
	BaseURL          string   `json:"base_url,omitempty" yaml:"base_url,omitempty" env:"BASE_URL" validate:"omitempty,url"`
	MonitorToken     string   `json:"monitor_token,omitempty" yaml:"monitor_token,omitempty" env:"MONITOR_TOKEN"`
	FilenameTemplate string   `json:"filename_template,omitempty" yaml:"filename_template,omitempty" env:"FILENAME_TEMPLATE" validate:"required,filenametemplate"`
	DownloadDir      string   `json:"download_dir,omitempty" yaml:"download_dir,omitempty" env:"DOWNLOAD_DIR" validate:"required"`
	StartIndex       int      `json:"start_index" yaml:"start_index" env:"START_INDEX" validate:"min=0"`
	EndIndex         int      `json:"end_index" yaml:"end_index" env:"END_INDEX" validate:"gtefield=StartIndex"`
	Extensions       []string `json:"extensions,omitempty" yaml:"extensions,omitempty" env:"SUPPORTED_EXTENSIONS" validate:"required,min=1,dive,extension"`
	MaxWorkers       int      `json:"max_workers,omitempty" yaml:"max_workers,omitempty" env:"MAX_WORKERS" validate:"min=1"`

	CheckIntervalMinutes   int `json:"check_interval_minutes,omitempty" yaml:"check_interval_minutes,omitempty" env:"CHECK_INTERVAL" validate:"min=1"`
	ReportIntervalHours    int `json:"report_interval_hours,omitempty" yaml:"report_interval_hours,omitempty" env:"REPORT_INTERVAL" validate:"min=1"`
	ProbeTimeoutSeconds    int `json:"probe_timeout_seconds,omitempty" yaml:"probe_timeout_seconds,omitempty" env:"PROBE_TIMEOUT_SECONDS" validate:"min=1"`
	DownloadTimeoutSeconds int `json:"download_timeout_seconds,omitempty" yaml:"download_timeout_seconds,omitempty" env:"DOWNLOAD_TIMEOUT_SECONDS" validate:"min=1"`
}

// NewDefaultMonitorConfig creates default monitor configuration
func NewDefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		FilenameTemplate:       DefaultFilenameTemplate,
		DownloadDir:            DefaultDownloadDir,
		StartIndex:             DefaultStartIndex,
		EndIndex:               DefaultEndIndex,
		Extensions:             ParseExtensions(DefaultSupportedExtensions),
		MaxWorkers:             DefaultMaxWorkers,
		CheckIntervalMinutes:   DefaultCheckIntervalMinutes,
		ReportIntervalHours:    DefaultReportIntervalHours,
		ProbeTimeoutSeconds:    DefaultProbeTimeoutSeconds,
		DownloadTimeoutSeconds: DefaultDownloadTimeoutSeconds,
	}
}

func (c MonitorConfig) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalMinutes) * time.Minute
}

func (c MonitorConfig) ReportInterval() time.Duration {
	return time.Duration(c.ReportIntervalHours) * time.Hour
}

func (c MonitorConfig) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

func (c MonitorConfig) DownloadTimeout() time.Duration {
	return time.Duration(c.DownloadTimeoutSeconds) * time.Second
}

// RangeSize returns how many indices [StartIndex, EndIndex] holds, or 0 when
// the range is inverted. The result saturates instead of overflowing.
func (c MonitorConfig) RangeSize() uint64 {
	if c.EndIndex < c.StartIndex {
		return 0
	}
	span := uint64(c.EndIndex) - uint64(c.StartIndex)
	if span == math.MaxUint64 {
		return span
	}
	return span + 1
}

// Indices returns every index in [StartIndex, EndIndex] in ascending order.
// Ranges that are inverted or wider than MaxIndexRange yield nil.
func (c MonitorConfig) Indices() []int {
	size := c.RangeSize()
	if size == 0 || size > MaxIndexRange {
		return nil
	}
	indices := make([]int, 0, int(size))
	for i := 0; i < int(size); i++ {
		indices = append(indices, c.StartIndex+i)
	}
	return indices
}

// ParseExtensions splits a comma-separated extension list, trimming blanks and leading dots.
func ParseExtensions(raw string) []string {
	parts := strings.Split(raw, ",")
	exts := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		ext := strings.TrimPrefix(strings.TrimSpace(p), ".")
		if ext == "" {
			continue
		}
		if _, dup := seen[ext]; dup {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	return exts
}
