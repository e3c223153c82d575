package logger

import (
	"strings"

	"github.com/aleister1102/filemonitor/internal/common/errorwrapper"
	"github.com/aleister1102/filemonitor/internal/config"
	"github.com/rs/zerolog"
)

// LogFormat selects how records are encoded
type LogFormat int

const (
	FormatText LogFormat = iota
	FormatJSON
	FormatConsole
)

func (f LogFormat) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatConsole:
		return "console"
	default:
		return "text"
	}
}

// TextTimeFormat is the timestamp layout of text and console records.
const TextTimeFormat = "2006-01-02 15:04:05"

// Options is the resolved logger setup after defaults are applied
type Options struct {
	Level      zerolog.Level
	Format     LogFormat
	Console    bool
	LogDir     string // empty disables the daily file
	FilePrefix string
	MaxSizeMB  int
	MaxBackups int
}

func defaultOptions() Options {
	return Options{
		Level:      zerolog.InfoLevel,
		Format:     FormatText,
		Console:    true,
		FilePrefix: config.DefaultLogFilePrefix,
		MaxSizeMB:  config.DefaultMaxLogSizeMB,
		MaxBackups: config.DefaultMaxLogBackups,
	}
}

// optionsFromConfig applies cfg over the defaults. An unknown level falls back
// to info since ValidateConfig has already rejected it on the normal path.
func optionsFromConfig(cfg config.LogConfig) Options {
	opts := defaultOptions()
	if level, err := ParseLevel(cfg.LogLevel); err == nil {
		opts.Level = level
	}
	opts.Format = ParseFormat(cfg.LogFormat)
	opts.Console = cfg.Console
	opts.LogDir = cfg.LogDir
	if cfg.LogFilePrefix != "" {
		opts.FilePrefix = cfg.LogFilePrefix
	}
	if cfg.MaxLogSizeMB > 0 {
		opts.MaxSizeMB = cfg.MaxLogSizeMB
	}
	if cfg.MaxLogBackups > 0 {
		opts.MaxBackups = cfg.MaxLogBackups
	}
	return opts
}

// ParseLevel accepts zerolog level names plus "warning". Empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		name = "warn"
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.InfoLevel, errorwrapper.WrapError(err, "invalid log level")
	}
	return level, nil
}

// ParseFormat maps a config value to a LogFormat, defaulting to text.
func ParseFormat(s string) LogFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "console":
		return FormatConsole
	default:
		return FormatText
	}
}
