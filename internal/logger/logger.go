package logger

import (
	"github.com/aleister1102/filemonitor/internal/config"

	"github.com/rs/zerolog"
)

// Logger owns the zerolog instance and the daily log file behind it
type Logger struct {
	zerolog zerolog.Logger
	opts    Options
	file    *DailyFileWriter
}

// GetZerolog returns the underlying zerolog instance
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zerolog
}

// Level returns the minimum level records must have to be written.
func (l *Logger) Level() zerolog.Level {
	return l.opts.Level
}

// FilePath returns the log file currently written to, or "" without file output.
func (l *Logger) FilePath() string {
	if l.file == nil {
		return ""
	}
	return l.file.Path()
}

// Close flushes and closes the log file if one is open.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// New creates a logger from application config
func New(cfg config.LogConfig) (*Logger, error) {
	return NewLoggerBuilder().WithConfig(cfg).Build()
}
