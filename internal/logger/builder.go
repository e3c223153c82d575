package logger

import (
	"io"
	stdlog "log"
	"os"

	"github.com/aleister1102/filemonitor/internal/common/errorwrapper"
	"github.com/aleister1102/filemonitor/internal/config"
	"github.com/rs/zerolog"
)

// LoggerBuilder provides fluent interface for building loggers
type LoggerBuilder struct {
	opts           Options
	consoleOut     io.Writer
	redirectStdlog bool
}

// NewLoggerBuilder starts from console-only text output at info level
func NewLoggerBuilder() *LoggerBuilder {
	return &LoggerBuilder{
		opts:           defaultOptions(),
		consoleOut:     os.Stderr,
		redirectStdlog: true,
	}
}

// WithConfig replaces every option with the values from cfg
func (lb *LoggerBuilder) WithConfig(cfg config.LogConfig) *LoggerBuilder {
	lb.opts = optionsFromConfig(cfg)
	return lb
}

func (lb *LoggerBuilder) WithLevel(level zerolog.Level) *LoggerBuilder {
	lb.opts.Level = level
	return lb
}

func (lb *LoggerBuilder) WithFormat(format LogFormat) *LoggerBuilder {
	lb.opts.Format = format
	return lb
}

func (lb *LoggerBuilder) WithConsole(enabled bool) *LoggerBuilder {
	lb.opts.Console = enabled
	return lb
}

// WithConsoleOutput sends console output to out instead of stderr
func (lb *LoggerBuilder) WithConsoleOutput(out io.Writer) *LoggerBuilder {
	lb.consoleOut = out
	return lb
}

// WithDailyFile writes <dir>/<prefix>_YYYYMMDD.log next to the console
func (lb *LoggerBuilder) WithDailyFile(dir, prefix string) *LoggerBuilder {
	lb.opts.LogDir = dir
	if prefix != "" {
		lb.opts.FilePrefix = prefix
	}
	return lb
}

// WithoutStdlibRedirect leaves the standard log package untouched
func (lb *LoggerBuilder) WithoutStdlibRedirect() *LoggerBuilder {
	lb.redirectStdlog = false
	return lb
}

// Build opens the outputs and returns the logger
func (lb *LoggerBuilder) Build() (*Logger, error) {
	if lb.opts.LogDir != "" && lb.opts.MaxSizeMB <= 0 {
		return nil, errorwrapper.NewValidationError("max_log_size_mb", lb.opts.MaxSizeMB, "max size must be positive")
	}

	var writers []io.Writer
	if lb.opts.Console {
		writers = append(writers, encodeWriter(lb.opts.Format, lb.consoleOut, false))
	}

	var daily *DailyFileWriter
	if lb.opts.LogDir != "" {
		dw, err := NewDailyFileWriter(lb.opts.LogDir, lb.opts.FilePrefix, lb.opts.MaxSizeMB, lb.opts.MaxBackups)
		if err != nil {
			return nil, errorwrapper.WrapError(err, "failed to create file writer")
		}
		writers = append(writers, encodeWriter(lb.opts.Format, dw, true))
		daily = dw
	}

	if len(writers) == 0 {
		return nil, errorwrapper.NewError("no output writers configured")
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lb.opts.Level).
		With().
		Timestamp().
		Logger()

	if lb.redirectStdlog {
		stdlog.SetOutput(zl)
		stdlog.SetFlags(0)
	}

	return &Logger{zerolog: zl, opts: lb.opts, file: daily}, nil
}
