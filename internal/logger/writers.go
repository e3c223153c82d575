package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// encodeWriter wraps out in the encoding for format. Files pass noColor.
func encodeWriter(format LogFormat, out io.Writer, noColor bool) io.Writer {
	switch format {
	case FormatJSON:
		return out
	case FormatConsole:
		return zerolog.ConsoleWriter{Out: out, NoColor: noColor, TimeFormat: TextTimeFormat}
	default:
		// "2006-01-02 15:04:05 [INFO] message key=value"
		return zerolog.ConsoleWriter{
			Out:         out,
			NoColor:     true,
			TimeFormat:  TextTimeFormat,
			FormatLevel: bracketLevel,
		}
	}
}

func bracketLevel(i any) string {
	level, ok := i.(string)
	if !ok || level == "" {
		return "[-]"
	}
	return "[" + strings.ToUpper(level) + "]"
}

// DailyFileWriter writes to <dir>/<prefix>_YYYYMMDD.log and moves to a new
// file when the local date changes. Each day's file is size-capped by lumberjack.
type DailyFileWriter struct {
	mu         sync.Mutex
	dir        string
	prefix     string
	maxSizeMB  int
	maxBackups int
	now        func() time.Time

	day     string
	current *lumberjack.Logger
}

// NewDailyFileWriter creates the log directory and opens today's file lazily.
func NewDailyFileWriter(dir, prefix string, maxSizeMB, maxBackups int) (*DailyFileWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	return &DailyFileWriter{
		dir:        dir,
		prefix:     prefix,
		maxSizeMB:  maxSizeMB,
		maxBackups: maxBackups,
		now:        time.Now,
	}, nil
}

// FileNameFor returns the log file name used on the given day.
func FileNameFor(prefix string, day time.Time) string {
	return fmt.Sprintf("%s_%s.log", prefix, day.Format("20060102"))
}

// Write implements io.Writer
func (w *DailyFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.rollIfNeeded()
	return w.current.Write(p)
}

// Path returns the file currently written to.
func (w *DailyFileWriter) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.rollIfNeeded()
	return w.current.Filename
}

// Close closes the current file.
func (w *DailyFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current == nil {
		return nil
	}
	err := w.current.Close()
	w.current = nil
	w.day = ""
	return err
}

// rollIfNeeded must be called with mu held.
func (w *DailyFileWriter) rollIfNeeded() {
	now := w.now()
	day := now.Format("20060102")
	if w.current != nil && day == w.day {
		return
	}
	if w.current != nil {
		_ = w.current.Close()
	}
	w.day = day
	w.current = &lumberjack.Logger{
		Filename:   filepath.Join(w.dir, FileNameFor(w.prefix, now)),
		MaxSize:    w.maxSizeMB,
		MaxBackups: w.maxBackups,
		LocalTime:  true,
	}
}
