// Package observability builds the run logger and the boxed console summaries.
package observability

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// logFileLayout names log files like "03_05_24 09_07_01 applyJobs.log".
const logFileLayout = "01_02_06 15_04_05"

// LoggerOptions configures NewLogger.
type LoggerOptions struct {
	// Dir receives one log file per run; empty disables the file
	Dir     string
	Verbose bool
	// Console defaults to os.Stderr
	Console io.Writer
	Now     func() time.Time
}

// Logger is the run logger together with its log file.
type Logger struct {
	*slog.Logger
	Path string
	file *os.File
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// LogFileName returns the per-run log file name for t.
func LogFileName(t time.Time) string {
	return t.Format(logFileLayout) + " applyJobs.log"
}

// NewLogger creates a text logger writing to the console and to a new file in Dir.
func NewLogger(opts LoggerOptions) (*Logger, error) {
	if opts.Console == nil {
		opts.Console = os.Stderr
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	l := &Logger{}
	out := opts.Console
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		l.Path = filepath.Join(opts.Dir, LogFileName(opts.Now()))
		f, err := os.OpenFile(l.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = f
		out = io.MultiWriter(opts.Console, f)
	}

	l.Logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	return l, nil
}
