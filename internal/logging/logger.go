// Package logging is khabar's human-readable file log. Every helper is a
// no-op until Init or SetOutput has run, so packages can log freely in tests.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

var (
	current atomic.Pointer[log.Logger]
	logFile *os.File
)

// Dir returns ~/.khabar/logs.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home directory: %w", err)
	}
	return filepath.Join(home, ".khabar", "logs"), nil
}

// Init opens today's log file (khabar-YYYY-MM-DD.log) under dir, creating
// it if needed. An empty dir means Dir(). level is a charmbracelet/log
// level name; empty means debug.
func Init(dir, level string) error {
	if dir == "" {
		d, err := Dir()
		if err != nil {
			return err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	name := fmt.Sprintf("khabar-%s.log", time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	if err := SetOutput(f, level); err != nil {
		f.Close()
		return err
	}
	logFile = f
	return nil
}

// SetOutput logs to w instead of a file.
func SetOutput(w io.Writer, level string) error {
	lvl := log.DebugLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		lvl = parsed
	}
	current.Store(log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           lvl,
	}))
	return nil
}

// Close detaches the logger and closes the log file, if any.
func Close() {
	current.Store(nil)
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// Info logs at info level.
func Info(msg string, keyvals ...any) {
	if l := current.Load(); l != nil {
		l.Info(msg, keyvals...)
	}
}

// Debug logs at debug level.
func Debug(msg string, keyvals ...any) {
	if l := current.Load(); l != nil {
		l.Debug(msg, keyvals...)
	}
}

// Warn logs at warn level.
func Warn(msg string, keyvals ...any) {
	if l := current.Load(); l != nil {
		l.Warn(msg, keyvals...)
	}
}

// Error logs at error level.
func Error(msg string, keyvals ...any) {
	if l := current.Load(); l != nil {
		l.Error(msg, keyvals...)
	}
}

// WithPrefix returns a child logger tagged with prefix, or nil before Init.
func WithPrefix(prefix string) *log.Logger {
	if l := current.Load(); l != nil {
		return l.WithPrefix(prefix)
	}
	return nil
}
