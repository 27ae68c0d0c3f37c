// Package logging wraps charmbracelet/log behind a small AppLogger type and
// package-level convenience functions. Every component of the service logs
// through this package so output format and level stay consistent across the
// HTTP server, the MCP server, and the CLI.
package logging

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

type AppLogger struct {
	logger *log.Logger
}

var (
	defaultLogger *AppLogger
	mu            sync.Mutex
)

// GetDefault returns the process-wide logger, creating one at info level on
// first use.
func GetDefault() *AppLogger {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewAppLogger("info")
	}
	return defaultLogger
}

// SetDefault replaces the process-wide logger. Called once at startup after
// settings are loaded.
func SetDefault(l *AppLogger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = l
}

// Package-level convenience functions for quick logging
func Info(msg string, keyvals ...interface{})  { GetDefault().Info(msg, keyvals...) }
func Warn(msg string, keyvals ...interface{})  { GetDefault().Warn(msg, keyvals...) }
func Error(msg string, keyvals ...interface{}) { GetDefault().Error(msg, keyvals...) }
func Debug(msg string, keyvals ...interface{}) { GetDefault().Debug(msg, keyvals...) }

// NewAppLogger creates a logger writing to stderr at the given level.
// Unrecognized levels fall back to info.
func NewAppLogger(level string) *AppLogger {
	return newLogger(os.Stderr, level)
}

func newLogger(w io.Writer, level string) *AppLogger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "cursor-rules",
	})
	logger.SetLevel(parseLevel(level))
	return &AppLogger{logger: logger}
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func (al *AppLogger) Info(msg string, keyvals ...interface{}) {
	al.logger.Info(msg, keyvals...)
}

func (al *AppLogger) Warn(msg string, keyvals ...interface{}) {
	al.logger.Warn(msg, keyvals...)
}

func (al *AppLogger) Error(msg string, keyvals ...interface{}) {
	al.logger.Error(msg, keyvals...)
}

func (al *AppLogger) Debug(msg string, keyvals ...interface{}) {
	al.logger.Debug(msg, keyvals...)
}

// NewTestLogger creates a logger that writes to a buffer for testing.
func NewTestLogger() (*AppLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{
		ReportTimestamp: false,
		Prefix:          "test",
	})
	logger.SetLevel(log.DebugLevel)
	return &AppLogger{logger: logger}, &buf
}
