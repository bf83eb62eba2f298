// Package logger provides a structured logging wrapper around Go's slog
// package. It supports both JSON and text formatted output, log levels
// (debug, info, warn, error), and flexible output destinations (stdout,
// stderr, or a file path). The scheduler mirrors file output to stdout so an
// operator tailing either one sees the same progress.
//
// Components receive an explicit *Logger instance; there is no process-wide
// mutable logging state.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config describes where and how to log.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	Output string // stdout, stderr, or a file path
	Mirror bool   // when Output is a file, also copy lines to stdout
}

// Field is one structured key-value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

// Logger wraps slog.Logger with Field-based convenience methods.
type Logger struct {
	slog *slog.Logger
}

// New creates a logger from cfg. File outputs are created (including parent
// directories) and opened in append mode.
func New(cfg Config) (*Logger, error) {
	level, ok := parseLevel(cfg.Level)
	if !ok {
		return nil, fmt.Errorf("invalid log level: %s (expected: debug, info, warn, error)", cfg.Level)
	}

	var writer io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stdout":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	default:
		path := filepath.Clean(cfg.Output)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		writer = file
		if cfg.Mirror {
			writer = io.MultiWriter(file, os.Stdout)
		}
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(writer, opts)
	case "text":
		handler = slog.NewTextHandler(writer, opts)
	default:
		return nil, fmt.Errorf("invalid log format: %s (expected: json, text)", cfg.Format)
	}

	return &Logger{slog: slog.New(handler)}, nil
}

// NewWriter creates a text logger writing to w. Used in tests and wherever a
// caller already owns the destination.
func NewWriter(w io.Writer, level string) (*Logger, error) {
	lvl, ok := parseLevel(level)
	if !ok {
		return nil, fmt.Errorf("invalid log level: %s", level)
	}
	return &Logger{
		slog: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})),
	}, nil
}

// Discard returns a logger that drops everything. Handy default for library
// callers that don't care about logs.
func Discard() *Logger {
	return &Logger{
		slog: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Debug logs a message at debug level.
func (l *Logger) Debug(msg string, fields ...Field) {
	l.slog.Debug(msg, fieldsToAny(fields)...)
}

// Info logs a message at info level.
func (l *Logger) Info(msg string, fields ...Field) {
	l.slog.Info(msg, fieldsToAny(fields)...)
}

// Warn logs a message at warn level.
func (l *Logger) Warn(msg string, fields ...Field) {
	l.slog.Warn(msg, fieldsToAny(fields)...)
}

// Error logs a message at error level with the causing error.
func (l *Logger) Error(msg string, err error, fields ...Field) {
	all := append([]Field{{Key: "error", Value: err}}, fields...)
	l.slog.Error(msg, fieldsToAny(all)...)
}

func fieldsToAny(fields []Field) []any {
	args := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	return args
}
