package logging

import (
	"log/slog"
	"os"
)

// Level controls which messages a Logger emits
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Field holds structured key/value pairs attached to a log message
type Field map[string]interface{}

// WithField builds a single key/value field
func WithField(key string, value interface{}) Field {
	return Field{key: value}
}

// WithFields builds a field set from a map
func WithFields(fields map[string]interface{}) Field {
	return Field(fields)
}

// Logger is a leveled structured logger used throughout the application
type Logger struct {
	s *slog.Logger
}

// New creates a logger writing to stderr at the given minimum level
func New(level Level) *Logger {
	var slogLevel slog.Level
	switch level {
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelWarn:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel})
	return &Logger{s: slog.New(handler)}
}

func (l *Logger) Debug(msg string, fields ...Field) {
	l.s.Debug(msg, attrs(fields)...)
}

func (l *Logger) Info(msg string, fields ...Field) {
	l.s.Info(msg, attrs(fields)...)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	l.s.Warn(msg, attrs(fields)...)
}

func (l *Logger) Error(msg string, fields ...Field) {
	l.s.Error(msg, attrs(fields)...)
}

func attrs(fields []Field) []any {
	var out []any
	for _, f := range fields {
		for k, v := range f {
			out = append(out, slog.Any(k, v))
		}
	}
	return out
}
