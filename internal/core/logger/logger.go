// Package logger defines the application's structured logging surface.
package logger

import "go.uber.org/zap"

// Level defines the log level
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return DebugLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	default:
		return InfoLevel
	}
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value interface{}
}

// Logger interface defines the behavior of the logging system
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	// With creates a child logger with the provided fields
	With(fields ...Field) Logger

	// SetLevel dynamically changes the log level
	SetLevel(level Level)

	// Unwrap exposes the underlying zap logger for components that consume
	// zap directly
	Unwrap() *zap.Logger

	// Sync flushes any buffered log entries
	Sync() error
}

// Any creates a new Field
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
