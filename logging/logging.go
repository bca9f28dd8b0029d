package logging

import (
	"context"
	"log/slog"
	"maps"
)

// ANSI color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorYellow = "\033[33m"
	ColorBold   = "\033[1m"
)

// Level represents log levels
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Fields represents structured logging fields
type Fields map[string]any

// Logger defines the interface that the library expects for logging
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)
	Fatal(err error, msg string, fields ...Fields)

	// WithFields returns a logger with preset fields
	WithFields(fields Fields) Logger

	// WithContext returns a logger carrying the fields stored by ContextWithFields
	WithContext(ctx context.Context) Logger

	// SetLevel sets the minimum log level
	SetLevel(level Level)
}

type fieldsKey struct{}

// ContextWithFields stores fields in ctx so that WithContext picks them up.
// Fields already present in ctx are kept unless overwritten.
func ContextWithFields(ctx context.Context, fields Fields) context.Context {
	merged := make(Fields)
	if existing, ok := ctx.Value(fieldsKey{}).(Fields); ok {
		maps.Copy(merged, existing)
	}
	maps.Copy(merged, fields)
	return context.WithValue(ctx, fieldsKey{}, merged)
}

func fieldsFromContext(ctx context.Context) (Fields, bool) {
	if ctx == nil {
		return nil, false
	}
	fields, ok := ctx.Value(fieldsKey{}).(Fields)
	return fields, ok && len(fields) > 0
}

var globalLogger Logger = NewDefaultLogger()

// SetGlobalLogger sets the global logger instance
func SetGlobalLogger(logger Logger) {
	if logger == nil {
		globalLogger = &NoOpLogger{}
	} else {
		globalLogger = logger
	}
}

// GetGlobalLogger returns the current global logger
func GetGlobalLogger() Logger {
	return globalLogger
}

// OrGlobal returns logger, or the global logger when logger is nil.
func OrGlobal(logger Logger) Logger {
	if logger == nil {
		return globalLogger
	}
	return logger
}

// SlogAdapter routes library logs into a log/slog logger so the library can
// share an application's handler.
//
// Example integration:
//
//	logging.SetGlobalLogger(logging.FromSlog(slog.Default()))
type SlogAdapter struct {
	logger *slog.Logger
	level  Level
}

// FromSlog wraps an slog logger. A nil logger yields slog.Default().
func FromSlog(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger, level: DebugLevel}
}

func (a *SlogAdapter) log(level Level, err error, msg string, fields ...Fields) {
	if level < a.level {
		return
	}

	attrs := make([]any, 0, 2*len(fields)+2)
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}
	for _, f := range fields {
		for k, v := range f {
			attrs = append(attrs, slog.Any(k, v))
		}
	}

	switch level {
	case DebugLevel:
		a.logger.Debug(msg, attrs...)
	case InfoLevel:
		a.logger.Info(msg, attrs...)
	case WarnLevel:
		a.logger.Warn(msg, attrs...)
	default:
		// slog has no fatal level; the application decides whether to exit
		a.logger.Error(msg, attrs...)
	}
}

func (a *SlogAdapter) Debug(msg string, fields ...Fields) { a.log(DebugLevel, nil, msg, fields...) }
func (a *SlogAdapter) Info(msg string, fields ...Fields)  { a.log(InfoLevel, nil, msg, fields...) }
func (a *SlogAdapter) Warn(msg string, fields ...Fields)  { a.log(WarnLevel, nil, msg, fields...) }

func (a *SlogAdapter) Error(err error, msg string, fields ...Fields) {
	a.log(ErrorLevel, err, msg, fields...)
}

func (a *SlogAdapter) Fatal(err error, msg string, fields ...Fields) {
	a.log(FatalLevel, err, msg, fields...)
}

func (a *SlogAdapter) WithFields(fields Fields) Logger {
	attrs := make([]any, 0, 2*len(fields))
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}
	return &SlogAdapter{logger: a.logger.With(attrs...), level: a.level}
}

func (a *SlogAdapter) WithContext(ctx context.Context) Logger {
	if fields, ok := fieldsFromContext(ctx); ok {
		return a.WithFields(fields)
	}
	return a
}

func (a *SlogAdapter) SetLevel(level Level) {
	a.level = level
}

// Package-level logging functions that use the global logger
func Debug(msg string, fields ...Fields) {
	globalLogger.Debug(msg, fields...)
}

func Info(msg string, fields ...Fields) {
	globalLogger.Info(msg, fields...)
}

func Warn(msg string, fields ...Fields) {
	globalLogger.Warn(msg, fields...)
}

func Error(err error, msg string, fields ...Fields) {
	globalLogger.Error(err, msg, fields...)
}

func Fatal(err error, msg string, fields ...Fields) {
	globalLogger.Fatal(err, msg, fields...)
}

func WithFields(fields Fields) Logger {
	return globalLogger.WithFields(fields)
}

func WithContext(ctx context.Context) Logger {
	return globalLogger.WithContext(ctx)
}

func SetLevel(level Level) {
	globalLogger.SetLevel(level)
}
