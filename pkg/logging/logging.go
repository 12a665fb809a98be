package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields holds structured log fields
type Fields map[string]any

// Logger is the structured logging interface used across the application
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(msg string, fields ...Fields)
	WithFields(fields Fields) Logger
}

// zapLogger adapts a zap.Logger to the Logger interface
type zapLogger struct {
	base  *zap.Logger
	bound Fields
}

var (
	defaultLogger Logger = newZapLogger("info")
	defaultMu     sync.RWMutex
)

// Configure replaces the package default logger with one at the given level.
// Levels: debug, info, warn, error. Unknown levels fall back to info.
func Configure(level string) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = newZapLogger(level)
}

// Default returns the package default logger
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// WithFields returns the default logger bound to the given fields
func WithFields(fields Fields) Logger {
	return Default().WithFields(fields)
}

// NewDefaultLogger creates a standalone logger at info level
func NewDefaultLogger() Logger {
	return newZapLogger("info")
}

// NewLogger creates a standalone logger at the given level
func NewLogger(level string) Logger {
	return newZapLogger(level)
}

func newZapLogger(level string) *zapLogger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	base, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		base = zap.NewNop()
	}

	return &zapLogger{base: base}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *zapLogger) Debug(msg string, fields ...Fields) {
	l.base.Debug(msg, l.zapFields(fields)...)
}

func (l *zapLogger) Info(msg string, fields ...Fields) {
	l.base.Info(msg, l.zapFields(fields)...)
}

func (l *zapLogger) Warn(msg string, fields ...Fields) {
	l.base.Warn(msg, l.zapFields(fields)...)
}

func (l *zapLogger) Error(msg string, fields ...Fields) {
	l.base.Error(msg, l.zapFields(fields)...)
}

func (l *zapLogger) WithFields(fields Fields) Logger {
	merged := make(Fields, len(l.bound)+len(fields))
	for k, v := range l.bound {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &zapLogger{base: l.base, bound: merged}
}

// zapFields flattens bound fields plus call-site fields into zap fields
func (l *zapLogger) zapFields(extra []Fields) []zap.Field {
	out := make([]zap.Field, 0, len(l.bound)+4)
	for k, v := range l.bound {
		out = append(out, zap.Any(k, v))
	}
	for _, f := range extra {
		for k, v := range f {
			out = append(out, zap.Any(k, v))
		}
	}
	return out
}
