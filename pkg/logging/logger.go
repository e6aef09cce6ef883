package logging

import (
	"context"
	"os"
	"time"

	"github.com/promptsentry/promptscan/pkg/scanid"
	"github.com/rs/zerolog"
)

// Logger is an interface for logging
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
}

// ZeroLogger implements Logger using zerolog
type ZeroLogger struct {
	logger zerolog.Logger
}

// New creates a new ZeroLogger writing console output to stderr
func New() *ZeroLogger {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()
	return &ZeroLogger{logger: logger}
}

// WithLevel creates a new ZeroLogger with the specified level
func WithLevel(level string) func(*ZeroLogger) {
	return func(l *ZeroLogger) {
		switch level {
		case "debug":
			l.logger = l.logger.Level(zerolog.DebugLevel)
		case "info":
			l.logger = l.logger.Level(zerolog.InfoLevel)
		case "warn":
			l.logger = l.logger.Level(zerolog.WarnLevel)
		case "error":
			l.logger = l.logger.Level(zerolog.ErrorLevel)
		default:
			l.logger = l.logger.Level(zerolog.InfoLevel)
		}
	}
}

// decorate attaches the scan correlation id and caller fields to an event.
func decorate(ctx context.Context, event *zerolog.Event, fields map[string]interface{}) *zerolog.Event {
	if id, err := scanid.GetScanID(ctx); err == nil {
		event = event.Str("scan_id", id)
	}
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	return event
}

// Info logs an info message
func (l *ZeroLogger) Info(ctx context.Context, msg string, fields map[string]interface{}) {
	decorate(ctx, l.logger.Info(), fields).Msg(msg)
}

// Warn logs a warning message
func (l *ZeroLogger) Warn(ctx context.Context, msg string, fields map[string]interface{}) {
	decorate(ctx, l.logger.Warn(), fields).Msg(msg)
}

// Error logs an error message
func (l *ZeroLogger) Error(ctx context.Context, msg string, fields map[string]interface{}) {
	decorate(ctx, l.logger.Error(), fields).Msg(msg)
}

// Debug logs a debug message
func (l *ZeroLogger) Debug(ctx context.Context, msg string, fields map[string]interface{}) {
	decorate(ctx, l.logger.Debug(), fields).Msg(msg)
}
