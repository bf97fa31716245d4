// Package logger configures the process-wide slog logger and enriches log
// lines with request-scoped values carried in the context.
package logger

import (
	"context"
	"log/slog"
	"os"
)

// ContextKey is a private key type for the values this package reads back
// out of a context.
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	// ThreadIDKey carries the remote runtime thread id once a job exists,
	// tying every later log line to the job it belongs to.
	ThreadIDKey ContextKey = "thread_id"
	UsernameKey ContextKey = "username"
)

// contextAttrs maps each context key to the slog attribute it becomes.
var contextAttrs = []struct {
	key  ContextKey
	attr string
}{
	{RequestIDKey, "request_id"},
	{ThreadIDKey, "thread_id"},
	{UsernameKey, "username"},
}

type Config struct {
	Level  string // debug, info, warn, error
	Format string // json or text
}

// Init installs the default slog logger per the config. Unknown levels fall
// back to info.
func Init(cfg *Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// WithContext returns the default logger with any request-scoped values from
// ctx attached as attributes.
func WithContext(ctx context.Context) *slog.Logger {
	log := slog.Default()
	for _, ca := range contextAttrs {
		if v, ok := ctx.Value(ca.key).(string); ok && v != "" {
			log = log.With(ca.attr, v)
		}
	}
	return log
}

func Debug(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Debug(msg, args...)
}

func Info(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Info(msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Warn(msg, args...)
}

func Error(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Error(msg, args...)
}
