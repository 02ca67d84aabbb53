// Package logger configures the structured logger shared by the service.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// L is the global logger. It is usable before Init, writing text to stderr.
var L = slog.New(slog.NewTextHandler(os.Stderr, nil))

type contextKey struct{}

// ParseLevel converts a level name to a slog level. Unknown names are an error.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(s))))
	return level, err
}

// Init initializes the global logger to write JSON records to w.
// Call this once at application startup, after loading config.
func Init(w io.Writer, levelStr string) {
	level, err := ParseLevel(levelStr)
	if err != nil {
		level = slog.LevelInfo
		slog.Warn("Invalid log level specified, defaulting to INFO", "configuredLevel", levelStr)
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			}
			return a
		},
	}
	L = slog.New(slog.NewJSONHandler(w, opts))
	slog.SetDefault(L)
	L.Debug("Logger initialized", "level", level.String())
}

// NewRequestID returns a fresh identifier for a request.
func NewRequestID() string { return uuid.NewString() }

// WithRequestID returns a context carrying a logger tagged with the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return WithContext(ctx, FromContext(ctx).With("requestID", id))
}

// WithContext returns a context carrying l.
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext retrieves the logger carried by ctx, or the global logger.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return l
	}
	return L
}
