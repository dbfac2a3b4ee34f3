// Package observability provides structured logging for kinoteka.
package observability

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/masq"

	"github.com/jmylchreest/kinoteka/internal/config"
)

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	loggerKey contextKey = "logger"
)

// LevelTrace is below debug and logs every listing state transition.
const LevelTrace = slog.Level(-8)

// RedactedValue replaces secrets in log output.
const RedactedValue = "[REDACTED]"

// sensitiveKeys are matched case-insensitively against attribute keys and
// URL query parameter names.
var sensitiveKeys = []string{"password", "secret", "token", "apikey", "api_key", "credential", "authorization"}

// NewLogger creates a new slog.Logger based on the provided configuration.
func NewLogger(cfg config.LoggingConfig) *slog.Logger {
	return NewLoggerWithWriter(cfg, os.Stderr)
}

// NewLoggerWithWriter creates a new slog.Logger that writes to the provided writer.
func NewLoggerWithWriter(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	redact := masq.New(
		masq.WithCensor(isSensitiveKey),
		masq.WithRedactMessage(RedactedValue),
	)

	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch {
			case a.Key == slog.TimeKey && len(groups) == 0:
				if t, ok := a.Value.Any().(time.Time); ok && cfg.TimeFormat != "" {
					return slog.String(slog.TimeKey, t.Format(cfg.TimeFormat))
				}
				return a
			case a.Key == slog.LevelKey && len(groups) == 0:
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					return slog.String(slog.LevelKey, "TRACE")
				}
				return a
			case a.Key == slog.SourceKey || a.Key == slog.MessageKey:
				return a
			}
			if a.Value.Kind() == slog.KindString {
				if s := redactURL(a.Value.String()); s != a.Value.String() {
					a = slog.String(a.Key, s)
				}
			}
			return redact(groups, a)
		},
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

func isSensitiveKey(fieldName string, _ any, _ string) bool {
	name := strings.ToLower(fieldName)
	for _, k := range sensitiveKeys {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

// redactURL masks the values of sensitive query parameters in s when s is a
// URL. Anything else is returned unchanged.
func redactURL(s string) string {
	i := strings.IndexByte(s, '?')
	if i < 0 || !strings.Contains(s[i:], "=") {
		return s
	}
	if _, err := url.Parse(s); err != nil {
		return s
	}

	pairs := strings.Split(s[i+1:], "&")
	changed := false
	for j, p := range pairs {
		k, _, found := strings.Cut(p, "=")
		if !found {
			continue
		}
		if name, err := url.QueryUnescape(k); err == nil && isSensitiveKey(name, nil, "") {
			pairs[j] = k + "=" + url.QueryEscape(RedactedValue)
			changed = true
		}
	}
	if !changed {
		return s
	}
	return s[:i+1] + strings.Join(pairs, "&")
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds a request ID to the logger.
func WithRequestID(logger *slog.Logger, requestID string) *slog.Logger {
	return logger.With(slog.String("request_id", requestID))
}

// WithComponent adds a component name to the logger for identifying the source.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(slog.String("component", component))
}

// WithOperation adds an operation name to the logger for tracking specific operations.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String("operation", operation))
}

// WithListing tags the logger with a listing kind name.
func WithListing(logger *slog.Logger, kind string) *slog.Logger {
	return logger.With(slog.String("listing", kind))
}

// WithError adds an error to the logger attributes.
func WithError(logger *slog.Logger, err error) *slog.Logger {
	if err == nil {
		return logger
	}
	return logger.With(slog.String("error", err.Error()))
}

// LoggerFromContext extracts a logger from the context.
// If no logger is found, returns the default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// ContextWithLogger adds a logger to the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// RequestIDFromContext extracts a request ID from the context.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithRequestID adds a request ID to the context.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// SetDefault sets the provided logger as the default slog logger.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}

// TimedOperation logs the end of an operation with its duration and error.
// The error pointer is read when the returned function runs.
//
// Usage:
//
//	var err error
//	defer observability.TimedOperation(ctx, logger, "fetch_page", &err)()
//
//nolint:gocritic // errPtr must be a pointer to capture errors set after this call
func TimedOperation(ctx context.Context, logger *slog.Logger, operation string, errPtr *error) func() {
	start := time.Now()
	return func() {
		attrs := []any{
			slog.String("operation", operation),
			slog.Duration("duration", time.Since(start)),
		}
		if errPtr != nil && *errPtr != nil {
			logger.WarnContext(ctx, "operation failed", append(attrs, slog.String("error", (*errPtr).Error()))...)
			return
		}
		logger.DebugContext(ctx, "operation completed", attrs...)
	}
}
