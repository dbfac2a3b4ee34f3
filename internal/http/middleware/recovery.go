package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/jmylchreest/kinoteka/internal/observability"
)

// problemInternal is the RFC 9457 body written after a panic, in the same
// shape huma uses for its own errors.
const problemInternal = `{"title":"Internal Server Error","status":500,"detail":"unexpected error while serving the request"}`

// Recovery is a middleware that recovers from panics and logs the error.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				reqLogger := logger
				if requestID := GetRequestID(r.Context()); requestID != "" {
					reqLogger = observability.WithRequestID(logger, requestID)
				}
				reqLogger.ErrorContext(r.Context(), "panic recovered",
					slog.String("panic", fmt.Sprint(rec)),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)

				w.Header().Set("Content-Type", "application/problem+json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(problemInternal))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
