package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type logFields struct {
	tenant string
}

type logFieldsKey struct{}

// annotateTenant records the resolved tenant on the request's log line.
func annotateTenant(ctx context.Context, slug string) {
	if f, ok := ctx.Value(logFieldsKey{}).(*logFields); ok {
		f.tenant = slug
	}
}

// Logging writes one structured line per request.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		fields := &logFields{}

		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), logFieldsKey{}, fields)))

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", chimiddleware.GetReqID(r.Context()),
		}
		if fields.tenant != "" {
			attrs = append(attrs, "tenant", fields.tenant)
		}

		level := slog.LevelInfo
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(r.Context(), level, "http request", attrs...)
	})
}
