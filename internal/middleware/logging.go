// Package middleware holds the HTTP middleware the chatbot server adds on top of
// chi's own (RequestID, RealIP, Recoverer).
//
// A middleware has the shape func(http.Handler) http.Handler: it receives the next
// handler in the chain and returns a handler that runs code around it. chi's
// router.Use takes exactly that shape, so everything here plugs into it directly.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// responseWriter records what the handler sent, since http.ResponseWriter has no
// getter for the status code or the body size once they are written.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer (Flush, deadlines).
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Logger returns an HTTP middleware that logs each request using Go's slog package.
//
// Each log line includes: request ID, method, path, status code, duration, and bytes
// written. The request ID comes from chi's RequestID middleware, which must run
// first; the classifier client forwards the same ID so both services' logs line up.
//
// LOG LEVEL BY STATUS:
// 5xx responses are logged at Error, 4xx at Warn, everything else at Info, so a
// LOG_LEVEL=warn deployment only sees the requests that went wrong.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// A handler that only calls Write gets an implicit 200.
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			logger.LogAttrs(r.Context(), levelFor(wrapped.statusCode), "request completed",
				slog.String("requestID", chimiddleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote", r.RemoteAddr),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", wrapped.written),
			)
		})
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
