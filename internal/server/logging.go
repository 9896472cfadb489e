package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/lightgray/lightgray/internal/httputil"
)

// responseRecorder captures what a handler wrote so the request can be logged afterwards.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *responseRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// requestLevel picks the log level for a finished request. Health probes are not
// logged; static assets only at debug.
func requestLevel(path string, status int) (slog.Level, bool) {
	switch {
	case path == "/api/health":
		return 0, false
	case status >= http.StatusInternalServerError:
		return slog.LevelError, true
	case strings.HasPrefix(path, "/static/"):
		return slog.LevelDebug, true
	}
	return slog.LevelInfo, true
}

func slogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		level, ok := requestLevel(r.URL.Path, rec.status)
		if !ok {
			return
		}
		slog.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", httputil.ClientIP(r),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
