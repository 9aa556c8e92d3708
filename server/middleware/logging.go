package middleware

import (
	"net/http"
	"time"

	"github.com/skillsenselab/audtext/logger"
)

// RequestLogger returns middleware that logs every request with method,
// path, status code, and duration. Health-check paths are silently skipped.
func RequestLogger() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isHealthEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)
			duration := time.Since(start)

			fields := map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      sw.status,
				"duration_ms": duration.Milliseconds(),
			}
			if id := r.Header.Get("X-Request-Id"); id != "" {
				fields["request_id"] = id
			}

			logByStatus(fields, sw.status)
		})
	}
}

func isHealthEndpoint(path string) bool {
	switch path {
	case "/health", "/info", "/api/health", "/api/info":
		return true
	}
	return false
}

// logByStatus logs request fields at the appropriate level based on HTTP status code.
func logByStatus(fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		logger.Error("Request completed", fields)
	case status >= 400:
		logger.Warn("Request completed", fields)
	default:
		logger.Debug("Request completed", fields)
	}
}
