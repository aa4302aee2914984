package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// HTTPMetrics records request outcomes.
type HTTPMetrics interface {
	RequestStarted()
	RequestFinished()
	ObserveHTTP(method, path string, status int, d time.Duration)
}

// Metrics returns middleware recording HTTP metrics. Paths are labelled with
// the matched chi route pattern to keep cardinality bounded.
func Metrics(m HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			m.RequestStarted()
			defer m.RequestFinished()

			wrapped := newStatusRecorder(w)
			next.ServeHTTP(wrapped, r)

			m.ObserveHTTP(r.Method, routePattern(r), wrapped.statusCode, time.Since(start))
		})
	}
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "unmatched"
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return "unmatched"
}
