package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"harvin-platform/internal/common/logger"
	"harvin-platform/internal/common/metrics"
)

// RequestLogger logs one line per request and records http_request_duration_seconds
// under the matched route pattern.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			elapsed := time.Since(start)

			metrics.HTTPRequestDuration.
				WithLabelValues(route, r.Method, strconv.Itoa(status)).
				Observe(elapsed.Seconds())

			fields := map[string]interface{}{
				"method":      r.Method,
				"route":       route,
				"status":      status,
				"duration_ms": elapsed.Milliseconds(),
				"request_id":  chiMiddleware.GetReqID(r.Context()),
			}
			if status >= http.StatusInternalServerError {
				log.Error("HTTP request failed", fields)
				return
			}
			log.Debug("HTTP request", fields)
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
