package api

import (
	"context"
	"net/http"
	"time"
)

const readyTimeout = 2 * time.Second

func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready pings every configured dependency.
func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	checks := make(map[string]string, len(s.pingers))
	status := http.StatusOK
	for name, ping := range s.pingers {
		if err := ping(ctx); err != nil {
			s.logger.Warn("Readiness check failed", map[string]interface{}{
				"dependency": name,
				"error":      err.Error(),
			})
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "unavailable"
	}
	JSON(w, status, map[string]interface{}{"status": state, "checks": checks})
}
