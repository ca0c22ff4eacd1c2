package api

import (
	"context"
	"net/http"
	"time"

	"fruitstock/pkg/logger"
)

// healthHandler reports whether every dependency answers. Failure details
// are logged, not returned.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func healthHandler(checks map[string]Check, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		body := map[string]string{"status": "ok"}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				log.Warn(ctx, "health check failed", "check", name, "error", err)
				body[name] = "unavailable"
				body["status"] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			body[name] = "ok"
		}
		writeJSON(w, status, body)
	}
}
