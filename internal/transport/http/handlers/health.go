package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/baechuer/tracking-service/internal/transport/http/response"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Check
}

func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	response.Data(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz runs every registered check with a short deadline.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		response.Fail(w, http.StatusServiceUnavailable, "unavailable", "not ready", failed, response.RequestIDFromRequest(r))
		return
	}
	response.Data(w, http.StatusOK, map[string]string{"status": "ready"})
}
