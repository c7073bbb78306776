package handlers

import (
	"context"
	"net/http"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
	redis Pinger
}

// NewHealthHandler takes the primary store and an optional redis pinger.
func NewHealthHandler(store, redis Pinger) *HealthHandler {
	return &HealthHandler{store: store, redis: redis}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}

	if h.store != nil {
		checks["database"] = check(r.Context(), h.store)
	}
	if h.redis != nil {
		checks["redis"] = check(r.Context(), h.redis)
	}

	status := http.StatusOK
	for _, v := range checks {
		if v != "ok" {
			status = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, status, map[string]interface{}{"status": statusStr(status), "checks": checks})
}

func check(ctx context.Context, p Pinger) string {
	if err := p.Ping(ctx); err != nil {
		return "unhealthy: " + err.Error()
	}
	return "ok"
}

func statusStr(code int) string {
	if code == http.StatusOK {
		return "ok"
	}
	return "unhealthy"
}
