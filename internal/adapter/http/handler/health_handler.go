package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler handles health check requests.
type HealthHandler struct {
	checks map[string]Pinger
	order  []string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{checks: make(map[string]Pinger)}
}

// WithCheck adds a named readiness dependency.
func (h *HealthHandler) WithCheck(name string, p Pinger) *HealthHandler {
	if _, ok := h.checks[name]; !ok {
		h.order = append(h.order, name)
	}
	h.checks[name] = p
	return h
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness returns 200 if the service is ready to accept traffic.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := map[string]string{"status": "ready"}
	for _, name := range h.order {
		if err := h.checks[name].Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, name+" unhealthy", err.Error())
			return
		}
		resp[name] = "ok"
	}

	writeJSON(w, http.StatusOK, resp)
}
