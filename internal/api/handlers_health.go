package api

import (
	"net/http"
	"time"
)

type healthStatus struct {
	Status string `json:"status"`
	Uptime string `json:"uptime,omitempty"`
	Error  string `json:"error,omitempty"`
}

// HealthLive serves GET /api/v1/health/live. It answers as long as the
// process is up; no dependencies are checked.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, healthStatus{
		Status: "ok",
		Uptime: time.Since(h.startTime).Round(time.Second).String(),
	})
}

// HealthReady serves GET /api/v1/health/ready. Readiness requires the
// store to answer a ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			respondJSON(w, r, http.StatusServiceUnavailable, healthStatus{
				Status: "unavailable",
				Error:  err.Error(),
			})
			return
		}
	}
	respondJSON(w, r, http.StatusOK, healthStatus{Status: "ok"})
}
