package rest

import (
	"context"
	"net/http"
	"time"
)

// dbPinger defines the minimal interface for DB health checks.
type dbPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	db      dbPinger
	version string
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(db dbPinger, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

type healthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Database  string    `json:"database,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Live always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Timestamp: time.Now()})
}

// Ready pings the database: 200 if reachable, 503 if not.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Version: h.version, Database: "ok", Timestamp: time.Now()}
	status := http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		resp.Status = "down"
		resp.Database = "down"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
