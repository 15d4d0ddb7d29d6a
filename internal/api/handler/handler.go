// Package handler provides HTTP handlers for the operational API: health,
// sweep control, now-playing status, and DJ bindings.
package handler

import (
	"net/http"
	"time"

	"github.com/wvrb/airmon/internal/api/respond"
	"github.com/wvrb/airmon/internal/bindings"
	"github.com/wvrb/airmon/internal/config"
	"github.com/wvrb/airmon/internal/db"
	"github.com/wvrb/airmon/internal/monitor"
	"github.com/wvrb/airmon/internal/status"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	pool    *db.Pool
	monitor *monitor.Monitor
	tracker *status.Tracker
	store   *bindings.Store
	cfg     *config.Config
}

// New creates a Handler with shared dependencies. pool and store may be nil
// when the service runs without a database.
func New(pool *db.Pool, mon *monitor.Monitor, tracker *status.Tracker, store *bindings.Store, cfg *config.Config) *Handler {
	return &Handler{
		pool:    pool,
		monitor: mon,
		tracker: tracker,
		store:   store,
		cfg:     cfg,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Airmon API",
		"version": "1.0.0",
		"station": h.cfg.StationSlug,
		"channel": h.cfg.Channel,
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.pool == nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "not configured",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	if err := h.pool.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
