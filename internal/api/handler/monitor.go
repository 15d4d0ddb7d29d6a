package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/wvrb/airmon/internal/api/respond"
	"github.com/wvrb/airmon/internal/monitor"
)

// GetNowPlaying returns the current listening text.
// @Summary Current set
// @Tags monitor
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/nowplaying [get]
func (h *Handler) GetNowPlaying(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"listening": h.tracker.Current(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetLastSweep returns the result of the most recent popularity sweep.
// @Summary Last sweep result
// @Tags monitor
// @Produce json
// @Success 200 {object} monitor.Result
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/monitor/last [get]
func (h *Handler) GetLastSweep(w http.ResponseWriter, r *http.Request) {
	res := h.monitor.LastResult()
	if res == nil {
		respond.WriteError(w, http.StatusNotFound, "NO_SWEEP", "No sweep has completed yet")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, res)
}

// TriggerSweep runs a sweep immediately and returns its result. The sweep
// runs on the request context, so a disconnecting client aborts it.
// @Summary Trigger a sweep
// @Tags monitor
// @Produce json
// @Success 200 {object} monitor.Result
// @Failure 409 {object} respond.ErrorResponse
// @Router /api/v1/monitor/sweep [post]
func (h *Handler) TriggerSweep(w http.ResponseWriter, r *http.Request) {
	res, err := h.monitor.Sweep(r.Context(), time.Now())
	if errors.Is(err, monitor.ErrSweepInProgress) {
		respond.WriteError(w, http.StatusConflict, "SWEEP_IN_PROGRESS", "A sweep is already running")
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "SWEEP_FAILED", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, res)
}
