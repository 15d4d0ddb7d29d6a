package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wvrb/airmon/internal/api/respond"
	"github.com/wvrb/airmon/internal/bindings"
)

// writeStoreError maps store errors to HTTP responses shared by every
// bindings endpoint.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bindings.ErrUnavailable):
		respond.WriteError(w, http.StatusServiceUnavailable, "BINDINGS_UNAVAILABLE", "Bindings store is not configured")
	case errors.Is(err, bindings.ErrNotFound):
		respond.WriteError(w, http.StatusNotFound, "BINDING_NOT_FOUND", "No such binding")
	default:
		respond.WriteError(w, http.StatusInternalServerError, "BINDINGS_ERROR", err.Error())
	}
}

// ListBindings returns all DJ bindings.
// @Summary List bindings
// @Tags bindings
// @Produce json
// @Success 200 {array} bindings.Binding
// @Router /api/v1/bindings [get]
func (h *Handler) ListBindings(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if list == nil {
		list = []bindings.Binding{}
	}
	respond.WriteJSONObject(w, http.StatusOK, list)
}

// CreateBinding binds a Discord account to a persona.
// @Summary Create binding
// @Tags bindings
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/v1/bindings [post]
func (h *Handler) CreateBinding(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DiscordID string `json:"discord_id"`
		PersonaID int    `json:"persona_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body")
		return
	}
	if req.DiscordID == "" || req.PersonaID <= 0 {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "discord_id and persona_id are required")
		return
	}
	if err := h.store.Bind(r.Context(), req.DiscordID, req.PersonaID); err != nil {
		writeStoreError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusCreated, map[string]interface{}{
		"discord_id": req.DiscordID,
		"persona_id": req.PersonaID,
	})
}

// GetBinding resolves a Discord account to its persona.
// @Summary Look up binding
// @Tags bindings
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/bindings/{discordID} [get]
func (h *Handler) GetBinding(w http.ResponseWriter, r *http.Request) {
	discordID := chi.URLParam(r, "discordID")
	personaID, err := h.store.Whois(r.Context(), discordID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"discord_id": discordID,
		"persona_id": personaID,
	})
}

// GetBindingByPersona resolves a persona to the Discord account bound to it.
// @Summary Reverse binding lookup
// @Tags bindings
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/bindings/persona/{personaID} [get]
func (h *Handler) GetBindingByPersona(w http.ResponseWriter, r *http.Request) {
	personaID, err := strconv.Atoi(chi.URLParam(r, "personaID"))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "personaID must be an integer")
		return
	}
	discordID, err := h.store.ByPersona(r.Context(), personaID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"discord_id": discordID,
		"persona_id": personaID,
	})
}

// DeleteBinding removes the binding for a Discord account.
// @Summary Delete binding
// @Tags bindings
// @Produce json
// @Success 204
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/bindings/{discordID} [delete]
func (h *Handler) DeleteBinding(w http.ResponseWriter, r *http.Request) {
	discordID := chi.URLParam(r, "discordID")
	if err := h.store.Unbind(r.Context(), discordID); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
