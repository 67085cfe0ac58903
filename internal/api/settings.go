package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/tillworks/tillprint-core/internal/settings"
)

// handleEffectiveSettings returns the fully resolved configuration this
// terminal is running with, including whether it came from the offline
// cache and how stale it is.
func (s *Server) handleEffectiveSettings(w http.ResponseWriter, _ *http.Request) {
	eff, err := s.settings.Effective()
	if err != nil {
		if errors.Is(err, settings.ErrNoSnapshot) {
			writeError(w, http.StatusServiceUnavailable, ErrCodeInternal,
				"no configuration available yet; terminal has never reached the backend")
			return
		}
		writeInternalError(w, "failed to resolve settings")
		return
	}

	body := map[string]any{"settings": eff}
	if staleErr := s.settings.Staleness(time.Now()); staleErr != nil {
		body["stale"] = true
	}

	writeJSON(w, http.StatusOK, body)
}

// handleRefreshSettings forces an immediate backend fetch. A failed fetch
// keeps the previous snapshot in place; the error is reported but nothing
// on the terminal degrades.
func (s *Server) handleRefreshSettings(w http.ResponseWriter, r *http.Request) {
	if err := s.settings.Refresh(r.Context()); err != nil {
		s.logger.Warn("manual settings refresh failed", "error", err)
		writeJSON(w, http.StatusOK, map[string]any{
			"refreshed": false,
			"error":     err.Error(),
		})
		return
	}

	eff, err := s.settings.Effective()
	if err != nil {
		writeInternalError(w, "failed to resolve settings after refresh")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"refreshed": true,
		"settings":  eff,
	})
}

// handleUpdateLocationOverrides replaces the store location's settings
// override layer on the backend, then refreshes so the change is live
// locally. The backend owns this layer, so unlike printer and zone
// mutations this is not applied locally first: without a reachable
// backend the request fails.
func (s *Server) handleUpdateLocationOverrides(w http.ResponseWriter, r *http.Request) {
	if s.backend == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal,
			"no backend connection configured on this terminal")
		return
	}

	var o settings.Overrides
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.backend.UpdateLocationOverrides(r.Context(), o); err != nil {
		s.logger.Warn("updating location overrides failed", "error", err)
		writeError(w, http.StatusBadGateway, ErrCodeInternal,
			"backend rejected the override update")
		return
	}

	if err := s.settings.Refresh(r.Context()); err != nil {
		// The backend accepted the write; only the local snapshot lags
		// until the next refresh cycle.
		s.logger.Warn("refresh after override update failed", "error", err)
	}

	eff, err := s.settings.Effective()
	if err != nil {
		writeInternalError(w, "failed to resolve settings after update")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"settings": eff})
}
