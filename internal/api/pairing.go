package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tillworks/tillprint-core/internal/pairing"
)

// pairingMachine resolves the {class} URL parameter to its machine.
// Writes a 404 and returns nil for unknown classes.
func (s *Server) pairingMachine(w http.ResponseWriter, r *http.Request) *pairing.Machine {
	if s.pairing == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "pairing is not available")
		return nil
	}

	class := chi.URLParam(r, "class")
	m, err := s.pairing.Machine(pairing.Class(class))
	if err != nil {
		writeNotFound(w, "unknown device class")
		return nil
	}
	return m
}

// handlePairingStatus returns the pairing state for one device class.
func (s *Server) handlePairingStatus(w http.ResponseWriter, r *http.Request) {
	m := s.pairingMachine(w, r)
	if m == nil {
		return
	}

	writeJSON(w, http.StatusOK, m.Status())
}

// handlePairingDiscover scans for candidate devices. Concurrent requests
// for the same class share one scan.
func (s *Server) handlePairingDiscover(w http.ResponseWriter, r *http.Request) {
	m := s.pairingMachine(w, r)
	if m == nil {
		return
	}

	candidates, err := m.Discover(r.Context())
	if err != nil {
		if errors.Is(err, pairing.ErrDiscoveryTimeout) {
			writeError(w, http.StatusGatewayTimeout, ErrCodeInternal, "discovery timed out")
			return
		}
		s.logger.Warn("pairing discovery failed", "error", err)
		writeError(w, http.StatusBadGateway, ErrCodeInternal, "discovery failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"candidates": candidates,
		"count":      len(candidates),
	})
}

// handlePairingConnect performs the handshake with a chosen candidate.
func (s *Server) handlePairingConnect(w http.ResponseWriter, r *http.Request) {
	m := s.pairingMachine(w, r)
	if m == nil {
		return
	}

	var c pairing.Candidate
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if c.ID == "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "candidate id is required")
		return
	}

	if err := m.Connect(r.Context(), c); err != nil {
		switch {
		case errors.Is(err, pairing.ErrBusy):
			writeError(w, http.StatusConflict, ErrCodeConflict, "a connection attempt is already in progress")
		case errors.Is(err, pairing.ErrPairingRejected):
			writeError(w, http.StatusBadGateway, ErrCodeInternal, "device refused the pairing")
		case errors.Is(err, pairing.ErrDiscoveryTimeout):
			writeError(w, http.StatusGatewayTimeout, ErrCodeInternal, "handshake timed out")
		default:
			writeInternalError(w, "pairing failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, m.Status())
}

// handlePairingForget clears the persisted pairing for one device class.
func (s *Server) handlePairingForget(w http.ResponseWriter, r *http.Request) {
	m := s.pairingMachine(w, r)
	if m == nil {
		return
	}

	if err := m.Forget(r.Context()); err != nil {
		writeInternalError(w, "failed to clear pairing")
		return
	}

	writeJSON(w, http.StatusOK, m.Status())
}
