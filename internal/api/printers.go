package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tillworks/tillprint-core/internal/printer"
)

// handleListPrinters returns all printers known to this terminal.
//
// Query parameters:
//   - active: "true" restricts the list to active printers
func (s *Server) handleListPrinters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		printers []printer.Printer
		err      error
	)
	if r.URL.Query().Get("active") == "true" {
		printers, err = s.printers.ListActive(ctx)
	} else {
		printers, err = s.printers.List(ctx)
	}
	if err != nil {
		writeInternalError(w, "failed to list printers")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"printers": printers, "count": len(printers)})
}

// handleGetPrinter returns a single printer by ID.
func (s *Server) handleGetPrinter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := s.printers.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, printer.ErrNotFound) {
			writeNotFound(w, "printer not found")
			return
		}
		writeInternalError(w, "failed to get printer")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// handleCreatePrinter creates a new printer.
func (s *Server) handleCreatePrinter(w http.ResponseWriter, r *http.Request) {
	var p printer.Printer
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	p.ID = ""

	if err := printer.Validate(&p); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	created, err := s.printers.Upsert(r.Context(), &p)
	if err != nil {
		if errors.Is(err, printer.ErrExists) {
			writeError(w, http.StatusConflict, ErrCodeConflict, "printer with this identity already exists")
			return
		}
		writeInternalError(w, "failed to create printer")
		return
	}

	s.syncBackend(r.Context(), "create printer", func(ctx context.Context) error {
		_, err := s.backend.CreatePrinter(ctx, *created)
		return err
	})

	writeJSON(w, http.StatusCreated, created)
}

// handleUpdatePrinter partially updates a printer. The request body is
// decoded onto the existing printer, so omitted fields keep their values.
func (s *Server) handleUpdatePrinter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := s.printers.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, printer.ErrNotFound) {
			writeNotFound(w, "printer not found")
			return
		}
		writeInternalError(w, "failed to get printer")
		return
	}

	if err := json.NewDecoder(r.Body).Decode(existing); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	existing.ID = id // ID cannot be changed

	if err := printer.Validate(existing); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	updated, err := s.printers.Upsert(r.Context(), existing)
	if err != nil {
		writeInternalError(w, "failed to update printer")
		return
	}

	s.syncBackend(r.Context(), "update printer", func(ctx context.Context) error {
		_, err := s.backend.UpdatePrinter(ctx, *updated)
		return err
	})

	writeJSON(w, http.StatusOK, updated)
}

// handleDeletePrinter removes a printer by ID.
//
// Removal is refused with 409 while an active kitchen zone still routes
// to the printer; the zone must be deactivated or repointed first.
func (s *Server) handleDeletePrinter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.printers.Remove(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, printer.ErrNotFound):
			writeNotFound(w, "printer not found")
		case errors.Is(err, printer.ErrInUse):
			writeError(w, http.StatusConflict, ErrCodeConflict,
				"printer is referenced by an active kitchen zone")
		default:
			writeInternalError(w, "failed to delete printer")
		}
		return
	}

	s.syncBackend(r.Context(), "delete printer", func(ctx context.Context) error {
		return s.backend.DeletePrinter(ctx, id)
	})

	if claims := claimsFrom(r); claims != nil {
		s.logger.Info("printer deleted", "id", id, "actor", claims.Subject)
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDiscoverPrinters scans for attached USB printers and merges the
// results into the registry. Re-running discovery is idempotent; known
// identities are skipped.
func (s *Server) handleDiscoverPrinters(w http.ResponseWriter, r *http.Request) {
	if s.discover == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal,
			"usb discovery is not available on this terminal")
		return
	}

	found, err := s.discover.DiscoverPrinters(r.Context())
	if err != nil {
		s.logger.Warn("usb discovery failed", "error", err)
		writeError(w, http.StatusBadGateway, ErrCodeInternal, "discovery failed")
		return
	}

	created, err := s.printers.MergeDiscovered(r.Context(), found)
	if err != nil {
		writeInternalError(w, "failed to merge discovered printers")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"discovered": found,
		"created":    created,
	})
}

// handleTestPrinter probes a printer's connectivity without printing or
// mutating any state.
func (s *Server) handleTestPrinter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := s.printers.TestConnection(r.Context(), id)
	if err != nil {
		if errors.Is(err, printer.ErrNotFound) {
			writeNotFound(w, "printer not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"reachable": false,
			"reason":    err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"reachable": true})
}
