package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tillworks/tillprint-core/internal/printer"
	"github.com/tillworks/tillprint-core/internal/zone"
)

// handleListZones returns all kitchen zones.
//
// Query parameters:
//   - active: "true" restricts the list to active zones
func (s *Server) handleListZones(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		zones []zone.KitchenZone
		err   error
	)
	if r.URL.Query().Get("active") == "true" {
		zones, err = s.zones.ListActive(ctx)
	} else {
		zones, err = s.zones.List(ctx)
	}
	if err != nil {
		writeInternalError(w, "failed to list kitchen zones")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"kitchen_zones": zones, "count": len(zones)})
}

// handleGetZone returns a single kitchen zone by ID.
func (s *Server) handleGetZone(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	z, err := s.zones.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, zone.ErrNotFound) {
			writeNotFound(w, "kitchen zone not found")
			return
		}
		writeInternalError(w, "failed to get kitchen zone")
		return
	}

	writeJSON(w, http.StatusOK, z)
}

// handleCreateZone creates a new kitchen zone. The target printer must
// exist; a zone pointing at an unknown printer would silently drop tickets.
func (s *Server) handleCreateZone(w http.ResponseWriter, r *http.Request) {
	var z zone.KitchenZone
	if err := json.NewDecoder(r.Body).Decode(&z); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	z.ID = ""

	if err := zone.Validate(&z); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	if err := s.checkZonePrinter(r, z.PrinterID); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "printer_id does not reference a known printer")
		return
	}

	if err := s.zones.Create(r.Context(), &z); err != nil {
		writeInternalError(w, "failed to create kitchen zone")
		return
	}

	s.syncBackend(r.Context(), "create zone", func(ctx context.Context) error {
		_, err := s.backend.CreateZone(ctx, z)
		return err
	})

	writeJSON(w, http.StatusCreated, z)
}

// handleUpdateZone partially updates a kitchen zone.
func (s *Server) handleUpdateZone(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := s.zones.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, zone.ErrNotFound) {
			writeNotFound(w, "kitchen zone not found")
			return
		}
		writeInternalError(w, "failed to get kitchen zone")
		return
	}

	if err := json.NewDecoder(r.Body).Decode(existing); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	existing.ID = id // ID cannot be changed

	if err := zone.Validate(existing); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	if err := s.checkZonePrinter(r, existing.PrinterID); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "printer_id does not reference a known printer")
		return
	}

	if err := s.zones.Update(r.Context(), existing); err != nil {
		writeInternalError(w, "failed to update kitchen zone")
		return
	}

	s.syncBackend(r.Context(), "update zone", func(ctx context.Context) error {
		_, err := s.backend.UpdateZone(ctx, *existing)
		return err
	})

	writeJSON(w, http.StatusOK, existing)
}

// handleDeleteZone removes a kitchen zone by ID.
func (s *Server) handleDeleteZone(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.zones.Delete(r.Context(), id); err != nil {
		if errors.Is(err, zone.ErrNotFound) {
			writeNotFound(w, "kitchen zone not found")
			return
		}
		writeInternalError(w, "failed to delete kitchen zone")
		return
	}

	s.syncBackend(r.Context(), "delete zone", func(ctx context.Context) error {
		return s.backend.DeleteZone(ctx, id)
	})

	w.WriteHeader(http.StatusNoContent)
}

// checkZonePrinter verifies the zone's target printer exists.
func (s *Server) checkZonePrinter(r *http.Request, printerID string) error {
	_, err := s.printers.Get(r.Context(), printerID)
	if err != nil {
		return printer.ErrNotFound
	}
	return nil
}
