package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tillworks/tillprint-core/internal/order"
	"github.com/tillworks/tillprint-core/internal/settings"
)

// handleDispatch routes a completed order to its printers and returns the
// per-printer report. Dispatch never rolls back: a failed printer is
// reported as failed while its siblings print normally, so the response
// is 200 even when entries inside it carry errors.
func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var o order.Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if o.ID == "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "order id is required")
		return
	}
	if len(o.Items) == 0 {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "order has no items")
		return
	}

	snap, _, err := s.settings.Current()
	if err != nil {
		if errors.Is(err, settings.ErrNoSnapshot) {
			writeError(w, http.StatusServiceUnavailable, ErrCodeInternal,
				"no configuration available; cannot route tickets")
			return
		}
		writeInternalError(w, "failed to load configuration")
		return
	}

	// The effective settings carry the device-local override layer the
	// raw snapshot does not.
	eff, err := s.settings.Effective()
	if err != nil {
		writeInternalError(w, "failed to resolve settings")
		return
	}

	report := s.engine.Dispatch(r.Context(), o, snap, eff)

	if claims := claimsFrom(r); claims != nil {
		s.logger.Info("order dispatched",
			"order_id", o.ID,
			"printers", len(report.Entries),
			"failed", report.Failed(),
			"actor", claims.Subject,
		)
	}

	writeJSON(w, http.StatusOK, report)
}

// handleDispatchReports returns the persisted dispatch history for one order.
//
// Query parameters:
//   - order_id: required
func (s *Server) handleDispatchReports(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "dispatch history is not available")
		return
	}

	orderID := r.URL.Query().Get("order_id")
	if orderID == "" {
		writeBadRequest(w, "order_id query parameter is required")
		return
	}

	entries, err := s.history.ListByOrder(r.Context(), orderID)
	if err != nil {
		writeInternalError(w, "failed to load dispatch history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"order_id": orderID,
		"entries":  entries,
		"count":    len(entries),
	})
}
