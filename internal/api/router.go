package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
//
// Reads are open on the loopback interface; anything that mutates
// configuration or drives hardware requires a backend-issued bearer token.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Read-only configuration views
		r.Get("/printers", s.handleListPrinters)
		r.Get("/printers/{id}", s.handleGetPrinter)
		r.Get("/kitchen-zones", s.handleListZones)
		r.Get("/kitchen-zones/{id}", s.handleGetZone)
		r.Get("/settings/effective", s.handleEffectiveSettings)
		r.Get("/dispatch/reports", s.handleDispatchReports)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Route("/printers", func(r chi.Router) {
				r.Post("/", s.handleCreatePrinter)
				r.Post("/discover", s.handleDiscoverPrinters)

				r.Route("/{id}", func(r chi.Router) {
					r.Patch("/", s.handleUpdatePrinter)
					r.Delete("/", s.handleDeletePrinter)
					r.Post("/test", s.handleTestPrinter)
				})
			})

			r.Route("/kitchen-zones", func(r chi.Router) {
				r.Post("/", s.handleCreateZone)

				r.Route("/{id}", func(r chi.Router) {
					r.Patch("/", s.handleUpdateZone)
					r.Delete("/", s.handleDeleteZone)
				})
			})

			r.Post("/settings/refresh", s.handleRefreshSettings)
			r.Patch("/settings/overrides", s.handleUpdateLocationOverrides)

			r.Post("/dispatch", s.handleDispatch)

			r.Route("/pairing/{class}", func(r chi.Router) {
				r.Get("/", s.handlePairingStatus)
				r.Post("/discover", s.handlePairingDiscover)
				r.Post("/connect", s.handlePairingConnect)
				r.Post("/forget", s.handlePairingForget)
			})
		})
	})

	return r
}

// handleHealth returns the server health status. The staleness field
// surfaces how trustworthy the current configuration snapshot is.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":  "ok",
		"version": s.version,
	}

	if _, fromCache, err := s.settings.Current(); err == nil {
		body["settings_from_cache"] = fromCache
	}

	writeJSON(w, http.StatusOK, body)
}
