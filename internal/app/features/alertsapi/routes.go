package alertsapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/drivershield/shield360/internal/app/system/auth"
)

// Routes returns a router with the alert feed endpoints.
//
// When mounted at /api/alerts:
//   - GET  /api/alerts       - List alerts (signed-in contacts only)
//   - POST /api/alerts/clear - Clear the feed (signed-in contacts only)
func Routes(h *Handler, sm *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ListHandler)
	r.Post("/clear", h.ClearHandler)
	return r
}
