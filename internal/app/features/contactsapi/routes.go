package contactsapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/drivershield/shield360/internal/app/system/apicors"
	"github.com/drivershield/shield360/internal/app/system/auth"
)

// Routes returns a router with the contact endpoints.
//
// When mounted at /api/contacts:
//   - GET    /api/contacts      - List contacts
//   - POST   /api/contacts      - Register a contact
//   - DELETE /api/contacts/{id} - Remove a contact (signed-in only)
func Routes(h *Handler, sm *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(apicors.Middleware())

	r.Get("/", h.ListHandler)
	r.Post("/", h.RegisterHandler)

	r.Group(func(gr chi.Router) {
		gr.Use(sm.RequireSignedIn)
		gr.Delete("/{id}", h.RemoveHandler)
	})

	return r
}
