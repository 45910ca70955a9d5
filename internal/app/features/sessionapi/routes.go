package sessionapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the session endpoints.
//
// When mounted at /api:
//   - POST /api/login  - Authenticate and open a session
//   - POST /api/logout - Destroy the session
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/login", h.LoginHandler)
	r.Post("/logout", h.LogoutHandler)
	return r
}
