package panicapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/drivershield/shield360/internal/app/system/apicors"
)

// Routes returns a router with the panic endpoint.
//
// When mounted at /api/panic:
//   - POST /api/panic - Record an emergency alert
//
// No authentication and permissive CORS: the button must work from any
// origin, with or without cookies.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(apicors.Middleware())
	r.Post("/", h.PanicHandler)
	return r
}
