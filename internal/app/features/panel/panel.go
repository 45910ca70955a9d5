// Package panel routes signed-in contacts to the alert panel page.
//
// The panel itself is a static page; this feature only enforces the
// session gate in front of it. Unauthenticated browsers are sent to
// /login, API callers get a plain 401.
package panel

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/drivershield/shield360/internal/app/system/auth"
)

// Handler handles panel requests.
type Handler struct {
	sessions *auth.SessionManager
	logger   *zap.Logger
}

// NewHandler creates a new panel handler.
func NewHandler(sessions *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{sessions: sessions, logger: logger}
}

// Routes returns a router with the panel route.
//
// When mounted at /panel:
//   - GET /panel - Redirect the signed-in contact to the panel page
func Routes(h *Handler) http.Handler {
	return h.sessions.RequireSignedIn(http.HandlerFunc(h.PanelHandler))
}

// PanelHandler handles GET /panel requests for contacts that passed the
// session gate.
func (h *Handler) PanelHandler(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentContact(r)
	if c != nil {
		h.logger.Debug("panel opened", zap.Int64("contact_id", c.ID))
	}
	http.Redirect(w, r, "/static/panel.html", http.StatusSeeOther)
}
