// Package sessionapi provides the login and logout endpoints.
//
// Endpoints:
//   - POST /api/login  - Authenticate a contact and open a session
//   - POST /api/logout - Destroy the current session
//
// Both endpoints speak JSON only. The failure body is identical for
// unknown logins and wrong passwords.
package sessionapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/drivershield/shield360/internal/app/store/contacts"
	"github.com/drivershield/shield360/internal/app/system/auditlog"
	"github.com/drivershield/shield360/internal/app/system/auth"
	"github.com/drivershield/shield360/internal/app/system/jsonutil"
	"github.com/drivershield/shield360/internal/app/system/network"
)

// Handler handles session API requests.
type Handler struct {
	registry *contacts.Registry
	sessions *auth.SessionManager
	audit    *auditlog.Logger
	logger   *zap.Logger
}

// NewHandler creates a new sessionapi handler.
func NewHandler(registry *contacts.Registry, sessions *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{registry: registry, sessions: sessions, audit: audit, logger: logger}
}

// LoginHandler handles POST /api/login requests.
//
// Request body:
//
//	{"login": "ana", "password": "secret1"}
//
// Response (200 OK):
//
//	{"token": "...", "contact": {"id": 1, "name": "Ana", "login": "ana"}}
//
// Response (401 Unauthorized, same for unknown login and bad password):
//
//	{"error": "invalid credentials"}
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON body")
		return
	}

	c, err := h.registry.Authenticate(in.Login, in.Password)
	if err != nil {
		h.logger.Info("login refused",
			zap.String("login", in.Login),
			zap.String("ip", network.GetClientIP(r)))
		// The audit trail records which case it was; the response does not.
		event, reason := auditlog.EventLoginFailedWrongPassword, "credential mismatch"
		if _, known := h.registry.GetByLogin(in.Login); !known {
			event, reason = auditlog.EventLoginFailedUnknownLogin, "unknown login"
		}
		h.audit.LoginFailed(r, event, in.Login, reason)
		jsonutil.Unauthorized(w, "invalid credentials")
		return
	}

	token, err := h.sessions.CreateSession(w, r, c.ID, c.Name, c.Login, "")
	if err != nil {
		h.logger.Error("failed to create session", zap.Error(err))
		jsonutil.InternalError(w, "failed to create session")
		return
	}

	h.logger.Info("contact signed in",
		zap.Int64("contact_id", c.ID),
		zap.String("login", c.Login))
	h.audit.LoginSuccess(r, c.ID, c.Login)

	jsonutil.OK(w, map[string]any{"token": token, "contact": c})
}

// LogoutHandler handles POST /api/logout requests. Logging out without a
// session is harmless and still returns ok.
//
// Response (200 OK):
//
//	{"ok": true}
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if c, ok := auth.CurrentContact(r); ok {
		h.logger.Info("contact signed out", zap.Int64("contact_id", c.ID))
		h.audit.Logout(r, c.ID, c.Login)
	}
	h.sessions.DestroySession(w, r)
	jsonutil.OK(w, map[string]any{"ok": true})
}
