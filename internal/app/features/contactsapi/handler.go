// Package contactsapi provides the emergency contact endpoints.
//
// Endpoints:
//   - GET    /api/contacts      - List registered contacts (open)
//   - POST   /api/contacts      - Register a contact (open, bounded)
//   - DELETE /api/contacts/{id} - Remove a contact (signed-in only)
//
// Listing and registration stay open so a fleet can be set up from the
// enrollment page without an existing session; the registry cap bounds
// the abuse surface. Removal is destructive and therefore gated.
package contactsapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/drivershield/shield360/internal/app/store/contacts"
	"github.com/drivershield/shield360/internal/app/system/auditlog"
	"github.com/drivershield/shield360/internal/app/system/auth"
	"github.com/drivershield/shield360/internal/app/system/authutil"
	"github.com/drivershield/shield360/internal/app/system/jsonutil"
	"github.com/drivershield/shield360/internal/app/system/network"
)

// Handler handles contact API requests.
type Handler struct {
	registry *contacts.Registry
	audit    *auditlog.Logger
	logger   *zap.Logger
}

// NewHandler creates a new contactsapi handler.
func NewHandler(registry *contacts.Registry, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{registry: registry, audit: audit, logger: logger}
}

// ListHandler handles GET /api/contacts requests.
//
// Response (200 OK):
//
//	{"contacts": [{"id": 1, "name": "Ana", "login": "ana", ...}]}
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, map[string]any{"contacts": h.registry.List()})
}

// RegisterHandler handles POST /api/contacts requests.
//
// Request body:
//
//	{"name": "Ana", "login": "ana", "password": "secret1"}
//
// Response (200 OK):
//
//	{"contact": {"id": 1, "name": "Ana", "login": "ana", ...}}
//
// Rejections (400) carry a stable kind plus a human-readable detail:
//
//	{"error": "DuplicateLogin|RegistryFull|InvalidInput", "message": "..."}
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name     string `json:"name"`
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON body")
		return
	}

	c, err := h.registry.Add(in.Name, in.Login, in.Password)
	if err != nil {
		if kind := registrationErrorKind(err); kind != "" {
			jsonutil.JSON(w, http.StatusBadRequest, map[string]string{
				"error":   kind,
				"message": err.Error(),
			})
		} else {
			h.logger.Error("failed to register contact", zap.Error(err))
			jsonutil.InternalError(w, "failed to register contact")
		}
		return
	}

	h.logger.Info("contact registered",
		zap.Int64("contact_id", c.ID),
		zap.String("login", c.Login),
		zap.String("ip", network.GetClientIP(r)))
	h.audit.ContactRegistered(r, c.ID, c.Login)

	jsonutil.OK(w, map[string]any{"contact": c})
}

// registrationErrorKind maps user-correctable registration errors to the
// stable identifiers clients switch on. The human-readable detail travels
// alongside in the "message" field. Returns "" for everything else.
func registrationErrorKind(err error) string {
	switch {
	case errors.Is(err, contacts.ErrDuplicateLogin):
		return "DuplicateLogin"
	case errors.Is(err, contacts.ErrRegistryFull):
		return "RegistryFull"
	case errors.Is(err, contacts.ErrInvalidInput),
		errors.Is(err, authutil.ErrPasswordTooShort),
		errors.Is(err, authutil.ErrPasswordTooLong),
		errors.Is(err, authutil.ErrPasswordCommon):
		return "InvalidInput"
	}
	return ""
}

// RemoveHandler handles DELETE /api/contacts/{id} requests. The path
// segment may be a numeric id or a login. Removal is idempotent; an
// absent contact still yields 200.
//
// Response (200 OK):
//
//	{"ok": true}
func (h *Handler) RemoveHandler(w http.ResponseWriter, r *http.Request) {
	idOrLogin := chi.URLParam(r, "id")
	if idOrLogin == "" {
		jsonutil.BadRequest(w, "missing contact id")
		return
	}

	found, err := h.registry.Remove(idOrLogin)
	if err != nil {
		h.logger.Error("failed to remove contact", zap.Error(err))
		jsonutil.InternalError(w, "failed to remove contact")
		return
	}

	if found {
		actorID := int64(0)
		if c, ok := auth.CurrentContact(r); ok {
			actorID = c.ID
		}
		h.logger.Info("contact removed",
			zap.String("target", idOrLogin),
			zap.Int64("actor_id", actorID))
		h.audit.ContactRemoved(r, actorID, idOrLogin)
	}

	jsonutil.OK(w, map[string]any{"ok": true})
}
