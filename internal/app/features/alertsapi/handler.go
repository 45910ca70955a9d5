// Package alertsapi provides the alert feed endpoints for signed-in
// contacts.
//
// Endpoints:
//   - GET  /api/alerts       - List received alerts, newest first
//   - POST /api/alerts/clear - Clear the feed
package alertsapi

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/drivershield/shield360/internal/app/store/alerts"
	"github.com/drivershield/shield360/internal/app/system/auditlog"
	"github.com/drivershield/shield360/internal/app/system/auth"
	"github.com/drivershield/shield360/internal/app/system/jsonutil"
	"github.com/drivershield/shield360/internal/app/system/normalize"
)

// Handler handles alert feed API requests.
type Handler struct {
	alerts *alerts.Log
	audit  *auditlog.Logger
	logger *zap.Logger
}

// NewHandler creates a new alertsapi handler.
func NewHandler(alerts *alerts.Log, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{alerts: alerts, audit: audit, logger: logger}
}

// ListHandler handles GET /api/alerts requests. An optional ?limit=N
// query bounds the page; invalid or absent limits return everything.
//
// Response (200 OK):
//
//	{"alerts": [{"id": 2, ...}, {"id": 1, ...}]}
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := normalize.QueryParam(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	list := h.alerts.List(limit)
	jsonutil.OK(w, map[string]any{"alerts": list})
}

// ClearHandler handles POST /api/alerts/clear requests. The whole feed
// is dropped in one step; alert ids are never reused afterwards.
//
// Response (200 OK):
//
//	{"ok": true}
func (h *Handler) ClearHandler(w http.ResponseWriter, r *http.Request) {
	removed, err := h.alerts.Clear()
	if err != nil {
		h.logger.Error("failed to clear alerts", zap.Error(err))
		jsonutil.InternalError(w, "failed to clear alerts")
		return
	}

	if c, ok := auth.CurrentContact(r); ok {
		h.logger.Info("alert feed cleared",
			zap.Int64("contact_id", c.ID),
			zap.Int("removed", removed))
		h.audit.AlertsCleared(r, c.ID, removed)
	}

	jsonutil.OK(w, map[string]any{"ok": true})
}
