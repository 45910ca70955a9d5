// Package panicapi provides the panic button endpoint.
//
// Endpoints:
//   - POST /api/panic - Record an emergency alert (no authentication)
//
// The endpoint is deliberately unauthenticated and CSRF-exempt: a driver
// in distress must never be blocked by an expired session or a stale
// token. Any parseable body, including an empty object, produces an
// alert; missing labels fall back to placeholders.
package panicapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/drivershield/shield360/internal/app/store/alerts"
	"github.com/drivershield/shield360/internal/app/system/auditlog"
	"github.com/drivershield/shield360/internal/app/system/jsonutil"
	"github.com/drivershield/shield360/internal/app/system/network"
)

// Handler handles panic API requests.
type Handler struct {
	alerts *alerts.Log
	audit  *auditlog.Logger
	logger *zap.Logger
}

// NewHandler creates a new panicapi handler.
func NewHandler(alerts *alerts.Log, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{alerts: alerts, audit: audit, logger: logger}
}

// panicRequest accepts the current field names plus the aliases older
// button builds still send.
type panicRequest struct {
	DriverName string   `json:"driver_name"`
	Occurrence string   `json:"occurrence"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	Accuracy   *float64 `json:"accuracy"`

	// Legacy aliases
	Motorista     string   `json:"motorista"`
	NomeMotorista string   `json:"nome_motorista"`
	Ocorrencia    string   `json:"ocorrencia"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Lon           *float64 `json:"lon"`
}

func (p *panicRequest) driver() string {
	for _, s := range []string{p.DriverName, p.Motorista, p.NomeMotorista} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (p *panicRequest) occurrence() string {
	if p.Occurrence != "" {
		return p.Occurrence
	}
	return p.Ocorrencia
}

func (p *panicRequest) lat() *float64 {
	if p.Lat != nil {
		return p.Lat
	}
	return p.Latitude
}

func (p *panicRequest) lng() *float64 {
	for _, v := range []*float64{p.Lng, p.Longitude, p.Lon} {
		if v != nil {
			return v
		}
	}
	return nil
}

// PanicHandler handles POST /api/panic requests.
//
// Request body (all fields optional):
//
//	{
//	    "driver_name": "João",
//	    "occurrence": "Assalto",
//	    "lat": -15.7,
//	    "lng": -47.9,
//	    "accuracy": 12.5
//	}
//
// Response (201 Created):
//
//	{"alert": {"id": 1, "created_at": "...", "driver": "João", ...}}
func (h *Handler) PanicHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	in := alerts.Incoming{
		Driver:     req.driver(),
		Occurrence: req.occurrence(),
		Lat:        req.lat(),
		Lng:        req.lng(),
		Accuracy:   req.Accuracy,
		IP:         network.GetClientIP(r),
		UserAgent:  r.UserAgent(),
	}

	alert, err := h.alerts.Append(in)
	if err != nil {
		h.logger.Error("failed to record alert", zap.Error(err))
		jsonutil.InternalError(w, "failed to record alert")
		return
	}

	h.logger.Info("panic alert received",
		zap.Int64("alert_id", alert.ID),
		zap.String("driver", alert.Driver),
		zap.String("ip", alert.IP))
	h.audit.AlertTriggered(r, alert.ID, alert.Driver)

	jsonutil.Created(w, map[string]any{"alert": alert})
}

// decode reads the panic payload from JSON or, failing that, from form
// fields. Older button builds post application/x-www-form-urlencoded.
// Only a completely unreadable body is rejected.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (panicRequest, bool) {
	var req panicRequest

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		jsonutil.BadRequest(w, "unreadable request body")
		return req, false
	}

	if len(body) == 0 {
		return req, true
	}
	if err := json.Unmarshal(body, &req); err == nil {
		return req, true
	}

	// Form fallback
	values, err := url.ParseQuery(string(body))
	if err != nil {
		jsonutil.BadRequest(w, "body is neither JSON nor form data")
		return req, false
	}
	req.DriverName = firstOf(values, "driver_name", "motorista", "nome_motorista")
	req.Occurrence = firstOf(values, "occurrence", "ocorrencia")
	req.Lat = floatOf(values, "lat", "latitude")
	req.Lng = floatOf(values, "lng", "longitude", "lon")
	req.Accuracy = floatOf(values, "accuracy")
	return req, true
}

func firstOf(values url.Values, keys ...string) string {
	for _, k := range keys {
		if v := values.Get(k); v != "" {
			return v
		}
	}
	return ""
}

func floatOf(values url.Values, keys ...string) *float64 {
	for _, k := range keys {
		if v := values.Get(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}
