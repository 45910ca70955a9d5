// internal/app/system/auditlog/auditlog.go
package auditlog

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/drivershield/shield360/internal/app/system/network"
)

// Event categories
const (
	CategoryAuth  = "auth"
	CategoryAlert = "alert"
	CategoryAdmin = "admin"
)

// Auth event types
const (
	EventLoginSuccess             = "login_success"
	EventLoginFailedUnknownLogin  = "login_failed_unknown_login"
	EventLoginFailedWrongPassword = "login_failed_wrong_password"
	EventLogout                   = "logout"
)

// Alert event types
const (
	EventAlertTriggered = "alert_triggered"
	EventAlertsCleared  = "alerts_cleared"
)

// Admin event types
const (
	EventContactRegistered = "contact_registered"
	EventContactRemoved    = "contact_removed"
)

// Event represents a single audit event. Events carry a generated id so
// log aggregators can de-duplicate shipped entries.
type Event struct {
	Category      string
	EventType     string
	ContactID     int64
	Login         string
	IP            string
	UserAgent     string
	Success       bool
	FailureReason string
	Details       map[string]string
}

// Logger writes audit events as structured log entries.
// Values for Mode: "log" (enabled) or "off" (disabled).
type Logger struct {
	zapLog *zap.Logger
	mode   string
}

// New creates a new audit Logger. Mode "off" disables all output.
func New(zapLog *zap.Logger, mode string) *Logger {
	return &Logger{zapLog: zapLog, mode: mode}
}

// Log records an audit event.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(event Event) {
	if l == nil || l.mode == "off" {
		return
	}

	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("event_id", uuid.NewString()),
		zap.Time("at", time.Now().UTC()),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.ContactID != 0 {
		fields = append(fields, zap.Int64("contact_id", event.ContactID))
	}
	if event.Login != "" {
		fields = append(fields, zap.String("login", event.Login))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// --- Authentication events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(r *http.Request, contactID int64, login string) {
	l.Log(Event{
		Category:  CategoryAuth,
		EventType: EventLoginSuccess,
		ContactID: contactID,
		Login:     login,
		IP:        network.GetClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// LoginFailed logs a failed login attempt with the given event type.
func (l *Logger) LoginFailed(r *http.Request, eventType, login, reason string) {
	l.Log(Event{
		Category:      CategoryAuth,
		EventType:     eventType,
		Login:         login,
		IP:            network.GetClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: reason,
	})
}

// Logout logs a logout.
func (l *Logger) Logout(r *http.Request, contactID int64, login string) {
	l.Log(Event{
		Category:  CategoryAuth,
		EventType: EventLogout,
		ContactID: contactID,
		Login:     login,
		IP:        network.GetClientIP(r),
		Success:   true,
	})
}

// --- Alert events ---

// AlertTriggered logs a received panic alert.
func (l *Logger) AlertTriggered(r *http.Request, alertID int64, driver string) {
	l.Log(Event{
		Category:  CategoryAlert,
		EventType: EventAlertTriggered,
		IP:        network.GetClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"alert_id": strconv.FormatInt(alertID, 10),
			"driver":   driver,
		},
	})
}

// AlertsCleared logs a feed clear performed by a signed-in contact.
func (l *Logger) AlertsCleared(r *http.Request, contactID int64, removed int) {
	l.Log(Event{
		Category:  CategoryAlert,
		EventType: EventAlertsCleared,
		ContactID: contactID,
		IP:        network.GetClientIP(r),
		Success:   true,
		Details: map[string]string{
			"removed": strconv.Itoa(removed),
		},
	})
}

// --- Admin events ---

// ContactRegistered logs a new contact registration.
func (l *Logger) ContactRegistered(r *http.Request, contactID int64, login string) {
	l.Log(Event{
		Category:  CategoryAdmin,
		EventType: EventContactRegistered,
		ContactID: contactID,
		Login:     login,
		IP:        network.GetClientIP(r),
		Success:   true,
	})
}

// ContactRemoved logs a contact removal.
func (l *Logger) ContactRemoved(r *http.Request, actorID int64, removedLogin string) {
	l.Log(Event{
		Category:  CategoryAdmin,
		EventType: EventContactRemoved,
		ContactID: actorID,
		Login:     removedLogin,
		IP:        network.GetClientIP(r),
		Success:   true,
	})
}
