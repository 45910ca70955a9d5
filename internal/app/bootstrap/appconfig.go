// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
type AppConfig struct {
	// Data directory for the JSON snapshots (contacts, alerts)
	DataDir string

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: shield360-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Maximum session cookie lifetime (default: 24h)

	// CSRF protection configuration
	CSRFKey string // Secret key for CSRF token signing (32 bytes, must be strong in production)

	// Registry and feed limits
	MaxContacts    int // Registry capacity (default: 3)
	AlertRetention int // Most-recent alerts kept in the feed (default: 500)
	MinPasswordLen int // Minimum contact password length (default: 6)

	// Audit logging configuration
	// Values: "log" (zap) or "off" (disabled)
	AuditLog string

	// First-contact seeding configuration
	SeedContactLogin    string // Login of the contact to create on startup (if set)
	SeedContactName     string // Name of the contact to create on startup
	SeedContactPassword string // Password of the contact to create on startup

	// Static assets directory served at /static
	StaticDir string
}
