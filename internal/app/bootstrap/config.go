// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "SHIELD360"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: data_dir, session_name, etc.
//   - Environment variables: SHIELD360_DATA_DIR, SHIELD360_SESSION_NAME, etc.
//   - Command-line flags: --data_dir, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "data_dir", Default: "./data", Desc: "Directory for the contact and alert JSON snapshots"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "shield360-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie max age (e.g., 24h, 720h, 30m)"},

	{Name: "csrf_key", Default: "dev-only-csrf-key-please-change-0123456789", Desc: "CSRF token signing key (32+ chars in production)"},

	// Registry and feed limits
	{Name: "max_contacts", Default: 3, Desc: "Maximum number of emergency contacts"},
	{Name: "alert_retention", Default: 500, Desc: "Most-recent alerts kept in the feed"},
	{Name: "min_password_len", Default: 6, Desc: "Minimum contact password length"},

	// Audit logging settings
	{Name: "audit_log", Default: "log", Desc: "Audit event logging: 'log' or 'off'"},

	// First-contact seeding configuration
	{Name: "seed_contact_login", Default: "", Desc: "Login of a trusted contact to create on startup"},
	{Name: "seed_contact_name", Default: "Contact", Desc: "Name of the seeded contact"},
	{Name: "seed_contact_password", Default: "", Desc: "Password of the seeded contact"},

	// Static assets
	{Name: "static_dir", Default: "static", Desc: "Directory of static pages served at /static"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific
// to this app and can be extended as the app grows.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		DataDir: appValues.String("data_dir"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		CSRFKey: appValues.String("csrf_key"),

		MaxContacts:    appValues.Int("max_contacts"),
		AlertRetention: appValues.Int("alert_retention"),
		MinPasswordLen: appValues.Int("min_password_len"),

		AuditLog: appValues.String("audit_log"),

		SeedContactLogin:    appValues.String("seed_contact_login"),
		SeedContactName:     appValues.String("seed_contact_name"),
		SeedContactPassword: appValues.String("seed_contact_password"),

		StaticDir: appValues.String("static_dir"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.DataDir == "" {
		logger.Error("data_dir must not be empty")
		return fmt.Errorf("data_dir must not be empty")
	}
	if appCfg.MaxContacts <= 0 {
		logger.Error("max_contacts must be positive", zap.Int("max_contacts", appCfg.MaxContacts))
		return fmt.Errorf("max_contacts must be positive, got %d", appCfg.MaxContacts)
	}
	if appCfg.AlertRetention <= 0 {
		logger.Error("alert_retention must be positive", zap.Int("alert_retention", appCfg.AlertRetention))
		return fmt.Errorf("alert_retention must be positive, got %d", appCfg.AlertRetention)
	}
	// Seeding requires the full triple; catching a partial one here beats
	// a silent no-op at startup.
	if appCfg.SeedContactLogin != "" && appCfg.SeedContactPassword == "" {
		logger.Error("seed_contact_login set without seed_contact_password")
		return fmt.Errorf("seed_contact_password is required when seed_contact_login is set")
	}
	return nil
}
