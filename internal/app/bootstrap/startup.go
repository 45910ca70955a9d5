// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/drivershield/shield360/internal/app/store/contacts"
)

// Startup runs once after the stores are opened and the base snapshots
// exist, but before the HTTP handler is built and requests are served.
//
// The only one-time work here is seeding the first trusted contact when
// configured. A fresh deployment starts with an empty registry, which
// leaves the alert panel unreachable (every feed route is behind the
// session gate); seeding gives operators a way to bootstrap without
// calling the open registration endpoint themselves.
//
// Returning a non-nil error aborts startup and prevents the server from
// starting.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.SeedContactLogin == "" {
		return nil
	}
	return ensureSeedContact(deps.Contacts, appCfg, logger)
}

// ensureSeedContact creates the configured contact if the login is not
// registered yet. An existing login is left untouched; the seed password
// never overwrites a credential someone may have changed.
func ensureSeedContact(registry *contacts.Registry, appCfg AppConfig, logger *zap.Logger) error {
	if _, ok := registry.GetByLogin(appCfg.SeedContactLogin); ok {
		logger.Debug("seed contact already registered",
			zap.String("login", appCfg.SeedContactLogin))
		return nil
	}

	c, err := registry.Add(appCfg.SeedContactName, appCfg.SeedContactLogin, appCfg.SeedContactPassword)
	if err != nil {
		if errors.Is(err, contacts.ErrRegistryFull) {
			// The registry filled up through the open registration page;
			// the deployment is already bootstrapped.
			logger.Warn("seed contact skipped: registry is full",
				zap.String("login", appCfg.SeedContactLogin))
			return nil
		}
		logger.Error("failed to seed contact", zap.Error(err))
		return err
	}

	logger.Info("seed contact created",
		zap.Int64("contact_id", c.ID),
		zap.String("login", c.Login))
	return nil
}
