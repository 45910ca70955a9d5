// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/drivershield/shield360/internal/app/store/alerts"
	"github.com/drivershield/shield360/internal/app/store/contacts"
	"github.com/drivershield/shield360/internal/app/system/persist"
)

// Snapshot file names inside the data directory.
const (
	contactsFile = "contacts.json"
	alertsFile   = "alerts.json"
)

// ConnectDB opens the snapshot-backed stores.
//
// WAFFLE calls this after configuration is loaded but before EnsureSchema
// and Startup. The relay keeps its state in two JSON files under DataDir;
// each store loads its snapshot here, so a corrupt or missing file is
// already handled (empty default) before the first request arrives.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	dataDir, err := filepath.Abs(appCfg.DataDir)
	if err != nil {
		return DBDeps{}, fmt.Errorf("resolve data dir: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return DBDeps{}, fmt.Errorf("create data dir: %w", err)
	}

	contactsStore, err := persist.NewFile(filepath.Join(dataDir, contactsFile), logger)
	if err != nil {
		return DBDeps{}, fmt.Errorf("open contact snapshot: %w", err)
	}
	registry, err := contacts.NewRegistry(contactsStore, appCfg.MaxContacts, appCfg.MinPasswordLen, logger)
	if err != nil {
		return DBDeps{}, fmt.Errorf("build contact registry: %w", err)
	}

	alertsStore, err := persist.NewFile(filepath.Join(dataDir, alertsFile), logger)
	if err != nil {
		return DBDeps{}, fmt.Errorf("open alert snapshot: %w", err)
	}
	feed, err := alerts.NewLog(alertsStore, appCfg.AlertRetention, logger)
	if err != nil {
		return DBDeps{}, fmt.Errorf("build alert log: %w", err)
	}

	logger.Info("snapshot stores opened",
		zap.String("data_dir", dataDir),
		zap.Int("contacts", registry.Count()),
		zap.Int("alerts", feed.Count()))

	return DBDeps{
		Contacts: registry,
		Alerts:   feed,
		DataDir:  dataDir,
	}, nil
}

// EnsureSchema makes sure the base snapshot files exist on disk.
//
// The stores tolerate missing files, but writing the empty snapshots up
// front surfaces permission problems at startup instead of on the first
// panic press.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	for name, probe := range map[string]func() error{
		contactsFile: func() error { return deps.Contacts.EnsureSnapshot() },
		alertsFile:   func() error { return deps.Alerts.EnsureSnapshot() },
	} {
		if err := probe(); err != nil {
			logger.Error("snapshot bootstrap failed", zap.String("file", name), zap.Error(err))
			return fmt.Errorf("ensure %s: %w", name, err)
		}
	}
	return nil
}
