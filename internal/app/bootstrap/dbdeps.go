// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/drivershield/shield360/internal/app/store/alerts"
	"github.com/drivershield/shield360/internal/app/store/contacts"
)

// DBDeps holds storage dependencies for this WAFFLE app.
//
// This struct is created in ConnectDB and passed to subsequent lifecycle
// hooks: EnsureSchema, Startup, BuildHandler, and Shutdown. The backing
// store is a pair of JSON snapshot files in DataDir; there is no remote
// database to keep the relay operable on a single box at the roadside.
type DBDeps struct {
	// Contacts is the bounded registry of trusted emergency contacts.
	Contacts *contacts.Registry

	// Alerts is the append-mostly feed of received panic alerts.
	Alerts *alerts.Log

	// DataDir is the resolved snapshot directory, kept for health probes.
	DataDir string
}
