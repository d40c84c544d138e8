// Package bootstrap assembles the TroveHub process: configuration,
// Mongo connection, schema and index setup, the HTTP router, and the
// background workers that keep the institution registry reconciled.
package bootstrap

import (
	"github.com/dalemusser/waffle/app"
)

// Hooks hands the lifecycle to WAFFLE. Ordering matters: ConnectDB runs
// before EnsureSchema (indexes need a live database), Startup launches
// the registry-sync and OAuth-state workers only after the schema is in
// place, and Shutdown stops those workers before disconnecting Mongo.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           "trovehub",
	LoadConfig:     LoadConfig,
	ValidateConfig: ValidateConfig,
	ConnectDB:      ConnectDB,
	EnsureSchema:   EnsureSchema,
	Startup:        Startup,
	BuildHandler:   BuildHandler,
	Shutdown:       Shutdown,
}
