// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	applicationstore "github.com/trovehq/trovehub/internal/app/store/applications"
	"github.com/trovehq/trovehub/internal/app/store/oauthstate"
	registrystore "github.com/trovehq/trovehub/internal/app/store/registry"
	"github.com/trovehq/trovehub/internal/app/system/workers"
)

// Background workers started here and stopped in Shutdown.
var (
	registrySync *workers.RegistrySync
	oauthCleanup *workers.OAuthStateCleanup
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// TroveHub starts its two background workers here: the registry sweep that
// retries failed mirror writes, and the purge of expired OAuth login states.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	registrySync = workers.NewRegistrySync(
		applicationstore.New(db),
		registrystore.New(db),
		logger,
		appCfg.RegistrySyncInterval,
		appCfg.RegistrySyncBatch,
	)
	registrySync.Start()

	oauthCleanup = workers.NewOAuthStateCleanup(oauthstate.New(db), logger, appCfg.OAuthCleanupInterval)
	oauthCleanup.Start()

	return nil
}
