// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	agentsfeature "github.com/trovehq/trovehub/internal/app/features/agents"
	applyfeature "github.com/trovehq/trovehub/internal/app/features/apply"
	auditlogfeature "github.com/trovehq/trovehub/internal/app/features/auditlog"
	authgooglefeature "github.com/trovehq/trovehub/internal/app/features/authgoogle"
	dashboardfeature "github.com/trovehq/trovehub/internal/app/features/dashboard"
	healthfeature "github.com/trovehq/trovehub/internal/app/features/health"
	institutionsfeature "github.com/trovehq/trovehub/internal/app/features/institutions"
	locationsfeature "github.com/trovehq/trovehub/internal/app/features/locations"
	loginfeature "github.com/trovehq/trovehub/internal/app/features/login"
	logoutfeature "github.com/trovehq/trovehub/internal/app/features/logout"
	membersfeature "github.com/trovehq/trovehub/internal/app/features/members"
	registryfeature "github.com/trovehq/trovehub/internal/app/features/registry"
	reviewfeature "github.com/trovehq/trovehub/internal/app/features/review"
	userinfofeature "github.com/trovehq/trovehub/internal/app/features/userinfo"
	applicationstore "github.com/trovehq/trovehub/internal/app/store/applications"
	"github.com/trovehq/trovehub/internal/app/store/audit"
	institutionstore "github.com/trovehq/trovehub/internal/app/store/institutions"
	locationstore "github.com/trovehq/trovehub/internal/app/store/locations"
	"github.com/trovehq/trovehub/internal/app/store/oauthstate"
	registrystore "github.com/trovehq/trovehub/internal/app/store/registry"
	userstore "github.com/trovehq/trovehub/internal/app/store/users"
	"github.com/trovehq/trovehub/internal/app/system/auditlog"
	"github.com/trovehq/trovehub/internal/app/system/auth"
	"github.com/trovehq/trovehub/internal/app/system/mailer"
	"github.com/trovehq/trovehub/internal/app/system/ratelimit"
)

// Application writes (wizard POST/PUT) are limited per client IP.
const (
	applyWriteLimit  = 30
	applyWriteWindow = time.Minute
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// TroveHub applies session middleware globally, then mounts the JSON API:
// the applicant wizard, the admin review queue and registry, institution,
// agent, member, and location management, and the admin dashboard.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data on each request.
	// This ensures role changes, disabled accounts, and profile updates take effect immediately.
	users := userstore.New(db)
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	apps := applicationstore.New(db)
	registry := registrystore.New(db)
	institutions := institutionstore.New(db)
	locations := locationstore.New(db)

	auditLogger := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:        appCfg.AuditLogAuth,
		Application: appCfg.AuditLogApplication,
		Admin:       appCfg.AuditLogAdmin,
	})

	mail := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		User:     appCfg.MailSMTPUser,
		Pass:     appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger)

	loginLimiter := ratelimit.NewLoginLimiter()
	writeLimiter := ratelimit.New(applyWriteLimit, applyWriteWindow)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(users, sessionMgr, loginLimiter, auditLogger, logger)
	r.Mount("/api/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLogger, logger)
	r.Mount("/api/logout", logoutfeature.Routes(logoutHandler))

	userinfoHandler := userinfofeature.NewHandler()
	r.Mount("/api/userinfo", userinfofeature.Routes(userinfoHandler))

	if appCfg.GoogleClientID != "" {
		googleHandler := authgooglefeature.NewHandler(
			users, sessionMgr, auditLogger, oauthstate.New(db),
			appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL,
			logger,
		)
		r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
	}

	// Applicant wizard
	applyHandler := applyfeature.NewHandler(apps, registry, auditLogger, logger)
	r.Mount("/api/application", applyfeature.Routes(applyHandler, writeLimiter))

	// Admin review queue and institution provisioning
	reviewHandler := reviewfeature.NewHandler(
		apps, registry, institutions, users,
		auditLogger, mail, appCfg.SiteName, appCfg.BaseURL,
		logger,
	)
	r.Mount("/api/admin/applications", reviewfeature.Routes(reviewHandler))

	registryHandler := registryfeature.NewHandler(registry, apps, logger)
	r.Mount("/api/admin/registry", registryfeature.Routes(registryHandler))

	institutionsHandler := institutionsfeature.NewHandler(institutions, users, locations, auditLogger, logger)
	r.Mount("/api/admin/institutions", institutionsfeature.Routes(institutionsHandler))

	dashboardHandler := dashboardfeature.NewHandler(apps, institutions, users, registry, logger)
	r.Mount("/api/admin/dashboard", dashboardfeature.Routes(dashboardHandler))

	auditlogHandler := auditlogfeature.NewHandler(audit.New(db), logger)
	r.Mount("/api/admin/audit", auditlogfeature.Routes(auditlogHandler))

	// Institution rosters
	agentsHandler := agentsfeature.NewHandler(users, auditLogger, logger)
	r.Mount("/api/agents", agentsfeature.Routes(agentsHandler))

	membersHandler := membersfeature.NewHandler(users, auditLogger, logger)
	r.Mount("/api/members", membersfeature.Routes(membersHandler))

	locationsHandler := locationsfeature.NewHandler(locations, auditLogger, logger)
	r.Mount("/api/locations", locationsfeature.Routes(locationsHandler))

	return r, nil
}
