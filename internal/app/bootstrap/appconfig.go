// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level, and request limits. AppConfig is where
// everything specific to TroveHub lives: the MongoDB connection, session
// cookies, SMTP settings for decision emails, Google OAuth credentials,
// audit log levels, and background worker cadence.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connections in the driver pool
	MongoMinPoolSize uint64 // Min connections kept warm in the driver pool

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: trovehub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Session lifetime before re-login is required

	// Email/SMTP configuration for application decision notifications.
	// Leaving MailSMTPHost blank disables outbound email entirely.
	MailSMTPHost string // SMTP server host (e.g., localhost for Mailpit, email-smtp.us-east-1.amazonaws.com for SES)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string // SMTP username (empty for Mailpit)
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address (e.g., noreply@trovehub.com)
	MailFromName string // From display name (e.g., TroveHub)

	// Base URL for links in emails and for OAuth callbacks.
	BaseURL string // e.g., "https://trovehub.com" or "http://localhost:3000"

	// SiteName appears in email subjects and bodies.
	SiteName string

	// Google OAuth configuration
	GoogleClientID     string // Google OAuth2 client ID
	GoogleClientSecret string // Google OAuth2 client secret

	// Audit logging levels per event category: "all", "db", "log", or "off"
	AuditLogAuth        string // Login, logout, OAuth events
	AuditLogApplication string // Application lifecycle events
	AuditLogAdmin       string // Admin CRUD on institutions, users, locations

	// Background worker cadence
	RegistrySyncInterval time.Duration // How often the registry mirror sweep runs
	RegistrySyncBatch    int64         // Max applications re-mirrored per sweep
	OAuthCleanupInterval time.Duration // How often expired OAuth state records are purged
}
