// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/trovehq/trovehub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (login, logout).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Application controls logging for applicant-side events (create, update, submit).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Application string
	// Admin controls logging for review and CRUD events performed by staff.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (for reverse proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	// Fall back to RemoteAddr
	return r.RemoteAddr
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.InstitutionID != nil {
		fields = append(fields, zap.String("institution_id", event.InstitutionID.Hex()))
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

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	// Determine which config setting applies based on event category
	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryApplication:
		setting = l.config.Application
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all" // Default to logging everything for unknown categories
	}

	// Check if logging is disabled for this category
	if setting == "off" {
		return
	}

	// Log to zap if configured
	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	// Log to MongoDB if configured
	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, instID *primitive.ObjectID, authMethod, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginSuccess,
		UserID:        &userID,
		InstitutionID: instID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       true,
		Details: map[string]string{
			"auth_method": authMethod,
			"email":       email,
		},
	})
}

// LoginFailedUserNotFound logs a failed login due to user not found.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedEmail string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserNotFound,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: "user not found",
		Details: map[string]string{
			"attempted_email": attemptedEmail,
		},
	})
}

// LoginFailedWrongPassword logs a failed login due to wrong password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedWrongPassword,
		UserID:        &userID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: "wrong password",
		Details: map[string]string{
			"email": email,
		},
	})
}

// LoginFailedUserDisabled logs a failed login due to disabled account.
func (l *Logger) LoginFailedUserDisabled(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserDisabled,
		UserID:        &userID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: "user disabled",
		Details: map[string]string{
			"email": email,
		},
	})
}

// LoginFailedRateLimit logs a failed login due to rate limiting.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email, limitType string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedRateLimit,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: "rate limit exceeded",
		Details: map[string]string{
			"email":      email,
			"limit_type": limitType,
		},
	})
}

// Logout logs a user logout.
// Accepts string IDs from the session and converts them to ObjectIDs.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr, instIDStr string) {
	var userID *primitive.ObjectID
	var instID *primitive.ObjectID

	if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		userID = &oid
	}
	if oid, err := primitive.ObjectIDFromHex(instIDStr); err == nil {
		instID = &oid
	}

	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLogout,
		UserID:        userID,
		InstitutionID: instID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       true,
	})
}

// --- Application Events ---

// ApplicationCreated logs when an applicant saves a first draft.
func (l *Logger) ApplicationCreated(ctx context.Context, r *http.Request, userID, applicationID primitive.ObjectID, status string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryApplication,
		EventType: audit.EventApplicationCreated,
		UserID:    &userID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"application_id": applicationID.Hex(),
			"status":         status,
		},
	})
}

// ApplicationUpdated logs when an applicant revises an existing application.
func (l *Logger) ApplicationUpdated(ctx context.Context, r *http.Request, userID, applicationID primitive.ObjectID, fromStatus, toStatus string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryApplication,
		EventType: audit.EventApplicationUpdated,
		UserID:    &userID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"application_id": applicationID.Hex(),
			"from_status":    fromStatus,
			"to_status":      toStatus,
		},
	})
}

// ApplicationSubmitted logs when an application enters pending_verification.
func (l *Logger) ApplicationSubmitted(ctx context.Context, r *http.Request, userID, applicationID primitive.ObjectID, institutionName, emailDomain string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryApplication,
		EventType: audit.EventApplicationSubmitted,
		UserID:    &userID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"application_id":   applicationID.Hex(),
			"institution_name": institutionName,
			"email_domain":     emailDomain,
		},
	})
}

// --- Admin Review Events ---

// ReviewStarted logs when a reviewer claims an application for verification.
func (l *Logger) ReviewStarted(ctx context.Context, r *http.Request, actorID, applicantID primitive.ObjectID, actorRole string, applicationID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventReviewStarted,
		ActorID:   &actorID,
		UserID:    &applicantID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"actor_role":     actorRole,
			"application_id": applicationID.Hex(),
		},
	})
}

// ApplicationApproved logs an approval decision and the institution it provisioned.
func (l *Logger) ApplicationApproved(ctx context.Context, r *http.Request, actorID, applicantID primitive.ObjectID, instID *primitive.ObjectID, actorRole string, applicationID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAdmin,
		EventType:     audit.EventApplicationApproved,
		ActorID:       &actorID,
		UserID:        &applicantID,
		InstitutionID: instID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       true,
		Details: map[string]string{
			"actor_role":     actorRole,
			"application_id": applicationID.Hex(),
		},
	})
}

// ApplicationRejected logs a rejection decision with the reviewer's reason.
func (l *Logger) ApplicationRejected(ctx context.Context, r *http.Request, actorID, applicantID primitive.ObjectID, actorRole string, applicationID primitive.ObjectID, reason string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventApplicationRejected,
		ActorID:   &actorID,
		UserID:    &applicantID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"actor_role":     actorRole,
			"application_id": applicationID.Hex(),
			"reason":         reason,
		},
	})
}

// ApplicationReopened logs when a reviewer sends an application back to draft.
func (l *Logger) ApplicationReopened(ctx context.Context, r *http.Request, actorID, applicantID primitive.ObjectID, actorRole string, applicationID primitive.ObjectID, reason string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventApplicationReopened,
		ActorID:   &actorID,
		UserID:    &applicantID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"actor_role":     actorRole,
			"application_id": applicationID.Hex(),
			"reason":         reason,
		},
	})
}

// --- Institution Events ---

// InstitutionCreated logs when an admin creates an institution.
func (l *Logger) InstitutionCreated(ctx context.Context, r *http.Request, actorID, instID primitive.ObjectID, actorRole, instName string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAdmin,
		EventType:     audit.EventInstitutionCreated,
		ActorID:       &actorID,
		InstitutionID: &instID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       true,
		Details: map[string]string{
			"actor_role":       actorRole,
			"institution_name": instName,
		},
	})
}

// InstitutionUpdated logs when an admin or agent updates an institution.
func (l *Logger) InstitutionUpdated(ctx context.Context, r *http.Request, actorID, instID primitive.ObjectID, actorRole, fieldsChanged string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAdmin,
		EventType:     audit.EventInstitutionUpdated,
		ActorID:       &actorID,
		InstitutionID: &instID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       true,
		Details: map[string]string{
			"actor_role":     actorRole,
			"fields_changed": fieldsChanged,
		},
	})
}

// InstitutionDeleted logs when an admin deletes an institution.
func (l *Logger) InstitutionDeleted(ctx context.Context, r *http.Request, actorID, instID primitive.ObjectID, actorRole, instName string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAdmin,
		EventType:     audit.EventInstitutionDeleted,
		ActorID:       &actorID,
		InstitutionID: &instID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       true,
		Details: map[string]string{
			"actor_role":       actorRole,
			"institution_name": instName,
		},
	})
}

// --- Location Events ---

// LocationCreated logs when a staff member adds a pickup location.
func (l *Logger) LocationCreated(ctx context.Context, r *http.Request, actorID, locationID primitive.ObjectID, instID *primitive.ObjectID, actorRole, locationName string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAdmin,
		EventType:     audit.EventLocationCreated,
		ActorID:       &actorID,
		InstitutionID: instID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       true,
		Details: map[string]string{
			"actor_role":    actorRole,
			"location_id":   locationID.Hex(),
			"location_name": locationName,
		},
	})
}

// LocationUpdated logs when a staff member updates a pickup location.
func (l *Logger) LocationUpdated(ctx context.Context, r *http.Request, actorID, locationID primitive.ObjectID, instID *primitive.ObjectID, actorRole, fieldsChanged string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAdmin,
		EventType:     audit.EventLocationUpdated,
		ActorID:       &actorID,
		InstitutionID: instID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       true,
		Details: map[string]string{
			"actor_role":     actorRole,
			"location_id":    locationID.Hex(),
			"fields_changed": fieldsChanged,
		},
	})
}

// LocationDeleted logs when a staff member removes a pickup location.
func (l *Logger) LocationDeleted(ctx context.Context, r *http.Request, actorID, locationID primitive.ObjectID, instID *primitive.ObjectID, actorRole, locationName string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAdmin,
		EventType:     audit.EventLocationDeleted,
		ActorID:       &actorID,
		InstitutionID: instID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       true,
		Details: map[string]string{
			"actor_role":    actorRole,
			"location_id":   locationID.Hex(),
			"location_name": locationName,
		},
	})
}

// --- User Events ---

// UserCreated logs when an admin or agent creates a user account.
func (l *Logger) UserCreated(ctx context.Context, r *http.Request, actorID, targetUserID primitive.ObjectID, instID *primitive.ObjectID, actorRole, role, authMethod string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAdmin,
		EventType:     audit.EventUserCreated,
		UserID:        &targetUserID,
		ActorID:       &actorID,
		InstitutionID: instID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       true,
		Details: map[string]string{
			"actor_role":  actorRole,
			"role":        role,
			"auth_method": authMethod,
		},
	})
}

// UserUpdated logs when an admin or agent updates a user account.
func (l *Logger) UserUpdated(ctx context.Context, r *http.Request, actorID, targetUserID primitive.ObjectID, instID *primitive.ObjectID, actorRole, fieldsChanged string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAdmin,
		EventType:     audit.EventUserUpdated,
		UserID:        &targetUserID,
		ActorID:       &actorID,
		InstitutionID: instID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       true,
		Details: map[string]string{
			"actor_role":     actorRole,
			"fields_changed": fieldsChanged,
		},
	})
}

// UserDeleted logs when an admin deletes a user account.
func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, actorID, targetUserID primitive.ObjectID, instID *primitive.ObjectID, actorRole, role string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAdmin,
		EventType:     audit.EventUserDeleted,
		UserID:        &targetUserID,
		ActorID:       &actorID,
		InstitutionID: instID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       true,
		Details: map[string]string{
			"actor_role": actorRole,
			"role":       role,
		},
	})
}
