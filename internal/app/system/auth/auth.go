package auth

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - Email: the address the user signs in with (password or Google)

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/trovehq/trovehub/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// Session value keys.
const (
	isAuthKey        = "is_authenticated"
	userIDKey        = "user_id"
	userNameKey      = "user_name"
	userEmailKey     = "user_email"
	userRoleKey      = "user_role"
	institutionIDKey = "institution_id"
)

// SessionUser is what we cache in the session and inject into r.Context().
// InstitutionID is empty for users not yet linked to an institution.
type SessionUser struct {
	ID            string
	Name          string
	Email         string
	Role          string
	InstitutionID string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// SessionManager owns the cookie store and the middleware built on it.
type SessionManager struct {
	store       *sessions.CookieStore
	sessionName string
	log         *zap.Logger
}

// NewSessionManager builds a SessionManager backed by a cookie store.
// The key must be at least 32 characters. With secure=true cookies are
// Secure + SameSite=None for cross-site HTTPS use; in local dev over
// http use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, sessionName, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if len(sessionKey) < 32 {
		return nil, fmt.Errorf("session key must be at least 32 characters, got %d", len(sessionKey))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.String("session", sessionName),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, sessionName: sessionName, log: logger}, nil
}

// SignIn writes the user into the session cookie.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess, _ := sm.store.Get(r, sm.sessionName)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userNameKey] = u.Name
	sess.Values[userEmailKey] = u.Email
	sess.Values[userRoleKey] = u.Role
	sess.Values[institutionIDKey] = u.InstitutionID
	return sess.Save(r, w)
}

// SignOut clears the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.sessionName)
	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// CurrentUser returns the user loaded by LoadSessionUser, if any.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// LoadSessionUser injects the session user into context if they are
// signed in. Requests without a valid session pass through unchanged.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := sm.store.Get(r, sm.sessionName)

		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			u := &SessionUser{
				ID:            getString(sess, userIDKey),
				Name:          getString(sess, userNameKey),
				Email:         getString(sess, userEmailKey),
				Role:          getString(sess, userRoleKey),
				InstitutionID: getString(sess, institutionIDKey),
			}
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// Unauthenticated requests get a 401 with the standard error envelope.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			httpjson.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole ensures the signed-in user holds one of the allowed roles.
// Role comparison is case-insensitive. Missing user gets 401, wrong role 403.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				httpjson.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				httpjson.Error(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithTestUser injects a SessionUser into the request context, simulating
// what LoadSessionUser does. For tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
