// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/trovehq/trovehub/internal/app/store/oauthstate"
	userstore "github.com/trovehq/trovehub/internal/app/store/users"
	"github.com/trovehq/trovehub/internal/app/system/auditlog"
	"github.com/trovehq/trovehub/internal/app/system/auth"
	"github.com/trovehq/trovehub/internal/app/system/normalize"
	"github.com/trovehq/trovehub/internal/app/system/timeouts"
	"github.com/trovehq/trovehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Handler handles Google OAuth authentication. Unknown Google accounts are
// provisioned as applicant users so institutions can self-serve onboarding;
// staff roles are only ever assigned by an admin afterwards.
type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	StateStore *oauthstate.Store
	Log        *zap.Logger

	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "https://trovehub.com/auth/google/callback"
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(
	users *userstore.Store,
	sessionMgr *auth.SessionManager,
	audit *auditlog.Logger,
	stateStore *oauthstate.Store,
	clientID, clientSecret, baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:        users,
		SessionMgr:   sessionMgr,
		AuditLog:     audit,
		StateStore:   stateStore,
		Log:          logger,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
	}
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// ServeLogin handles GET /auth/google. It stores a one-time state token
// and redirects to Google's consent screen.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		redirectWithError(w, r, "google_not_configured")
		return
	}

	state := uuid.NewString()
	returnURL := sanitizeReturnURL(r.URL.Query().Get("return"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	expiresAt := time.Now().UTC().Add(10 * time.Minute)
	if err := h.StateStore.Save(ctx, state, returnURL, expiresAt); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		redirectWithError(w, r, "internal")
		return
	}

	authURL := h.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline)
	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// ServeCallback handles GET /auth/google/callback. It validates the state
// token, exchanges the code, loads or provisions the user, and signs them in.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		redirectWithError(w, r, "google_denied")
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		redirectWithError(w, r, "invalid_state")
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.StateStore.Validate(ctxTimeout, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		redirectWithError(w, r, "internal")
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		redirectWithError(w, r, "invalid_state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		redirectWithError(w, r, "invalid_code")
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		redirectWithError(w, r, "token_exchange")
		return
	}

	googleUser, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		redirectWithError(w, r, "user_info")
		return
	}
	if !googleUser.EmailVerified {
		h.Log.Warn("Google account email not verified",
			zap.String("email", googleUser.Email))
		redirectWithError(w, r, "email_not_verified")
		return
	}

	user, err := h.findOrProvisionUser(ctxTimeout, googleUser)
	if err != nil {
		if errors.Is(err, errUserDisabled) {
			h.AuditLog.LoginFailedUserDisabled(ctx, r, user.ID, user.Email)
			redirectWithError(w, r, "account_disabled")
			return
		}
		h.Log.Error("failed to resolve Google user", zap.Error(err))
		redirectWithError(w, r, "internal")
		return
	}

	sessionUser := &auth.SessionUser{
		ID:    user.ID.Hex(),
		Name:  user.FullName,
		Email: user.Email,
		Role:  user.Role,
	}
	if user.InstitutionID != nil {
		sessionUser.InstitutionID = user.InstitutionID.Hex()
	}

	if err := h.SessionMgr.SignIn(w, r, sessionUser); err != nil {
		h.Log.Error("failed to create session after OAuth", zap.Error(err))
		redirectWithError(w, r, "internal")
		return
	}

	h.AuditLog.LoginSuccess(ctx, r, user.ID, user.InstitutionID, "google", user.Email)

	if returnURL == "" {
		returnURL = "/"
	}
	http.Redirect(w, r, returnURL, http.StatusSeeOther)
}

var errUserDisabled = errors.New("user disabled")

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// fetchGoogleUserInfo retrieves user information from Google's userinfo endpoint.
func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}

// findOrProvisionUser looks up the account for a verified Google identity,
// creating an applicant account on first sign-in. When the returned error is
// errUserDisabled the user value is still populated for audit logging.
func (h *Handler) findOrProvisionUser(ctx context.Context, g *googleUserInfo) (*models.User, error) {
	email := normalize.Email(g.Email)

	user, err := h.Users.GetByEmail(ctx, email)
	if err == nil {
		if user.Status == "disabled" {
			return user, errUserDisabled
		}
		return user, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	name := strings.TrimSpace(g.Name)
	if name == "" {
		name = email
	}
	created, err := h.Users.Create(ctx, models.User{
		FullName:   name,
		Email:      email,
		AuthMethod: "google",
		Role:       models.RoleApplicant,
	})
	if err != nil {
		// A concurrent first sign-in may have created the account.
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			return h.Users.GetByEmail(ctx, email)
		}
		return nil, err
	}

	h.Log.Info("provisioned applicant account from Google sign-in",
		zap.String("user_id", created.ID.Hex()),
		zap.String("email", created.Email))
	return &created, nil
}

// sanitizeReturnURL keeps redirects on-site. Anything that is not a
// same-site absolute path is dropped.
func sanitizeReturnURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return ""
	}
	return raw
}

func redirectWithError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/login?error="+url.QueryEscape(code), http.StatusSeeOther)
}
