// internal/app/features/login/handler.go
package login

import (
	"encoding/json"
	"errors"
	"net/http"

	userstore "github.com/trovehq/trovehub/internal/app/store/users"
	"github.com/trovehq/trovehub/internal/app/system/auditlog"
	"github.com/trovehq/trovehub/internal/app/system/auth"
	"github.com/trovehq/trovehub/internal/app/system/authutil"
	"github.com/trovehq/trovehub/internal/app/system/httpjson"
	"github.com/trovehq/trovehub/internal/app/system/normalize"
	"github.com/trovehq/trovehub/internal/app/system/ratelimit"
	"github.com/trovehq/trovehub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// invalidCredentialsMsg is deliberately identical for unknown email and
// wrong password so the endpoint cannot be used to probe for accounts.
const invalidCredentialsMsg = "Invalid email or password"

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter
	Audit      *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, sessionMgr *auth.SessionManager, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      users,
		SessionMgr: sessionMgr,
		Limiter:    limiter,
		Audit:      audit,
		Log:        logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	InstitutionID string `json:"institution_id,omitempty"`
}

// HandleLogin handles POST /api/login with password credentials.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email := normalize.Email(req.Email)
	if email == "" || req.Password == "" {
		httpjson.Error(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	if allowed, reason := h.Limiter.Check(r, email); !allowed {
		h.Audit.LoginFailedRateLimit(r.Context(), r, email, reason)
		httpjson.Error(w, http.StatusTooManyRequests, reason)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login lookup")
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.Audit.LoginFailedUserNotFound(r.Context(), r, email)
			httpjson.Error(w, http.StatusUnauthorized, invalidCredentialsMsg)
			return
		}
		h.Log.Error("login: lookup user", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	if user.Status == "disabled" {
		h.Audit.LoginFailedUserDisabled(r.Context(), r, user.ID, email)
		httpjson.Error(w, http.StatusForbidden, "This account has been disabled")
		return
	}

	if user.AuthMethod != "password" || user.PasswordHash == nil {
		// Account exists but signs in through Google.
		h.Audit.LoginFailedWrongPassword(r.Context(), r, user.ID, email)
		httpjson.Error(w, http.StatusUnauthorized, invalidCredentialsMsg)
		return
	}

	if !authutil.CheckPassword(req.Password, *user.PasswordHash) {
		h.Audit.LoginFailedWrongPassword(r.Context(), r, user.ID, email)
		httpjson.Error(w, http.StatusUnauthorized, invalidCredentialsMsg)
		return
	}

	h.Limiter.ResetEmail(email)

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
		h.Log.Error("login: create session", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	h.Audit.LoginSuccess(r.Context(), r, user.ID, user.InstitutionID, user.AuthMethod, user.Email)

	httpjson.OK(w, loginResponse{
		ID:            sessionUser.ID,
		Name:          sessionUser.Name,
		Email:         sessionUser.Email,
		Role:          sessionUser.Role,
		InstitutionID: sessionUser.InstitutionID,
	})
}
