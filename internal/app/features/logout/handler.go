// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/trovehq/trovehub/internal/app/system/auditlog"
	"github.com/trovehq/trovehub/internal/app/system/auth"
	"github.com/trovehq/trovehub/internal/app/system/httpjson"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Audit      *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Audit:      audit,
	}
}

// ServeLogout handles POST /api/logout. Signing out an already
// signed-out client still succeeds.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	user, signedIn := auth.CurrentUser(r)

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: clear session", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Failed to sign out")
		return
	}

	if signedIn {
		h.Audit.Logout(r.Context(), r, user.ID, user.InstitutionID)
	}

	httpjson.OK(w, map[string]any{"ok": true})
}
