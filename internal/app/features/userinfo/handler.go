// internal/app/features/userinfo/handler.go
package userinfo

import (
	"net/http"

	"github.com/trovehq/trovehub/internal/app/system/auth"
	"github.com/trovehq/trovehub/internal/app/system/httpjson"
)

// Handler serves user information for authenticated sessions.
type Handler struct{}

// NewHandler creates a new userinfo handler.
func NewHandler() *Handler {
	return &Handler{}
}

// ServeUserInfo returns JSON with the current user's authentication status
// and identity.
//
// Response format:
//
//	{ "isAuthenticated": bool, "name": "...", "email": "...", "role": "...", "institution_id": "..." }
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.OK(w, map[string]any{
			"isAuthenticated": false,
			"name":            "",
			"email":           "",
			"role":            "",
			"institution_id":  "",
		})
		return
	}

	httpjson.OK(w, map[string]any{
		"isAuthenticated": true,
		"name":            user.Name,
		"email":           user.Email,
		"role":            user.Role,
		"institution_id":  user.InstitutionID,
	})
}
