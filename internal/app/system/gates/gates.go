// Package gates provides authorization gate functions for HTTP handlers.
// Gates check authentication and authorization, writing the standard JSON
// error envelope when checks fail.
//
// Route groups with uniform requirements use the auth middleware
// (RequireSignedIn, RequireRole) instead. Gates are for handlers that sit
// on mixed-access routes and need their own check, and they hand back the
// caller's user context so handlers don't re-derive it.
package gates

import (
	"net/http"

	"github.com/trovehq/trovehub/internal/app/system/authz"
	"github.com/trovehq/trovehub/internal/app/system/httpjson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Result contains the result of an authorization gate check.
type Result struct {
	Role   string
	Name   string
	UserID primitive.ObjectID
	OK     bool
}

// RequireAuth ensures a user is authenticated.
// If not authenticated, it writes a 401 and returns OK=false.
func RequireAuth(w http.ResponseWriter, r *http.Request) Result {
	role, name, uid, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return Result{OK: false}
	}
	return Result{Role: role, Name: name, UserID: uid, OK: true}
}

// RequireAdmin ensures the user is authenticated and has the admin role.
// Writes 401 when not signed in, 403 with forbiddenMsg otherwise.
func RequireAdmin(w http.ResponseWriter, r *http.Request, forbiddenMsg string) Result {
	return RequireAnyRole(w, r, forbiddenMsg, "admin")
}

// RequireAdminOrAgent ensures the user is authenticated and is an admin or
// an institution agent.
func RequireAdminOrAgent(w http.ResponseWriter, r *http.Request, forbiddenMsg string) Result {
	return RequireAnyRole(w, r, forbiddenMsg, "admin", "agent")
}

// RequireAnyRole ensures the user is authenticated and has one of the
// specified roles. Writes 401 when not signed in, 403 with forbiddenMsg
// when the role is not allowed.
func RequireAnyRole(w http.ResponseWriter, r *http.Request, forbiddenMsg string, allowedRoles ...string) Result {
	role, name, uid, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return Result{OK: false}
	}

	for _, allowed := range allowedRoles {
		if role == allowed {
			return Result{Role: role, Name: name, UserID: uid, OK: true}
		}
	}

	httpjson.Error(w, http.StatusForbidden, forbiddenMsg)
	return Result{OK: false}
}
