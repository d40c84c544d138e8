package authz

import (
	"net/http"
	"strings"

	"github.com/trovehq/trovehub/internal/domain/models"
)

// HasAnyRole reports whether the signed-in user holds any of the given
// platform roles. Feature routes use this when a surface is shared, such
// as rosters readable by both admins and agents. Role arguments are
// folded the same way UserCtx folds the session role, so callers may
// pass models constants or raw strings.
func HasAnyRole(r *http.Request, roles ...string) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if role == strings.ToLower(strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

// HasRole is HasAnyRole for a single role.
func HasRole(r *http.Request, role string) bool {
	return HasAnyRole(r, role)
}

// IsStaff reports whether the user belongs to an institution's staff,
// either as its managing agent or an ordinary member.
func IsStaff(r *http.Request) bool {
	return HasAnyRole(r, models.RoleAgent, models.RoleMember)
}

// Role returns the signed-in user's role, lowercased, and whether a
// user is present at all.
func Role(r *http.Request) (string, bool) {
	role, _, _, ok := UserCtx(r)
	return role, ok
}
