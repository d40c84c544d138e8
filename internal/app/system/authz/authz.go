package authz

import (
	"net/http"
	"strings"

	"github.com/trovehq/trovehub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "visitor", "", NilObjectID, false. Callers can trust that ok=true means a
// valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session, fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsAdmin reports whether the current request's user is a platform admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "admin"
}

// IsAgent reports whether the current request's user is an institution agent.
func IsAgent(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "agent"
}

// IsMember reports whether the current request's user is a member.
func IsMember(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "member"
}

// IsApplicant reports whether the current request's user is an applicant.
func IsApplicant(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "applicant"
}

// UserInstitutionID returns the current user's institution ID as an ObjectID.
// Returns NilObjectID if the user is not logged in or not yet linked to an
// institution.
func UserInstitutionID(r *http.Request) primitive.ObjectID {
	user, ok := auth.CurrentUser(r)
	if !ok || user.InstitutionID == "" {
		return primitive.NilObjectID
	}
	oid, err := primitive.ObjectIDFromHex(user.InstitutionID)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}

// CanAccessInstitution reports whether the current user can act on the given
// institution. Admins can access every institution; agents and members only
// their own.
func CanAccessInstitution(r *http.Request, instID primitive.ObjectID) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	if role == "admin" {
		return true
	}
	if role == "agent" || role == "member" {
		return UserInstitutionID(r) == instID
	}
	return false
}
