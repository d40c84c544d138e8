package authz_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/trovehq/trovehub/internal/app/system/auth"
	"github.com/trovehq/trovehub/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func reqWithUser(u *auth.SessionUser) *http.Request {
	r := httptest.NewRequest("GET", "/", nil)
	return auth.WithTestUser(r, u)
}

func TestUserCtx_NoUser(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)

	role, name, uid, ok := authz.UserCtx(r)
	if ok {
		t.Error("expected ok=false with no user")
	}
	if role != "visitor" {
		t.Errorf("role = %q, want visitor", role)
	}
	if name != "" || uid != primitive.NilObjectID {
		t.Errorf("name=%q uid=%v", name, uid)
	}
}

func TestUserCtx_ValidUser(t *testing.T) {
	r := reqWithUser(&auth.SessionUser{
		ID:   "507f1f77bcf86cd799439011",
		Name: "Dana Reviewer",
		Role: "Admin",
	})

	role, name, uid, ok := authz.UserCtx(r)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if role != "admin" {
		t.Errorf("role = %q, want admin (lowercased)", role)
	}
	if name != "Dana Reviewer" {
		t.Errorf("name = %q", name)
	}
	if uid.Hex() != "507f1f77bcf86cd799439011" {
		t.Errorf("uid = %v", uid)
	}
}

func TestUserCtx_MalformedID_FailsClosed(t *testing.T) {
	r := reqWithUser(&auth.SessionUser{ID: "not-an-object-id", Role: "admin"})

	role, _, uid, ok := authz.UserCtx(r)
	if ok {
		t.Error("expected ok=false for malformed ID")
	}
	if role != "visitor" || uid != primitive.NilObjectID {
		t.Errorf("role=%q uid=%v", role, uid)
	}
}

func TestRoleHelpers(t *testing.T) {
	tests := []struct {
		role      string
		admin     bool
		agent     bool
		member    bool
		applicant bool
	}{
		{"admin", true, false, false, false},
		{"agent", false, true, false, false},
		{"member", false, false, true, false},
		{"applicant", false, false, false, true},
	}

	for _, tc := range tests {
		t.Run(tc.role, func(t *testing.T) {
			r := reqWithUser(&auth.SessionUser{ID: "507f1f77bcf86cd799439011", Role: tc.role})
			if got := authz.IsAdmin(r); got != tc.admin {
				t.Errorf("IsAdmin = %v", got)
			}
			if got := authz.IsAgent(r); got != tc.agent {
				t.Errorf("IsAgent = %v", got)
			}
			if got := authz.IsMember(r); got != tc.member {
				t.Errorf("IsMember = %v", got)
			}
			if got := authz.IsApplicant(r); got != tc.applicant {
				t.Errorf("IsApplicant = %v", got)
			}
		})
	}
}

func TestHasAnyRole(t *testing.T) {
	r := reqWithUser(&auth.SessionUser{ID: "507f1f77bcf86cd799439011", Role: "agent"})

	if !authz.HasAnyRole(r, "admin", "agent") {
		t.Error("expected agent to match [admin, agent]")
	}
	if authz.HasAnyRole(r, "admin", "member") {
		t.Error("expected agent not to match [admin, member]")
	}
	if !authz.HasAnyRole(r, " Agent ") {
		t.Error("expected role matching to trim and fold case")
	}
	if authz.HasAnyRole(httptest.NewRequest("GET", "/", nil), "admin") {
		t.Error("expected no match with no user")
	}
}

func TestIsStaff(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{"agent", true},
		{"member", true},
		{"admin", false},
		{"applicant", false},
	}

	for _, tc := range tests {
		t.Run(tc.role, func(t *testing.T) {
			r := reqWithUser(&auth.SessionUser{ID: "507f1f77bcf86cd799439011", Role: tc.role})
			if got := authz.IsStaff(r); got != tc.want {
				t.Errorf("IsStaff(%s) = %v, want %v", tc.role, got, tc.want)
			}
		})
	}

	if authz.IsStaff(httptest.NewRequest("GET", "/", nil)) {
		t.Error("IsStaff should be false with no user")
	}
}

func TestUserInstitutionID(t *testing.T) {
	instHex := "64b000000000000000000001"

	r := reqWithUser(&auth.SessionUser{
		ID:            "507f1f77bcf86cd799439011",
		Role:          "agent",
		InstitutionID: instHex,
	})
	if got := authz.UserInstitutionID(r); got.Hex() != instHex {
		t.Errorf("UserInstitutionID = %v", got)
	}

	// No institution linked.
	r = reqWithUser(&auth.SessionUser{ID: "507f1f77bcf86cd799439011", Role: "applicant"})
	if got := authz.UserInstitutionID(r); got != primitive.NilObjectID {
		t.Errorf("expected NilObjectID, got %v", got)
	}

	// Malformed institution ID.
	r = reqWithUser(&auth.SessionUser{ID: "507f1f77bcf86cd799439011", Role: "agent", InstitutionID: "junk"})
	if got := authz.UserInstitutionID(r); got != primitive.NilObjectID {
		t.Errorf("expected NilObjectID for malformed ID, got %v", got)
	}
}

func TestCanAccessInstitution(t *testing.T) {
	inst := primitive.NewObjectID()
	other := primitive.NewObjectID()

	admin := reqWithUser(&auth.SessionUser{ID: "507f1f77bcf86cd799439011", Role: "admin"})
	if !authz.CanAccessInstitution(admin, inst) {
		t.Error("admin should access any institution")
	}

	agent := reqWithUser(&auth.SessionUser{
		ID: "507f1f77bcf86cd799439011", Role: "agent", InstitutionID: inst.Hex(),
	})
	if !authz.CanAccessInstitution(agent, inst) {
		t.Error("agent should access own institution")
	}
	if authz.CanAccessInstitution(agent, other) {
		t.Error("agent should not access other institutions")
	}

	applicant := reqWithUser(&auth.SessionUser{ID: "507f1f77bcf86cd799439011", Role: "applicant"})
	if authz.CanAccessInstitution(applicant, inst) {
		t.Error("applicant should not access institutions")
	}
}
