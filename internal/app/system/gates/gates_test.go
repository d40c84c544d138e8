package gates_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/trovehq/trovehub/internal/app/system/auth"
	"github.com/trovehq/trovehub/internal/app/system/gates"
)

func reqAs(role string) *http.Request {
	r := httptest.NewRequest("GET", "/api/admin/applications", nil)
	if role == "" {
		return r
	}
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:   "507f1f77bcf86cd799439011",
		Name: "Test User",
		Role: role,
	})
}

func TestRequireAuth_NotSignedIn(t *testing.T) {
	rec := httptest.NewRecorder()

	res := gates.RequireAuth(rec, reqAs(""))
	if res.OK {
		t.Error("expected OK=false")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuth_SignedIn(t *testing.T) {
	rec := httptest.NewRecorder()

	res := gates.RequireAuth(rec, reqAs("applicant"))
	if !res.OK {
		t.Fatal("expected OK=true")
	}
	if res.Role != "applicant" {
		t.Errorf("role = %q", res.Role)
	}
	if res.UserID.IsZero() {
		t.Error("expected UserID to be set")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("nothing should be written on success, status = %d", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	t.Run("admin passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		if res := gates.RequireAdmin(rec, reqAs("admin"), "admin access required"); !res.OK {
			t.Error("expected OK=true for admin")
		}
	})

	t.Run("member forbidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		res := gates.RequireAdmin(rec, reqAs("member"), "admin access required")
		if res.OK {
			t.Error("expected OK=false for member")
		}
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "admin access required") {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("not signed in unauthorized", func(t *testing.T) {
		rec := httptest.NewRecorder()
		res := gates.RequireAdmin(rec, reqAs(""), "admin access required")
		if res.OK {
			t.Error("expected OK=false when not signed in")
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestRequireAdminOrAgent(t *testing.T) {
	tests := []struct {
		role   string
		wantOK bool
	}{
		{"admin", true},
		{"agent", true},
		{"member", false},
		{"applicant", false},
	}

	for _, tc := range tests {
		t.Run(tc.role, func(t *testing.T) {
			rec := httptest.NewRecorder()
			res := gates.RequireAdminOrAgent(rec, reqAs(tc.role), "staff access required")
			if res.OK != tc.wantOK {
				t.Errorf("role %q: OK = %v, want %v", tc.role, res.OK, tc.wantOK)
			}
		})
	}
}

func TestRequireAnyRole_ReturnsUserContext(t *testing.T) {
	rec := httptest.NewRecorder()
	res := gates.RequireAnyRole(rec, reqAs("agent"), "no", "agent", "member")

	if !res.OK {
		t.Fatal("expected OK=true")
	}
	if res.Name != "Test User" || res.Role != "agent" {
		t.Errorf("result = %+v", res)
	}
}
