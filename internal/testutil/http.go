package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trovehq/trovehub/internal/app/system/auth"
	"github.com/trovehq/trovehub/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID            string
	Name          string
	Email         string
	Role          string
	InstitutionID string
}

// AdminUser returns a TestUser with admin role.
func AdminUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Admin",
		Email: "admin@trovehub.test",
		Role:  models.RoleAdmin,
	}
}

// AgentUser returns a TestUser with agent role at the given institution.
func AgentUser(instID primitive.ObjectID) TestUser {
	return TestUser{
		ID:            primitive.NewObjectID().Hex(),
		Name:          "Test Agent",
		Email:         "agent@trovehub.test",
		Role:          models.RoleAgent,
		InstitutionID: instID.Hex(),
	}
}

// MemberUser returns a TestUser with member role at the given institution.
func MemberUser(instID primitive.ObjectID) TestUser {
	return TestUser{
		ID:            primitive.NewObjectID().Hex(),
		Name:          "Test Member",
		Email:         "member@trovehub.test",
		Role:          models.RoleMember,
		InstitutionID: instID.Hex(),
	}
}

// ApplicantUser returns a TestUser with applicant role.
func ApplicantUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Applicant",
		Email: "applicant@trovehub.test",
		Role:  models.RoleApplicant,
	}
}

// SessionUserFor converts a models.User into a TestUser, preserving its ID.
// Use this when a handler test needs the context user to match a fixture
// record in the database.
func SessionUserFor(u models.User) TestUser {
	tu := TestUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	}
	if u.InstitutionID != nil {
		tu.InstitutionID = u.InstitutionID.Hex()
	}
	return tu
}

// WithUser adds a user to the request context for testing authenticated
// handlers. This bypasses the session middleware and injects the user
// directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	sessionUser := &auth.SessionUser{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		Role:          user.Role,
		InstitutionID: user.InstitutionID,
	}
	return auth.WithTestUser(r, sessionUser)
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return WithUser(req, user)
}

// NewJSONRequest creates an HTTP request with a JSON-encoded body and
// Content-Type header.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeJSON decodes a recorded JSON response body into out.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()

	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response body %q: %v", rec.Body.String(), err)
	}
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %q)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body %q does not contain %q", r.Body.String(), expected)
	}
}

// AssertJSONError checks that the response carries the standard error
// envelope with the expected message.
func (r *ResponseRecorder) AssertJSONError(t interface{ Errorf(string, ...any) }, expected string) {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(r.Body.Bytes(), &body); err != nil {
		t.Errorf("response body %q is not a JSON error envelope: %v", r.Body.String(), err)
		return
	}
	if body.Error != expected {
		t.Errorf("error message: got %q, want %q", body.Error, expected)
	}
}
