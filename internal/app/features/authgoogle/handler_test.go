// internal/app/features/authgoogle/handler_test.go
package authgoogle

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/trovehq/trovehub/internal/app/store/oauthstate"
	userstore "github.com/trovehq/trovehub/internal/app/store/users"
	"github.com/trovehq/trovehub/internal/app/system/auth"
	"github.com/trovehq/trovehub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, db *mongo.Database, clientID, clientSecret string) *Handler {
	t.Helper()

	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}

	return NewHandler(
		userstore.New(db),
		sm,
		nil,
		oauthstate.New(db),
		clientID, clientSecret,
		"https://trovehub.test",
		zap.NewNop(),
	)
}

func TestServeLogin_NotConfigured(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db, "", "")

	req := httptest.NewRequest("GET", "/auth/google", nil)
	rec := httptest.NewRecorder()

	h.ServeLogin(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=google_not_configured") {
		t.Errorf("redirect location: got %q", loc)
	}
}

func TestServeLogin_RedirectsToGoogleWithStoredState(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db, "client-id", "client-secret")

	req := httptest.NewRequest("GET", "/auth/google?return=/application", nil)
	rec := httptest.NewRecorder()

	h.ServeLogin(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}
	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "accounts.google.com") {
		t.Fatalf("expected redirect to Google, got %q", loc)
	}

	u, err := req.URL.Parse(loc)
	if err != nil {
		t.Fatalf("failed to parse redirect URL: %v", err)
	}
	state := u.Query().Get("state")
	if state == "" {
		t.Fatal("redirect carries no state parameter")
	}

	// The state is stored one-time and carries the return URL.
	ctx, cancel := testutil.TestContext()
	defer cancel()
	returnURL, valid, err := oauthstate.New(db).Validate(ctx, state)
	if err != nil || !valid {
		t.Fatalf("stored state invalid (valid=%v err=%v)", valid, err)
	}
	if returnURL != "/application" {
		t.Errorf("return URL: got %q, want %q", returnURL, "/application")
	}
}

func TestServeCallback_MissingState(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db, "client-id", "client-secret")

	req := httptest.NewRequest("GET", "/auth/google/callback?code=abc", nil)
	rec := httptest.NewRecorder()

	h.ServeCallback(rec, req)

	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=invalid_state") {
		t.Errorf("redirect location: got %q", loc)
	}
}

func TestServeCallback_UnknownState(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db, "client-id", "client-secret")

	req := httptest.NewRequest("GET", "/auth/google/callback?state=never-stored&code=abc", nil)
	rec := httptest.NewRecorder()

	h.ServeCallback(rec, req)

	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=invalid_state") {
		t.Errorf("redirect location: got %q", loc)
	}
}

func TestServeCallback_ProviderError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db, "client-id", "client-secret")

	req := httptest.NewRequest("GET", "/auth/google/callback?error=access_denied", nil)
	rec := httptest.NewRecorder()

	h.ServeCallback(rec, req)

	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=google_denied") {
		t.Errorf("redirect location: got %q", loc)
	}
}

func TestFindOrProvisionUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db, "client-id", "client-secret")

	ctx, cancel := testutil.TestContext()
	defer cancel()

	// First sign-in provisions an applicant.
	user, err := h.findOrProvisionUser(ctx, &googleUserInfo{
		ID:            "google-123",
		Email:         "New.Person@Northfield.EDU",
		EmailVerified: true,
		Name:          "New Person",
	})
	if err != nil {
		t.Fatalf("findOrProvisionUser failed: %v", err)
	}
	if user.Role != "applicant" || user.AuthMethod != "google" {
		t.Errorf("provisioned user: got role=%q auth=%q", user.Role, user.AuthMethod)
	}
	if user.Email != "new.person@northfield.edu" {
		t.Errorf("email not normalized: %q", user.Email)
	}

	// Second sign-in finds the same account.
	again, err := h.findOrProvisionUser(ctx, &googleUserInfo{
		Email:         "new.person@northfield.edu",
		EmailVerified: true,
		Name:          "New Person",
	})
	if err != nil {
		t.Fatalf("second findOrProvisionUser failed: %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("expected same account, got %s and %s", user.ID.Hex(), again.ID.Hex())
	}
}

func TestFindOrProvisionUser_Disabled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db, "client-id", "client-secret")

	ctx, cancel := testutil.TestContext()
	defer cancel()
	fixtures := testutil.NewFixtures(t, db)
	fixtures.CreateDisabledUser(ctx, "Sam Blocked", "sam@northfield.edu")

	user, err := h.findOrProvisionUser(ctx, &googleUserInfo{
		Email:         "sam@northfield.edu",
		EmailVerified: true,
	})
	if err != errUserDisabled {
		t.Fatalf("expected errUserDisabled, got %v", err)
	}
	if user == nil || user.Email != "sam@northfield.edu" {
		t.Error("disabled lookup should still return the user for audit logging")
	}
}

func TestSanitizeReturnURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/application", "/application"},
		{"/admin/review?status=verifying", "/admin/review?status=verifying"},
		{"https://evil.example.com/", ""},
		{"//evil.example.com", ""},
		{"javascript:alert(1)", ""},
		{"relative/path", ""},
	}
	for _, tc := range cases {
		if got := sanitizeReturnURL(tc.in); got != tc.want {
			t.Errorf("sanitizeReturnURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
