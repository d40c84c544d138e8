// internal/app/features/dashboard/handler_test.go
package dashboard_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trovehq/trovehub/internal/app/features/dashboard"
	applicationstore "github.com/trovehq/trovehub/internal/app/store/applications"
	institutionstore "github.com/trovehq/trovehub/internal/app/store/institutions"
	registrystore "github.com/trovehq/trovehub/internal/app/store/registry"
	userstore "github.com/trovehq/trovehub/internal/app/store/users"
	"github.com/trovehq/trovehub/internal/domain/application"
	"github.com/trovehq/trovehub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, db *mongo.Database) *dashboard.Handler {
	t.Helper()
	return dashboard.NewHandler(
		applicationstore.New(db),
		institutionstore.New(db),
		userstore.New(db),
		registrystore.New(db),
		zap.NewNop(),
	)
}

func TestServeSummary_RequiresAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)

	req := testutil.NewAuthenticatedRequest("GET", "/api/admin/dashboard", testutil.ApplicantUser())
	rec := testutil.NewRecorder()
	h.ServeSummary(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestServeSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := fx.CreateInstitution(ctx, "Springfield University", "springfield.edu")
	fx.CreateAgent(ctx, "Agent Smith", "smith@springfield.edu", inst.ID)
	fx.CreateMember(ctx, "Marge Member", "marge@springfield.edu", inst.ID)

	a := fx.CreateApplicant(ctx, "Applicant A", "a@one.edu")
	b := fx.CreateApplicant(ctx, "Applicant B", "b@two.edu")
	c := fx.CreateApplicant(ctx, "Applicant C", "c@three.edu")
	fx.CreateApplication(ctx, a, application.StatusPendingVerification)
	fx.CreateApplication(ctx, b, application.StatusPendingVerification)
	rejected := fx.CreateApplication(ctx, c, application.StatusVerifying)

	// One decided application for the recent-decisions strip.
	decided := application.Reject(rejected, "admin-1", "not eligible", time.Now().UTC())
	if _, err := h.Apps.Save(ctx, decided); err != nil {
		t.Fatalf("failed to save decision: %v", err)
	}

	req := testutil.NewAuthenticatedRequest("GET", "/api/admin/dashboard", testutil.AdminUser())
	rec := testutil.NewRecorder()
	h.ServeSummary(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response %q: %v", rec.Body.String(), err)
	}

	apps := resp["applications"].(map[string]any)
	if apps["pending_verification"] != float64(2) {
		t.Errorf("pending_verification = %v, want 2", apps["pending_verification"])
	}
	if apps["rejected"] != float64(1) {
		t.Errorf("rejected = %v, want 1", apps["rejected"])
	}
	// Every status appears even when zero.
	if _, ok := apps["created"]; !ok {
		t.Error("expected zero-filled created count")
	}

	if resp["institutions"] != float64(1) || resp["agents"] != float64(1) || resp["members"] != float64(1) {
		t.Errorf("unexpected totals: %v", resp)
	}

	recent := resp["recent_decisions"].([]any)
	if len(recent) != 1 {
		t.Fatalf("expected 1 recent decision, got %d", len(recent))
	}
	row := recent[0].(map[string]any)
	if row["status"] != "rejected" {
		t.Errorf("recent decision status = %v", row["status"])
	}
}
