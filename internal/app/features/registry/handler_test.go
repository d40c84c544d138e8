// internal/app/features/registry/handler_test.go
package registry_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trovehq/trovehub/internal/app/features/registry"
	applicationstore "github.com/trovehq/trovehub/internal/app/store/applications"
	registrystore "github.com/trovehq/trovehub/internal/app/store/registry"
	"github.com/trovehq/trovehub/internal/domain/application"
	"github.com/trovehq/trovehub/internal/domain/models"
	"github.com/trovehq/trovehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, db *mongo.Database) *registry.Handler {
	t.Helper()
	return registry.NewHandler(registrystore.New(db), applicationstore.New(db), zap.NewNop())
}

func search(h *registry.Handler, target string) *testutil.ResponseRecorder {
	req := testutil.NewAuthenticatedRequest("GET", target, testutil.AdminUser())
	rec := testutil.NewRecorder()
	h.ServeSearch(rec.ResponseRecorder, req)
	return rec
}

func decodeSearch(t *testing.T, rec *testutil.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestServeSearch_RequiresAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)

	req := testutil.NewAuthenticatedRequest("GET", "/api/admin/registry?domain=example.edu", testutil.ApplicantUser())
	rec := testutil.NewRecorder()
	h.ServeSearch(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestServeSearch_RequiresDomain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)

	rec := search(h, "/api/admin/registry")
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertJSONError(t, "Domain is required")
}

func TestServeSearch_FindsEntriesByDomain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateApplicant(ctx, "Avery Applicant", "avery@example.edu")
	app := fx.CreateApplication(ctx, u, application.StatusPendingVerification)
	if err := h.Registry.Upsert(ctx, registrystore.ReferenceFor(app)); err != nil {
		t.Fatalf("failed to seed registry: %v", err)
	}

	rec := search(h, "/api/admin/registry?domain=example.edu")
	rec.AssertStatus(t, http.StatusOK)
	resp := decodeSearch(t, rec)
	if resp["count"] != float64(1) {
		t.Fatalf("expected 1 entry, got %v", resp["count"])
	}
	entries := resp["entries"].([]any)
	entry := entries[0].(map[string]any)
	if entry["stale"] != false || entry["orphaned"] != false {
		t.Errorf("expected a fresh backed entry, got %v", entry)
	}

	// Uppercase input folds to the stored domain.
	rec = search(h, "/api/admin/registry?domain=EXAMPLE.EDU")
	resp = decodeSearch(t, rec)
	if resp["count"] != float64(1) {
		t.Errorf("expected case-insensitive domain match, got %v", resp["count"])
	}

	rec = search(h, "/api/admin/registry?domain=other.edu")
	resp = decodeSearch(t, rec)
	if resp["count"] != float64(0) {
		t.Errorf("expected no entries for other.edu, got %v", resp["count"])
	}
}

func TestServeSearch_FlagsStaleEntries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateApplicant(ctx, "Avery Applicant", "avery@example.edu")
	app := fx.CreateApplication(ctx, u, application.StatusPendingVerification)
	if err := h.Registry.Upsert(ctx, registrystore.ReferenceFor(app)); err != nil {
		t.Fatalf("failed to seed registry: %v", err)
	}

	// The authoritative record moves on without the mirror.
	app.Status = string(application.StatusApproved)
	if _, err := h.Apps.Save(ctx, app); err != nil {
		t.Fatalf("failed to advance application: %v", err)
	}

	rec := search(h, "/api/admin/registry?domain=example.edu")
	resp := decodeSearch(t, rec)
	entry := resp["entries"].([]any)[0].(map[string]any)
	if entry["stale"] != true {
		t.Errorf("expected entry flagged stale, got %v", entry)
	}
}

func TestServeSearch_CrossChecksWholePage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fresh := fx.CreateApplicant(ctx, "Avery Applicant", "avery@example.edu")
	freshApp := fx.CreateApplication(ctx, fresh, application.StatusPendingVerification)
	if err := h.Registry.Upsert(ctx, registrystore.ReferenceFor(freshApp)); err != nil {
		t.Fatalf("failed to seed registry: %v", err)
	}

	moved := fx.CreateApplicant(ctx, "Blair Applicant", "blair@example.edu")
	movedApp := fx.CreateApplication(ctx, moved, application.StatusPendingVerification)
	if err := h.Registry.Upsert(ctx, registrystore.ReferenceFor(movedApp)); err != nil {
		t.Fatalf("failed to seed registry: %v", err)
	}
	movedApp.Status = string(application.StatusApproved)
	if _, err := h.Apps.Save(ctx, movedApp); err != nil {
		t.Fatalf("failed to advance application: %v", err)
	}

	ghost := models.InstitutionReference{
		UserID:          primitive.NewObjectID(),
		EmailDomain:     "example.edu",
		UserEmail:       "gone@example.edu",
		InstitutionName: "Ghost University",
		Status:          string(application.StatusPendingVerification),
	}
	if err := h.Registry.Upsert(ctx, ghost); err != nil {
		t.Fatalf("failed to seed registry: %v", err)
	}

	rec := search(h, "/api/admin/registry?domain=example.edu")
	rec.AssertStatus(t, http.StatusOK)
	resp := decodeSearch(t, rec)
	if resp["count"] != float64(3) {
		t.Fatalf("expected 3 entries, got %v", resp["count"])
	}

	flags := map[string]map[string]any{}
	for _, raw := range resp["entries"].([]any) {
		entry := raw.(map[string]any)
		email := entry["reference"].(map[string]any)["user_email"].(string)
		flags[email] = entry
	}

	if e := flags["avery@example.edu"]; e["stale"] != false || e["orphaned"] != false {
		t.Errorf("backed entry should carry no flags, got %v", e)
	}
	if e := flags["blair@example.edu"]; e["stale"] != true || e["orphaned"] != false {
		t.Errorf("entry behind the application should be stale only, got %v", e)
	}
	if e := flags["gone@example.edu"]; e["stale"] != false || e["orphaned"] != true {
		t.Errorf("entry with no application should be orphaned only, got %v", e)
	}
}

func TestServeSearch_FlagsOrphanedEntries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ref := models.InstitutionReference{
		UserID:          primitive.NewObjectID(), // no application behind it
		EmailDomain:     "example.edu",
		UserEmail:       "gone@example.edu",
		InstitutionName: "Ghost University",
		Status:          string(application.StatusPendingVerification),
	}
	if err := h.Registry.Upsert(ctx, ref); err != nil {
		t.Fatalf("failed to seed registry: %v", err)
	}

	rec := search(h, "/api/admin/registry?domain=example.edu")
	resp := decodeSearch(t, rec)
	entry := resp["entries"].([]any)[0].(map[string]any)
	if entry["orphaned"] != true {
		t.Errorf("expected an orphaned entry, got %v", entry)
	}
}
