// internal/app/features/locations/handler_test.go
package locations_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trovehq/trovehub/internal/app/features/locations"
	locationstore "github.com/trovehq/trovehub/internal/app/store/locations"
	"github.com/trovehq/trovehub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, db *mongo.Database) *locations.Handler {
	t.Helper()
	return locations.NewHandler(locationstore.New(db), nil, zap.NewNop())
}

func locPayload(name string) map[string]any {
	return map[string]any{
		"name":        name,
		"description": "Drop off and claim found items here.",
		"building":    "Student Union",
		"room":        "104",
	}
}

func decodeBody(t *testing.T, rec *testutil.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestHandleCreate_AgentBoundToOwnInstitution(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mine := fx.CreateInstitution(ctx, "Springfield University", "springfield.edu")
	other := fx.CreateInstitution(ctx, "Shelbyville College", "shelbyville.edu")

	payload := locPayload("Library Desk")
	payload["institution_id"] = other.ID.Hex() // ignored for agents
	req := testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/api/locations", payload), testutil.AgentUser(mine.ID))
	rec := testutil.NewRecorder()
	h.HandleCreate(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusCreated)

	resp := decodeBody(t, rec)
	if resp["institution_id"] != mine.ID.Hex() {
		t.Errorf("location created at %v, want agent's own institution", resp["institution_id"])
	}
	if resp["status"] != "active" {
		t.Errorf("status = %v, want active", resp["status"])
	}
}

func TestHandleCreate_AdminNamesInstitution(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := fx.CreateInstitution(ctx, "Springfield University", "springfield.edu")

	// Admin without an institution in the body is rejected.
	req := testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/api/locations", locPayload("Library Desk")), testutil.AdminUser())
	rec := testutil.NewRecorder()
	h.HandleCreate(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusBadRequest)

	payload := locPayload("Library Desk")
	payload["institution_id"] = inst.ID.Hex()
	req = testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/api/locations", payload), testutil.AdminUser())
	rec = testutil.NewRecorder()
	h.HandleCreate(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusCreated)
}

func TestServeList_ScopedToInstitution(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mine := fx.CreateInstitution(ctx, "Springfield University", "springfield.edu")
	other := fx.CreateInstitution(ctx, "Shelbyville College", "shelbyville.edu")
	fx.CreateLocation(ctx, "Library Desk", mine.ID)
	fx.CreateLocation(ctx, "Gym Office", mine.ID)
	fx.CreateLocation(ctx, "Front Gate", other.ID)

	req := testutil.NewAuthenticatedRequest("GET", "/api/locations", testutil.AgentUser(mine.ID))
	rec := testutil.NewRecorder()
	h.ServeList(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)

	resp := decodeBody(t, rec)
	if resp["count"] != float64(2) {
		t.Fatalf("expected 2 locations in scope, got %v", resp["count"])
	}

	// Sorted by folded name.
	rows := resp["locations"].([]any)
	first := rows[0].(map[string]any)
	if first["name"] != "Gym Office" {
		t.Errorf("expected name-sorted list, first = %v", first["name"])
	}

	// Members have no access.
	req = testutil.NewAuthenticatedRequest("GET", "/api/locations", testutil.MemberUser(mine.ID))
	rec = testutil.NewRecorder()
	h.ServeList(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestUpdateAndDelete_Scoping(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mine := fx.CreateInstitution(ctx, "Springfield University", "springfield.edu")
	other := fx.CreateInstitution(ctx, "Shelbyville College", "shelbyville.edu")
	loc := fx.CreateLocation(ctx, "Library Desk", mine.ID)
	foreign := fx.CreateLocation(ctx, "Front Gate", other.ID)

	payload := locPayload("Main Library Desk")
	req := testutil.WithUser(testutil.NewJSONRequest(t, "PUT", "/api/locations/"+loc.ID.Hex(), payload), testutil.AgentUser(mine.ID))
	req = testutil.WithChiURLParam(req, "id", loc.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleUpdate(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)

	saved, err := h.Locations.GetByID(ctx, loc.ID)
	if err != nil {
		t.Fatalf("failed to reload location: %v", err)
	}
	if saved.Name != "Main Library Desk" || saved.Building != "Student Union" {
		t.Errorf("update not applied: %+v", saved)
	}

	// A desk at another institution reads as missing to an agent.
	req = testutil.WithUser(testutil.NewJSONRequest(t, "PUT", "/api/locations/"+foreign.ID.Hex(), payload), testutil.AgentUser(mine.ID))
	req = testutil.WithChiURLParam(req, "id", foreign.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleUpdate(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusNotFound)

	req = testutil.WithUser(testutil.NewRequest("DELETE", "/api/locations/"+loc.ID.Hex()), testutil.AgentUser(mine.ID))
	req = testutil.WithChiURLParam(req, "id", loc.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleDelete(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)

	if _, err := h.Locations.GetByID(ctx, loc.ID); err == nil {
		t.Error("expected location to be gone")
	}
}

func TestHandleCreate_StripsMarkup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := fx.CreateInstitution(ctx, "Springfield University", "springfield.edu")

	payload := locPayload("Library <em>Desk</em>")
	req := testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/api/locations", payload), testutil.AgentUser(inst.ID))
	rec := testutil.NewRecorder()
	h.HandleCreate(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusCreated)

	resp := decodeBody(t, rec)
	if resp["name"] != "Library Desk" {
		t.Errorf("name = %v, want markup stripped", resp["name"])
	}
}
