package registrystore_test

import (
	"testing"

	registrystore "github.com/trovehq/trovehub/internal/app/store/registry"
	"github.com/trovehq/trovehub/internal/domain/application"
	"github.com/trovehq/trovehub/internal/domain/models"
	"github.com/trovehq/trovehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func newRef(userID primitive.ObjectID) models.InstitutionReference {
	return models.InstitutionReference{
		UserID:          userID,
		EmailDomain:     "northfield.edu",
		UserEmail:       "pat@northfield.edu",
		InstitutionName: "Northfield College",
		Status:          string(application.StatusPendingVerification),
	}
}

func TestStore_Upsert_InsertsThenUpdates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := registrystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	if err := store.Upsert(ctx, newRef(userID)); err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}

	inserted, err := store.GetByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("GetByUserID failed: %v", err)
	}
	if inserted.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set on insert")
	}

	// A second write for the same user must update in place, not duplicate.
	ref := newRef(userID)
	ref.Status = string(application.StatusApproved)
	if err := store.Upsert(ctx, ref); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	count, err := store.Count(ctx, bson.M{"user_id": userID})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 entry after re-upsert, got %d", count)
	}

	updated, err := store.GetByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("GetByUserID failed: %v", err)
	}
	if updated.Status != string(application.StatusApproved) {
		t.Errorf("Status: got %q, want approved", updated.Status)
	}
	if !updated.CreatedAt.Equal(inserted.CreatedAt) {
		t.Error("expected CreatedAt to be preserved across upserts")
	}
}

func TestStore_Upsert_NormalizesDomain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := registrystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	ref := newRef(userID)
	ref.EmailDomain = "  Northfield.EDU "
	if err := store.Upsert(ctx, ref); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	found, err := store.GetByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("GetByUserID failed: %v", err)
	}
	if found.EmailDomain != "northfield.edu" {
		t.Errorf("EmailDomain: got %q, want %q", found.EmailDomain, "northfield.edu")
	}
}

func TestStore_GetByUserID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := registrystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByUserID(ctx, primitive.NewObjectID())
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_SearchByDomain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := registrystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 2; i++ {
		if err := store.Upsert(ctx, newRef(primitive.NewObjectID())); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}
	other := newRef(primitive.NewObjectID())
	other.EmailDomain = "lakeside.org"
	if err := store.Upsert(ctx, other); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	refs, err := store.SearchByDomain(ctx, "NORTHFIELD.edu", 10)
	if err != nil {
		t.Fatalf("SearchByDomain failed: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 entries for northfield.edu, got %d", len(refs))
	}
	for _, ref := range refs {
		if ref.EmailDomain != "northfield.edu" {
			t.Errorf("unexpected domain %q in results", ref.EmailDomain)
		}
	}

	refs, err = store.SearchByDomain(ctx, "northfield.edu", 1)
	if err != nil {
		t.Fatalf("SearchByDomain failed: %v", err)
	}
	if len(refs) != 1 {
		t.Errorf("expected limit to cap results at 1, got %d", len(refs))
	}
}

func TestStore_DeleteByUserID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := registrystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	if err := store.Upsert(ctx, newRef(userID)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	n, err := store.DeleteByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("DeleteByUserID failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted count = %d, want 1", n)
	}

	if _, err := store.GetByUserID(ctx, userID); err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments after delete, got %v", err)
	}
}
