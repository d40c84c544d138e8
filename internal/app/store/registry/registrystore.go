// internal/app/store/registry/registrystore.go
package registrystore

import (
	"context"
	"time"

	"github.com/trovehq/trovehub/internal/app/system/normalize"
	"github.com/trovehq/trovehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages the registry collection: a denormalized, non-authoritative
// projection of applications keyed by user. The applications collection is
// the source of truth; every write here is allowed to fail and be retried.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("registry")}
}

// ReferenceFor builds the registry projection of an application. Both the
// request-path mirror write and the reconciliation sweep go through this so
// the two never drift.
func ReferenceFor(app models.InstitutionApplication) models.InstitutionReference {
	return models.InstitutionReference{
		UserID:          app.UserID,
		EmailDomain:     app.EmailDomain,
		UserEmail:       app.UserEmail,
		InstitutionName: app.InstitutionName,
		Status:          app.Status,
	}
}

// Upsert writes the registry projection for one applicant, replacing any
// previous entry. Idempotent, so the reconciler can safely retry it.
func (s *Store) Upsert(ctx context.Context, ref models.InstitutionReference) error {
	now := time.Now().UTC()
	ref.EmailDomain = normalize.Domain(ref.EmailDomain)
	ref.UpdatedAt = now

	set := bson.M{
		"email_domain":     ref.EmailDomain,
		"user_email":       ref.UserEmail,
		"institution_name": ref.InstitutionName,
		"status":           ref.Status,
		"updated_at":       ref.UpdatedAt,
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": ref.UserID},
		bson.M{
			"$set":         set,
			"$setOnInsert": bson.M{"user_id": ref.UserID, "created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// GetByUserID loads the registry entry for one applicant.
// Returns mongo.ErrNoDocuments if the mirror has no entry yet.
func (s *Store) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.InstitutionReference, error) {
	var ref models.InstitutionReference
	if err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

// SearchByDomain returns entries whose claimed email domain matches exactly,
// newest activity first. The domain is folded the same way Upsert folds it.
func (s *Store) SearchByDomain(ctx context.Context, domain string, limit int64) ([]models.InstitutionReference, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"email_domain": normalize.Domain(domain)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var refs []models.InstitutionReference
	if err := cur.All(ctx, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

// DeleteByUserID removes an applicant's registry entry.
// Returns the number of documents deleted (0 or 1).
func (s *Store) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Find returns registry entries matching the given filter with optional find options.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.InstitutionReference, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var refs []models.InstitutionReference
	if err := cur.All(ctx, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

// Count returns the number of registry entries matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
