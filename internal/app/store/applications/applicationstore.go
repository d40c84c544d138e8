// internal/app/store/applications/applicationstore.go
package applicationstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/trovehq/trovehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

// ErrDuplicateApplication is returned when a second application is inserted
// for a user who already has one.
var ErrDuplicateApplication = errors.New("an application already exists for this user")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("applications")}
}

// GetByUserID loads the single application belonging to a user.
// Returns mongo.ErrNoDocuments if the user has never applied.
func (s *Store) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.InstitutionApplication, error) {
	var app models.InstitutionApplication
	if err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&app); err != nil {
		return nil, err
	}
	return &app, nil
}

// GetByID loads an application by its ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.InstitutionApplication, error) {
	var app models.InstitutionApplication
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&app); err != nil {
		return nil, err
	}
	return &app, nil
}

// Create inserts a brand new application. The unique index on user_id
// guarantees one application per applicant even under concurrent submits.
func (s *Store) Create(ctx context.Context, app models.InstitutionApplication) (models.InstitutionApplication, error) {
	now := time.Now().UTC()
	app.ID = primitive.NewObjectID()
	app.InstitutionNameCI = text.Fold(app.InstitutionName)
	app.CreatedAt = now
	app.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, app); err != nil {
		if wafflemongo.IsDup(err) {
			return models.InstitutionApplication{}, ErrDuplicateApplication
		}
		return models.InstitutionApplication{}, err
	}
	return app, nil
}

// Save replaces the stored document with app, refreshing the folded name and
// UpdatedAt. CreatedAt is preserved from the document passed in, so callers
// must start from a loaded record.
func (s *Store) Save(ctx context.Context, app models.InstitutionApplication) (models.InstitutionApplication, error) {
	app.InstitutionNameCI = text.Fold(app.InstitutionName)
	app.UpdatedAt = time.Now().UTC()
	if _, err := s.c.ReplaceOne(ctx, bson.M{"_id": app.ID}, app); err != nil {
		return models.InstitutionApplication{}, err
	}
	return app, nil
}

// MarkSynced flags an application as mirrored to the registry.
func (s *Store) MarkSynced(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"synced_to_registry": true,
		"synced_at":          now,
	}})
	return err
}

// ListUnsynced returns applications whose registry mirror write has not
// succeeded yet, oldest activity first. The reconciler retries these.
func (s *Store) ListUnsynced(ctx context.Context, limit int64) ([]models.InstitutionApplication, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: 1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"synced_to_registry": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var apps []models.InstitutionApplication
	if err := cur.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// StatusesByUserIDs returns the application status for each of the given
// users in one query. Users with no application are simply absent from the
// map; the registry cross-check treats those entries as orphaned.
func (s *Store) StatusesByUserIDs(ctx context.Context, userIDs []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	statuses := make(map[primitive.ObjectID]string, len(userIDs))
	if len(userIDs) == 0 {
		return statuses, nil
	}

	opts := options.Find().SetProjection(bson.M{"user_id": 1, "status": 1})
	cur, err := s.c.Find(ctx, bson.M{"user_id": bson.M{"$in": userIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			UserID primitive.ObjectID `bson:"user_id"`
			Status string             `bson:"status"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		statuses[row.UserID] = row.Status
	}
	return statuses, cur.Err()
}

// CountByStatus returns the number of applications in each status.
func (s *Store) CountByStatus(ctx context.Context) (map[string]int64, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	counts := make(map[string]int64)
	for cur.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.Status] = row.Count
	}
	return counts, cur.Err()
}

// Delete removes an application by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Find returns applications matching the given filter with optional find options.
// The caller is responsible for building the filter and options (pagination, sorting, projection).
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.InstitutionApplication, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var apps []models.InstitutionApplication
	if err := cur.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// Count returns the number of applications matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
