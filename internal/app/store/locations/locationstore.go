// internal/app/store/locations/locationstore.go
package locationstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/trovehq/trovehub/internal/app/system/status"
	"github.com/trovehq/trovehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

// ErrDuplicateLocation is returned when a location name is already taken
// inside the same institution.
var ErrDuplicateLocation = errors.New("a location with this name already exists at this institution")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("locations")}
}

func (s *Store) Create(ctx context.Context, loc models.Location) (models.Location, error) {
	now := time.Now().UTC()
	loc.ID = primitive.NewObjectID()
	loc.NameCI = text.Fold(loc.Name)
	if loc.Status == "" {
		loc.Status = status.Active
	}
	loc.CreatedAt = now
	loc.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, loc); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Location{}, ErrDuplicateLocation
		}
		return models.Location{}, err
	}
	return loc, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Location, error) {
	var loc models.Location
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&loc); err != nil {
		return models.Location{}, err
	}
	return loc, nil
}

// ListByInstitution returns an institution's locations sorted by folded name.
func (s *Store) ListByInstitution(ctx context.Context, instID primitive.ObjectID) ([]models.Location, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"institution_id": instID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var locs []models.Location
	if err := cur.All(ctx, &locs); err != nil {
		return nil, err
	}
	return locs, nil
}

// Update modifies a location's mutable fields and refreshes UpdatedAt.
// The location stays scoped to instID so agents cannot move records across
// institutions.
func (s *Store) Update(ctx context.Context, id, instID primitive.ObjectID, loc models.Location) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if loc.Name != "" {
		set["name"] = loc.Name
		set["name_ci"] = text.Fold(loc.Name)
	}
	if loc.Description != "" {
		set["description"] = loc.Description
	}
	if loc.Building != "" {
		set["building"] = loc.Building
	}
	if loc.Room != "" {
		set["room"] = loc.Room
	}
	if loc.Status != "" {
		set["status"] = loc.Status
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "institution_id": instID}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateLocation
		}
		return err
	}
	return nil
}

// Delete removes a location scoped to its institution.
// Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id, instID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "institution_id": instID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByInstitution returns the number of locations an institution has.
func (s *Store) CountByInstitution(ctx context.Context, instID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"institution_id": instID})
}
