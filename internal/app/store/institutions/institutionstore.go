// internal/app/store/institutions/institutionstore.go
package institutionstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/trovehq/trovehub/internal/app/system/normalize"
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

var ErrDuplicateInstitution = errors.New("an institution with this name already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("institutions")}
}

// Slugify derives a URL-safe handle from an institution name: folded to
// ASCII lowercase, runs of non-alphanumerics collapsed to single hyphens.
func Slugify(name string) string {
	folded := text.Fold(name)
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range folded {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Create inserts a new institution. If inst.Slug is empty it is derived from
// the name; slug collisions get a numeric suffix before giving up.
func (s *Store) Create(ctx context.Context, inst models.Institution) (models.Institution, error) {
	now := time.Now().UTC()
	inst.ID = primitive.NewObjectID()
	inst.NameCI = text.Fold(inst.Name)
	inst.CityCI = text.Fold(inst.City)
	inst.StateCI = text.Fold(inst.State)
	inst.EmailDomain = normalize.Domain(inst.EmailDomain)
	if inst.Slug == "" {
		inst.Slug = Slugify(inst.Name)
	}
	if inst.Status == "" {
		inst.Status = status.Active
	}
	inst.CreatedAt = now
	inst.UpdatedAt = now

	// A name collision is a hard duplicate. A slug collision between two
	// distinct names is resolved with a numeric suffix.
	base := inst.Slug
	for attempt := 0; attempt < 5; attempt++ {
		if attempt > 0 {
			inst.Slug = fmt.Sprintf("%s-%d", base, attempt+1)
		}
		_, err := s.c.InsertOne(ctx, inst)
		if err == nil {
			return inst, nil
		}
		if !wafflemongo.IsDup(err) {
			return models.Institution{}, err
		}
		if exists, exErr := s.ExistsByNameCI(ctx, inst.NameCI); exErr == nil && exists {
			return models.Institution{}, ErrDuplicateInstitution
		}
	}
	return models.Institution{}, ErrDuplicateInstitution
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Institution, error) {
	var inst models.Institution
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&inst); err != nil {
		return models.Institution{}, err
	}
	return inst, nil
}

// GetBySlug loads an institution by its public handle.
func (s *Store) GetBySlug(ctx context.Context, slug string) (models.Institution, error) {
	var inst models.Institution
	if err := s.c.FindOne(ctx, bson.M{"slug": slug}).Decode(&inst); err != nil {
		return models.Institution{}, err
	}
	return inst, nil
}

// GetByIDs loads multiple institutions by their ObjectIDs.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Institution, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var insts []models.Institution
	if err := cur.All(ctx, &insts); err != nil {
		return nil, err
	}
	return insts, nil
}

// Update modifies an institution's mutable fields and refreshes UpdatedAt.
// The slug and email domain are fixed at provisioning time.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, inst models.Institution) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if inst.Name != "" {
		set["name"] = inst.Name
		set["name_ci"] = text.Fold(inst.Name)
	}
	if inst.Type != "" {
		set["type"] = inst.Type
	}
	if inst.Website != "" {
		set["website"] = inst.Website
	}
	if inst.City != "" {
		set["city"] = inst.City
		set["city_ci"] = text.Fold(inst.City)
	}
	if inst.State != "" {
		set["state"] = inst.State
		set["state_ci"] = text.Fold(inst.State)
	}
	if inst.Country != "" {
		set["country"] = inst.Country
	}
	if inst.ContactInfo != "" {
		set["contact_info"] = inst.ContactInfo
	}
	if inst.Status != "" {
		set["status"] = inst.Status
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateInstitution
		}
		return err
	}
	return nil
}

// Delete removes an institution by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ExistsByNameCI checks if an institution with the given case-insensitive name exists.
func (s *Store) ExistsByNameCI(ctx context.Context, nameCI string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"name_ci": nameCI}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// NameExistsForOther checks if an institution with the given name exists, excluding the specified ID.
// Used by update validation so the current record can keep its own name.
func (s *Store) NameExistsForOther(ctx context.Context, nameCI string, excludeID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"name_ci": nameCI,
		"_id":     bson.M{"$ne": excludeID},
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Find returns institutions matching the given filter with optional find options.
// The caller is responsible for building the filter and options (pagination, sorting, projection).
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Institution, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var insts []models.Institution
	if err := cur.All(ctx, &insts); err != nil {
		return nil, err
	}
	return insts, nil
}

// Count returns the number of institutions matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
