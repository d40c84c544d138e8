// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
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

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetAgentByID loads a user by ObjectID, returning an error if the user
// does not exist or is not an agent role.
func (s *Store) GetAgentByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "role": models.RoleAgent}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetMemberByID loads a user by ObjectID, returning an error if the user
// does not exist or is not a member role.
func (s *Store) GetMemberByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "role": models.RoleMember}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadRole        = errors.New(`role must be "admin"|"agent"|"member"|"applicant"`)
	errBadStatus      = errors.New(`status must be "active"|"disabled"`)
	errInstNeeded     = errors.New("agent/member must have institution_id")
)

// Create inserts a new user after normalizing & validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	// Normalize core fields
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.EmailCI = text.Fold(u.Email)
	if u.Status == "" {
		u.Status = status.Active
	}

	if !models.ValidRole(u.Role) {
		return models.User{}, errBadRole
	}
	if !status.IsValid(u.Status) {
		return models.User{}, errBadStatus
	}

	// Agents and members belong to exactly one institution
	if (u.Role == models.RoleAgent || u.Role == models.RoleMember) && u.InstitutionID == nil {
		return models.User{}, errInstNeeded
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// Update holds the fields that staff screens may change on a user.
type Update struct {
	FullName      string
	Email         string
	AuthMethod    string
	Status        string
	InstitutionID *primitive.ObjectID
}

// UpdateByRole updates a user's fields, scoped to a given role so agent
// screens cannot touch admins. Returns ErrDuplicateEmail if the email
// already belongs to another user.
func (s *Store) UpdateByRole(ctx context.Context, id primitive.ObjectID, role string, upd Update) error {
	set := bson.M{
		"full_name":    upd.FullName,
		"full_name_ci": text.Fold(upd.FullName),
		"email":        normalize.Email(upd.Email),
		"email_ci":     text.Fold(normalize.Email(upd.Email)),
		"auth_method":  upd.AuthMethod,
		"status":       upd.Status,
		"updated_at":   time.Now(),
	}
	if upd.InstitutionID != nil {
		set["institution_id"] = upd.InstitutionID
	}

	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "role": role}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// SetRole changes a user's role, optionally attaching an institution.
// Used when an applicant is promoted to agent on approval.
func (s *Store) SetRole(ctx context.Context, id primitive.ObjectID, role string, instID *primitive.ObjectID) error {
	if !models.ValidRole(role) {
		return errBadRole
	}
	set := bson.M{
		"role":       role,
		"updated_at": time.Now(),
	}
	if instID != nil {
		set["institution_id"] = instID
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	return err
}

// SetPasswordHash replaces a user's stored bcrypt hash.
func (s *Store) SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now(),
	}})
	return err
}

// DeleteByRole deletes a user by ID, but only if they hold the given role.
// Returns the number of documents deleted (0 or 1).
func (s *Store) DeleteByRole(ctx context.Context, id primitive.ObjectID, role string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "role": role})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EmailExistsForOther checks if an email already exists for a user other than the given ID.
func (s *Store) EmailExistsForOther(ctx context.Context, email string, excludeID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"email": normalize.Email(email),
		"_id":   bson.M{"$ne": excludeID},
	}).Err()
	if err == nil {
		return true, nil // found another user with this email
	}
	if err == mongo.ErrNoDocuments {
		return false, nil // no duplicate
	}
	return false, err // actual error
}

// Find returns users matching the given filter with optional find options.
// The caller is responsible for building the filter and options (pagination, sorting, projection).
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.User, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Count returns the number of users matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
