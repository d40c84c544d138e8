package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trovehq/trovehub/internal/domain/application"
	"github.com/trovehq/trovehub/internal/domain/models"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateInstitution creates an active test institution with the given name.
// The slug is derived naively from the CI name; tests that care about slug
// collision behavior should go through the institution store instead.
func (f *Fixtures) CreateInstitution(ctx context.Context, name, emailDomain string) models.Institution {
	f.t.Helper()

	now := time.Now().UTC()
	inst := models.Institution{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Slug:        text.Fold(name),
		Type:        "university",
		EmailDomain: emailDomain,
		Status:      "active",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("institutions").InsertOne(ctx, inst); err != nil {
		f.t.Fatalf("failed to create test institution: %v", err)
	}
	return inst
}

// CreateUser creates an active test user with the given parameters.
// For agents and members, instID must be provided.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string, instID *primitive.ObjectID) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:            primitive.NewObjectID(),
		FullName:      fullName,
		FullNameCI:    text.Fold(fullName),
		Email:         email,
		EmailCI:       text.Fold(email),
		AuthMethod:    "password",
		Role:          role,
		Status:        "active",
		InstitutionID: instID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleAdmin, nil)
}

// CreateAgent creates a test agent user at the given institution.
func (f *Fixtures) CreateAgent(ctx context.Context, fullName, email string, instID primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleAgent, &instID)
}

// CreateMember creates a test member user at the given institution.
func (f *Fixtures) CreateMember(ctx context.Context, fullName, email string, instID primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleMember, &instID)
}

// CreateApplicant creates a test applicant user with no institution.
func (f *Fixtures) CreateApplicant(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleApplicant, nil)
}

// CreateDisabledUser creates a test user with disabled status.
func (f *Fixtures) CreateDisabledUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		EmailCI:    text.Fold(email),
		AuthMethod: "password",
		Role:       models.RoleMember,
		Status:     "disabled",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create disabled test user: %v", err)
	}
	return user
}

// CreateApplication creates an application for the given user in the given
// status. Draft applications sit on the organization step; submitted and
// later statuses carry a SubmittedAt timestamp and the complete step.
func (f *Fixtures) CreateApplication(ctx context.Context, user models.User, stat application.Status) models.InstitutionApplication {
	f.t.Helper()

	now := time.Now().UTC()
	app := models.InstitutionApplication{
		ID:                primitive.NewObjectID(),
		UserID:            user.ID,
		UserEmail:         user.Email,
		EmailDomain:       "example.edu",
		InstitutionName:   "Test Institution",
		InstitutionNameCI: text.Fold("Test Institution"),
		InstitutionType:   "university",
		OrganizationSize:  "1000-5000",
		Status:            string(stat),
		CurrentStep:       string(application.StepOrganization),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if stat != application.StatusDraft {
		app.CurrentStep = string(application.StepComplete)
		app.SubmittedAt = &now
	}

	if _, err := f.db.Collection("applications").InsertOne(ctx, app); err != nil {
		f.t.Fatalf("failed to create test application: %v", err)
	}
	return app
}

// CreateLocation creates an active lost & found location at the given
// institution.
func (f *Fixtures) CreateLocation(ctx context.Context, name string, instID primitive.ObjectID) models.Location {
	f.t.Helper()

	now := time.Now().UTC()
	loc := models.Location{
		ID:            primitive.NewObjectID(),
		InstitutionID: instID,
		Name:          name,
		NameCI:        text.Fold(name),
		Building:      "Main Hall",
		Status:        "active",
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := f.db.Collection("locations").InsertOne(ctx, loc); err != nil {
		f.t.Fatalf("failed to create test location: %v", err)
	}
	return loc
}
