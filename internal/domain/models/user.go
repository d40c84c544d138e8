// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents every account on the platform: platform admins, agents
// (institution staff who run lost & found desks), members (students/visitors
// of an institution), and applicants who have not been approved yet.
//
// InstitutionID is required for agents and members; admins and applicants
// have none.
type User struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FullName      string              `bson:"full_name" json:"full_name"`
	FullNameCI    string              `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email         string              `bson:"email" json:"email"`
	EmailCI       string              `bson:"email_ci" json:"-"`
	AuthMethod    string              `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // google | password
	Role          string              `bson:"role" json:"role"`                                   // admin | agent | member | applicant
	Status        string              `bson:"status,omitempty" json:"status,omitempty"`           // active | disabled
	InstitutionID *primitive.ObjectID `bson:"institution_id,omitempty" json:"institution_id,omitempty"`

	// Only for password auth. Never serialized to clients.
	PasswordHash *string `bson:"password_hash,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Roles used across routing, gates, and stores.
const (
	RoleAdmin     = "admin"
	RoleAgent     = "agent"
	RoleMember    = "member"
	RoleApplicant = "applicant"
)

// ValidRole reports whether value is one of the platform roles.
func ValidRole(value string) bool {
	switch value {
	case RoleAdmin, RoleAgent, RoleMember, RoleApplicant:
		return true
	}
	return false
}
