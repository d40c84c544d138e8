// internal/domain/models/application.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InstitutionApplication is the registration lifecycle record for one
// institution. Exactly one application exists per applicant user; the
// applications collection enforces this with a unique index on user_id.
//
// Status and CurrentStep hold the wire strings defined in
// internal/domain/application; they cross the wire as JSON and are part of
// the contract with the registry and any client rendering status text.
type InstitutionApplication struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// Identity of the applicant.
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	UserEmail   string             `bson:"user_email" json:"user_email"`
	EmailDomain string             `bson:"email_domain" json:"email_domain"`

	// Organization facts (first wizard step).
	InstitutionName   string `bson:"institution_name" json:"institution_name"`
	InstitutionNameCI string `bson:"institution_name_ci" json:"-"` // lowercase, diacritics-stripped
	InstitutionType   string `bson:"institution_type" json:"institution_type"`
	OrganizationSize  string `bson:"organization_size" json:"organization_size"`

	// Verification facts (second wizard step).
	Website              string `bson:"website,omitempty" json:"website,omitempty"`
	Description          string `bson:"description,omitempty" json:"description,omitempty"`
	AddressLine1         string `bson:"address_line1,omitempty" json:"address_line1,omitempty"`
	AddressLine2         string `bson:"address_line2,omitempty" json:"address_line2,omitempty"`
	City                 string `bson:"city,omitempty" json:"city,omitempty"`
	State                string `bson:"state,omitempty" json:"state,omitempty"`
	PostalCode           string `bson:"postal_code,omitempty" json:"postal_code,omitempty"`
	Country              string `bson:"country,omitempty" json:"country,omitempty"`
	PhoneNumber          string `bson:"phone_number,omitempty" json:"phone_number,omitempty"`
	ExpectedStudentCount int    `bson:"expected_student_count,omitempty" json:"expected_student_count,omitempty"`
	TaxID                string `bson:"tax_id,omitempty" json:"tax_id,omitempty"`

	// Lifecycle.
	Status      string `bson:"status" json:"status"`
	CurrentStep string `bson:"current_step" json:"current_step"`

	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
	SubmittedAt *time.Time `bson:"submitted_at,omitempty" json:"submitted_at,omitempty"`
	ReviewedAt  *time.Time `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`

	// Admin decision. ReviewedBy is the reviewing admin's user ID; only set
	// by an approve/reject transition. RejectionReason is present only while
	// status is "rejected".
	ReviewedBy      string `bson:"reviewed_by,omitempty" json:"reviewed_by,omitempty"`
	RejectionReason string `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`

	// Linkage to the provisioned institution, populated post-approval
	// (never before the record reaches "created").
	OrgID   string `bson:"org_id,omitempty" json:"org_id,omitempty"`
	OrgSlug string `bson:"org_slug,omitempty" json:"org_slug,omitempty"`

	// Registry mirror bookkeeping. The registry is a non-authoritative cache
	// so these only record best-effort sync progress.
	SyncedToRegistry bool       `bson:"synced_to_registry" json:"synced_to_registry"`
	SyncedAt         *time.Time `bson:"synced_at,omitempty" json:"synced_at,omitempty"`
}

// InstitutionReference is the denormalized registry projection of an
// application, kept eventually consistent by best-effort mirror writes.
// Admins search it by email domain; it is never authoritative.
type InstitutionReference struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	UserID          primitive.ObjectID `bson:"user_id" json:"user_id"`
	EmailDomain     string             `bson:"email_domain" json:"email_domain"`
	UserEmail       string             `bson:"user_email" json:"user_email"`
	InstitutionName string             `bson:"institution_name,omitempty" json:"institution_name,omitempty"`
	Status          string             `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
