// internal/domain/application/transform.go
package application

import (
	"time"

	"github.com/trovehq/trovehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The transforms below are pure: the input record is copied, never mutated,
// and a new record value is returned. Every transform refreshes UpdatedAt
// and leaves CreatedAt alone. Callers pass the current time so transitions
// are deterministic under test.
//
// Transforms do not re-check policy. Handlers gate with the status policy
// and the predicates below before applying a transform; that split keeps
// authorization in one place and record-shaping in another.

// NewDraft builds a fresh application in draft status on the organization
// step. It is the only transform that can fail: the applicant email must
// yield a valid domain.
func NewDraft(org OrganizationInput, userID primitive.ObjectID, userEmail string, now time.Time) (models.InstitutionApplication, error) {
	domain, err := EmailDomain(userEmail)
	if err != nil {
		return models.InstitutionApplication{}, err
	}
	return models.InstitutionApplication{
		UserID:           userID,
		UserEmail:        userEmail,
		EmailDomain:      domain,
		InstitutionName:  org.InstitutionName,
		InstitutionType:  org.InstitutionType,
		OrganizationSize: org.OrganizationSize,
		Status:           string(StatusDraft),
		CurrentStep:      string(StepOrganization),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// touch refreshes UpdatedAt and invalidates the registry mirror: any
// content or status change makes the last mirror write stale, so the
// record must read as unsynced until the next upsert lands. MarkMirrored
// is the only transform that sets the flag back.
func touch(rec models.InstitutionApplication, now time.Time) models.InstitutionApplication {
	rec.SyncedToRegistry = false
	rec.SyncedAt = nil
	rec.UpdatedAt = now
	return rec
}

// ApplyOrganization overwrites the organization-step fields only; status
// and step are untouched.
func ApplyOrganization(rec models.InstitutionApplication, org OrganizationInput, now time.Time) models.InstitutionApplication {
	rec.InstitutionName = org.InstitutionName
	rec.InstitutionType = org.InstitutionType
	rec.OrganizationSize = org.OrganizationSize
	return touch(rec, now)
}

// applyVerificationFields merges the verification-step fields into rec.
func applyVerificationFields(rec models.InstitutionApplication, v VerificationInput) models.InstitutionApplication {
	rec.Website = v.Website
	rec.Description = v.Description
	rec.AddressLine1 = v.AddressLine1
	rec.AddressLine2 = v.AddressLine2
	rec.City = v.City
	rec.State = v.State
	rec.PostalCode = v.PostalCode
	rec.Country = v.Country
	rec.PhoneNumber = v.PhoneNumber
	rec.ExpectedStudentCount = v.ExpectedStudentCount
	rec.TaxID = v.TaxID
	return rec
}

// SubmitVerification merges the verification fields and submits the
// application for review. Precondition (caller-checked via
// CanSubmitVerification): the record is a draft on the organization step.
func SubmitVerification(rec models.InstitutionApplication, v VerificationInput, now time.Time) models.InstitutionApplication {
	rec = applyVerificationFields(rec, v)
	rec.Status = string(StatusPendingVerification)
	rec.CurrentStep = string(StepComplete)
	rec.SubmittedAt = &now
	return touch(rec, now)
}

// ApplyVerification merges the verification fields without changing status
// or step. Used for in-place edits while the record is still editable.
func ApplyVerification(rec models.InstitutionApplication, v VerificationInput, now time.Time) models.InstitutionApplication {
	rec = applyVerificationFields(rec, v)
	return touch(rec, now)
}

// Approve records an admin approval. Precondition: CanBeApproved.
func Approve(rec models.InstitutionApplication, reviewedBy string, now time.Time) models.InstitutionApplication {
	rec.Status = string(StatusApproved)
	rec.ReviewedBy = reviewedBy
	rec.ReviewedAt = &now
	rec.RejectionReason = ""
	return touch(rec, now)
}

// Reject records an admin rejection with a reason. Precondition: CanBeRejected.
func Reject(rec models.InstitutionApplication, reviewedBy, reason string, now time.Time) models.InstitutionApplication {
	rec.Status = string(StatusRejected)
	rec.ReviewedBy = reviewedBy
	rec.ReviewedAt = &now
	rec.RejectionReason = reason
	return touch(rec, now)
}

// Reopen returns a record to the review queue: a rejected application being
// appealed, or one pulled back out of active review. The decision fields are
// cleared (they belong to the decision being undone) and the step returns to
// verification so the step/status pairing stays consistent.
func Reopen(rec models.InstitutionApplication, now time.Time) models.InstitutionApplication {
	rec.Status = string(StatusPendingVerification)
	rec.CurrentStep = string(StepVerification)
	rec.ReviewedBy = ""
	rec.ReviewedAt = nil
	rec.RejectionReason = ""
	return touch(rec, now)
}

// StartReview moves a submitted application into active review.
// Precondition: CanAdminStartReview.
func StartReview(rec models.InstitutionApplication, now time.Time) models.InstitutionApplication {
	rec.Status = string(StatusVerifying)
	return touch(rec, now)
}

// AttachOrg links the provisioned organization to an approved application
// and moves it to its final created status.
func AttachOrg(rec models.InstitutionApplication, orgID, orgSlug string, now time.Time) models.InstitutionApplication {
	rec.OrgID = orgID
	rec.OrgSlug = orgSlug
	rec.Status = string(StatusCreated)
	return touch(rec, now)
}

// MarkMirrored records a successful registry mirror write.
func MarkMirrored(rec models.InstitutionApplication, now time.Time) models.InstitutionApplication {
	rec.SyncedToRegistry = true
	rec.SyncedAt = &now
	rec.UpdatedAt = now
	return rec
}

// CanSubmitVerification reports whether the record may advance from the
// organization step to a submitted application.
func CanSubmitVerification(rec models.InstitutionApplication) bool {
	return rec.Status == string(StatusDraft) && rec.CurrentStep == string(StepOrganization)
}

// CanBeApproved reports whether the record is in active review and may be
// approved.
func CanBeApproved(rec models.InstitutionApplication) bool {
	return rec.Status == string(StatusVerifying)
}

// CanBeRejected reports whether the record may be rejected: while in active
// review or straight from the submission queue.
func CanBeRejected(rec models.InstitutionApplication) bool {
	return rec.Status == string(StatusVerifying) || rec.Status == string(StatusPendingVerification)
}
