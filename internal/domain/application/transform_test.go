package application

import (
	"testing"
	"time"

	"github.com/trovehq/trovehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	testOrg = OrganizationInput{
		InstitutionName:  "Miskatonic University",
		InstitutionType:  TypeUniversity,
		OrganizationSize: "2001-10000",
	}
	testVerif = VerificationInput{
		Website:              "https://miskatonic.edu",
		Description:          "A private research university.",
		AddressLine1:         "1 College Street",
		City:                 "Arkham",
		State:                "MA",
		PostalCode:           "01930",
		Country:              "US",
		PhoneNumber:          "+1 555 0100",
		ExpectedStudentCount: 6000,
		TaxID:                "04-1234567",
	}
)

func TestNewDraft(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	uid := primitive.NewObjectID()

	rec, err := NewDraft(testOrg, uid, "dean@miskatonic.edu", now)
	if err != nil {
		t.Fatalf("NewDraft failed: %v", err)
	}

	if rec.EmailDomain != "miskatonic.edu" {
		t.Errorf("EmailDomain = %q, want %q", rec.EmailDomain, "miskatonic.edu")
	}
	if rec.Status != string(StatusDraft) {
		t.Errorf("Status = %q, want draft", rec.Status)
	}
	if rec.CurrentStep != string(StepOrganization) {
		t.Errorf("CurrentStep = %q, want organization", rec.CurrentStep)
	}
	if !rec.CreatedAt.Equal(now) || !rec.UpdatedAt.Equal(now) {
		t.Error("expected CreatedAt and UpdatedAt set to now")
	}
	if rec.InstitutionName != testOrg.InstitutionName {
		t.Errorf("InstitutionName = %q, want %q", rec.InstitutionName, testOrg.InstitutionName)
	}
}

func TestNewDraft_InvalidEmail(t *testing.T) {
	now := time.Now().UTC()
	for _, email := range []string{"bad-email", "a@b@c.com", ""} {
		if _, err := NewDraft(testOrg, primitive.NewObjectID(), email, now); err == nil {
			t.Errorf("NewDraft(%q) succeeded, want error", email)
		}
	}
}

func TestSubmitVerification_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	draft, err := NewDraft(testOrg, primitive.NewObjectID(), "dean@miskatonic.edu", now)
	if err != nil {
		t.Fatalf("NewDraft failed: %v", err)
	}
	if !CanSubmitVerification(draft) {
		t.Fatal("fresh draft should satisfy CanSubmitVerification")
	}

	rec := SubmitVerification(draft, testVerif, later)

	if rec.Status != string(StatusPendingVerification) {
		t.Errorf("Status = %q, want pending_verification", rec.Status)
	}
	if rec.CurrentStep != string(StepComplete) {
		t.Errorf("CurrentStep = %q, want complete", rec.CurrentStep)
	}
	if rec.SubmittedAt == nil || !rec.SubmittedAt.Equal(later) {
		t.Error("SubmittedAt not set to submission time")
	}

	// Organization fields survive the merge.
	if rec.InstitutionName != testOrg.InstitutionName || rec.InstitutionType != testOrg.InstitutionType {
		t.Error("organization fields lost during verification merge")
	}
	// Verification fields all landed.
	if rec.Website != testVerif.Website || rec.PhoneNumber != testVerif.PhoneNumber ||
		rec.ExpectedStudentCount != testVerif.ExpectedStudentCount || rec.TaxID != testVerif.TaxID {
		t.Error("verification fields not merged")
	}

	// The input draft was not mutated.
	if draft.Status != string(StatusDraft) || draft.Website != "" {
		t.Error("SubmitVerification mutated its input")
	}
}

func TestApplyVerification_KeepsStatusAndStep(t *testing.T) {
	now := time.Now().UTC()
	draft, _ := NewDraft(testOrg, primitive.NewObjectID(), "dean@miskatonic.edu", now)

	rec := ApplyVerification(draft, testVerif, now.Add(time.Minute))

	if rec.Status != string(StatusDraft) || rec.CurrentStep != string(StepOrganization) {
		t.Errorf("ApplyVerification changed status/step: %q/%q", rec.Status, rec.CurrentStep)
	}
	if rec.Website != testVerif.Website {
		t.Error("verification fields not merged")
	}
}

func TestApplyOrganization(t *testing.T) {
	now := time.Now().UTC()
	draft, _ := NewDraft(testOrg, primitive.NewObjectID(), "dean@miskatonic.edu", now)

	updated := ApplyOrganization(draft, OrganizationInput{
		InstitutionName:  "Arkham College",
		InstitutionType:  TypeCollege,
		OrganizationSize: "101-500",
	}, now.Add(time.Minute))

	if updated.InstitutionName != "Arkham College" || updated.InstitutionType != TypeCollege {
		t.Error("organization fields not overwritten")
	}
	if updated.Status != draft.Status || updated.CurrentStep != draft.CurrentStep {
		t.Error("ApplyOrganization must not touch status/step")
	}
	if updated.EmailDomain != draft.EmailDomain {
		t.Error("ApplyOrganization must not touch identity fields")
	}
}

func TestApproveThenAttachOrg(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	draft, _ := NewDraft(testOrg, primitive.NewObjectID(), "dean@miskatonic.edu", now)
	rec := SubmitVerification(draft, testVerif, now)
	rec = StartReview(rec, now)

	if !CanBeApproved(rec) {
		t.Fatal("record under review should satisfy CanBeApproved")
	}

	decided := now.Add(2 * time.Hour)
	rec = Approve(rec, "admin-1", decided)
	if rec.Status != string(StatusApproved) {
		t.Errorf("Status = %q, want approved", rec.Status)
	}
	if rec.ReviewedBy != "admin-1" || rec.ReviewedAt == nil || !rec.ReviewedAt.Equal(decided) {
		t.Error("reviewer identity/time not recorded")
	}

	rec = AttachOrg(rec, "inst-42", "miskatonic-university", decided.Add(time.Minute))
	if rec.Status != string(StatusCreated) {
		t.Errorf("Status = %q, want created", rec.Status)
	}
	if rec.OrgID != "inst-42" || rec.OrgSlug != "miskatonic-university" {
		t.Error("org linkage not recorded")
	}
	// Approval bookkeeping survives provisioning.
	if rec.ReviewedBy != "admin-1" || rec.ReviewedAt == nil || !rec.ReviewedAt.Equal(decided) {
		t.Error("AttachOrg must retain reviewer identity/time")
	}
}

func TestReject(t *testing.T) {
	now := time.Now().UTC()
	draft, _ := NewDraft(testOrg, primitive.NewObjectID(), "dean@miskatonic.edu", now)
	rec := SubmitVerification(draft, testVerif, now)
	rec = StartReview(rec, now)

	if !CanBeRejected(rec) {
		t.Fatal("record under review should satisfy CanBeRejected")
	}

	rec = Reject(rec, "admin-2", "domain does not match the institution website", now)
	if rec.Status != string(StatusRejected) {
		t.Errorf("Status = %q, want rejected", rec.Status)
	}
	if rec.RejectionReason == "" || rec.ReviewedBy != "admin-2" {
		t.Error("rejection bookkeeping not recorded")
	}
}

func TestReopen_ClearsDecision(t *testing.T) {
	now := time.Now().UTC()
	draft, _ := NewDraft(testOrg, primitive.NewObjectID(), "dean@miskatonic.edu", now)
	rec := SubmitVerification(draft, testVerif, now)
	rec = StartReview(rec, now)
	rec = Reject(rec, "admin-2", "incomplete paperwork", now)

	rec = Reopen(rec, now.Add(time.Hour))

	if rec.Status != string(StatusPendingVerification) {
		t.Errorf("Status = %q, want pending_verification", rec.Status)
	}
	if rec.CurrentStep != string(StepVerification) {
		t.Errorf("CurrentStep = %q, want verification", rec.CurrentStep)
	}
	if rec.RejectionReason != "" || rec.ReviewedBy != "" || rec.ReviewedAt != nil {
		t.Error("Reopen must clear the prior decision")
	}
}

func TestTransforms_InvalidateMirror(t *testing.T) {
	now := time.Now().UTC()
	later := now.Add(time.Minute)
	draft, _ := NewDraft(testOrg, primitive.NewObjectID(), "dean@miskatonic.edu", now)
	mirrored := MarkMirrored(draft, now)
	if !mirrored.SyncedToRegistry {
		t.Fatal("MarkMirrored should set SyncedToRegistry")
	}

	cases := []struct {
		name string
		out  func() models.InstitutionApplication
	}{
		{"ApplyOrganization", func() models.InstitutionApplication { return ApplyOrganization(mirrored, testOrg, later) }},
		{"ApplyVerification", func() models.InstitutionApplication { return ApplyVerification(mirrored, testVerif, later) }},
		{"SubmitVerification", func() models.InstitutionApplication { return SubmitVerification(mirrored, testVerif, later) }},
		{"StartReview", func() models.InstitutionApplication { return StartReview(mirrored, later) }},
		{"Approve", func() models.InstitutionApplication { return Approve(mirrored, "admin", later) }},
		{"Reject", func() models.InstitutionApplication { return Reject(mirrored, "admin", "no accreditation", later) }},
		{"Reopen", func() models.InstitutionApplication { return Reopen(mirrored, later) }},
		{"AttachOrg", func() models.InstitutionApplication { return AttachOrg(mirrored, "org-id", "org-slug", later) }},
	}
	for _, tc := range cases {
		rec := tc.out()
		if rec.SyncedToRegistry {
			t.Errorf("%s left SyncedToRegistry=true; a failed mirror of this change would never be retried", tc.name)
		}
		if rec.SyncedAt != nil {
			t.Errorf("%s left SyncedAt set", tc.name)
		}
	}
}

func TestMarkMirrored_Idempotent(t *testing.T) {
	now := time.Now().UTC()
	draft, _ := NewDraft(testOrg, primitive.NewObjectID(), "dean@miskatonic.edu", now)

	first := MarkMirrored(draft, now)
	second := MarkMirrored(first, now.Add(time.Minute))

	if !first.SyncedToRegistry || !second.SyncedToRegistry {
		t.Error("both mirror passes should leave SyncedToRegistry=true")
	}
	// Only the timestamps differ between the two passes.
	second.SyncedAt = first.SyncedAt
	second.UpdatedAt = first.UpdatedAt
	if second != first {
		t.Error("repeated MarkMirrored changed more than timestamps")
	}
}
