package application

import (
	"strings"
	"testing"
)

var allStatuses = []Status{
	StatusDraft, StatusPendingVerification, StatusVerifying,
	StatusApproved, StatusRejected, StatusCreated,
}

func TestCanUserUpdate(t *testing.T) {
	editable := map[Status]bool{
		StatusDraft:               true,
		StatusPendingVerification: true,
	}

	for _, s := range allStatuses {
		t.Run(string(s), func(t *testing.T) {
			got := CanUserUpdate(s)
			if got.Allowed != editable[s] {
				t.Errorf("CanUserUpdate(%q).Allowed = %v, want %v", s, got.Allowed, editable[s])
			}
			if !got.Allowed && got.Reason == "" {
				t.Errorf("CanUserUpdate(%q) denied without a reason", s)
			}
		})
	}
}

func TestCanUserUpdate_UnknownStatus(t *testing.T) {
	got := CanUserUpdate(Status("bogus"))
	if got.Allowed {
		t.Error("unknown status should not be user-editable")
	}
	if got.Reason == "" {
		t.Error("expected a reason for unknown status")
	}
}

func TestCanAdminChangeStatus_Table(t *testing.T) {
	allowed := map[Status][]Status{
		StatusDraft:               {StatusPendingVerification},
		StatusPendingVerification: {StatusVerifying, StatusRejected},
		StatusVerifying:           {StatusApproved, StatusRejected, StatusPendingVerification},
		StatusApproved:            {},
		StatusRejected:            {StatusPendingVerification},
		StatusCreated:             {},
	}

	for _, cur := range allStatuses {
		for _, next := range allStatuses {
			want := false
			for _, n := range allowed[cur] {
				if n == next {
					want = true
				}
			}

			got := CanAdminChangeStatus(cur, next)
			if got.Allowed != want {
				t.Errorf("CanAdminChangeStatus(%q, %q).Allowed = %v, want %v", cur, next, got.Allowed, want)
			}
			if !got.Allowed {
				if !strings.Contains(got.Reason, string(cur)) || !strings.Contains(got.Reason, string(next)) {
					t.Errorf("CanAdminChangeStatus(%q, %q) reason %q does not name both statuses", cur, next, got.Reason)
				}
			}
		}
	}
}

func TestCanAdminChangeStatus_NoDirectApproval(t *testing.T) {
	// Approval requires passing through verifying first.
	got := CanAdminChangeStatus(StatusPendingVerification, StatusApproved)
	if got.Allowed {
		t.Error("pending_verification → approved must be rejected")
	}
	if got.Reason == "" {
		t.Error("expected a reason for the invalid direct transition")
	}
}

func TestCanAdminChangeStatus_RejectedReopens(t *testing.T) {
	if got := CanAdminChangeStatus(StatusRejected, StatusPendingVerification); !got.Allowed {
		t.Errorf("rejected → pending_verification should be allowed, got reason %q", got.Reason)
	}
	if got := CanAdminChangeStatus(StatusRejected, StatusApproved); got.Allowed {
		t.Error("rejected → approved must be rejected")
	}
}

func TestCanAdminStartReview(t *testing.T) {
	for _, s := range allStatuses {
		got := CanAdminStartReview(s)
		want := s == StatusPendingVerification
		if got.Allowed != want {
			t.Errorf("CanAdminStartReview(%q).Allowed = %v, want %v", s, got.Allowed, want)
		}
		if !got.Allowed && got.Reason == "" {
			t.Errorf("CanAdminStartReview(%q) denied without a reason", s)
		}
	}

	if got := CanAdminStartReview(Status("mystery")); got.Allowed {
		t.Error("unknown status must not be reviewable")
	}
}

func TestPresentationLookupsAreTotal(t *testing.T) {
	probes := append([]Status{"", "bogus", "DRAFT"}, allStatuses...)

	for _, s := range probes {
		if Description(s) == "" {
			t.Errorf("Description(%q) returned empty string", s)
		}
		if len(UserActions(s)) == 0 {
			t.Errorf("UserActions(%q) returned no actions", s)
		}
		if len(AdminActions(s)) == 0 {
			t.Errorf("AdminActions(%q) returned no actions", s)
		}
	}

	if Description(Status("bogus")) != "Unknown status" {
		t.Errorf("unknown status description = %q, want %q", Description(Status("bogus")), "Unknown status")
	}
	ua := UserActions(Status("bogus"))
	if len(ua) != 1 || ua[0] != "view" {
		t.Errorf("unknown status user actions = %v, want [view]", ua)
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range allStatuses {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false, want true", s)
		}
	}
	for _, s := range []Status{"", "Draft", "done"} {
		if ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = true, want false", s)
		}
	}
}
