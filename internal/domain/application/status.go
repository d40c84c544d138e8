// internal/domain/application/status.go

// Package application holds the pure business logic for the institution
// application lifecycle: the status policy (who may move a record where)
// and the draft transforms (how a record changes for each transition).
// No I/O happens here; handlers gate with the policy, apply a transform,
// and persist the result through the stores.
package application

import "fmt"

// Status is an application lifecycle label. The string values cross the
// wire as JSON and are shared with the registry, so they must match exactly.
type Status string

const (
	StatusDraft               Status = "draft"
	StatusPendingVerification Status = "pending_verification"
	StatusVerifying           Status = "verifying"
	StatusApproved            Status = "approved"
	StatusRejected            Status = "rejected"
	StatusCreated             Status = "created"
)

// Statuses lists every lifecycle status in workflow order.
var Statuses = []Status{
	StatusDraft, StatusPendingVerification, StatusVerifying,
	StatusApproved, StatusRejected, StatusCreated,
}

// Step is the wizard step recorded alongside the status.
type Step string

const (
	StepOrganization Step = "organization"
	StepVerification Step = "verification"
	StepComplete     Step = "complete"
)

// Decision is the result of a policy check. Policy violations are ordinary
// values, never errors: callers branch on Allowed and surface Reason.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// statusInfo is the canonical row for one status. Keeping description,
// per-role actions, and the admin transition set in a single table means
// "every status has an entry" is checked in one place instead of being
// re-verified with a default case in every lookup function.
type statusInfo struct {
	description  string
	userActions  []string
	adminActions []string
	adminNext    []Status
	userUpdate   Decision
	startReview  Decision
}

var statusTable = map[Status]statusInfo{
	StatusDraft: {
		description:  "Application in progress, not yet submitted",
		userActions:  []string{"edit", "submit"},
		adminActions: []string{"view"},
		adminNext:    []Status{StatusPendingVerification},
		userUpdate:   Decision{Allowed: true},
		startReview:  deny("application is still a draft and has not been submitted"),
	},
	StatusPendingVerification: {
		description:  "Submitted and waiting for review",
		userActions:  []string{"edit", "view"},
		adminActions: []string{"view", "start_review", "reject"},
		adminNext:    []Status{StatusVerifying, StatusRejected},
		userUpdate:   Decision{Allowed: true},
		startReview:  Decision{Allowed: true},
	},
	StatusVerifying: {
		description:  "Under review by an administrator",
		userActions:  []string{"view"},
		adminActions: []string{"approve", "reject", "return"},
		adminNext:    []Status{StatusApproved, StatusRejected, StatusPendingVerification},
		userUpdate:   deny("application is being reviewed and cannot be modified"),
		startReview:  deny("review has already started for this application"),
	},
	StatusApproved: {
		description:  "Approved; organization provisioning in progress",
		userActions:  []string{"view"},
		adminActions: []string{"view"},
		adminNext:    nil,
		userUpdate:   deny("cannot modify an approved application"),
		startReview:  deny("application has already been approved"),
	},
	StatusRejected: {
		description:  "Rejected; may be reopened for appeal",
		userActions:  []string{"view"},
		adminActions: []string{"view", "reopen"},
		adminNext:    []Status{StatusPendingVerification},
		userUpdate:   deny("cannot modify a rejected application"),
		startReview:  deny("application has already been rejected"),
	},
	StatusCreated: {
		description:  "Approved and organization provisioned",
		userActions:  []string{"view"},
		adminActions: []string{"view"},
		adminNext:    nil,
		userUpdate:   deny("cannot modify an application whose organization already exists"),
		startReview:  deny("application has already been approved"),
	},
}

// unknownStatusInfo is the safe default row so every lookup is total, even
// for values outside the enum (e.g. a corrupted record).
var unknownStatusInfo = statusInfo{
	description:  "Unknown status",
	userActions:  []string{"view"},
	adminActions: []string{"view"},
	adminNext:    nil,
	userUpdate:   deny("application status is not recognized"),
	startReview:  deny("application status is not recognized"),
}

func info(s Status) statusInfo {
	if row, ok := statusTable[s]; ok {
		return row
	}
	return unknownStatusInfo
}

// ValidStatus reports whether s is a member of the status enum.
func ValidStatus(s Status) bool {
	_, ok := statusTable[s]
	return ok
}

// CanUserUpdate reports whether the owning user may mutate the record:
// only while it is a draft or waiting for review.
func CanUserUpdate(s Status) Decision {
	return info(s).userUpdate
}

// CanAdminChangeStatus reports whether an admin may move an application
// from current to next. The denial reason always names both statuses.
func CanAdminChangeStatus(current, next Status) Decision {
	for _, allowed := range info(current).adminNext {
		if allowed == next {
			return allow()
		}
	}
	return deny(fmt.Sprintf("cannot change application status from %q to %q", current, next))
}

// CanAdminStartReview reports whether an admin may begin reviewing:
// only submitted applications (pending_verification) enter review.
func CanAdminStartReview(s Status) Decision {
	return info(s).startReview
}

// Description returns the human-readable summary for a status.
func Description(s Status) string {
	return info(s).description
}

// UserActions returns the actions currently available to the owning user.
func UserActions(s Status) []string {
	return info(s).userActions
}

// AdminActions returns the actions currently available to an admin.
func AdminActions(s Status) []string {
	return info(s).adminActions
}
