// internal/domain/application/dispatch.go
package application

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/trovehq/trovehub/internal/domain/models"
)

// Action tags classify what a wizard request should do. Handlers switch on
// the tag and invoke the matching transform; classification itself never
// mutates anything.
type Action string

const (
	ActionCreateOrganization Action = "CREATE_ORGANIZATION"
	ActionUpdateOrganization Action = "UPDATE_ORGANIZATION"
	ActionSubmitVerification Action = "SUBMIT_VERIFICATION"
	ActionUpdateVerification Action = "UPDATE_VERIFICATION"
	ActionDataLocked         Action = "DATA_LOCKED"
	ActionInvalidState       Action = "INVALID_STATE"
	ActionUnknown            Action = "UNKNOWN"
)

// Input is the decoded wizard payload: exactly one of the step shapes.
// Decoding happens once at the boundary; everything downstream matches on
// the concrete type instead of re-probing the raw payload.
type Input interface {
	step() Step
}

func (OrganizationInput) step() Step { return StepOrganization }
func (VerificationInput) step() Step { return StepVerification }

// ErrUnrecognizedInput is returned when a payload matches neither wizard
// step shape.
var ErrUnrecognizedInput = errors.New("request body matches neither the organization nor the verification step")

// DecodeInput decodes a raw wizard payload into its step variant. A payload
// is the organization step when it carries the organization identity fields,
// otherwise the verification step when it carries any of that step's
// required fields. Field-level validation (lengths, URL shape, enums) is a
// separate concern handled by inputval at the handler.
func DecodeInput(raw []byte) (Input, error) {
	var probe struct {
		OrganizationInput
		VerificationInput
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}

	if strings.TrimSpace(probe.InstitutionName) != "" || strings.TrimSpace(probe.InstitutionType) != "" {
		return probe.OrganizationInput, nil
	}
	if strings.TrimSpace(probe.Website) != "" || strings.TrimSpace(probe.Description) != "" ||
		strings.TrimSpace(probe.PhoneNumber) != "" || strings.TrimSpace(probe.AddressLine1) != "" {
		return probe.VerificationInput, nil
	}
	return nil, ErrUnrecognizedInput
}

// ClassifyPost decides what a POST (create-or-edit) request should do,
// given the caller's existing application (nil if none) and the decoded
// payload. Order of inspection: payload shape, then record existence, then
// the policy on the record's current status.
func ClassifyPost(existing *models.InstitutionApplication, in Input) Action {
	switch in.(type) {
	case OrganizationInput:
		if existing == nil {
			return ActionCreateOrganization
		}
		if CanUserUpdate(Status(existing.Status)).Allowed {
			return ActionUpdateOrganization
		}
		return ActionDataLocked
	case VerificationInput:
		if existing == nil {
			// Verification data with no draft to attach it to.
			return ActionInvalidState
		}
		if CanSubmitVerification(*existing) {
			return ActionSubmitVerification
		}
		if CanUserUpdate(Status(existing.Status)).Allowed {
			return ActionUpdateVerification
		}
		return ActionDataLocked
	default:
		return ActionUnknown
	}
}

// ClassifyPut decides what a PUT (update) request should do. PUT never
// creates: a missing record is an invalid state for either step shape.
func ClassifyPut(existing *models.InstitutionApplication, in Input) Action {
	if existing == nil {
		if in == nil {
			return ActionUnknown
		}
		return ActionInvalidState
	}
	switch in.(type) {
	case OrganizationInput:
		if CanUserUpdate(Status(existing.Status)).Allowed {
			return ActionUpdateOrganization
		}
		return ActionDataLocked
	case VerificationInput:
		if CanSubmitVerification(*existing) {
			return ActionSubmitVerification
		}
		if CanUserUpdate(Status(existing.Status)).Allowed {
			return ActionUpdateVerification
		}
		return ActionDataLocked
	default:
		return ActionUnknown
	}
}
