package application

import (
	"errors"
	"testing"
	"time"

	"github.com/trovehq/trovehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDecodeInput(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantStep Step
		wantErr  bool
	}{
		{
			name:     "organization step",
			raw:      `{"institution_name":"Miskatonic University","institution_type":"university","organization_size":"2001-10000"}`,
			wantStep: StepOrganization,
		},
		{
			name:     "verification step",
			raw:      `{"website":"https://miskatonic.edu","description":"d","address_line1":"1 College St","city":"Arkham","postal_code":"01930","country":"US","phone_number":"+1 555 0100"}`,
			wantStep: StepVerification,
		},
		{
			name:    "empty object",
			raw:     `{}`,
			wantErr: true,
		},
		{
			name:    "unrelated fields",
			raw:     `{"favorite_color":"teal"}`,
			wantErr: true,
		},
		{
			name:    "malformed json",
			raw:     `{"institution_name":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := DecodeInput([]byte(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DecodeInput succeeded with %T, want error", in)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeInput failed: %v", err)
			}
			if in.step() != tt.wantStep {
				t.Errorf("decoded step = %q, want %q", in.step(), tt.wantStep)
			}
		})
	}
}

func TestDecodeInput_UnrecognizedSentinel(t *testing.T) {
	_, err := DecodeInput([]byte(`{}`))
	if !errors.Is(err, ErrUnrecognizedInput) {
		t.Errorf("error = %v, want ErrUnrecognizedInput", err)
	}
}

func recordInState(t *testing.T, status Status, step Step) *models.InstitutionApplication {
	t.Helper()
	now := time.Now().UTC()
	rec, err := NewDraft(testOrg, primitive.NewObjectID(), "dean@miskatonic.edu", now)
	if err != nil {
		t.Fatalf("NewDraft failed: %v", err)
	}
	rec.Status = string(status)
	rec.CurrentStep = string(step)
	return &rec
}

func TestClassifyPost(t *testing.T) {
	org := testOrg
	verif := testVerif

	tests := []struct {
		name     string
		existing *models.InstitutionApplication
		in       Input
		want     Action
	}{
		{"org input, no record", nil, org, ActionCreateOrganization},
		{"org input, editable draft", recordInState(t, StatusDraft, StepOrganization), org, ActionUpdateOrganization},
		{"org input, pending", recordInState(t, StatusPendingVerification, StepComplete), org, ActionUpdateOrganization},
		{"org input, under review", recordInState(t, StatusVerifying, StepComplete), org, ActionDataLocked},
		{"org input, approved", recordInState(t, StatusApproved, StepComplete), org, ActionDataLocked},

		{"verif input, no record", nil, verif, ActionInvalidState},
		{"verif input, draft on org step", recordInState(t, StatusDraft, StepOrganization), verif, ActionSubmitVerification},
		{"verif input, pending", recordInState(t, StatusPendingVerification, StepComplete), verif, ActionUpdateVerification},
		{"verif input, rejected", recordInState(t, StatusRejected, StepComplete), verif, ActionDataLocked},

		{"nil input", recordInState(t, StatusDraft, StepOrganization), nil, ActionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyPost(tt.existing, tt.in); got != tt.want {
				t.Errorf("ClassifyPost = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyPut(t *testing.T) {
	org := testOrg
	verif := testVerif

	tests := []struct {
		name     string
		existing *models.InstitutionApplication
		in       Input
		want     Action
	}{
		{"no record, org input", nil, org, ActionInvalidState},
		{"no record, verif input", nil, verif, ActionInvalidState},
		{"no record, nil input", nil, nil, ActionUnknown},

		{"org input, editable draft", recordInState(t, StatusDraft, StepOrganization), org, ActionUpdateOrganization},
		{"org input, locked", recordInState(t, StatusVerifying, StepComplete), org, ActionDataLocked},

		{"verif input, draft on org step", recordInState(t, StatusDraft, StepOrganization), verif, ActionSubmitVerification},
		{"verif input, pending", recordInState(t, StatusPendingVerification, StepComplete), verif, ActionUpdateVerification},
		{"verif input, created", recordInState(t, StatusCreated, StepComplete), verif, ActionDataLocked},

		{"nil input with record", recordInState(t, StatusDraft, StepOrganization), nil, ActionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyPut(tt.existing, tt.in); got != tt.want {
				t.Errorf("ClassifyPut = %q, want %q", got, tt.want)
			}
		})
	}
}
