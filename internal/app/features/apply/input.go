// internal/app/features/apply/input.go
package apply

import (
	"fmt"
	"strings"

	"github.com/trovehq/trovehub/internal/app/system/htmlsanitize"
	"github.com/trovehq/trovehub/internal/app/system/inputval"
	"github.com/trovehq/trovehub/internal/domain/application"
)

// sanitizeInput strips HTML from every free-text field before validation,
// so lengths are checked against what will actually be stored.
func sanitizeInput(in application.Input) application.Input {
	switch v := in.(type) {
	case application.OrganizationInput:
		v.InstitutionName = htmlsanitize.StripTags(v.InstitutionName)
		v.InstitutionType = htmlsanitize.StripTags(v.InstitutionType)
		v.OrganizationSize = htmlsanitize.StripTags(v.OrganizationSize)
		return v
	case application.VerificationInput:
		v.Website = strings.TrimSpace(v.Website)
		v.Description = htmlsanitize.StripTags(v.Description)
		v.AddressLine1 = htmlsanitize.StripTags(v.AddressLine1)
		v.AddressLine2 = htmlsanitize.StripTags(v.AddressLine2)
		v.City = htmlsanitize.StripTags(v.City)
		v.State = htmlsanitize.StripTags(v.State)
		v.PostalCode = htmlsanitize.StripTags(v.PostalCode)
		v.Country = htmlsanitize.StripTags(v.Country)
		v.PhoneNumber = htmlsanitize.StripTags(v.PhoneNumber)
		v.TaxID = htmlsanitize.StripTags(v.TaxID)
		return v
	default:
		return in
	}
}

// validateInput checks field rules plus the enum fields the tag rules
// cannot express. Returns the first problem, or "" when the input is clean.
func validateInput(in application.Input) string {
	if res := inputval.Validate(in); res.HasErrors() {
		return res.First()
	}

	switch v := in.(type) {
	case application.OrganizationInput:
		if !application.ValidInstitutionType(v.InstitutionType) {
			return fmt.Sprintf("Institution type must be one of: %s.", strings.Join(application.InstitutionTypes, ", "))
		}
		if !application.ValidOrganizationSize(v.OrganizationSize) {
			return fmt.Sprintf("Organization size must be one of: %s.", strings.Join(application.OrganizationSizes, ", "))
		}
	case application.VerificationInput:
		if v.ExpectedStudentCount < 0 {
			return "Expected student count cannot be negative."
		}
	}
	return ""
}
