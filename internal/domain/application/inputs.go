// internal/domain/application/inputs.go
package application

// Institution type values accepted on the organization step.
const (
	TypeUniversity = "university"
	TypeCollege    = "college"
	TypeResearch   = "research"
	TypeNonprofit  = "nonprofit"
	TypeGovernment = "government"
	TypeCorporate  = "corporate"
	TypeOther      = "other"
)

// InstitutionTypes lists the accepted institution types in display order.
var InstitutionTypes = []string{
	TypeUniversity, TypeCollege, TypeResearch,
	TypeNonprofit, TypeGovernment, TypeCorporate, TypeOther,
}

// ValidInstitutionType reports whether value is an accepted institution type.
func ValidInstitutionType(value string) bool {
	for _, t := range InstitutionTypes {
		if t == value {
			return true
		}
	}
	return false
}

// OrganizationSizes lists the accepted size buckets in ascending order.
var OrganizationSizes = []string{"1-100", "101-500", "501-2000", "2001-10000", "10000+"}

// ValidOrganizationSize reports whether value is an accepted size bucket.
func ValidOrganizationSize(value string) bool {
	for _, s := range OrganizationSizes {
		if s == value {
			return true
		}
	}
	return false
}

// OrganizationInput is the organization step of the onboarding wizard.
type OrganizationInput struct {
	InstitutionName  string `json:"institution_name" validate:"required,max=200" label:"Institution name"`
	InstitutionType  string `json:"institution_type" validate:"required,max=50" label:"Institution type"`
	OrganizationSize string `json:"organization_size" validate:"required,max=50" label:"Organization size"`
}

// VerificationInput is the verification step of the onboarding wizard.
type VerificationInput struct {
	Website              string `json:"website" validate:"required,url,max=500" label:"Website"`
	Description          string `json:"description" validate:"required,max=2000" label:"Description"`
	AddressLine1         string `json:"address_line1" validate:"required,max=200" label:"Address"`
	AddressLine2         string `json:"address_line2" validate:"max=200" label:"Address line 2"`
	City                 string `json:"city" validate:"required,max=100" label:"City"`
	State                string `json:"state" validate:"max=100" label:"State"`
	PostalCode           string `json:"postal_code" validate:"required,max=20" label:"Postal code"`
	Country              string `json:"country" validate:"required,max=100" label:"Country"`
	PhoneNumber          string `json:"phone_number" validate:"required,max=30" label:"Phone number"`
	ExpectedStudentCount int    `json:"expected_student_count" label:"Expected student count"`
	TaxID                string `json:"tax_id" validate:"max=100" label:"Tax or registration number"`
}
