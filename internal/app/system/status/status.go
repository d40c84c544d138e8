// internal/app/system/status/status.go
package status

// Account-level statuses shared by users, institutions, and locations.
const (
	Active   = "active"
	Disabled = "disabled"
)

// IsValid reports whether value is a recognized account status.
func IsValid(value string) bool {
	return value == Active || value == Disabled
}
