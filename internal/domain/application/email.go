// internal/domain/application/email.go
package application

import (
	"fmt"
	"strings"
)

// EmailDomain extracts the domain portion of an email address: the part
// after "@", lowercased. Applicants from the same institution share a
// domain, so it is the grouping key for the registry.
//
// The address must contain exactly one "@" with non-empty text on both
// sides; anything else is an invalid email error.
func EmailDomain(email string) (string, error) {
	trimmed := strings.TrimSpace(email)
	parts := strings.Split(trimmed, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("invalid email address %q", email)
	}
	return strings.ToLower(parts[1]), nil
}
