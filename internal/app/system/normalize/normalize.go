// Package normalize canonicalizes user-supplied identity fields before they
// are stored or compared. Stores call these on every write so lookups never
// depend on the casing or padding a client happened to send.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Domain lowercases and trims an email domain.
func Domain(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Status lowercases and trims a status label.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Role lowercases and trims a role label.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
