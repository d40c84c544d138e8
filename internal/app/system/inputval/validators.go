package inputval

import (
	"net/url"
	"strings"
)

// allowedAuthMethods lists the sign-in methods user accounts may carry.
var allowedAuthMethods = []string{"password", "google"}

// IsValidAuthMethod reports whether method names a supported sign-in method.
// Comparison is case-insensitive and ignores surrounding whitespace.
func IsValidAuthMethod(method string) bool {
	m := strings.ToLower(strings.TrimSpace(method))
	for _, allowed := range allowedAuthMethods {
		if m == allowed {
			return true
		}
	}
	return false
}

// AllowedAuthMethodsList returns the supported sign-in methods in canonical
// order, for error messages and form options.
func AllowedAuthMethodsList() []string {
	out := make([]string, len(allowedAuthMethods))
	copy(out, allowedAuthMethods)
	return out
}

// IsValidHTTPURL reports whether s is an absolute http or https URL.
func IsValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// IsValidObjectID reports whether s is a 24 character hex string.
func IsValidObjectID(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 24 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
