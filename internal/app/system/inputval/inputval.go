// Package inputval validates user input for handlers.
//
// Validation rules are declared with struct tags and run via Validate:
//
//	type Input struct {
//		Name  string `validate:"required,max=100" label:"Institution name"`
//		Email string `validate:"required,email" label:"Email address"`
//	}
//
// Supported rules: required, max=N, email, url, objectid, authmethod.
// The label tag supplies the field name used in error messages.
package inputval

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// FieldError describes a single failed validation rule.
type FieldError struct {
	Field   string
	Message string
}

// Result collects validation errors for an input struct.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first error message, or "" when validation passed.
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All returns every error message joined with "; ".
func (r *Result) All() string {
	if len(r.Errors) == 0 {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

func (r *Result) add(field, msg string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: msg})
}

// Validate runs the rules declared in v's struct tags. Only string fields
// are inspected; fields without a validate tag are skipped. Fields are
// checked in declaration order and each field stops at its first failure.
func Validate(v any) *Result {
	result := &Result{}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return result
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || field.Type.Kind() != reflect.String {
			continue
		}
		label := field.Tag.Get("label")
		if label == "" {
			label = field.Name
		}
		value := strings.TrimSpace(rv.Field(i).String())

		for _, rule := range strings.Split(tag, ",") {
			if msg := checkRule(rule, label, value); msg != "" {
				result.add(field.Name, msg)
				break
			}
		}
	}
	return result
}

// checkRule evaluates one rule and returns an error message, or "" on pass.
// Rules other than required pass vacuously when the value is empty.
func checkRule(rule, label, value string) string {
	if rule == "required" {
		if value == "" {
			return fmt.Sprintf("%s is required.", label)
		}
		return ""
	}
	if value == "" {
		return ""
	}

	switch {
	case strings.HasPrefix(rule, "max="):
		n, err := strconv.Atoi(strings.TrimPrefix(rule, "max="))
		if err == nil && len(value) > n {
			return fmt.Sprintf("%s must be at most %d characters.", label, n)
		}
	case rule == "email":
		if !IsValidEmail(value) {
			return "A valid email address is required."
		}
	case rule == "url":
		if !IsValidHTTPURL(value) {
			return fmt.Sprintf("%s must be a valid http or https URL.", label)
		}
	case rule == "objectid":
		if !IsValidObjectID(value) {
			return fmt.Sprintf("%s must be a valid identifier.", label)
		}
	case rule == "authmethod":
		if !IsValidAuthMethod(value) {
			return fmt.Sprintf("%s must be one of: %s.", label, strings.Join(AllowedAuthMethodsList(), ", "))
		}
	}
	return ""
}

// IsValidEmail reports whether s is a plausible bare email address.
// Display-name forms ("Name <a@b>") are rejected; single-label domains
// are allowed so dev and test environments work.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return false
	}
	return validAtomSequence(parts[0], localAtext) && validAtomSequence(parts[1], domainAtext)
}

func localAtext(r rune) bool {
	if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
		return true
	}
	return strings.ContainsRune("!#$%&'*+-/=?^_`{|}~", r)
}

func domainAtext(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-'
}

// validAtomSequence checks a dot-separated sequence of atoms: no leading,
// trailing, or consecutive dots, and every other rune allowed by atext.
func validAtomSequence(s string, atext func(rune) bool) bool {
	if s == "" {
		return false
	}
	for _, atom := range strings.Split(s, ".") {
		if atom == "" {
			return false
		}
		for _, r := range atom {
			if !atext(r) {
				return false
			}
		}
	}
	return true
}
