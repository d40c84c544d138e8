// Package authutil provides password validation and hashing for accounts
// that sign in with a password. Google-authenticated accounts never carry
// a password hash and skip this package entirely.
package authutil

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Password length limits. The upper bound exists because bcrypt ignores
// input past 72 bytes; we cap well before anyone hits surprising behavior.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 128
)

var (
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordTooLong  = errors.New("password is too long")
	ErrPasswordCommon   = errors.New("password is too common")
)

// commonPasswords are rejected outright regardless of length.
var commonPasswords = map[string]bool{
	"123456":    true,
	"password":  true,
	"qwerty":    true,
	"abc123":    true,
	"iloveyou":  true,
	"letmein":   true,
	"football":  true,
	"welcome":   true,
	"admin":     true,
	"monkey":    true,
	"dragon":    true,
	"sunshine":  true,
	"princess":  true,
	"baseball":  true,
	"trustno1":  true,
	"password1": true,
}

// ValidatePassword checks a candidate password against length limits and
// the common-password list. The common check is case-insensitive.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if commonPasswords[strings.ToLower(password)] {
		return ErrPasswordCommon
	}
	return nil
}

// PasswordRules returns a human-readable description of the password
// requirements for error responses.
func PasswordRules() string {
	return fmt.Sprintf("Passwords must be %d to %d characters and not a commonly used password.",
		MinPasswordLength, MaxPasswordLength)
}

// HashPassword hashes a plain password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plain password matches the stored hash.
// Invalid hashes simply fail the check.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
