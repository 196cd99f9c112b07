package security

import (
	"strings"
	"unicode"

	apperrors "user-admin-service/pkg/errors"
)

const (
	// DefaultRestrictedSuffix is the email domain that gets the stricter length rule
	DefaultRestrictedSuffix = "example.com"
	// DefaultMinLength is the minimum password length for the restricted domain
	DefaultMinLength = 12
)

// PasswordPolicy rejects short passwords for users of a restricted email domain.
type PasswordPolicy struct {
	RestrictedSuffix string
	MinLength        int
}

// NewPasswordPolicy creates a policy, falling back to defaults for empty values.
func NewPasswordPolicy(suffix string, minLength int) PasswordPolicy {
	if suffix == "" {
		suffix = DefaultRestrictedSuffix
	}
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	return PasswordPolicy{RestrictedSuffix: suffix, MinLength: minLength}
}

// Validate checks the plaintext password against the policy for the given email.
// Length is counted in characters, not bytes.
func (p PasswordPolicy) Validate(email, password string) error {
	if strings.HasSuffix(email, p.RestrictedSuffix) && len([]rune(password)) < p.MinLength {
		return apperrors.NewInvalidPasswordError(p.RestrictedSuffix, p.MinLength)
	}
	return nil
}

// IsStrongPassword reports whether the password mixes lower case, upper case,
// digits and at least one special character.
func IsStrongPassword(password string) bool {
	var lower, upper, digit, special bool
	for _, char := range password {
		switch {
		case unicode.IsLower(char):
			lower = true
		case unicode.IsUpper(char):
			upper = true
		case unicode.IsDigit(char):
			digit = true
		case isSpecialChar(char):
			special = true
		}
	}
	return lower && upper && digit && special
}

// isSpecialChar checks if a character counts as a password symbol
func isSpecialChar(char rune) bool {
	return unicode.IsPunct(char) || unicode.IsSymbol(char)
}
