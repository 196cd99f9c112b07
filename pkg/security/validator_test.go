package security

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "user-admin-service/pkg/errors"
)

func TestPasswordPolicy_Validate(t *testing.T) {
	policy := NewPasswordPolicy("example.com", 12)

	tests := []struct {
		name        string
		email       string
		password    string
		expectError bool
	}{
		{
			name:        "restricted domain with short password",
			email:       "li.alush@example.com",
			password:    "Short1!",
			expectError: true,
		},
		{
			name:        "restricted domain with eleven characters",
			email:       "li.alush@example.com",
			password:    "Abcdefgh1!x",
			expectError: true,
		},
		{
			name:     "restricted domain with exactly twelve characters",
			email:    "li.alush@example.com",
			password: "Abcdefgh1!xy",
		},
		{
			name:     "restricted domain with long password",
			email:    "li.alush@example.com",
			password: "VeryLongPassword123!",
		},
		{
			name:     "other domain with short password",
			email:    "li.alush@test.com",
			password: "aA1@",
		},
		{
			name:        "suffix match without subdomain separator",
			email:       "li@myexample.com",
			password:    "aA1@",
			expectError: true,
		},
		{
			name:     "multibyte characters counted as characters",
			email:    "li@example.com",
			password: "Ümlaut-Äpfel1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Validate(tt.email, tt.password)

			if tt.expectError {
				require.Error(t, err)
				var invalid *apperrors.InvalidPasswordError
				require.True(t, errors.As(err, &invalid))
				assert.Equal(t, "example.com", invalid.EmailSuffix)
				assert.Equal(t, 12, invalid.MinLength)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewPasswordPolicy_Defaults(t *testing.T) {
	policy := NewPasswordPolicy("", 0)

	assert.Equal(t, DefaultRestrictedSuffix, policy.RestrictedSuffix)
	assert.Equal(t, DefaultMinLength, policy.MinLength)
}

func TestIsStrongPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		expected bool
	}{
		{name: "all classes", password: "aA1@", expected: true},
		{name: "long mixed", password: "SecurePass123!", expected: true},
		{name: "symbol only", password: "@", expected: false},
		{name: "missing special", password: "Password123", expected: false},
		{name: "missing digit", password: "Password!", expected: false},
		{name: "missing upper", password: "password1!", expected: false},
		{name: "missing lower", password: "PASSWORD1!", expected: false},
		{name: "empty", password: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsStrongPassword(tt.password))
		})
	}
}

func TestIsSpecialChar(t *testing.T) {
	for _, char := range []rune{'!', '@', '#', '$', '%', '^', '&', '*', '+', '='} {
		assert.True(t, isSpecialChar(char), string(char))
	}
	for _, char := range []rune{'a', 'Z', '5', ' '} {
		assert.False(t, isSpecialChar(char), string(char))
	}
}
