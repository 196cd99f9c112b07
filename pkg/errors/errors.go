package errors

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a new validation error from a field -> message map
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// NewFieldError creates a validation error for a single field
func NewFieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}

	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s - %s", f, e.Fields[f])
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, ", "))
}

// HTTPStatus returns the HTTP status for this error
func (e *ValidationError) HTTPStatus() int {
	return http.StatusBadRequest
}

// InvalidPasswordError is returned when a password breaks the policy for its email domain
type InvalidPasswordError struct {
	EmailSuffix string
	MinLength   int
}

// NewInvalidPasswordError creates a new invalid password error
func NewInvalidPasswordError(emailSuffix string, minLength int) *InvalidPasswordError {
	return &InvalidPasswordError{
		EmailSuffix: emailSuffix,
		MinLength:   minLength,
	}
}

// Error implements the error interface
func (e *InvalidPasswordError) Error() string {
	return fmt.Sprintf("Password for users with email suffix %q must have at least %d characters", e.EmailSuffix, e.MinLength)
}

// HTTPStatus returns the HTTP status for this error
func (e *InvalidPasswordError) HTTPStatus() int {
	return http.StatusBadRequest
}

// AlreadyExistsError represents a user whose email is already taken
type AlreadyExistsError struct {
	Email string
}

// NewAlreadyExistsError creates a new already exists error
func NewAlreadyExistsError(email string) *AlreadyExistsError {
	return &AlreadyExistsError{Email: email}
}

// Error implements the error interface
func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("User with email %q already exist", e.Email)
}

// HTTPStatus returns the HTTP status for this error.
// Conflicts are reported as bad requests to keep the public contract stable.
func (e *AlreadyExistsError) HTTPStatus() int {
	return http.StatusBadRequest
}

// StorageUnavailableError is raised once retries against the store are exhausted.
// Err keeps the last transient cause for logging; it is never part of Error().
type StorageUnavailableError struct {
	Message string
	Err     error
}

// NewStorageUnavailableError creates a new storage unavailable error
func NewStorageUnavailableError(message string, err error) *StorageUnavailableError {
	return &StorageUnavailableError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *StorageUnavailableError) Error() string {
	return e.Message
}

// Unwrap returns the wrapped error
func (e *StorageUnavailableError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status for this error
func (e *StorageUnavailableError) HTTPStatus() int {
	return http.StatusInternalServerError
}

// HTTPStatuser is an error that carries its own HTTP status
type HTTPStatuser interface {
	error
	HTTPStatus() int
}
