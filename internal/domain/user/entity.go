package user

import (
	"errors"
	"time"
)

// ErrDuplicateEmail is returned by the store when the unique email index rejects a write.
var ErrDuplicateEmail = errors.New("email already in use")

// ErrNotFound is returned by the store when an update targets a user that no longer exists.
var ErrNotFound = errors.New("user not found")

// User represents a user entity in the system.
type User struct {
	ID        int64     // ID is assigned by the store on creation
	FirstName string    // FirstName of the user
	LastName  string    // LastName of the user
	Email     string    // Email is unique across all users
	Password  string    // Password holds the one-way hash, never the plaintext
	Active    bool      // Active is true at creation and only ever set to false
	CreatedAt time.Time // CreatedAt is set once at creation (UTC)
}

// New builds a fresh, active user record. passwordHash must already be hashed.
func New(firstName, lastName, email, passwordHash string, now time.Time) *User {
	return &User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  passwordHash,
		Active:    true,
		CreatedAt: now.UTC(),
	}
}

// Deactivate marks the user inactive. It reports whether the flag changed.
func (u *User) Deactivate() bool {
	if !u.Active {
		return false
	}
	u.Active = false
	return true
}
