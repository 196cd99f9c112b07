package user

import (
	"time"

	domain "user-admin-service/internal/domain/user"
)

// CreateUserRequest represents the request payload for creating a new user.
type CreateUserRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,strongpassword"`
}

// ListUsersRequest represents a zero-based page request.
type ListUsersRequest struct {
	Page  int
	Limit int
}

// DefaultListLimit is the page size used when the caller does not supply one.
const DefaultListLimit = 10

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"createdAt"`
}

// UserResponse wraps a single user.
type UserResponse struct {
	User User `json:"user"`
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users      []User `json:"user"`
	TotalCount int64  `json:"totalCount"`
	TotalPages int    `json:"totalPages"`
}

func toDTO(u domain.User) User {
	return User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Password:  u.Password,
		Active:    u.Active,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toListResponse(p *domain.Page) *ListUsersResponse {
	users := make([]User, len(p.Users))
	for i, u := range p.Users {
		users[i] = toDTO(u)
	}
	return &ListUsersResponse{
		Users:      users,
		TotalCount: p.TotalCount,
		TotalPages: p.TotalPages(),
	}
}
