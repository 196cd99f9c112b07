package user

import (
	"context"
	"time"

	domain "user-admin-service/internal/domain/user"
)

// Repository defines the interface for user data access operations.
// Implementations translate store-level uniqueness violations into domain.ErrDuplicateEmail.
type Repository interface {
	Create(ctx context.Context, u *domain.User) error                     // Insert a new user and set its ID
	Save(ctx context.Context, u *domain.User) error                       // Update an existing user, domain.ErrNotFound when missing
	GetByID(ctx context.Context, id int64) (*domain.User, error)          // Retrieve user by ID, nil when missing
	ExistsByEmail(ctx context.Context, email string) (bool, error)        // Check whether the email is taken
	Delete(ctx context.Context, id int64) error                           // Delete user by ID, no-op when missing
	List(ctx context.Context, page, limit int) (*domain.Page, error)      // One page of users ordered by ID
	ListCreatedAfter(ctx context.Context, cutoff time.Time, page, limit int) (*domain.Page, error)

	// Transaction runs fn against a repository bound to one store transaction.
	Transaction(ctx context.Context, fn func(repo Repository) error) error
}

// UserUsecase defines the interface for user business logic operations.
type UserUsecase interface {
	CreateUser(ctx context.Context, in CreateUserRequest) (*UserResponse, error)
	ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error)
	DeactivateUser(ctx context.Context, id int64) error
	DeleteUser(ctx context.Context, id int64) error
	ListUsersCreatedLastDay(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error)
}
