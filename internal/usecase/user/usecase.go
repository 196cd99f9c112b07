package user

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-admin-service/internal/domain/user"
	apperrors "user-admin-service/pkg/errors"
	"user-admin-service/pkg/retry"
	"user-admin-service/pkg/security"
)

// lastDay is the window used by ListUsersCreatedLastDay.
const lastDay = 24 * time.Hour

// Recovery messages returned once retries against the store are exhausted.
const (
	msgSaveFailed       = "Failed to save user with email %s from data base"
	msgListFailed       = "Failed to get users from data base"
	msgDeactivateFailed = "Failed to deactivate user with id %d from data base"
	msgDeleteFailed     = "Failed to delete user with id %d from data base"
)

// fieldMessages maps "field.tag" to the message reported for that validation failure.
var fieldMessages = map[string]string{
	"firstName.required":      "First name is required",
	"lastName.required":       "Last name is required",
	"email.required":          "Email is required",
	"email.email":             "Email need to be a valid email address",
	"password.required":       "Password is required",
	"password.strongpassword": "Password must contain a lower case letter, an upper case letter, a digit and a special character",
}

var _ UserUsecase = (*Usecase)(nil)

// Usecase implements the business logic for user administration.
// Every store call runs through the retry executor.
type Usecase struct {
	repo     Repository          // Repository for data access
	hasher   security.Hasher     // One-way password hashing
	policy   security.PasswordPolicy
	executor *retry.Executor     // Retry policy applied to store calls
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for request validation
	now      func() time.Time
}

// Option configures optional Usecase dependencies.
type Option func(*Usecase)

// WithClock overrides the time source used for creation timestamps and the last-day cutoff.
func WithClock(now func() time.Time) Option {
	return func(uc *Usecase) {
		uc.now = now
	}
}

// New creates a new instance of Usecase.
func New(r Repository, h security.Hasher, p security.PasswordPolicy, ex *retry.Executor, log *zap.Logger, opts ...Option) *Usecase {
	uc := &Usecase{
		repo:     r,
		hasher:   h,
		policy:   p,
		executor: ex,
		log:      log,
		validate: newValidator(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// RegisterValidation only fails on an empty tag or a nil func
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return security.IsStrongPassword(fl.Field().String())
	})
	return v
}

// formatValidationError converts validator.ValidationErrors into a field -> message error.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		if msg, ok := fieldMessages[e.Field()+"."+e.Tag()]; ok {
			fields[e.Field()] = msg
			continue
		}
		fields[e.Field()] = fmt.Sprintf("%s is invalid", e.Field())
	}
	return apperrors.NewValidationError(fields)
}

func validatePaging(in ListUsersRequest) error {
	fields := map[string]string{}
	if in.Page < 0 {
		fields["page"] = "Page must not be negative"
	}
	if in.Limit < 0 {
		fields["limit"] = "Limit must not be negative"
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError(fields)
	}
	return nil
}

func isAlreadyExists(err error) bool {
	var exists *apperrors.AlreadyExistsError
	return errors.As(err, &exists)
}

func storageUnavailable(message string) func(ctx context.Context, last error) error {
	return func(ctx context.Context, last error) error {
		return apperrors.NewStorageUnavailableError(message, last)
	}
}

// CreateUser validates the request, applies the password policy, hashes the password
// and stores the user unless its email is already taken.
func (uc *Usecase) CreateUser(ctx context.Context, in CreateUserRequest) (*UserResponse, error) {
	uc.log.Info("creating new user", zap.String("email", in.Email))

	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	if err := uc.policy.Validate(in.Email, in.Password); err != nil {
		uc.log.Warn("password rejected by policy", zap.String("email", in.Email))
		return nil, err
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			return nil, apperrors.NewFieldError("password", "Password is too long")
		}
		uc.log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	created, err := retry.Do(ctx, uc.executor, retry.Operation[*domain.User]{
		Name: "create_user",
		Run: func(ctx context.Context) (*domain.User, error) {
			u := domain.New(in.FirstName, in.LastName, in.Email, hash, uc.now())
			err := uc.repo.Transaction(ctx, func(tx Repository) error {
				exists, err := tx.ExistsByEmail(ctx, u.Email)
				if err != nil {
					return err
				}
				if exists {
					return apperrors.NewAlreadyExistsError(u.Email)
				}
				if err := tx.Create(ctx, u); err != nil {
					if errors.Is(err, domain.ErrDuplicateEmail) {
						return apperrors.NewAlreadyExistsError(u.Email)
					}
					return err
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			return u, nil
		},
		Retryable: func(err error) bool { return !isAlreadyExists(err) },
		Recover:   storageUnavailable(fmt.Sprintf(msgSaveFailed, in.Email)),
	})
	if err != nil {
		if isAlreadyExists(err) {
			uc.log.Warn("email already exists", zap.String("email", in.Email))
		} else {
			uc.log.Error("failed to create user", zap.String("email", in.Email), zap.Error(err))
		}
		return nil, err
	}

	uc.log.Info("user created", zap.Int64("id", created.ID))
	return &UserResponse{User: toDTO(*created)}, nil
}

// ListUsers returns one zero-based page of users ordered by ID.
func (uc *Usecase) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	uc.log.Info("listing users", zap.Int("page", in.Page), zap.Int("limit", in.Limit))

	if err := validatePaging(in); err != nil {
		uc.log.Warn("invalid paging", zap.Error(err))
		return nil, err
	}

	page, err := retry.Do(ctx, uc.executor, retry.Operation[*domain.Page]{
		Name: "list_users",
		Run: func(ctx context.Context) (*domain.Page, error) {
			return uc.repo.List(ctx, in.Page, in.Limit)
		},
		Recover: storageUnavailable(msgListFailed),
	})
	if err != nil {
		uc.log.Error("failed to list users", zap.Int("page", in.Page), zap.Int("limit", in.Limit), zap.Error(err))
		return nil, err
	}

	return toListResponse(page), nil
}

// ListUsersCreatedLastDay returns one page of users created within the last 24 hours.
func (uc *Usecase) ListUsersCreatedLastDay(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	uc.log.Info("listing users created in the last day", zap.Int("page", in.Page), zap.Int("limit", in.Limit))

	if err := validatePaging(in); err != nil {
		uc.log.Warn("invalid paging", zap.Error(err))
		return nil, err
	}

	cutoff := uc.now().Add(-lastDay)

	page, err := retry.Do(ctx, uc.executor, retry.Operation[*domain.Page]{
		Name: "list_users_created_last_day",
		Run: func(ctx context.Context) (*domain.Page, error) {
			return uc.repo.ListCreatedAfter(ctx, cutoff, in.Page, in.Limit)
		},
		Recover: storageUnavailable(msgListFailed),
	})
	if err != nil {
		uc.log.Error("failed to list recent users", zap.Time("cutoff", cutoff), zap.Error(err))
		return nil, err
	}

	return toListResponse(page), nil
}

// DeactivateUser marks a user inactive. Missing and already inactive users are left untouched.
func (uc *Usecase) DeactivateUser(ctx context.Context, id int64) error {
	uc.log.Info("deactivating user", zap.Int64("id", id))

	err := retry.Exec(ctx, uc.executor, retry.Operation[struct{}]{
		Name: "deactivate_user",
		Run: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, uc.repo.Transaction(ctx, func(tx Repository) error {
				u, err := tx.GetByID(ctx, id)
				if err != nil {
					return err
				}
				if u == nil {
					uc.log.Debug("user to deactivate not found", zap.Int64("id", id))
					return nil
				}
				if !u.Deactivate() {
					return nil
				}
				if err := tx.Save(ctx, u); err != nil {
					if errors.Is(err, domain.ErrNotFound) {
						uc.log.Debug("user deleted before deactivation", zap.Int64("id", id))
						return nil
					}
					return err
				}
				return nil
			})
		},
		Recover: storageUnavailable(fmt.Sprintf(msgDeactivateFailed, id)),
	})
	if err != nil {
		uc.log.Error("failed to deactivate user", zap.Int64("id", id), zap.Error(err))
		return err
	}
	return nil
}

// DeleteUser permanently removes a user. Deleting a missing user succeeds.
func (uc *Usecase) DeleteUser(ctx context.Context, id int64) error {
	uc.log.Info("deleting user", zap.Int64("id", id))

	err := retry.Exec(ctx, uc.executor, retry.Operation[struct{}]{
		Name: "delete_user",
		Run: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, uc.repo.Delete(ctx, id)
		},
		Recover: storageUnavailable(fmt.Sprintf(msgDeleteFailed, id)),
	})
	if err != nil {
		uc.log.Error("failed to delete user", zap.Int64("id", id), zap.Error(err))
		return err
	}
	return nil
}
