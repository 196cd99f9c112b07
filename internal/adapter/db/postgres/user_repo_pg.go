package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-admin-service/internal/domain/user"
	usecase "user-admin-service/internal/usecase/user"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// UserRepoPG implements the Repository interface using PostgreSQL and GORM.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection, or the open transaction
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	FirstName string    `gorm:"column:first_name;not null"`
	LastName  string    `gorm:"column:last_name;not null"`
	Email     string    `gorm:"column:email;not null;uniqueIndex"`
	Password  string    `gorm:"column:password;not null"`
	Active    bool      `gorm:"column:active;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index;autoCreateTime:false"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

func toSchema(u *user.User) UserSchema {
	return UserSchema{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Password:  u.Password,
		Active:    u.Active,
		CreatedAt: u.CreatedAt.UTC(),
	}
}

func (m UserSchema) toDomain() user.User {
	return user.User{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
		Password:  m.Password,
		Active:    m.Active,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

// Transaction runs fn with a repository bound to a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise, including on panic.
func (r *UserRepoPG) Transaction(ctx context.Context, fn func(repo usecase.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UserRepoPG{db: tx, log: r.log})
	})
}

// Create inserts a new user and sets its ID.
// A unique index violation on email is reported as user.ErrDuplicateEmail.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}

	model := toSchema(u)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			r.log.Warn("unique constraint rejected user", zap.String("email", u.Email))
			return fmt.Errorf("failed to create user: %w", user.ErrDuplicateEmail)
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return fmt.Errorf("failed to create user: %w", err)
	}

	u.ID = model.ID
	r.log.Info("user created in db", zap.Int64("id", model.ID))
	return nil
}

// Save updates the mutable columns of an existing user. It never inserts:
// a row deleted in the meantime yields user.ErrNotFound.
func (r *UserRepoPG) Save(ctx context.Context, u *user.User) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}

	res := r.db.WithContext(ctx).
		Model(&UserSchema{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"first_name": u.FirstName,
			"last_name":  u.LastName,
			"email":      u.Email,
			"password":   u.Password,
			"active":     u.Active,
		})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return fmt.Errorf("failed to save user: %w", user.ErrDuplicateEmail)
		}
		r.log.Error("failed to save user in db", zap.Error(res.Error), zap.Int64("id", u.ID))
		return fmt.Errorf("failed to save user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to save user %d: %w", u.ID, user.ErrNotFound)
	}

	r.log.Info("user saved in db", zap.Int64("id", u.ID))
	return nil
}

// Delete removes a user by ID. Deleting a missing user is not an error.
func (r *UserRepoPG) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&UserSchema{}, id)
	if res.Error != nil {
		r.log.Error("failed to delete user in db", zap.Error(res.Error), zap.Int64("id", id))
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}

	r.log.Info("user deleted in db", zap.Int64("id", id), zap.Int64("rows", res.RowsAffected))
	return nil
}

// GetByID retrieves a user by ID. It returns nil without error when the user does not exist.
func (r *UserRepoPG) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found", zap.Int64("id", id))
			return nil, nil
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u := model.toDomain()
	return &u, nil
}

// ExistsByEmail reports whether a user with exactly this email is stored.
func (r *UserRepoPG) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&UserSchema{}).Where("email = ?", email).Count(&count).Error; err != nil {
		r.log.Error("failed to check email in db", zap.Error(err), zap.String("email", email))
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// List retrieves one zero-based page of users ordered by ID, with the total count.
func (r *UserRepoPG) List(ctx context.Context, page, limit int) (*user.Page, error) {
	return r.page(ctx, r.db.WithContext(ctx).Model(&UserSchema{}), page, limit)
}

// ListCreatedAfter retrieves one page of users created strictly after cutoff.
func (r *UserRepoPG) ListCreatedAfter(ctx context.Context, cutoff time.Time, page, limit int) (*user.Page, error) {
	q := r.db.WithContext(ctx).Model(&UserSchema{}).Where("created_at > ?", cutoff.UTC())
	return r.page(ctx, q, page, limit)
}

func (r *UserRepoPG) page(ctx context.Context, q *gorm.DB, page, limit int) (*user.Page, error) {
	result := &user.Page{Users: []user.User{}, Number: page, Size: limit}

	if err := q.Session(&gorm.Session{}).Count(&result.TotalCount).Error; err != nil {
		r.log.Error("failed to count users in db", zap.Error(err), zap.Int("page", page), zap.Int("limit", limit))
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	if limit == 0 || result.TotalCount == 0 {
		return result, nil
	}

	var models []UserSchema
	if err := q.Session(&gorm.Session{}).
		Order("id ASC").
		Offset(user.Offset(page, limit)).
		Limit(limit).
		Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err), zap.Int("page", page), zap.Int("limit", limit))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	result.Users = make([]user.User, len(models))
	for i, model := range models {
		result.Users[i] = model.toDomain()
	}

	r.log.Debug("users listed from db", zap.Int("count", len(models)), zap.Int64("total", result.TotalCount))
	return result, nil
}

// isUniqueViolation recognises duplicate-key errors from GORM's error translation
// or directly from the pgx driver.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
