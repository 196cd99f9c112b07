package di

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-admin-service/cmd/api/infrastructure"
	"user-admin-service/internal/adapter/db/postgres"
	ginhandler "user-admin-service/internal/adapter/gin/handler"
	"user-admin-service/internal/config"
	"user-admin-service/internal/usecase/user"
	"user-admin-service/pkg/retry"
	"user-admin-service/pkg/security"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	DB         *gorm.DB
	Executor   *retry.Executor
	UserUC     user.UserUsecase
	GinHandler *ginhandler.UserHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	executor := retry.NewExecutor(cfg.Retry.RetryPolicy(), l.Named("retry"))

	db, err := infrastructure.NewDatabase(ctx, cfg, executor, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return Build(cfg, l, db, executor), nil
}

// Build wires the repository, use case and handler on top of an open database
func Build(cfg *config.Config, l *zap.Logger, db *gorm.DB, executor *retry.Executor) *Container {
	repo := postgres.NewUserRepoPG(db, l.Named("repository"))

	userUC := user.New(
		repo,
		security.NewBcryptHasher(cfg.Password.BcryptCost),
		cfg.Password.Policy(),
		executor,
		l.Named("usecase"),
	)

	return &Container{
		Config:     cfg,
		Logger:     l,
		DB:         db,
		Executor:   executor,
		UserUC:     userUC,
		GinHandler: ginhandler.NewUserHandler(userUC, l.Named("handler")),
	}
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
