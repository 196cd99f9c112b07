package infrastructure

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"user-admin-service/internal/adapter/db/postgres"
	"user-admin-service/internal/config"
	"user-admin-service/pkg/logger"
	"user-admin-service/pkg/retry"
)

// NewDatabase opens the PostgreSQL connection pool. The initial ping runs under the
// executor's retry policy so the service tolerates a database that is still starting.
func NewDatabase(ctx context.Context, cfg *config.Config, executor *retry.Executor, l *zap.Logger) (*gorm.DB, error) {
	gormLogger := logger.NewGormLogger(l, cfg.Logger.SlowQuerySeconds, cfg.Logger.Level)

	db, err := gorm.Open(pgdriver.Open(cfg.DB.DSN()), &gorm.Config{
		Logger:                 gormLogger,
		TranslateError:         true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.DB.ConnMaxIdleTime)

	err = retry.Exec(ctx, executor, retry.Operation[struct{}]{
		Name: "database_ping",
		Run: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, sqlDB.PingContext(ctx)
		},
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.DB.AutoMigrate {
		if err := db.WithContext(ctx).AutoMigrate(&postgres.UserSchema{}); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to migrate users table: %w", err)
		}
	}

	l.Info("database connected successfully",
		zap.String("host", cfg.DB.Host),
		zap.String("name", cfg.DB.Name),
		zap.Int("max_open_conns", cfg.DB.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.DB.MaxIdleConns),
		zap.Duration("conn_max_lifetime", cfg.DB.ConnMaxLifetime),
		zap.Duration("conn_max_idle_time", cfg.DB.ConnMaxIdleTime),
		zap.Bool("auto_migrate", cfg.DB.AutoMigrate),
	)

	return db, nil
}

// CloseDatabase closes the database connection
func CloseDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
