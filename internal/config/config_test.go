package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-admin-service/pkg/retry"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.HTTPPort)
	assert.Equal(t, "50051", cfg.App.GRPCPort)
	assert.Equal(t, "http://localhost:3000", cfg.App.AllowedOrigin)
	assert.Equal(t, 30*time.Second, cfg.App.ShutdownTimeout)
	assert.Equal(t, retry.DefaultPolicy(), cfg.Retry.RetryPolicy())
	assert.Equal(t, "example.com", cfg.Password.RestrictedSuffix)
	assert.Equal(t, 12, cfg.Password.MinLength)
	assert.Equal(t, 10, cfg.Password.BcryptCost)
	assert.Equal(t, "user-admin-service", cfg.Logger.ServiceName)
	assert.Equal(t, "console", cfg.Logger.Format)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("RETRY_INITIAL_DELAY_MS", "50")
	t.Setenv("RETRY_MAX_DELAY_MS", "400")
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.HTTPPort)
	assert.Equal(t, retry.Policy{MaxAttempts: 5, InitialDelay: 50 * time.Millisecond, MaxDelay: 400 * time.Millisecond}, cfg.Retry.RetryPolicy())
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.True(t, cfg.Logger.EnableSampling)
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := "DB_NAME=users_from_file\nPASSWORD_MIN_LENGTH=16\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "users_from_file", cfg.DB.Name)
	assert.Equal(t, 16, cfg.Password.Policy().MinLength)
	assert.Contains(t, cfg.DB.DSN(), "dbname=users_from_file")
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("RETRY_MAX_ATTEMPTS", "0")

	cfg, err := LoadConfig(t.TempDir())
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "RETRY_MAX_ATTEMPTS")
}

func TestValidate_MaxDelayBelowInitial(t *testing.T) {
	cfg := &Config{
		DB:       DatabaseConfig{Host: "localhost", Name: "db"},
		App:      AppConfig{HTTPPort: "8080", ShutdownTimeout: time.Second},
		Retry:    RetryConfig{MaxAttempts: 3, InitialDelay: time.Second, MaxDelay: time.Millisecond},
		Password: PasswordConfig{MinLength: 12},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RETRY_MAX_DELAY_MS")
}
