package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"user-admin-service/pkg/retry"
	"user-admin-service/pkg/security"
)

// Config holds all configuration for the application
type Config struct {
	DB       DatabaseConfig
	App      AppConfig
	Retry    RetryConfig
	Password PasswordConfig
	Logger   LoggerConfig
}

// DatabaseConfig holds configuration for the database
type DatabaseConfig struct {
	Host            string `mapstructure:"DB_HOST"`
	Port            string `mapstructure:"DB_PORT"`
	User            string `mapstructure:"DB_USER"`
	Password        string `mapstructure:"DB_PASSWORD"`
	Name            string `mapstructure:"DB_NAME"`
	SSLMode         string `mapstructure:"DB_SSLMODE"`
	MaxOpenConns    int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	AutoMigrate     bool `mapstructure:"DB_AUTO_MIGRATE"`
}

// AppConfig holds configuration for the application server
type AppConfig struct {
	Environment     string `mapstructure:"APP_ENV"`
	GRPCPort        string `mapstructure:"GRPC_PORT"`
	HTTPPort        string `mapstructure:"HTTP_PORT"`
	ShutdownTimeout time.Duration
	AllowedOrigin   string `mapstructure:"CORS_ALLOWED_ORIGIN"`
}

// RetryConfig holds the backoff applied to every store operation
type RetryConfig struct {
	MaxAttempts  int `mapstructure:"RETRY_MAX_ATTEMPTS"`
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// PasswordConfig holds the password policy and hashing settings
type PasswordConfig struct {
	RestrictedSuffix string `mapstructure:"PASSWORD_RESTRICTED_SUFFIX"`
	MinLength        int    `mapstructure:"PASSWORD_MIN_LENGTH"`
	BcryptCost       int    `mapstructure:"BCRYPT_COST"`
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string  `mapstructure:"LOG_LEVEL"`
	Format           string  `mapstructure:"LOG_FORMAT"`
	OutputPath       string  `mapstructure:"LOG_OUTPUT_PATH"`
	SlowQuerySeconds float64 `mapstructure:"LOG_SLOW_QUERY_SECONDS"`
	EnableSampling   bool    `mapstructure:"LOG_ENABLE_SAMPLING"`
	ServiceName      string  `mapstructure:"SERVICE_NAME"`
	ServiceVersion   string  `mapstructure:"SERVICE_VERSION"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("app") // Look for app.env
	v.SetConfigType("env")

	v.AutomaticEnv() // Read from environment variables

	// Set defaults after AutomaticEnv so APP_ENV can pick the logger profile
	setDefaults(v)

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if we have env vars
	}

	var config Config

	// Manually populate config from viper
	config.DB.Host = v.GetString("DB_HOST")
	config.DB.Port = v.GetString("DB_PORT")
	config.DB.User = v.GetString("DB_USER")
	config.DB.Password = v.GetString("DB_PASSWORD")
	config.DB.Name = v.GetString("DB_NAME")
	config.DB.SSLMode = v.GetString("DB_SSLMODE")
	config.DB.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	config.DB.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	config.DB.ConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	config.DB.ConnMaxIdleTime = time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME_MINUTES")) * time.Minute
	config.DB.AutoMigrate = v.GetBool("DB_AUTO_MIGRATE")

	config.App.Environment = v.GetString("APP_ENV")
	config.App.GRPCPort = v.GetString("GRPC_PORT")
	config.App.HTTPPort = v.GetString("HTTP_PORT")
	config.App.ShutdownTimeout = time.Duration(v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")) * time.Second
	config.App.AllowedOrigin = v.GetString("CORS_ALLOWED_ORIGIN")

	config.Retry.MaxAttempts = v.GetInt("RETRY_MAX_ATTEMPTS")
	config.Retry.InitialDelay = time.Duration(v.GetInt("RETRY_INITIAL_DELAY_MS")) * time.Millisecond
	config.Retry.MaxDelay = time.Duration(v.GetInt("RETRY_MAX_DELAY_MS")) * time.Millisecond

	config.Password.RestrictedSuffix = v.GetString("PASSWORD_RESTRICTED_SUFFIX")
	config.Password.MinLength = v.GetInt("PASSWORD_MIN_LENGTH")
	config.Password.BcryptCost = v.GetInt("BCRYPT_COST")

	config.Logger.Level = v.GetString("LOG_LEVEL")
	config.Logger.Format = v.GetString("LOG_FORMAT")
	config.Logger.OutputPath = v.GetString("LOG_OUTPUT_PATH")
	config.Logger.SlowQuerySeconds = v.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	config.Logger.EnableSampling = v.GetBool("LOG_ENABLE_SAMPLING")
	config.Logger.ServiceName = v.GetString("SERVICE_NAME")
	config.Logger.ServiceVersion = v.GetString("SERVICE_VERSION")

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "user_administration")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME_MINUTES", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("GRPC_PORT", "50051")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 30)
	v.SetDefault("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	v.SetDefault("RETRY_MAX_ATTEMPTS", 3)
	v.SetDefault("RETRY_INITIAL_DELAY_MS", 1000)
	v.SetDefault("RETRY_MAX_DELAY_MS", 10000)

	v.SetDefault("PASSWORD_RESTRICTED_SUFFIX", security.DefaultRestrictedSuffix)
	v.SetDefault("PASSWORD_MIN_LENGTH", security.DefaultMinLength)
	v.SetDefault("BCRYPT_COST", 10)

	// Logger defaults
	env := v.GetString("APP_ENV")
	if env == "production" {
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("LOG_FORMAT", "json")
		v.SetDefault("LOG_ENABLE_SAMPLING", true)
	} else {
		v.SetDefault("LOG_LEVEL", "debug")
		v.SetDefault("LOG_FORMAT", "console")
		v.SetDefault("LOG_ENABLE_SAMPLING", false)
	}
	v.SetDefault("LOG_OUTPUT_PATH", "stdout")
	v.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	v.SetDefault("SERVICE_NAME", "user-admin-service")
	v.SetDefault("SERVICE_VERSION", "1.0.0")
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.DB.Host == "" || c.DB.Name == "" {
		errs = append(errs, errors.New("DB_HOST and DB_NAME must be set"))
	}
	if c.App.HTTPPort == "" {
		errs = append(errs, errors.New("HTTP_PORT must be set"))
	}
	if c.App.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT_SECONDS must be positive"))
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1, got %d", c.Retry.MaxAttempts))
	}
	if c.Retry.InitialDelay <= 0 {
		errs = append(errs, errors.New("RETRY_INITIAL_DELAY_MS must be positive"))
	}
	if c.Retry.MaxDelay < c.Retry.InitialDelay {
		errs = append(errs, errors.New("RETRY_MAX_DELAY_MS must not be below RETRY_INITIAL_DELAY_MS"))
	}
	if c.Password.MinLength < 1 {
		errs = append(errs, errors.New("PASSWORD_MIN_LENGTH must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// RetryPolicy converts the retry settings into an executor policy
func (c *RetryConfig) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:  uint64(c.MaxAttempts),
		InitialDelay: c.InitialDelay,
		MaxDelay:     c.MaxDelay,
	}
}

// Policy builds the password policy from the settings
func (c *PasswordConfig) Policy() security.PasswordPolicy {
	return security.NewPasswordPolicy(c.RestrictedSuffix, c.MinLength)
}

// DSN returns the PostgreSQL Data Source Name
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}
