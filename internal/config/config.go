package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// EnvFilePath names the variable holding the .env file location.
	EnvFilePath = "ENV_PATH"

	// DefaultEnvFilePath is used when ENV_PATH is not set.
	DefaultEnvFilePath = ".env"
)

// Supported values for DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds all application configuration.
type Config struct {
	AppPort         string
	Database        DatabaseConfig
	Log             LogConfig
	Auth            AuthConfig
	RabbitMQ        RabbitMQConfig
	MetricsEnabled  bool
	SeedProducts    bool
	ShutdownTimeout time.Duration
}

// DatabaseConfig selects the product store.
type DatabaseConfig struct {
	Driver   string
	DSN      string
	LogLevel string
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig configures JWT protection of the product routes.
type AuthConfig struct {
	Enabled   bool
	JWTSecret string
	TokenTTL  time.Duration
}

// RabbitMQConfig configures product event publishing. An empty URL disables it.
type RabbitMQConfig struct {
	URL     string
	Queue   string
	Consume bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "catalog.db")
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "product_events")
	v.SetDefault("RABBITMQ_CONSUME", false)
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("SEED_PRODUCTS", false)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
}

// Load reads the optional .env file, then resolves configuration from the
// environment with viper, falling back to defaults.
func Load() (*Config, error) {
	envPath := os.Getenv(EnvFilePath)
	if envPath == "" {
		envPath = DefaultEnvFilePath
	}
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file %s: %w", envPath, err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		AppPort: v.GetString("APP_PORT"),
		Database: DatabaseConfig{
			Driver:   v.GetString("DB_DRIVER"),
			DSN:      v.GetString("DATABASE_DSN"),
			LogLevel: v.GetString("DB_LOG_LEVEL"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Auth: AuthConfig{
			Enabled:   v.GetBool("AUTH_ENABLED"),
			JWTSecret: v.GetString("JWT_SECRET"),
			TokenTTL:  v.GetDuration("JWT_TTL"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:     v.GetString("RABBITMQ_URL"),
			Queue:   v.GetString("RABBITMQ_QUEUE"),
			Consume: v.GetBool("RABBITMQ_CONSUME"),
		},
		MetricsEnabled:  v.GetBool("METRICS_ENABLED"),
		SeedProducts:    v.GetBool("SEED_PRODUCTS"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.AppPort == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
		if c.Database.DSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for driver %s", c.Database.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	if c.Auth.Enabled {
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_ENABLED is set")
		}
		if c.Auth.TokenTTL <= 0 {
			return fmt.Errorf("JWT_TTL must be positive, got %s", c.Auth.TokenTTL)
		}
		if c.Database.Driver == DriverMemory {
			return fmt.Errorf("AUTH_ENABLED requires a SQL database driver")
		}
	}

	if c.RabbitMQ.URL != "" && c.RabbitMQ.Queue == "" {
		return fmt.Errorf("RABBITMQ_QUEUE is required when RABBITMQ_URL is set")
	}

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}
