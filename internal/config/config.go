package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	Jobs      JobsConfig      `mapstructure:"jobs" validate:"required"`
	Assistant AssistantConfig `mapstructure:"assistant"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// LogFile enables a daily-rotated log file in addition to stdout when set.
	LogFile                string `mapstructure:"log_file"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Backend selects the storage implementation. "memory" keeps everything
	// in process and is intended for local experiments and tests.
	Backend      string `mapstructure:"backend" validate:"required,oneof=postgres memory"`
	URL          string `mapstructure:"url" validate:"required_if=Backend postgres"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gt=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BCryptCost           int    `mapstructure:"bcrypt_cost" validate:"min=4,max=31"`
}

// TokenLifetime returns the configured access token window.
func (c AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMinutes) * time.Minute
}

// JobsConfig contains background job processing settings.
type JobsConfig struct {
	WorkerCount         int           `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize           int           `mapstructure:"queue_size" validate:"gt=0"`
	StuckTaskAgeMinutes int           `mapstructure:"stuck_task_age_minutes" validate:"gt=0"`
	PeriodicEnabled     bool          `mapstructure:"periodic_enabled"`
	PeriodicInterval    time.Duration `mapstructure:"periodic_interval" validate:"gt=0"`
}

// AssistantConfig contains chat assistant settings.
// An empty GeminiAPIKey selects the canned responder.
type AssistantConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	ModelName    string `mapstructure:"model_name"`
	HistoryLimit int    `mapstructure:"history_limit" validate:"gt=0"`
}
