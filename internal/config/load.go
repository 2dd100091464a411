package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "TASKHUB"

// legacyEnv maps config keys to unprefixed environment variables that older
// deployments still export. Prefixed variables always win.
var legacyEnv = map[string]string{
	"database.url":                "DATABASE_URL",
	"auth.jwt_secret":             "SECRET_KEY",
	"auth.token_lifetime_minutes": "ACCESS_TOKEN_EXPIRE_MINUTES",
	"assistant.gemini_api_key":    "GEMINI_API_KEY",
}

// Load configuration from a .env file, environment variables and optionally
// a config.yaml in the working directory.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = postgresURLFromParts(v)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the struct tags on cfg.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_file", "")
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.backend", "postgres")
	v.SetDefault("database.max_open_conns", 10)

	v.SetDefault("auth.token_lifetime_minutes", 30)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("jobs.worker_count", 2)
	v.SetDefault("jobs.queue_size", 100)
	v.SetDefault("jobs.stuck_task_age_minutes", 30)
	v.SetDefault("jobs.periodic_enabled", true)
	v.SetDefault("jobs.periodic_interval", "24h")

	v.SetDefault("assistant.model_name", "gemini-2.0-flash")
	v.SetDefault("assistant.history_limit", 10)
}

// bindEnv registers keys that have no default so AutomaticEnv can see them
// during Unmarshal, along with their legacy aliases.
func bindEnv(v *viper.Viper) error {
	keys := []string{"database.url", "auth.jwt_secret", "auth.token_lifetime_minutes", "assistant.gemini_api_key"}
	for _, key := range keys {
		names := []string{key, envName(key)}
		if legacy, ok := legacyEnv[key]; ok {
			names = append(names, legacy)
		}
		if err := v.BindEnv(names...); err != nil {
			return fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	for _, part := range []string{"user", "password", "db", "host", "port"} {
		if err := v.BindEnv("postgres."+part, "POSTGRES_"+strings.ToUpper(part)); err != nil {
			return fmt.Errorf("failed to bind environment for postgres.%s: %w", part, err)
		}
	}
	return nil
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// postgresURLFromParts assembles a DSN from the POSTGRES_* variables.
// It returns an empty string when no user or database is configured.
func postgresURLFromParts(v *viper.Viper) string {
	user := v.GetString("postgres.user")
	dbName := v.GetString("postgres.db")
	if user == "" || dbName == "" {
		return ""
	}

	host := v.GetString("postgres.host")
	if host == "" {
		host = "localhost"
	}
	port := v.GetString("postgres.port")
	if port == "" {
		port = "5432"
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, v.GetString("postgres.password")),
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + dbName,
	}
	return u.String()
}
