package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MigrationsPath  string
}

type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	SetupToken string
}

type Config struct {
	App struct {
		Port string
	}
	Postgres PostgresConfig
	Auth     AuthConfig
}

// Load reads configuration from the environment, optionally pre-loading a
// .env file when path is non-empty. Missing required variables are an error.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{}

	cfg.App.Port = envOr("APP_PORT", "8080")

	var err error
	if cfg.Postgres.Host, err = required("DB_HOST"); err != nil {
		return nil, err
	}
	if cfg.Postgres.Port, err = required("DB_PORT"); err != nil {
		return nil, err
	}
	if cfg.Postgres.User, err = required("DB_USER"); err != nil {
		return nil, err
	}
	if cfg.Postgres.Password, err = required("DB_PASSWORD"); err != nil {
		return nil, err
	}
	if cfg.Postgres.DBName, err = required("DB_NAME"); err != nil {
		return nil, err
	}
	cfg.Postgres.SSLMode = envOr("DB_SSLMODE", "disable")
	cfg.Postgres.MigrationsPath = envOr("DB_MIGRATIONS_PATH", "migrations")

	maxConns, err := envIntOr("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	cfg.Postgres.MaxConns = int32(maxConns)

	minConns, err := envIntOr("DB_MIN_CONNS", 2)
	if err != nil {
		return nil, err
	}
	cfg.Postgres.MinConns = int32(minConns)

	lifetimeMin, err := envIntOr("DB_MAX_CONN_LIFETIME_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	cfg.Postgres.MaxConnLifetime = time.Duration(lifetimeMin) * time.Minute

	cfg.Auth.JWTSecret = envOr("AUTH_SECRET", "dev-secret-change-me")
	cfg.Auth.SetupToken = os.Getenv("AUTH_SETUP_TOKEN")

	ttlHours, err := envIntOr("AUTH_TOKEN_TTL_HOURS", 24*7)
	if err != nil {
		return nil, err
	}
	cfg.Auth.TokenTTL = time.Duration(ttlHours) * time.Hour

	return cfg, nil
}

func required(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
