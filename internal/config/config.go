package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port    string
	SiteURL string

	// Database configuration
	DBType            string // postgres, mysql, mariadb, sqlite, sqlite-pure, sqlserver
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// Authorizer configuration
	AuthzURL      string
	AuthzClientID string

	// Browser session configuration
	SessionSecret string
	SessionTTL    time.Duration
	// SessionSecretGenerated is set when SESSION_SECRET was empty and a random one was made.
	SessionSecretGenerated bool

	// Admin bootstrap
	AdminBootstrapToken string

	// Cache configuration
	CacheRedisURL    string
	SettingsCacheTTL time.Duration
	ProjectsCacheTTL time.Duration

	// Logging
	LogLevel  string
	LogFormat string // text, json

	// Rate limiting for sign-in, claim, bootstrap and analytics
	RateLimitRPS   int
	RateLimitBurst int
}

// Load loads configuration from an optional env file and the environment.
// Missing backend configuration is not an error here; see Ready.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
	}

	dbType := getEnv("DB_TYPE", "postgres")
	cfg := &Config{
		Port:                getEnv("PORT", "3000"),
		SiteURL:             getEnv("SITE_URL", "http://localhost:3000"),
		DBType:              dbType,
		DBHost:              getEnv("DB_HOST", ""),
		DBPort:              getEnv("DB_PORT", defaultPort(dbType)),
		DBDatabase:          getEnv("DB_DATABASE", ""),
		DBUser:              getEnv("DB_USER", ""),
		DBPassword:          getEnv("DB_PASSWORD", ""),
		AuthzURL:            getEnv("AUTHZ_URL", ""),
		AuthzClientID:       getEnv("AUTHZ_CLIENT_ID", ""),
		SessionSecret:       getEnv("SESSION_SECRET", ""),
		AdminBootstrapToken: getEnv("ADMIN_BOOTSTRAP_TOKEN", ""),
		CacheRedisURL:       getEnv("CACHE_REDIS_URL", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.DBConnectionLimit, err = getEnvAsInt("DB_CONNECTION_LIMIT", 5); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = getEnvAsInt("RATE_LIMIT_RPS", 5); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getEnvAsInt("RATE_LIMIT_BURST", 10); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getEnvAsDuration("SESSION_TTL", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SettingsCacheTTL, err = getEnvAsDuration("SETTINGS_CACHE_TTL", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.ProjectsCacheTTL, err = getEnvAsDuration("PROJECTS_CACHE_TTL", 30*time.Second); err != nil {
		return nil, err
	}

	if cfg.SessionSecret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		cfg.SessionSecret = hex.EncodeToString(buf)
		cfg.SessionSecretGenerated = true
	}

	return cfg, nil
}

// Networked reports whether the configured database is reached over the network.
func (c *Config) Networked() bool {
	switch c.DBType {
	case "sqlite", "sqlite-pure":
		return false
	}
	return true
}

// MissingKeys names the required settings that are empty.
func (c *Config) MissingKeys() []string {
	var missing []string
	if c.DBDatabase == "" {
		missing = append(missing, "DB_DATABASE")
	}
	if c.Networked() && c.DBHost == "" {
		missing = append(missing, "DB_HOST")
	}
	if c.AuthzURL == "" {
		missing = append(missing, "AUTHZ_URL")
	}
	if c.AuthzClientID == "" {
		missing = append(missing, "AUTHZ_CLIENT_ID")
	}
	return missing
}

// Ready is true when the backend endpoint and the public credential pair are set.
func (c *Config) Ready() bool {
	return c != nil && len(c.MissingKeys()) == 0
}

func defaultPort(dbType string) string {
	switch dbType {
	case "mysql", "mariadb":
		return "3306"
	case "sqlserver", "mssql":
		return "1433"
	case "postgres", "postgresql":
		return "5432"
	}
	return ""
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}

// getEnvAsDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
