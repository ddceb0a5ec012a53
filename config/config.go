// Package config provides configuration management for the portfolio backend.
// It handles loading and validation of configuration values from environment variables,
// with support for required variables, default values, and collective error reporting.
// The resulting AppConfig is built once at start-up and handed to constructors; nothing
// below the main package reads the environment directly.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment tags recognised by APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Supported DB_DRIVER values.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// PoolConfig represents configuration for the Postgres connection pool.
type PoolConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxSize  int
}

// DatabaseConfig selects the store backend.
type DatabaseConfig struct {
	Driver     string
	Postgres   *PoolConfig
	SQLitePath string
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	JWTSecret     string        // Secret key for signing JWTs
	TokenDuration time.Duration // Lifetime of issued tokens
	LookupTimeout time.Duration // Bound on the identity lookup while authenticating
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	Env      string
	Database *DatabaseConfig
	Auth     *AuthConfig
	Server   *ServerConfig
}

// IsProduction reports whether internal failure detail must be hidden from clients.
func (c *AppConfig) IsProduction() bool {
	return c.Env == EnvProduction
}

// Helper function to get a required environment variable.
// Appends an error to the errors slice if the variable is not set or empty.
func getRequiredEnv(key string, errors *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errors = append(*errors, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

// Helper function to get an optional environment variable with a default string value.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// Helper function to get an optional environment variable parsed as an int.
func getOptionalEnvInt(key string, defaultValue int, errors *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// Helper function to get an optional environment variable parsed as time.Duration.
// `time.ParseDuration` expects a string like "15m", "720h".
func getOptionalEnvDuration(key string, defaultValue time.Duration, errors *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	if valueDuration <= 0 {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: duration must be positive, got '%s'", key, valueStr))
		return defaultValue
	}
	return valueDuration
}

// clampPoolSize keeps the pool size between 5 and 100.
func clampPoolSize(size int) int {
	if size < 5 {
		return 5
	}
	if size > 100 {
		return 100
	}
	return size
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadConfig creates and returns an AppConfig by reading and validating environment variables.
// It collects all errors encountered during loading and returns a single error if any exist.
func LoadConfig() (*AppConfig, error) {
	var errors []string

	env := getOptionalEnv("APP_ENV", EnvDevelopment)
	if env != EnvDevelopment && env != EnvProduction {
		errors = append(errors, fmt.Sprintf("invalid value for APP_ENV: expected %q or %q, got '%s'", EnvDevelopment, EnvProduction, env))
	}

	// Database Configuration
	dbConfig := &DatabaseConfig{
		Driver:     getOptionalEnv("DB_DRIVER", DriverPostgres),
		SQLitePath: getOptionalEnv("SQLITE_PATH", "portfolio.db"),
	}
	switch dbConfig.Driver {
	case DriverPostgres:
		dbConfig.Postgres = &PoolConfig{
			Host:     getOptionalEnv("DB_HOST", "localhost"),
			Port:     getOptionalEnvInt("DB_PORT", 5432, &errors),
			User:     getRequiredEnv("DB_USER", &errors),
			Password: getRequiredEnv("DB_PASSWORD", &errors),
			DBName:   getRequiredEnv("DB_NAME", &errors),
			MaxSize:  clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errors)),
		}
	case DriverSQLite:
	default:
		errors = append(errors, fmt.Sprintf("invalid value for DB_DRIVER: expected %q or %q, got '%s'", DriverPostgres, DriverSQLite, dbConfig.Driver))
	}

	// Auth Configuration
	authConfig := &AuthConfig{
		JWTSecret:     getRequiredEnv("JWT_SECRET", &errors),
		TokenDuration: getOptionalEnvDuration("JWT_TOKEN_TTL", 30*24*time.Hour, &errors),
		LookupTimeout: getOptionalEnvDuration("AUTH_LOOKUP_TIMEOUT", 5*time.Second, &errors),
	}

	// Server Configuration
	serverConfig := &ServerConfig{
		Port:           getOptionalEnv("PORT", "5000"),
		AllowedOrigins: splitList(getOptionalEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return &AppConfig{
		Env:      env,
		Database: dbConfig,
		Auth:     authConfig,
		Server:   serverConfig,
	}, nil
}
