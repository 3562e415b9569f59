package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application. It is built
// once at startup and passed by reference; nothing mutates it afterwards.
type Config struct {
	Port         string
	Environment  string
	LogLevel     string
	ClientOrigin string

	DatabaseURL string
	RedisURL    string

	// Signing secrets, one per token kind.
	AccessTokenSecret       string
	RefreshTokenSecret      string
	VerificationTokenSecret string
	ResetTokenSecret        string

	// Token lifetimes in days.
	AccessTokenExpirationDays  int
	RefreshTokenExpirationDays int

	// Static reset value mailed by the forgot-password flow and accepted as
	// a master override at login. See the SECURITY section of the README.
	ResetPassword string

	ResendAPIKey string
	MailFrom     string

	GoogleClientID string

	// When true, signup issues a verification code instead of creating the
	// account immediately.
	VerifyFirstSignup bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:                       getEnv("PORT", "8080"),
		Environment:                getEnv("ENVIRONMENT", "development"),
		LogLevel:                   getEnv("LOG_LEVEL", "info"),
		ClientOrigin:               getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		DatabaseURL:                getEnv("DATABASE_URL", ""),
		RedisURL:                   getEnv("REDIS_URL", ""),
		AccessTokenSecret:          getEnv("ACCESS_TOKEN_SECRET", ""),
		RefreshTokenSecret:         getEnv("REFRESH_TOKEN_SECRET", ""),
		VerificationTokenSecret:    getEnv("VERIFICATION_TOKEN_SECRET", ""),
		ResetTokenSecret:           getEnv("RESET_TOKEN_SECRET", ""),
		AccessTokenExpirationDays:  getIntEnv("ACCESS_TOKEN_EXPIRATION", 1),
		RefreshTokenExpirationDays: getIntEnv("REFRESH_TOKEN_EXPIRATION", 5),
		ResetPassword:              getEnv("RESET_PASSWORD", ""),
		ResendAPIKey:               getEnv("RESEND_API_KEY", ""),
		MailFrom:                   getEnv("MAIL_FROM", "Flowva <no-reply@flowva.app>"),
		GoogleClientID:             getEnv("GOOGLE_CLIENT_ID", ""),
		VerifyFirstSignup:          getBoolEnv("VERIFY_FIRST_SIGNUP", false),
	}

	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return nil, fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set")
	}

	return cfg, nil
}

// IsProduction reports whether the server runs with production cookie rules.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
