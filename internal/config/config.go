// Package config loads application configuration from environment variables.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Server holds HTTP server configuration.
	Server ServerConfig
	// Logger holds logger configuration.
	Logger LoggerConfig
	// Auth holds token, password and OTP settings.
	Auth AuthConfig
	// Redis holds the optional Redis connection used for events, rate limiting and OAuth state.
	Redis RedisConfig
	// OAuth holds Google sign-in settings.
	OAuth OAuthConfig
	// Upload holds profile picture storage settings.
	Upload UploadConfig
	// Mail holds outgoing SMTP settings.
	Mail MailConfig
	// RateLimit holds per-client request limits.
	RateLimit RateLimitConfig
	// CORS holds cross-origin settings.
	CORS CORSConfig
	// GinMode is the Gin framework mode (debug, release, test).
	GinMode string
	// RunMigrations applies SQL migrations on startup when true.
	RunMigrations bool
}

// LoadFromEnv loads all configuration from environment variables.
// A .env file in the working directory is read first when present;
// variables already set in the environment take precedence.
func LoadFromEnv() Config {
	_ = godotenv.Load()

	return Config{
		Server:        LoadServerConfigFromEnv(),
		Logger:        LoadLoggerConfigFromEnv(),
		Auth:          LoadAuthConfigFromEnv(),
		Redis:         LoadRedisConfigFromEnv(),
		OAuth:         LoadOAuthConfigFromEnv(),
		Upload:        LoadUploadConfigFromEnv(),
		Mail:          LoadMailConfigFromEnv(),
		RateLimit:     LoadRateLimitConfigFromEnv(),
		CORS:          LoadCORSConfigFromEnv(),
		GinMode:       GetEnv("GIN_MODE", "release"),
		RunMigrations: GetEnvBool("DB_RUN_MIGRATIONS", false),
	}
}

// Validate validates all configuration.
func (c Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := c.Logger.Validate(); err != nil {
		return fmt.Errorf("logger config validation failed: %w", err)
	}

	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth config validation failed: %w", err)
	}

	if err := c.Upload.Validate(); err != nil {
		return fmt.Errorf("upload config validation failed: %w", err)
	}

	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate limit config validation failed: %w", err)
	}

	validGinModes := map[string]bool{
		"debug":   true,
		"release": true,
		"test":    true,
	}
	if !validGinModes[c.GinMode] {
		return fmt.Errorf("invalid GIN_MODE: %s (must be: debug, release, test)", c.GinMode)
	}

	return nil
}
