package config

import (
	"errors"
	"time"
)

// RedisConfig holds the optional Redis connection.
type RedisConfig struct {
	// Addr is host:port; empty disables Redis.
	Addr     string
	Password string
	DB       int
	// Channel is the pub/sub channel carrying team events between instances.
	Channel string
}

// LoadRedisConfigFromEnv loads Redis configuration from environment variables.
func LoadRedisConfigFromEnv() RedisConfig {
	return RedisConfig{
		Addr:     GetEnv("REDIS_ADDR", ""),
		Password: GetEnv("REDIS_PASSWORD", ""),
		DB:       GetEnvInt("REDIS_DB", 0),
		Channel:  GetEnv("REDIS_EVENTS_CHANNEL", "team-events"),
	}
}

// Enabled reports whether a Redis address is configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// OAuthConfig holds Google sign-in settings.
type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	// FrontendURL receives the issued token after a successful sign-in.
	FrontendURL string
	// StateTTL bounds the time between redirect and callback.
	StateTTL time.Duration
}

// LoadOAuthConfigFromEnv loads OAuth configuration from environment variables.
func LoadOAuthConfigFromEnv() OAuthConfig {
	return OAuthConfig{
		GoogleClientID:     GetEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: GetEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  GetEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/v1/auth/google/callback"),
		FrontendURL:        GetEnv("FRONTEND_URL", "http://localhost:3000"),
		StateTTL:           GetEnvDuration("OAUTH_STATE_TTL", 10*time.Minute),
	}
}

// Enabled reports whether Google sign-in is configured.
func (c OAuthConfig) Enabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// UploadConfig holds profile picture storage settings.
type UploadConfig struct {
	Dir string
	// MaxSize is the largest accepted upload in bytes.
	MaxSize int64
}

// LoadUploadConfigFromEnv loads upload configuration from environment variables.
func LoadUploadConfigFromEnv() UploadConfig {
	return UploadConfig{
		Dir:     GetEnv("UPLOAD_DIR", "uploads"),
		MaxSize: GetEnvInt64("UPLOAD_MAX_SIZE", 10<<20),
	}
}

// Validate validates upload configuration.
func (c UploadConfig) Validate() error {
	if c.Dir == "" {
		return errors.New("UPLOAD_DIR is required")
	}
	if c.MaxSize <= 0 {
		return errors.New("UPLOAD_MAX_SIZE must be greater than 0")
	}
	return nil
}

// MailConfig holds outgoing SMTP settings. An empty Host logs mail instead of sending it.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// LoadMailConfigFromEnv loads mail configuration from environment variables.
func LoadMailConfigFromEnv() MailConfig {
	return MailConfig{
		Host:     GetEnv("SMTP_HOST", ""),
		Port:     GetEnvInt("SMTP_PORT", 587),
		Username: GetEnv("SMTP_USERNAME", ""),
		Password: GetEnv("SMTP_PASSWORD", ""),
		From:     GetEnv("SMTP_FROM", "no-reply@localhost"),
	}
}

// Enabled reports whether an SMTP host is configured.
func (c MailConfig) Enabled() bool {
	return c.Host != ""
}

// RateLimitConfig holds fixed-window request limits per client.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// LoadRateLimitConfigFromEnv loads rate limit configuration from environment variables.
func LoadRateLimitConfigFromEnv() RateLimitConfig {
	return RateLimitConfig{
		Requests: GetEnvInt("RATE_LIMIT_REQUESTS", 100),
		Window:   GetEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
	}
}

// Validate validates rate limit configuration.
func (c RateLimitConfig) Validate() error {
	if c.Requests <= 0 {
		return errors.New("RATE_LIMIT_REQUESTS must be greater than 0")
	}
	if c.Window <= 0 {
		return errors.New("RATE_LIMIT_WINDOW must be greater than 0")
	}
	return nil
}

// CORSConfig holds cross-origin settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// LoadCORSConfigFromEnv loads CORS configuration from environment variables.
func LoadCORSConfigFromEnv() CORSConfig {
	return CORSConfig{
		AllowedOrigins: GetEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}
}
