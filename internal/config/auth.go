package config

import (
	"errors"
	"fmt"
	"time"
)

// AuthConfig holds token, password and one-time password settings.
type AuthConfig struct {
	// JWTSecret signs bearer tokens (HS256).
	JWTSecret string
	// TokenTTL is the lifetime of session tokens.
	TokenTTL time.Duration
	// ResetTokenTTL is the lifetime of tokens issued during password reset.
	ResetTokenTTL time.Duration
	// OTPTTL is how long an emailed one-time password stays valid.
	OTPTTL time.Duration
	// BcryptCost is the bcrypt work factor.
	BcryptCost int
	// StrictIdentity requires body/query user ids to match the token subject.
	StrictIdentity bool
}

// LoadAuthConfigFromEnv loads auth configuration from environment variables.
func LoadAuthConfigFromEnv() AuthConfig {
	return AuthConfig{
		JWTSecret:      GetEnv("JWT_SECRET", ""),
		TokenTTL:       GetEnvDuration("JWT_TTL", 30*24*time.Hour),
		ResetTokenTTL:  GetEnvDuration("JWT_RESET_TTL", 5*time.Minute),
		OTPTTL:         GetEnvDuration("OTP_TTL", 5*time.Minute),
		BcryptCost:     GetEnvInt("BCRYPT_COST", 10),
		StrictIdentity: GetEnvBool("AUTH_STRICT_IDENTITY", false),
	}
}

// Validate validates auth configuration.
func (c AuthConfig) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 || c.ResetTokenTTL <= 0 {
		return errors.New("token TTLs must be greater than 0")
	}
	if c.OTPTTL <= 0 {
		return errors.New("OTP_TTL must be greater than 0")
	}
	// bcrypt accepts costs in [4, 31].
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("invalid BCRYPT_COST: %d (must be between 4 and 31)", c.BcryptCost)
	}
	return nil
}
