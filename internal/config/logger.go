package config

import (
	"fmt"
	"slices"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "console"}
)

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	Level  string
	Format string
	// Output is stdout, stderr or a file path rotated by size.
	Output     string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// LoadLoggerConfigFromEnv loads logger configuration from environment variables.
func LoadLoggerConfigFromEnv() LoggerConfig {
	return LoggerConfig{
		Level:      GetEnv("LOG_LEVEL", "info"),
		Format:     GetEnv("LOG_FORMAT", "json"),
		Output:     GetEnv("LOG_OUTPUT", "stdout"),
		MaxSizeMB:  GetEnvInt("LOG_MAX_SIZE_MB", 100),
		MaxBackups: GetEnvInt("LOG_MAX_BACKUPS", 5),
		MaxAgeDays: GetEnvInt("LOG_MAX_AGE_DAYS", 30),
		Compress:   GetEnvBool("LOG_COMPRESS", true),
	}
}

// Validate validates logger configuration.
func (c LoggerConfig) Validate() error {
	if !slices.Contains(logLevels, c.Level) {
		return fmt.Errorf("invalid LOG_LEVEL %q (must be one of %v)", c.Level, logLevels)
	}
	if !slices.Contains(logFormats, c.Format) {
		return fmt.Errorf("invalid LOG_FORMAT %q (must be one of %v)", c.Format, logFormats)
	}
	if c.IsFile() && c.MaxSizeMB <= 0 {
		return fmt.Errorf("LOG_MAX_SIZE_MB must be greater than 0 for file output")
	}
	return nil
}

// IsProduction reports whether the production zap preset applies.
func (c LoggerConfig) IsProduction() bool {
	return c.Format == "json" && c.Level != "debug"
}

// IsFile reports whether Output names a file rather than a standard stream.
func (c LoggerConfig) IsFile() bool {
	return c.Output != "" && c.Output != "stdout" && c.Output != "stderr"
}
