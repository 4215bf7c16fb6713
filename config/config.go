// Package config resolves CLI settings from flags, environment variables,
// and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvSeed      = "LIBRARY_SEED"
	EnvNoSamples = "LIBRARY_NO_SAMPLES"
	EnvExport    = "LIBRARY_EXPORT"
	EnvLogLevel  = "LIBRARY_LOG_LEVEL"
	EnvLogFormat = "LIBRARY_LOG_FORMAT"
)

// Config holds the application configuration.
type Config struct {
	Catalog CatalogConfig
	Logger  LoggerConfig
}

// CatalogConfig controls how the catalog is stocked and exported.
type CatalogConfig struct {
	SeedPath   string
	NoSamples  bool
	ExportPath string // empty disables export
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Format string
}

// Flags carries raw command-line values. Empty strings mean "not given".
type Flags struct {
	EnvFile   string
	Seed      string
	NoSamples string
	Export    string
	LogLevel  string
	LogFormat string
}

// Load resolves configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(f Flags) (*Config, error) {
	envFile := f.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv.Load never overrides variables already in the environment.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	cfg := &Config{
		Catalog: CatalogConfig{
			SeedPath:   getConfigValue(f.Seed, EnvSeed, ""),
			NoSamples:  getBoolConfigValue(f.NoSamples, EnvNoSamples, false),
			ExportPath: getConfigValue(f.Export, EnvExport, ""),
		},
		Logger: LoggerConfig{
			Level:  getConfigValue(f.LogLevel, EnvLogLevel, "warn"),
			Format: getConfigValue(f.LogFormat, EnvLogFormat, "text"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logger.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", c.Logger.Format)
	}
	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logger.Level)
	}
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1", "yes" (case-insensitive) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}
