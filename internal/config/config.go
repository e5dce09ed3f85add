// Package config loads CLI settings from the environment.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the settings the timefilter command needs.
type Config struct {
	Env                string
	AppID              string
	APIKey             string
	EnableLogging      bool
	EnableTracing      bool
	RaiseOnFailure     bool
	DecodeBinaryErrors bool
	HTTPTimeout        time.Duration
	RateLimit          float64
	RateBurst          int
}

// Load reads configuration from environment variables with sensible
// defaults. A .env file in the working directory is loaded first if present;
// variables already set in the environment win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:                getEnv("APP_ENV", "development"),
		AppID:              getEnv("TRAVELTIME_APP_ID", ""),
		APIKey:             getEnv("TRAVELTIME_API_KEY", ""),
		EnableLogging:      getBoolEnv("TRAVELTIME_ENABLE_LOGGING", false),
		EnableTracing:      getBoolEnv("TRAVELTIME_ENABLE_TRACING", false),
		RaiseOnFailure:     getBoolEnv("TRAVELTIME_RAISE_ON_FAILURE", true),
		DecodeBinaryErrors: getBoolEnv("TRAVELTIME_DECODE_BINARY_ERRORS", false),
		HTTPTimeout:        getDurationEnv("TRAVELTIME_HTTP_TIMEOUT", 30*time.Second),
		RateLimit:          getFloatEnv("TRAVELTIME_RATE_LIMIT", 0),
		RateBurst:          getIntEnv("TRAVELTIME_RATE_BURST", 1),
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	var errs []error
	if c.AppID == "" {
		errs = append(errs, errors.New("TRAVELTIME_APP_ID is required"))
	}
	if c.APIKey == "" {
		errs = append(errs, errors.New("TRAVELTIME_API_KEY is required"))
	}
	if c.RateLimit < 0 {
		errs = append(errs, errors.New("TRAVELTIME_RATE_LIMIT must not be negative"))
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		errs = append(errs, errors.New("TRAVELTIME_RATE_BURST must be at least 1 when a rate limit is set"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv accepts Go durations ("5s") or a bare number of seconds.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if i, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return i
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultValue
}
