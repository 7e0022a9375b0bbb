package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the application configuration loaded at startup
type Config struct {
	Port        string
	Environment string // "development" or "production"

	// Persistence
	UseMemoryStore bool // bookings/offers in memory instead of Postgres

	// Shared ephemeral store; empty RedisAddr selects in-process stores
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Secrets
	CSRFSecret string
	OTPSalt    string

	// Twilio (optional; console notifier is used when unset)
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:        "8080", // default port
		Environment: "development",
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		cfg.Environment = env
	}

	cfg.UseMemoryStore = os.Getenv("USE_MEMORY_STORE") == "true"

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if db := os.Getenv("REDIS_DB"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB value %q: %w", db, err)
		}
		cfg.RedisDB = n
	}

	cfg.CSRFSecret = os.Getenv("CSRF_SECRET")
	if cfg.CSRFSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("CSRF_SECRET environment variable is required in production")
		}
		cfg.CSRFSecret = "dev-csrf-secret-do-not-use-in-prod"
	}

	cfg.OTPSalt = os.Getenv("OTP_SALT")
	if cfg.OTPSalt == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("OTP_SALT environment variable is required in production")
		}
		cfg.OTPSalt = "dev-otp-salt"
	}

	cfg.TwilioAccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	cfg.TwilioAuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	cfg.TwilioFrom = os.Getenv("TWILIO_PHONE_NUMBER")

	return cfg, nil
}

// IsProduction reports whether the service runs with production hardening
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
