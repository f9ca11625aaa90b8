package config

import (
	"errors"
	"os"
	"time"
)

type Config struct {
	ListenAddr  string
	DatabaseURL string
	UploadDir   string
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTExpiry   time.Duration
}

func Load() *Config {
	config := &Config{
		ListenAddr:  getEnv("LISTEN_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
		JWTSecret:   getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTIssuer:   getEnv("JWT_ISS", "scom-asset-api"),
		JWTAudience: getEnv("JWT_AUD", "scom-asset-api"),
		JWTExpiry:   24 * time.Hour, // Default to 24 hours
	}

	// Parse JWT expiry from environment if provided
	if expiryStr := os.Getenv("JWT_EXPIRY"); expiryStr != "" {
		if expiry, err := time.ParseDuration(expiryStr); err == nil {
			config.JWTExpiry = expiry
		}
	}

	return config
}

// Validate checks the configuration is usable before serving traffic.
func (c *Config) Validate() error {
	if len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	if os.Getenv("ENVIRONMENT") == "production" && c.JWTSecret == "your-secret-key-change-in-production" {
		return errors.New("JWT_SECRET must be changed from the default in production")
	}
	if c.JWTIssuer == "" {
		return errors.New("JWT_ISS is required")
	}
	if c.JWTAudience == "" {
		return errors.New("JWT_AUD is required")
	}
	if c.JWTExpiry < time.Minute {
		return errors.New("JWT_EXPIRY must be at least one minute")
	}
	if c.JWTExpiry > 30*24*time.Hour {
		return errors.New("JWT_EXPIRY must not exceed 30 days")
	}
	return nil
}

// LoadAndValidate loads the configuration and validates it in one step.
func LoadAndValidate() (*Config, error) {
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
