package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	os.Unsetenv("LISTEN_ADDR")
	os.Unsetenv("UPLOAD_DIR")
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("JWT_ISS")
	os.Unsetenv("JWT_AUD")
	os.Unsetenv("JWT_EXPIRY")

	cfg := Load()

	if cfg.ListenAddr != ":8080" {
		t.Errorf("Expected default LISTEN_ADDR, got %s", cfg.ListenAddr)
	}
	if cfg.UploadDir != "uploads" {
		t.Errorf("Expected default UPLOAD_DIR, got %s", cfg.UploadDir)
	}
	if cfg.JWTSecret != "your-secret-key-change-in-production" {
		t.Errorf("Expected default JWT_SECRET, got %s", cfg.JWTSecret)
	}
	if cfg.JWTIssuer != "scom-asset-api" {
		t.Errorf("Expected default JWT_ISS, got %s", cfg.JWTIssuer)
	}
	if cfg.JWTAudience != "scom-asset-api" {
		t.Errorf("Expected default JWT_AUD, got %s", cfg.JWTAudience)
	}
	if cfg.JWTExpiry != 24*time.Hour {
		t.Errorf("Expected default JWT_EXPIRY, got %v", cfg.JWTExpiry)
	}
}

func TestLoadWithEnvironment(t *testing.T) {
	os.Setenv("LISTEN_ADDR", ":9090")
	os.Setenv("UPLOAD_DIR", "/var/lib/scom/uploads")
	os.Setenv("JWT_SECRET", "test-secret-key")
	os.Setenv("JWT_ISS", "test-issuer")
	os.Setenv("JWT_AUD", "test-audience")
	os.Setenv("JWT_EXPIRY", "2h")

	cfg := Load()

	if cfg.ListenAddr != ":9090" {
		t.Errorf("Expected LISTEN_ADDR from env, got %s", cfg.ListenAddr)
	}
	if cfg.UploadDir != "/var/lib/scom/uploads" {
		t.Errorf("Expected UPLOAD_DIR from env, got %s", cfg.UploadDir)
	}
	if cfg.JWTSecret != "test-secret-key" {
		t.Errorf("Expected JWT_SECRET from env, got %s", cfg.JWTSecret)
	}
	if cfg.JWTIssuer != "test-issuer" {
		t.Errorf("Expected JWT_ISS from env, got %s", cfg.JWTIssuer)
	}
	if cfg.JWTAudience != "test-audience" {
		t.Errorf("Expected JWT_AUD from env, got %s", cfg.JWTAudience)
	}
	if cfg.JWTExpiry != 2*time.Hour {
		t.Errorf("Expected JWT_EXPIRY from env, got %v", cfg.JWTExpiry)
	}

	os.Unsetenv("LISTEN_ADDR")
	os.Unsetenv("UPLOAD_DIR")
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("JWT_ISS")
	os.Unsetenv("JWT_AUD")
	os.Unsetenv("JWT_EXPIRY")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		expectError bool
	}{
		{
			name: "valid config",
			config: &Config{
				JWTSecret:   "valid-secret-that-is-long-enough-for-testing",
				JWTIssuer:   "test-issuer",
				JWTAudience: "test-audience",
				JWTExpiry:   time.Hour,
			},
			expectError: false,
		},
		{
			name: "empty secret",
			config: &Config{
				JWTSecret:   "",
				JWTIssuer:   "test-issuer",
				JWTAudience: "test-audience",
				JWTExpiry:   time.Hour,
			},
			expectError: true,
		},
		{
			name: "secret too short",
			config: &Config{
				JWTSecret:   "short",
				JWTIssuer:   "test-issuer",
				JWTAudience: "test-audience",
				JWTExpiry:   time.Hour,
			},
			expectError: true,
		},
		{
			name: "empty issuer",
			config: &Config{
				JWTSecret:   "valid-secret-that-is-long-enough-for-testing",
				JWTIssuer:   "",
				JWTAudience: "test-audience",
				JWTExpiry:   time.Hour,
			},
			expectError: true,
		},
		{
			name: "empty audience",
			config: &Config{
				JWTSecret:   "valid-secret-that-is-long-enough-for-testing",
				JWTIssuer:   "test-issuer",
				JWTAudience: "",
				JWTExpiry:   time.Hour,
			},
			expectError: true,
		},
		{
			name: "negative expiry",
			config: &Config{
				JWTSecret:   "valid-secret-that-is-long-enough-for-testing",
				JWTIssuer:   "test-issuer",
				JWTAudience: "test-audience",
				JWTExpiry:   -time.Hour,
			},
			expectError: true,
		},
		{
			name: "zero expiry",
			config: &Config{
				JWTSecret:   "valid-secret-that-is-long-enough-for-testing",
				JWTIssuer:   "test-issuer",
				JWTAudience: "test-audience",
				JWTExpiry:   0,
			},
			expectError: true,
		},
		{
			name: "expiry too short",
			config: &Config{
				JWTSecret:   "valid-secret-that-is-long-enough-for-testing",
				JWTIssuer:   "test-issuer",
				JWTAudience: "test-audience",
				JWTExpiry:   30 * time.Second,
			},
			expectError: true,
		},
		{
			name: "expiry too long",
			config: &Config{
				JWTSecret:   "valid-secret-that-is-long-enough-for-testing",
				JWTIssuer:   "test-issuer",
				JWTAudience: "test-audience",
				JWTExpiry:   31 * 24 * time.Hour,
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.expectError {
				t.Errorf("Validate() error = %v, expectError %v", err, tt.expectError)
			}
		})
	}
}

func TestLoadAndValidate(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-key-that-is-long-enough-for-testing")
	os.Setenv("JWT_ISS", "test-issuer")
	os.Setenv("JWT_AUD", "test-audience")
	os.Setenv("JWT_EXPIRY", "1h")

	cfg, err := LoadAndValidate()
	if err != nil {
		t.Errorf("LoadAndValidate() failed with valid config: %v", err)
	}
	if cfg == nil {
		t.Error("LoadAndValidate() returned nil config with valid config")
	}

	os.Setenv("JWT_SECRET", "short")

	_, err = LoadAndValidate()
	if err == nil {
		t.Error("LoadAndValidate() should fail with invalid config")
	}

	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("JWT_ISS")
	os.Unsetenv("JWT_AUD")
	os.Unsetenv("JWT_EXPIRY")
}

func TestProductionSecretValidation(t *testing.T) {
	os.Setenv("ENVIRONMENT", "production")
	os.Setenv("JWT_SECRET", "your-secret-key-change-in-production")

	cfg := Load()
	if err := cfg.Validate(); err == nil {
		t.Error("Production validation should fail with default secret")
	}

	os.Setenv("JWT_SECRET", "proper-production-secret-that-is-long-enough")

	cfg = Load()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Production validation should pass with proper secret: %v", err)
	}

	os.Unsetenv("ENVIRONMENT")
	os.Unsetenv("JWT_SECRET")
}
