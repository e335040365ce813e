package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestLoadConfig_Defaults
func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "http://127.0.0.1:8001", cfg.BaseURL)
	assert.False(t, cfg.MockMode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.HealthTimeout)
	assert.Equal(t, 10*time.Second, cfg.EvaluateTimeout)
	assert.Equal(t, 10*time.Second, cfg.LookupTimeout)
	assert.Equal(t, "8001", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

// TestLoadConfig_Overrides reads environment variables over defaults
func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("OTP_API_BASE_URL", "http://otp.internal:9000")
	t.Setenv("OTP_MOCK_MODE", "true")
	t.Setenv("EVALUATE_TIMEOUT", "30s")
	t.Setenv("ENVIRONMENT", "production")

	cfg := LoadConfig()

	assert.Equal(t, "http://otp.internal:9000", cfg.BaseURL)
	assert.True(t, cfg.MockMode)
	assert.Equal(t, 30*time.Second, cfg.EvaluateTimeout)
	assert.True(t, cfg.IsProduction())
}

// TestLoadConfig_InvalidValuesFallBack keeps defaults on parse failures
func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("OTP_MOCK_MODE", "not-a-bool")
	t.Setenv("HEALTH_TIMEOUT", "soon")

	cfg := LoadConfig()

	assert.False(t, cfg.MockMode)
	assert.Equal(t, 5*time.Second, cfg.HealthTimeout)
}
