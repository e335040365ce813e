package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"promise-console/internal/utils"
)

// Config holds all configuration for the application
type Config struct {
	BaseURL         string
	MockMode        bool
	LogLevel        string
	Environment     string
	AuditDBPath     string
	ScenarioPath    string
	HealthTimeout   time.Duration
	EvaluateTimeout time.Duration
	LookupTimeout   time.Duration
	Port            string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() *Config {
	// Load .env file if it exists; existing environment variables win.
	err := godotenv.Load()
	if err != nil {
		slog.Warn("Could not load .env file, continuing with system environment variables only", "error", err)
	} else {
		slog.Info("Successfully loaded .env file")
	}

	config := &Config{
		BaseURL:         getEnvWithDefault("OTP_API_BASE_URL", "http://127.0.0.1:8001"),
		MockMode:        getEnvBool("OTP_MOCK_MODE", false),
		LogLevel:        getEnvWithDefault("LOG_LEVEL", "info"),
		Environment:     getEnvWithDefault("ENVIRONMENT", "development"),
		AuditDBPath:     getEnvWithDefault("AUDIT_DB_PATH", "data/audit.db"),
		ScenarioPath:    getEnvWithDefault("SCENARIO_PATH", "data/scenarios.yaml"),
		HealthTimeout:   getEnvDuration("HEALTH_TIMEOUT", 5*time.Second),
		EvaluateTimeout: getEnvDuration("EVALUATE_TIMEOUT", 10*time.Second),
		LookupTimeout:   getEnvDuration("LOOKUP_TIMEOUT", 10*time.Second),
		Port:            getEnvWithDefault("PORT", "8001"),
	}

	// Configure slog based on log level
	utils.SetupLogging(config.LogLevel)

	slog.Info("Configuration loaded",
		"baseURL", config.BaseURL,
		"mockMode", config.MockMode,
		"environment", config.Environment,
		"logLevel", config.LogLevel,
		"auditDBPath", config.AuditDBPath,
		"scenarioPath", config.ScenarioPath,
		"healthTimeout", config.HealthTimeout.String(),
		"evaluateTimeout", config.EvaluateTimeout.String(),
		"lookupTimeout", config.LookupTimeout.String())

	return config
}

// getEnvWithDefault gets an environment variable with a default fallback
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("Invalid boolean in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("Invalid duration in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return parsed
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
