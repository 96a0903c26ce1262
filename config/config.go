package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration
type Config struct {
	Backend  BackendConfig
	LLM      LLMConfig
	Memory   MemoryConfig
	Database DatabaseConfig
	HTTP     HTTPConfig
	Metrics  MetricsConfig
	Tracing  TracingConfig
}

// BackendConfig holds digital twin backend settings
type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

// LLMConfig holds language model provider settings
type LLMConfig struct {
	Provider    string
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int
}

// MemoryConfig holds conversation memory settings
type MemoryConfig struct {
	Store string
	Path  string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// HTTPConfig holds HTTP server settings
type HTTPConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	TLSCertFile  string
	TLSKeyFile   string
}

// MetricsConfig holds metrics settings
type MetricsConfig struct {
	Path string
}

// TracingConfig holds tracing settings
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:     getEnv("TWIN_BACKEND_URL", "http://localhost:8000"),
			Timeout: getEnvDuration("TWIN_BACKEND_TIMEOUT", 30*time.Second),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", "mock"),
			Model:       getEnv("LLM_MODEL", "claude-sonnet-4-20250514"),
			APIKey:      getEnv("ANTHROPIC_API_KEY", ""),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.0),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 400),
		},
		Memory: MemoryConfig{
			Store: getEnv("MEMORY_STORE", "file"),
			Path:  getEnv("MEMORY_PATH", "agent_memory.json"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "twin"),
			Password: getEnv("DB_PASSWORD", "twin"),
			Database: getEnv("DB_NAME", "twin"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		HTTP: HTTPConfig{
			Port:         getEnvInt("HTTP_PORT", 8080),
			ReadTimeout:  getEnvDuration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT", 60*time.Second),
			TLSCertFile:  getEnv("TLS_CERT_FILE", ""),
			TLSKeyFile:   getEnv("TLS_KEY_FILE", ""),
		},
		Metrics: MetricsConfig{
			Path: getEnv("METRICS_PATH", "/metrics"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvBool("TRACING_ENABLED", false),
			ServiceName: getEnv("SERVICE_NAME", "camera-health-agent"),
			Endpoint:    getEnv("OTLP_ENDPOINT", "http://localhost:4318/v1/traces"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
