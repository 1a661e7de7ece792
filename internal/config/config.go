package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"racha/internal/ai"
)

type Config struct {
	// HTTP Server
	Port string

	// Gemini
	GeminiAPIKey string
	GeminiModel  string

	// Sessions
	SessionTTL time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", ai.DefaultModel),

		SessionTTL: getEnvDuration("SESSION_TTL", 4*time.Hour),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Validate checks the configuration and returns one error listing every
// problem found. An empty Gemini API key is valid: the AI endpoints are
// then disabled rather than misconfigured.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SessionTTL <= 0 {
		problems = append(problems, fmt.Sprintf("invalid session TTL %v: must be positive", c.SessionTTL))
	}

	if c.GeminiAPIKey != "" && strings.TrimSpace(c.GeminiModel) == "" {
		problems = append(problems, "gemini model cannot be empty when an API key is configured")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json", "pretty":
	default:
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be one of text, json, pretty", c.LogFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

// AIEnabled reports whether the Gemini gateway should be constructed.
func (c *Config) AIEnabled() bool {
	return c.GeminiAPIKey != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
