package config

import (
	"strings"
	"testing"
	"time"

	"racha/internal/ai"
)

func validConfig() Config {
	return Config{
		Port:        "8081",
		GeminiModel: ai.DefaultModel,
		SessionTTL:  4 * time.Hour,
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errContains string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:   "valid with api key",
			mutate: func(c *Config) { c.GeminiAPIKey = "key" },
		},
		{
			name:        "non-numeric port",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errContains: "invalid port 'abc'",
		},
		{
			name:        "port out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errContains: "must be between 1 and 65535",
		},
		{
			name:        "non-positive session ttl",
			mutate:      func(c *Config) { c.SessionTTL = 0 },
			wantErr:     true,
			errContains: "session TTL",
		},
		{
			name:        "api key without model",
			mutate:      func(c *Config) { c.GeminiAPIKey = "key"; c.GeminiModel = "  " },
			wantErr:     true,
			errContains: "gemini model",
		},
		{
			name:        "bad log level",
			mutate:      func(c *Config) { c.LogLevel = "verbose" },
			wantErr:     true,
			errContains: "invalid log level",
		},
		{
			name:        "bad log format",
			mutate:      func(c *Config) { c.LogFormat = "xml" },
			wantErr:     true,
			errContains: "invalid log format",
		},
		{
			name:        "multiple problems reported together",
			mutate:      func(c *Config) { c.Port = "abc"; c.LogLevel = "verbose" },
			wantErr:     true,
			errContains: "; ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("error %q does not contain %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
		})
	}
}

func TestAIEnabled(t *testing.T) {
	cfg := validConfig()
	if cfg.AIEnabled() {
		t.Fatal("AI should be disabled without an API key")
	}
	cfg.GeminiAPIKey = "key"
	if !cfg.AIEnabled() {
		t.Fatal("AI should be enabled with an API key")
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8081" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.GeminiModel != ai.DefaultModel {
		t.Fatalf("GeminiModel = %q, want %q", cfg.GeminiModel, ai.DefaultModel)
	}
	if cfg.SessionTTL != 4*time.Hour {
		t.Fatalf("SessionTTL = %v", cfg.SessionTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_TTL", "90m")
	if d := getEnvDuration("TEST_TTL", time.Hour); d != 90*time.Minute {
		t.Fatalf("got %v", d)
	}
	t.Setenv("TEST_TTL", "bogus")
	if d := getEnvDuration("TEST_TTL", time.Hour); d != time.Hour {
		t.Fatalf("fallback not used: %v", d)
	}
}
