package openai

import (
	"os"
	"testing"
	"time"
)

var openAIEnvVars = []string{
	"OPENAI_API_KEY",
	"OPENAI_BASE_URL",
	"OPENAI_ORG_ID",
	"OPENAI_MODEL",
	"OPENAI_TIMEOUT_SECONDS",
	"OPENAI_RATE_LIMIT",
	"OPENAI_RATE_LIMIT_INTERVAL_SECONDS",
}

// clearOpenAIEnv unsets the provider variables for the duration of the test
func clearOpenAIEnv(t *testing.T) {
	t.Helper()
	for _, env := range openAIEnvVars {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: &Config{
				APIKey:  "test-key",
				BaseURL: DefaultBaseURL,
			},
			wantErr: false,
		},
		{
			name: "missing API key",
			config: &Config{
				BaseURL: DefaultBaseURL,
			},
			wantErr: true,
		},
		{
			name: "negative timeout",
			config: &Config{
				APIKey:  "test-key",
				Timeout: -time.Second,
			},
			wantErr: true,
		},
		{
			name: "negative rate limit",
			config: &Config{
				APIKey:    "test-key",
				RateLimit: -1,
			},
			wantErr: true,
		},
		{
			name: "rate limit without interval",
			config: &Config{
				APIKey:    "test-key",
				RateLimit: 5,
			},
			wantErr: true,
		},
		{
			name: "valid rate limit",
			config: &Config{
				APIKey:            "test-key",
				RateLimit:         5,
				RateLimitInterval: time.Minute,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewConfigFromEnv(t *testing.T) {
	clearOpenAIEnv(t)
	t.Setenv("OPENAI_API_KEY", "test-key")

	config, err := NewConfigFromEnv()
	if err != nil {
		t.Fatalf("NewConfigFromEnv() failed: %v", err)
	}

	if config.APIKey != "test-key" {
		t.Errorf("Expected APIKey 'test-key', got '%s'", config.APIKey)
	}

	if config.Model != "chatgpt-4o-latest" {
		t.Errorf("Expected Model 'chatgpt-4o-latest', got '%s'", config.Model)
	}

	if config.BaseURL != DefaultBaseURL {
		t.Errorf("Expected BaseURL '%s', got '%s'", DefaultBaseURL, config.BaseURL)
	}

	if config.RateLimit != 0 {
		t.Errorf("Expected RateLimit 0, got %d", config.RateLimit)
	}

	if config.RateLimitInterval != 60*time.Second {
		t.Errorf("Expected RateLimitInterval 60s, got %v", config.RateLimitInterval)
	}

	if config.Timeout != 0 {
		t.Errorf("Expected Timeout 0, got %v", config.Timeout)
	}
}

func TestNewConfigFromEnv_CustomValues(t *testing.T) {
	clearOpenAIEnv(t)
	t.Setenv("OPENAI_API_KEY", "custom-key")
	t.Setenv("OPENAI_BASE_URL", "https://custom.api.com/v1")
	t.Setenv("OPENAI_ORG_ID", "org-123")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("OPENAI_TIMEOUT_SECONDS", "45")
	t.Setenv("OPENAI_RATE_LIMIT", "10")
	t.Setenv("OPENAI_RATE_LIMIT_INTERVAL_SECONDS", "30")

	config, err := NewConfigFromEnv()
	if err != nil {
		t.Fatalf("NewConfigFromEnv() failed: %v", err)
	}

	if config.BaseURL != "https://custom.api.com/v1" {
		t.Errorf("Expected BaseURL 'https://custom.api.com/v1', got '%s'", config.BaseURL)
	}

	if config.OrgID != "org-123" {
		t.Errorf("Expected OrgID 'org-123', got '%s'", config.OrgID)
	}

	if config.Model != "gpt-4o-mini" {
		t.Errorf("Expected Model 'gpt-4o-mini', got '%s'", config.Model)
	}

	if config.Timeout != 45*time.Second {
		t.Errorf("Expected Timeout 45s, got %v", config.Timeout)
	}

	if config.RateLimit != 10 {
		t.Errorf("Expected RateLimit 10, got %d", config.RateLimit)
	}

	if config.RateLimitInterval != 30*time.Second {
		t.Errorf("Expected RateLimitInterval 30s, got %v", config.RateLimitInterval)
	}
}

func TestNewConfigFromEnv_MissingAPIKey(t *testing.T) {
	clearOpenAIEnv(t)

	_, err := NewConfigFromEnv()
	if err == nil {
		t.Error("Expected error when OPENAI_API_KEY is not set")
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STRING", "test_value")
	if getEnvOrDefault("TEST_STRING", "default") != "test_value" {
		t.Error("getEnvOrDefault failed for existing env var")
	}
	if getEnvOrDefault("MIOCHAT_NON_EXISTENT", "default") != "default" {
		t.Error("getEnvOrDefault failed for non-existent env var")
	}

	t.Setenv("TEST_INT", "42")
	if getEnvIntOrDefault("TEST_INT", 10) != 42 {
		t.Error("getEnvIntOrDefault failed for existing env var")
	}
	if getEnvIntOrDefault("MIOCHAT_NON_EXISTENT", 10) != 10 {
		t.Error("getEnvIntOrDefault failed for non-existent env var")
	}
	t.Setenv("TEST_INT", "invalid")
	if getEnvIntOrDefault("TEST_INT", 10) != 10 {
		t.Error("getEnvIntOrDefault failed for invalid env var")
	}
}
