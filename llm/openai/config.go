package openai

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultBaseURL is the public OpenAI endpoint
const DefaultBaseURL = "https://api.openai.com/v1"

// Config holds OpenAI transport settings. Generation parameters travel with each llm.Request.
type Config struct {
	APIKey  string        // OpenAI API key
	BaseURL string        // Default: "https://api.openai.com/v1"
	OrgID   string        // Optional organization ID
	Model   string        // Used when a request does not name a model
	Timeout time.Duration // HTTP timeout per call, 0 = no client-side timeout

	// Rate limiting configuration (optional)
	RateLimit         int           // Requests per interval, 0 = disabled (default)
	RateLimitInterval time.Duration // Rate limit window, default: 1 minute
}

// NewConfigFromEnv creates config from environment variables with sensible defaults
func NewConfigFromEnv() (*Config, error) {
	config := &Config{
		APIKey:            getEnvOrDefault("OPENAI_API_KEY", ""),
		BaseURL:           getEnvOrDefault("OPENAI_BASE_URL", DefaultBaseURL),
		OrgID:             getEnvOrDefault("OPENAI_ORG_ID", ""),
		Model:             getEnvOrDefault("OPENAI_MODEL", "chatgpt-4o-latest"),
		Timeout:           time.Duration(getEnvIntOrDefault("OPENAI_TIMEOUT_SECONDS", 0)) * time.Second,
		RateLimit:         getEnvIntOrDefault("OPENAI_RATE_LIMIT", 0),
		RateLimitInterval: time.Duration(getEnvIntOrDefault("OPENAI_RATE_LIMIT_INTERVAL_SECONDS", 60)) * time.Second,
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the configuration is valid and complete
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable is required. Please set it with your OpenAI API key")
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative, got %v", c.Timeout)
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("rateLimit cannot be negative, got %d", c.RateLimit)
	}

	if c.RateLimit > 0 && c.RateLimitInterval <= 0 {
		return fmt.Errorf("rateLimitInterval must be positive when rate limiting is enabled, got %v", c.RateLimitInterval)
	}

	return nil
}

// getEnvOrDefault returns the environment variable value or a default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns the environment variable as int or default if not set/invalid
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
