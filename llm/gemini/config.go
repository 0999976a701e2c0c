package gemini

import (
	"fmt"
	"os"

	"google.golang.org/genai"
)

// Config holds Gemini transport settings. Generation parameters travel with each llm.Request.
type Config struct {
	APIKey  string        // Google API key
	Model   string        // Used when a request does not name a model. Default: "gemini-2.0-flash"
	BaseURL string        // Optional endpoint override
	Backend genai.Backend // Default: genai.BackendGeminiAPI
}

// NewConfigFromEnv creates config from environment variables with sensible defaults
func NewConfigFromEnv() (*Config, error) {
	config := &Config{
		APIKey:  getEnvOrDefault("GOOGLE_API_KEY", ""),
		Model:   getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		BaseURL: getEnvOrDefault("GEMINI_BASE_URL", ""),
		Backend: genai.BackendGeminiAPI,
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the configuration is valid and complete
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("GOOGLE_API_KEY environment variable is required. Please set it with your Google API key")
	}

	if c.Model == "" {
		return fmt.Errorf("model name cannot be empty")
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
