// Package config loads the chat settings from defaults, an optional YAML file,
// a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/miosync/miochat/session"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read from the working directory when no --config is given.
const DefaultFile = "miochat.yaml"

// Provider names understood by the providers package.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

// DefaultAssistantName labels assistant turns in the rendered history.
const DefaultAssistantName = "クロミ"

// DefaultModels lists the selectable models per provider.
var DefaultModels = map[string][]string{
	ProviderOpenAI: {"gpt-4o", "gpt-4o-mini", "chatgpt-4o-latest"},
	ProviderGemini: {"gemini-2.0-flash", "gemini-2.5-flash", "gemini-2.5-pro"},
	ProviderMock:   {"mock"},
}

// defaultModel is used when no model is configured for a provider.
var defaultModel = map[string]string{
	ProviderOpenAI: session.DefaultModel,
	ProviderGemini: "gemini-2.0-flash",
	ProviderMock:   "mock",
}

// Config holds everything needed to start a chat session.
type Config struct {
	Provider      string   `yaml:"provider"`
	Model         string   `yaml:"model"`
	Models        []string `yaml:"models"`
	SystemPrompt  string   `yaml:"system_prompt"`
	Temperature   float32  `yaml:"temperature"`
	TopP          float32  `yaml:"top_p"`
	MaxTokens     int      `yaml:"max_tokens"`
	AssistantName string   `yaml:"assistant_name"`
	UserName      string   `yaml:"user_name"`
	Plain         bool     `yaml:"plain"`
}

// Default returns the built-in settings. Model is left empty and resolved per provider by Resolve.
func Default() *Config {
	return &Config{
		Provider:      ProviderOpenAI,
		SystemPrompt:  session.DefaultSystemPrompt,
		Temperature:   session.DefaultTemperature,
		TopP:          session.DefaultTopP,
		MaxTokens:     session.DefaultMaxTokens,
		AssistantName: DefaultAssistantName,
		UserName:      "You",
	}
}

// Load builds the configuration from defaults, the YAML file at path and the environment.
// An empty path falls back to DefaultFile if it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	if err := cfg.mergeFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.Resolve()
	return cfg, nil
}

// Resolve fills in the provider's default model when none is set.
func (c *Config) Resolve() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Model == "" {
		c.Model = defaultModel[c.Provider]
	}
}

// LoadDotEnv loads variables from the given .env files, or ./.env when none are given.
// Variables already present in the environment win.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("MIOCHAT_PROVIDER")); v != "" {
		c.Provider = v
	}
	if v := strings.TrimSpace(os.Getenv("MIOCHAT_MODEL")); v != "" {
		c.Model = v
	}
	if v := os.Getenv("MIOCHAT_SYSTEM_PROMPT"); v != "" {
		c.SystemPrompt = v
	}
	if v := strings.TrimSpace(os.Getenv("MIOCHAT_TEMPERATURE")); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("invalid MIOCHAT_TEMPERATURE value: %q", v)
		}
		c.Temperature = float32(f)
	}
	if v := strings.TrimSpace(os.Getenv("MIOCHAT_TOP_P")); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("invalid MIOCHAT_TOP_P value: %q", v)
		}
		c.TopP = float32(f)
	}
	if v := strings.TrimSpace(os.Getenv("MIOCHAT_MAX_TOKENS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MIOCHAT_MAX_TOKENS value: %q", v)
		}
		c.MaxTokens = n
	}
	return nil
}

// AllowedModels returns the configured model list, or the provider's default list.
func (c *Config) AllowedModels() []string {
	if len(c.Models) > 0 {
		return c.Models
	}
	return DefaultModels[c.Provider]
}

// Validate checks ranges and that the model is selectable for the provider.
func (c *Config) Validate() error {
	if _, ok := DefaultModels[c.Provider]; !ok {
		return fmt.Errorf("unknown provider %q", c.Provider)
	}

	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}

	if !slices.Contains(c.AllowedModels(), c.Model) {
		return fmt.Errorf("model %q is not one of %s", c.Model, strings.Join(c.AllowedModels(), ", "))
	}

	if isNaN(c.Temperature) || c.Temperature < session.MinTemperature || c.Temperature > session.MaxTemperature {
		return fmt.Errorf("temperature must be between %.1f and %.1f, got %v", session.MinTemperature, session.MaxTemperature, c.Temperature)
	}

	if isNaN(c.TopP) || c.TopP < session.MinTopP || c.TopP > session.MaxTopP {
		return fmt.Errorf("top_p must be between %.1f and %.1f, got %v", session.MinTopP, session.MaxTopP, c.TopP)
	}

	if c.MaxTokens < session.MinMaxTokens || c.MaxTokens > session.MaxMaxTokens {
		return fmt.Errorf("max_tokens must be between %d and %d, got %d", session.MinMaxTokens, session.MaxMaxTokens, c.MaxTokens)
	}

	return nil
}

func isNaN(v float32) bool {
	return math.IsNaN(float64(v))
}

// Generation returns the session settings described by this configuration.
func (c *Config) Generation() session.GenerationConfig {
	return session.GenerationConfig{
		Model:        c.Model,
		SystemPrompt: c.SystemPrompt,
		Temperature:  c.Temperature,
		TopP:         c.TopP,
		MaxTokens:    c.MaxTokens,
	}
}
