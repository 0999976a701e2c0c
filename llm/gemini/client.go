package gemini

import (
	"context"
	"fmt"

	"github.com/miosync/miochat/llm"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Client implements llm.Provider for Google's Gemini models
type Client struct {
	genaiClient *genai.Client
	config      *Config
	logger      *zap.Logger
}

// Complete converts the transcript to Gemini contents and returns the generated text
func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Reply, error) {
	if len(req.Messages) == 0 {
		return llm.Reply{}, fmt.Errorf("no messages to send")
	}

	model := req.Model
	if model == "" {
		model = c.config.Model
	}

	contents, system := convertToGenaiMessages(req.Messages)
	if len(contents) == 0 {
		return llm.Reply{}, fmt.Errorf("no user or assistant messages to send")
	}

	c.logger.Debug("gemini generate content",
		zap.String("model", model),
		zap.Int("contents", len(contents)),
	)

	response, err := c.genaiClient.Models.GenerateContent(ctx, model, contents, generationConfig(req, system))
	if err != nil {
		return llm.Reply{}, fmt.Errorf("gemini: %w", err)
	}

	return llm.Reply{Text: response.Text()}, nil
}

// generationConfig maps the sampling parameters and system prompt onto a genai request config
func generationConfig(req llm.Request, system *genai.Content) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: system,
		Temperature:       genai.Ptr(req.Temperature),
		TopP:              genai.Ptr(req.TopP),
		MaxOutputTokens:   int32(req.MaxTokens),
	}
}

// convertToGenaiMessages splits system messages out into a single system instruction
// and converts the remaining turns to Gemini contents
func convertToGenaiMessages(messages []llm.Message) ([]*genai.Content, *genai.Content) {
	var contents []*genai.Content
	var system *genai.Content

	for _, msg := range messages {
		if msg.Role == llm.RoleSystem {
			if system == nil {
				system = &genai.Content{}
			}
			system.Parts = append(system.Parts, &genai.Part{Text: msg.Content})
			continue
		}

		contents = append(contents, &genai.Content{
			Role:  getRole(msg.Role),
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}

	return contents, system
}

func getRole(role string) string {
	switch role {
	case llm.RoleAssistant:
		return genai.RoleModel
	default:
		return genai.RoleUser
	}
}

// Name returns the provider name
func (c *Client) Name() string {
	return "gemini"
}

// WithLogger attaches a logger; a nil logger disables logging
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c.logger = logger
	return c
}

// NewGeminiClient creates a new Gemini client with the provided configuration
func NewGeminiClient(ctx context.Context, config *Config) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	backend := config.Backend
	if backend == genai.BackendUnspecified {
		backend = genai.BackendGeminiAPI
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: backend,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	genaiClient, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Client{
		genaiClient: genaiClient,
		config:      config,
		logger:      zap.NewNop(),
	}, nil
}

// NewGeminiClientFromEnv creates a new Gemini client using environment variables
func NewGeminiClientFromEnv(ctx context.Context) (*Client, error) {
	config, err := NewConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from environment: %w", err)
	}

	return NewGeminiClient(ctx, config)
}
