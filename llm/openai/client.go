package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/miosync/miochat/llm"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Client implements llm.Provider for OpenAI chat completion models
type Client struct {
	client *openai.Client
	config *Config
	logger *zap.Logger

	// Rate limiting
	rateLimiter *time.Ticker
	tokens      chan struct{}
	done        chan struct{}
	closeOnce   sync.Once
}

// Complete sends the transcript to the chat completions endpoint and returns the first choice
func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Reply, error) {
	if len(req.Messages) == 0 {
		return llm.Reply{}, fmt.Errorf("no messages to send")
	}

	// Apply rate limiting if enabled
	if c.tokens != nil {
		select {
		case <-c.tokens:
		case <-ctx.Done():
			return llm.Reply{}, ctx.Err()
		}
	}

	request := c.buildRequest(req)

	c.logger.Debug("openai chat completion",
		zap.String("model", request.Model),
		zap.Int("messages", len(request.Messages)),
		zap.Float32("temperature", request.Temperature),
		zap.Float32("top_p", request.TopP),
		zap.Int("max_tokens", request.MaxTokens),
	)

	response, err := c.client.CreateChatCompletion(ctx, request)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			c.logger.Warn("openai api error", zap.Int("status", apiErr.HTTPStatusCode), zap.String("message", apiErr.Message))
		}
		return llm.Reply{}, fmt.Errorf("openai: %w", err)
	}

	if len(response.Choices) == 0 {
		return llm.Reply{}, fmt.Errorf("openai: no choices returned")
	}

	c.logger.Debug("openai chat completion done",
		zap.String("finish_reason", string(response.Choices[0].FinishReason)),
		zap.Int("total_tokens", response.Usage.TotalTokens),
	)

	return llm.Reply{Text: response.Choices[0].Message.Content}, nil
}

// buildRequest converts a provider-neutral request to the go-openai wire type
func (c *Client) buildRequest(req llm.Request) openai.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = c.config.Model
	}

	return openai.ChatCompletionRequest{
		Model:       model,
		Messages:    convertMessages(req.Messages),
		Temperature: wireFloat(req.Temperature),
		TopP:        wireFloat(req.TopP),
		MaxTokens:   req.MaxTokens,
	}
}

// wireFloat keeps an explicit zero on the wire. go-openai drops 0 through omitempty,
// and the API would then apply its default of 1.
func wireFloat(v float32) float32 {
	if v == 0 {
		return math.SmallestNonzeroFloat32
	}
	return v
}

// convertMessages converts generic messages to OpenAI format
func convertMessages(messages []llm.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    convertRole(msg.Role),
			Content: msg.Content,
		})
	}
	return out
}

func convertRole(role string) string {
	switch role {
	case llm.RoleSystem:
		return openai.ChatMessageRoleSystem
	case llm.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}

// Name returns the provider name
func (c *Client) Name() string {
	return "openai"
}

// WithLogger attaches a logger; a nil logger disables logging
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c.logger = logger
	return c
}

// NewOpenAIClient creates a new OpenAI client with the provided configuration
func NewOpenAIClient(ctx context.Context, config *Config) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.OrgID != "" {
		clientConfig.OrgID = config.OrgID
	}
	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	client := &Client{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		logger: zap.NewNop(),
		done:   make(chan struct{}),
	}

	// Initialize rate limiter only if rate limiting is enabled
	if config.RateLimit > 0 {
		tokens := make(chan struct{}, config.RateLimit)
		for i := 0; i < config.RateLimit; i++ {
			tokens <- struct{}{}
		}

		client.rateLimiter = time.NewTicker(config.RateLimitInterval / time.Duration(config.RateLimit))
		client.tokens = tokens

		go client.refillTokens()
	}

	return client, nil
}

// NewOpenAIClientFromEnv creates a new OpenAI client using environment variables
func NewOpenAIClientFromEnv(ctx context.Context) (*Client, error) {
	config, err := NewConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from environment: %w", err)
	}

	return NewOpenAIClient(ctx, config)
}

// refillTokens refills the token bucket at the configured rate until Close
func (c *Client) refillTokens() {
	for {
		select {
		case <-c.rateLimiter.C:
			select {
			case c.tokens <- struct{}{}:
			default:
				// bucket full
			}
		case <-c.done:
			return
		}
	}
}

// Close stops the rate limiter and cleans up resources
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		if c.rateLimiter != nil {
			c.rateLimiter.Stop()
		}
		close(c.done)
	})
}
