// Package providers creates completion providers by name.
package providers

import (
	"context"
	"fmt"

	"github.com/miosync/miochat/llm"
	"github.com/miosync/miochat/llm/gemini"
	"github.com/miosync/miochat/llm/openai"
	"go.uber.org/zap"
)

// Provider names accepted by New.
const (
	OpenAI = "openai"
	Gemini = "gemini"
	Mock   = "mock"
)

// New creates the provider registered under name. Credentials are read from the environment.
func New(ctx context.Context, name string, logger *zap.Logger) (llm.Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch name {
	case OpenAI:
		client, err := openai.NewOpenAIClientFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai provider: %w", err)
		}
		return client.WithLogger(logger.Named("openai")), nil

	case Gemini:
		client, err := gemini.NewGeminiClientFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini provider: %w", err)
		}
		return client.WithLogger(logger.Named("gemini")), nil

	case Mock:
		return llm.NewMockProvider("mock"), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s", name)
	}
}

// Available returns the provider names New understands.
func Available() []string {
	return []string{Gemini, Mock, OpenAI}
}

// Close releases provider resources such as the rate limiter goroutine.
func Close(p llm.Provider) {
	if c, ok := p.(interface{ Close() }); ok {
		c.Close()
	}
}
