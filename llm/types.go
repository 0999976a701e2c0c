package llm

import "context"

// Message represents a generic chat message that can be used across different LLM providers
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string // The actual message content
}

// Request is everything a provider needs to produce one completion
type Request struct {
	Model       string    // Model identifier, e.g. "chatgpt-4o-latest"
	Messages    []Message // Ordered conversation, first entry is the system message
	Temperature float32   // Sampling temperature (0.0 to 1.0)
	TopP        float32   // Nucleus sampling parameter (0.0 to 1.0)
	MaxTokens   int       // Maximum tokens in the reply
}

// Reply is the successful result of a completion call
type Reply struct {
	Text string
}

// Provider interface defines the contract that all completion providers must follow
type Provider interface {
	// Complete sends the request to the model and blocks until a reply or an error is available
	Complete(ctx context.Context, req Request) (Reply, error)

	// Name returns the name/identifier of the provider
	Name() string
}

const (
	// RoleSystem is used for system-level messages
	RoleSystem = "system"
	// RoleUser is used for user messages
	RoleUser = "user"
	// RoleAssistant is used for assistant messages
	RoleAssistant = "assistant"
)
