package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// MockProvider implements Provider for tests and offline use.
// It provides configurable response patterns and error simulation capabilities
type MockProvider struct {
	mu            sync.Mutex
	name          string
	responses     []string
	responseIndex int
	simulateError bool
	errorMessage  string
	patterns      map[string]string // Pattern-based responses
	callCount     int               // Track number of calls for testing
	lastRequest   Request
	failAfter     int // Calls that succeed before errors start, 0 = disabled
}

// NewMockProvider creates a new mock provider. With no configured responses it echoes the last user message.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		name:     name,
		patterns: make(map[string]string),
	}
}

// Complete simulates a completion call and returns configured responses or errors
func (m *MockProvider) Complete(ctx context.Context, req Request) (Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCount++
	m.lastRequest = copyRequest(req)

	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}

	if m.failAfter > 0 && m.callCount > m.failAfter {
		return Reply{}, m.configuredError()
	}

	if m.simulateError {
		return Reply{}, m.configuredError()
	}

	if len(req.Messages) == 0 {
		return Reply{}, errors.New("no messages to send")
	}

	lastMessage := req.Messages[len(req.Messages)-1]

	// Check for pattern-based responses first
	if len(m.patterns) > 0 && lastMessage.Role == RoleUser {
		userInput := strings.ToLower(lastMessage.Content)
		for pattern, response := range m.patterns {
			if strings.Contains(userInput, strings.ToLower(pattern)) {
				return Reply{Text: response}, nil
			}
		}
	}

	if len(m.responses) == 0 {
		if lastMessage.Role == RoleUser {
			return Reply{Text: fmt.Sprintf("Mock response to: %s", lastMessage.Content)}, nil
		}
		return Reply{Text: "Default mock response"}, nil
	}

	// Cycle through responses for multiple calls
	response := m.responses[m.responseIndex]
	m.responseIndex = (m.responseIndex + 1) % len(m.responses)

	return Reply{Text: response}, nil
}

func (m *MockProvider) configuredError() error {
	if m.errorMessage != "" {
		return errors.New(m.errorMessage)
	}
	return fmt.Errorf("simulated API error from %s", m.name)
}

// Name returns the mock provider name
func (m *MockProvider) Name() string {
	return m.name
}

// SetResponses configures the responses that the mock will return
func (m *MockProvider) SetResponses(responses []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = responses
	m.responseIndex = 0
}

// SetError configures the mock to simulate an error
func (m *MockProvider) SetError(shouldError bool, errorMessage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.simulateError = shouldError
	m.errorMessage = errorMessage
}

// SetDelayedError lets callsBeforeError calls succeed and fails every call after that
func (m *MockProvider) SetDelayedError(callsBeforeError int, errorMessage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter = callsBeforeError
	m.errorMessage = errorMessage
}

// SetResponsePattern configures responses based on input keywords,
// for example {"hello": "Hi there!"}
func (m *MockProvider) SetResponsePattern(patterns map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = patterns
}

// ClearError removes any error simulation
func (m *MockProvider) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.simulateError = false
	m.errorMessage = ""
	m.failAfter = 0
}

// Reset resets the mock provider to initial state
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = nil
	m.responseIndex = 0
	m.simulateError = false
	m.errorMessage = ""
	m.failAfter = 0
	m.patterns = make(map[string]string)
	m.callCount = 0
	m.lastRequest = Request{}
}

// CallCount returns the number of times Complete has been called
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastRequest returns a copy of the most recent request
func (m *MockProvider) LastRequest() Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyRequest(m.lastRequest)
}

func copyRequest(req Request) Request {
	out := req
	out.Messages = append([]Message(nil), req.Messages...)
	return out
}
