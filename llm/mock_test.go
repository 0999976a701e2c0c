package llm

import (
	"context"
	"strings"
	"testing"
)

func userRequest(content string) Request {
	return Request{
		Model: "mock-model",
		Messages: []Message{
			{Role: RoleSystem, Content: "You are a helpful assistant."},
			{Role: RoleUser, Content: content},
		},
	}
}

func TestMockProvider_NewMockProvider(t *testing.T) {
	provider := NewMockProvider("test-mock")

	if provider.Name() != "test-mock" {
		t.Errorf("Expected name 'test-mock', got '%s'", provider.Name())
	}

	if provider.CallCount() != 0 {
		t.Errorf("Expected call count 0, got %d", provider.CallCount())
	}
}

func TestMockProvider_Complete_EchoesUser(t *testing.T) {
	provider := NewMockProvider("test-mock")

	reply, err := provider.Complete(context.Background(), userRequest("Hello"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := "Mock response to: Hello"
	if reply.Text != expected {
		t.Errorf("Expected '%s', got '%s'", expected, reply.Text)
	}

	if provider.CallCount() != 1 {
		t.Errorf("Expected call count 1, got %d", provider.CallCount())
	}
}

func TestMockProvider_SetResponses(t *testing.T) {
	provider := NewMockProvider("test-mock")
	ctx := context.Background()

	responses := []string{"First response", "Second response", "Third response"}
	provider.SetResponses(responses)

	// Cycle twice
	for i := 0; i < 6; i++ {
		reply, err := provider.Complete(ctx, userRequest("Test"))
		if err != nil {
			t.Fatalf("Unexpected error on call %d: %v", i+1, err)
		}
		if reply.Text != responses[i%len(responses)] {
			t.Errorf("Call %d: expected '%s', got '%s'", i+1, responses[i%len(responses)], reply.Text)
		}
	}
}

func TestMockProvider_SetError(t *testing.T) {
	provider := NewMockProvider("test-mock")
	ctx := context.Background()

	provider.SetError(true, "rate limit exceeded")
	_, err := provider.Complete(ctx, userRequest("Hello"))
	if err == nil {
		t.Fatal("Expected error but got none")
	}
	if err.Error() != "rate limit exceeded" {
		t.Errorf("Expected 'rate limit exceeded', got '%s'", err.Error())
	}

	provider.SetError(true, "")
	_, err = provider.Complete(ctx, userRequest("Hello"))
	if err == nil || !strings.Contains(err.Error(), "test-mock") {
		t.Errorf("Expected default error naming the provider, got %v", err)
	}

	provider.ClearError()
	if _, err := provider.Complete(ctx, userRequest("Hello")); err != nil {
		t.Errorf("Expected no error after ClearError, got %v", err)
	}
}

func TestMockProvider_SetDelayedError(t *testing.T) {
	provider := NewMockProvider("test-mock")
	ctx := context.Background()

	provider.SetDelayedError(2, "quota exhausted")

	for i := 0; i < 2; i++ {
		if _, err := provider.Complete(ctx, userRequest("ok")); err != nil {
			t.Fatalf("Call %d should succeed, got %v", i+1, err)
		}
	}

	_, err := provider.Complete(ctx, userRequest("boom"))
	if err == nil || err.Error() != "quota exhausted" {
		t.Errorf("Expected 'quota exhausted' on third call, got %v", err)
	}
}

func TestMockProvider_ResponsePattern(t *testing.T) {
	provider := NewMockProvider("test-mock")
	provider.SetResponsePattern(map[string]string{
		"hello": "Hi there!",
		"bye":   "Goodbye!",
	})

	tests := []struct {
		input    string
		expected string
	}{
		{"Hello world", "Hi there!"},
		{"ok BYE", "Goodbye!"},
		{"something else", "Mock response to: something else"},
	}

	for _, tt := range tests {
		reply, err := provider.Complete(context.Background(), userRequest(tt.input))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if reply.Text != tt.expected {
			t.Errorf("Input %q: expected '%s', got '%s'", tt.input, tt.expected, reply.Text)
		}
	}
}

func TestMockProvider_LastRequestIsCopied(t *testing.T) {
	provider := NewMockProvider("test-mock")
	req := userRequest("Hello")
	req.Temperature = 0.7
	req.TopP = 1.0
	req.MaxTokens = 1000

	if _, err := provider.Complete(context.Background(), req); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	req.Messages[1].Content = "mutated"

	got := provider.LastRequest()
	if got.Messages[1].Content != "Hello" {
		t.Errorf("LastRequest should not alias caller slice, got '%s'", got.Messages[1].Content)
	}
	if got.Model != "mock-model" || got.Temperature != 0.7 || got.TopP != 1.0 || got.MaxTokens != 1000 {
		t.Errorf("LastRequest scalars not recorded: %+v", got)
	}
}

func TestMockProvider_CancelledContext(t *testing.T) {
	provider := NewMockProvider("test-mock")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := provider.Complete(ctx, userRequest("Hello")); err == nil {
		t.Error("Expected context error")
	}
}

func TestMockProvider_Reset(t *testing.T) {
	provider := NewMockProvider("test-mock")
	provider.SetResponses([]string{"a"})
	provider.SetError(true, "x")
	_, _ = provider.Complete(context.Background(), userRequest("Hello"))

	provider.Reset()

	if provider.CallCount() != 0 {
		t.Errorf("Expected call count 0 after reset, got %d", provider.CallCount())
	}
	reply, err := provider.Complete(context.Background(), userRequest("Hello"))
	if err != nil {
		t.Fatalf("Unexpected error after reset: %v", err)
	}
	if reply.Text != "Mock response to: Hello" {
		t.Errorf("Expected echo after reset, got '%s'", reply.Text)
	}
}

func TestMockProvider_ImplementsProvider(t *testing.T) {
	var _ Provider = NewMockProvider("test-mock")
}
