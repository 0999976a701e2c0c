package chat

import (
	"errors"
	"strings"
	"testing"

	"github.com/miosync/miochat/llm"
	"github.com/miosync/miochat/session"
)

var testModels = []string{"gpt-4o", "gpt-4o-mini", "chatgpt-4o-latest"}

func newTestCommands() (*Commands, *session.Session) {
	s := session.New(session.DefaultGenerationConfig())
	return NewCommands(s, testModels, nil), s
}

func TestIsCommand(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"/help", true},
		{"  /reset ", true},
		{"exit", true},
		{"QUIT", true},
		{"hello", false},
		{"exit now", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsCommand(tt.input); got != tt.want {
			t.Errorf("IsCommand(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestExecute_Settings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(cfg session.GenerationConfig) bool
	}{
		{"model", "/model gpt-4o-mini", func(c session.GenerationConfig) bool { return c.Model == "gpt-4o-mini" }},
		{"temperature", "/temperature 0.25", func(c session.GenerationConfig) bool { return c.Temperature == 0.25 }},
		{"temperature clamped high", "/temperature 3", func(c session.GenerationConfig) bool { return c.Temperature == 1 }},
		{"temperature clamped low", "/temperature -1", func(c session.GenerationConfig) bool { return c.Temperature == 0 }},
		{"top_p", "/top_p 0.5", func(c session.GenerationConfig) bool { return c.TopP == 0.5 }},
		{"top_p clamped", "/top_p 1.5", func(c session.GenerationConfig) bool { return c.TopP == 1 }},
		{"max_tokens", "/max_tokens 4000", func(c session.GenerationConfig) bool { return c.MaxTokens == 4000 }},
		{"max_tokens clamped low", "/max_tokens 5", func(c session.GenerationConfig) bool { return c.MaxTokens == 100 }},
		{"max_tokens clamped high", "/max_tokens 999999", func(c session.GenerationConfig) bool { return c.MaxTokens == 12096 }},
		{"system", "/system You are a pirate.", func(c session.GenerationConfig) bool { return c.SystemPrompt == "You are a pirate." }},
		{"case insensitive", "/MODEL gpt-4o", func(c session.GenerationConfig) bool { return c.Model == "gpt-4o" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds, s := newTestCommands()

			res, err := cmds.Execute(tt.input)
			if err != nil {
				t.Fatalf("Execute(%q) returned error: %v", tt.input, err)
			}
			if res.Output == "" {
				t.Error("Expected confirmation output")
			}
			if !tt.check(s.Config()) {
				t.Errorf("Unexpected config after %q: %+v", tt.input, s.Config())
			}
		})
	}
}

func TestExecute_SystemUpdatesTranscript(t *testing.T) {
	cmds, s := newTestCommands()

	if _, err := cmds.Execute("/system Be brief."); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if got := s.Transcript()[0]; got != (session.Turn{Role: llm.RoleSystem, Content: "Be brief."}) {
		t.Errorf("System turn = %+v", got)
	}
}

func TestExecute_ShowCurrentValues(t *testing.T) {
	cmds, _ := newTestCommands()

	tests := map[string]string{
		"/temperature": "Temperature: 0.70",
		"/top_p":       "Top-p: 1.00",
		"/max_tokens":  "Max tokens: 1000",
		"/system":      "System prompt: You are a helpful assistant.",
	}
	for input, want := range tests {
		res, err := cmds.Execute(input)
		if err != nil {
			t.Fatalf("Execute(%q) returned error: %v", input, err)
		}
		if res.Output != want {
			t.Errorf("Execute(%q) = %q, want %q", input, res.Output, want)
		}
	}
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		input   string
		wantErr error
	}{
		{"/model gpt-2", ErrUnknownModel},
		{"/model", ErrMissingArgument},
		{"/bogus", ErrUnknownCommand},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmds, s := newTestCommands()
			before := s.Config()

			_, err := cmds.Execute(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Execute(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if s.Config() != before {
				t.Error("Config must not change on error")
			}
		})
	}
}

func TestExecute_InvalidNumbers(t *testing.T) {
	for _, input := range []string{"/temperature hot", "/temperature NaN", "/top_p x", "/max_tokens 1.5"} {
		cmds, s := newTestCommands()
		before := s.Config()

		if _, err := cmds.Execute(input); err == nil {
			t.Errorf("Execute(%q) expected error", input)
		}
		if s.Config() != before {
			t.Errorf("Config changed after %q", input)
		}
	}
}

func TestExecute_Reset(t *testing.T) {
	cmds, s := newTestCommands()
	if err := s.AppendUserTurn("Hello"); err != nil {
		t.Fatal(err)
	}

	res, err := cmds.Execute("/reset")
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if !res.Reset || res.Output != "Chat history reset." {
		t.Errorf("Unexpected result: %+v", res)
	}
	if len(s.Transcript()) != 1 {
		t.Errorf("Expected transcript of length 1, got %d", len(s.Transcript()))
	}
}

func TestExecute_Exit(t *testing.T) {
	cmds, _ := newTestCommands()
	for _, input := range []string{"/exit", "/quit", "exit", "Quit"} {
		res, err := cmds.Execute(input)
		if err != nil || !res.Exit {
			t.Errorf("Execute(%q) = %+v, %v; want exit", input, res, err)
		}
	}
}

func TestExecute_Listings(t *testing.T) {
	cmds, s := newTestCommands()

	res, _ := cmds.Execute("/models")
	if !strings.Contains(res.Output, "* chatgpt-4o-latest") || !strings.Contains(res.Output, "  gpt-4o-mini") {
		t.Errorf("Unexpected /models output: %q", res.Output)
	}

	res, _ = cmds.Execute("/history")
	if res.Output != "No messages yet." {
		t.Errorf("Unexpected empty /history output: %q", res.Output)
	}

	if err := s.AppendUserTurn("Hello"); err != nil {
		t.Fatal(err)
	}
	res, _ = cmds.Execute("/history")
	if res.Output != "**You:** Hello" {
		t.Errorf("Unexpected /history output: %q", res.Output)
	}

	res, _ = cmds.Execute("/settings")
	if !strings.Contains(res.Output, "model=chatgpt-4o-latest") || !strings.Contains(res.Output, "system: You are a helpful assistant.") {
		t.Errorf("Unexpected /settings output: %q", res.Output)
	}

	res, _ = cmds.Execute("/help")
	if res.Output != HelpText {
		t.Error("Expected help text")
	}
}
