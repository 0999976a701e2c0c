// Package chat implements the slash commands shared by the front-ends and the line-oriented REPL.
package chat

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/miosync/miochat/render"
	"github.com/miosync/miochat/session"
)

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrUnknownModel    = errors.New("unknown model")
	ErrMissingArgument = errors.New("missing argument")
)

// HelpText lists the available commands.
const HelpText = `Commands:
  /model <name>        switch model
  /models              list selectable models
  /system [text]       show or set the system prompt
  /temperature [v]     show or set temperature (0-1)
  /top_p [v]           show or set top_p (0-1)
  /max_tokens [n]      show or set max tokens (100-12096)
  /settings            show current settings
  /history             show the conversation
  /reset               clear the conversation
  /help                show this help
  /exit                quit (also "exit" or "quit")`

// Result is what a command produced for display.
type Result struct {
	Output string
	Exit   bool
	Reset  bool
}

// Commands executes slash commands against a session.
type Commands struct {
	session  *session.Session
	models   []string
	renderer *render.Renderer
}

// NewCommands creates a command set. models lists what /model accepts.
func NewCommands(s *session.Session, models []string, renderer *render.Renderer) *Commands {
	if renderer == nil {
		renderer = render.New(render.Options{Plain: true})
	}
	return &Commands{session: s, models: models, renderer: renderer}
}

// IsCommand reports whether the input line should be run as a command instead of sent as a message.
func IsCommand(line string) bool {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "/") {
		return true
	}
	switch strings.ToLower(line) {
	case "exit", "quit":
		return true
	}
	return false
}

// Execute runs one command line.
func (c *Commands) Execute(line string) (Result, error) {
	line = strings.TrimSpace(line)
	name, arg, _ := strings.Cut(line, " ")
	name = strings.ToLower(strings.TrimPrefix(name, "/"))
	arg = strings.TrimSpace(arg)

	switch name {
	case "exit", "quit":
		return Result{Output: "Goodbye!", Exit: true}, nil
	case "help":
		return Result{Output: HelpText}, nil
	case "model":
		return c.setModel(arg)
	case "models":
		return Result{Output: c.listModels()}, nil
	case "system":
		return c.system(arg)
	case "temperature":
		return c.temperature(arg)
	case "top_p":
		return c.topP(arg)
	case "max_tokens":
		return c.maxTokens(arg)
	case "settings":
		return Result{Output: c.settings()}, nil
	case "history":
		return Result{Output: c.history()}, nil
	case "reset":
		if err := c.session.Reset(); err != nil {
			return Result{}, err
		}
		return Result{Output: "Chat history reset.", Reset: true}, nil
	default:
		return Result{}, fmt.Errorf("%w: /%s (type /help)", ErrUnknownCommand, name)
	}
}

func (c *Commands) setModel(name string) (Result, error) {
	if name == "" {
		return Result{}, fmt.Errorf("%w: /model needs a model name", ErrMissingArgument)
	}
	if len(c.models) > 0 && !slices.Contains(c.models, name) {
		return Result{}, fmt.Errorf("%w %q, choose one of: %s", ErrUnknownModel, name, strings.Join(c.models, ", "))
	}
	c.session.SetModel(name)
	return Result{Output: "Model set to " + name}, nil
}

func (c *Commands) listModels() string {
	current := c.session.Config().Model
	var sb strings.Builder
	for i, m := range c.models {
		if i > 0 {
			sb.WriteString("\n")
		}
		if m == current {
			sb.WriteString("* " + m)
		} else {
			sb.WriteString("  " + m)
		}
	}
	if sb.Len() == 0 {
		return "* " + current
	}
	return sb.String()
}

func (c *Commands) system(text string) (Result, error) {
	if text == "" {
		return Result{Output: "System prompt: " + c.session.Config().SystemPrompt}, nil
	}
	c.session.SetSystemPrompt(text)
	return Result{Output: "System prompt updated."}, nil
}

func (c *Commands) temperature(arg string) (Result, error) {
	if arg == "" {
		return Result{Output: fmt.Sprintf("Temperature: %.2f", c.session.Config().Temperature)}, nil
	}
	v, err := parseFloat("temperature", arg)
	if err != nil {
		return Result{}, err
	}
	v = clamp(v, session.MinTemperature, session.MaxTemperature)
	c.session.SetTemperature(v)
	return Result{Output: fmt.Sprintf("Temperature set to %.2f", v)}, nil
}

func (c *Commands) topP(arg string) (Result, error) {
	if arg == "" {
		return Result{Output: fmt.Sprintf("Top-p: %.2f", c.session.Config().TopP)}, nil
	}
	v, err := parseFloat("top_p", arg)
	if err != nil {
		return Result{}, err
	}
	v = clamp(v, session.MinTopP, session.MaxTopP)
	c.session.SetTopP(v)
	return Result{Output: fmt.Sprintf("Top-p set to %.2f", v)}, nil
}

func (c *Commands) maxTokens(arg string) (Result, error) {
	if arg == "" {
		return Result{Output: fmt.Sprintf("Max tokens: %d", c.session.Config().MaxTokens)}, nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return Result{}, fmt.Errorf("invalid max_tokens value %q: %w", arg, err)
	}
	n = clamp(n, session.MinMaxTokens, session.MaxMaxTokens)
	c.session.SetMaxTokens(n)
	return Result{Output: fmt.Sprintf("Max tokens set to %d", n)}, nil
}

func (c *Commands) settings() string {
	cfg := c.session.Config()
	return render.Settings(cfg) + "\nsystem: " + cfg.SystemPrompt
}

func (c *Commands) history() string {
	md := c.renderer.Markdown(c.session.Transcript())
	if md == "" {
		return "No messages yet."
	}
	return md
}

func parseFloat(field, arg string) (float32, error) {
	f, err := strconv.ParseFloat(arg, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", field, arg, err)
	}
	if math.IsNaN(f) {
		return 0, fmt.Errorf("invalid %s value %q", field, arg)
	}
	return float32(f), nil
}

func clamp[T int | float32](v, lo, hi T) T {
	return min(max(v, lo), hi)
}
