// Package session owns the state of one interactive chat: the transcript,
// the generation settings, and the outcome of the last provider call.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/miosync/miochat/llm"
	"go.uber.org/zap"
)

// MaxHistoryLength is the largest number of turns kept in a transcript, system turn included.
const MaxHistoryLength = 15

// Default generation settings for a new session.
const (
	DefaultModel        = "chatgpt-4o-latest"
	DefaultSystemPrompt = "You are a helpful assistant."
	DefaultTemperature  = 0.7
	DefaultTopP         = 1.0
	DefaultMaxTokens    = 1000
)

// Ranges accepted by the presentation layer's inputs.
const (
	MinTemperature = 0.0
	MaxTemperature = 1.0
	MinTopP        = 0.0
	MaxTopP        = 1.0
	MinMaxTokens   = 100
	MaxMaxTokens   = 12096
)

var (
	// ErrEmptyInput is returned when a user turn is blank after trimming.
	ErrEmptyInput = errors.New("message is empty")
	// ErrBusy is returned when a submission arrives while a provider call is outstanding.
	ErrBusy = errors.New("a reply is already being generated")
)

// Turn is one role-tagged entry of the transcript.
type Turn struct {
	Role    string
	Content string
}

// GenerationConfig holds the tunable parameters of a completion request.
type GenerationConfig struct {
	Model        string
	SystemPrompt string
	Temperature  float32
	TopP         float32
	MaxTokens    int
}

// DefaultGenerationConfig returns the settings a fresh session starts with.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Model:        DefaultModel,
		SystemPrompt: DefaultSystemPrompt,
		Temperature:  DefaultTemperature,
		TopP:         DefaultTopP,
		MaxTokens:    DefaultMaxTokens,
	}
}

// Outcome describes the last provider call.
type Outcome struct {
	Done    bool // false until the first call finishes
	OK      bool
	Message string // reply on success, provider message on failure
}

// Session is the explicitly owned state of one interactive chat.
// Methods are safe to call from a UI goroutine while Submit is waiting on the provider.
type Session struct {
	id     string
	logger *zap.Logger

	mu         sync.RWMutex
	config     GenerationConfig
	transcript []Turn
	outcome    Outcome

	inflight atomic.Bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger attaches a logger to the session.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a session whose transcript holds only the system turn.
func New(config GenerationConfig, opts ...Option) *Session {
	s := &Session{
		id:     uuid.NewString(),
		logger: zap.NewNop(),
		config: config,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session_id", s.id))
	s.transcript = []Turn{{Role: llm.RoleSystem, Content: config.SystemPrompt}}
	return s
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string {
	return s.id
}

// Config returns a copy of the current generation settings.
func (s *Session) Config() GenerationConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Transcript returns a copy of the transcript for display.
func (s *Session) Transcript() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Turn, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// LastOutcome returns the result of the most recent provider call.
func (s *Session) LastOutcome() Outcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.outcome
}

// AppendUserTurn records a user message and applies the history limit.
func (s *Session) AppendUserTurn(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, Turn{Role: llm.RoleUser, Content: text})
	s.truncateLocked()

	s.logger.Debug("user turn appended", zap.Int("transcript_len", len(s.transcript)))
	return nil
}

// Truncate keeps the system turn and the most recent turns so that the
// transcript holds at most MaxHistoryLength entries.
func (s *Session) Truncate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.truncateLocked()
}

func (s *Session) truncateLocked() {
	if len(s.transcript) <= MaxHistoryLength {
		return
	}

	kept := make([]Turn, 0, MaxHistoryLength)
	kept = append(kept, s.transcript[0])
	kept = append(kept, s.transcript[len(s.transcript)-(MaxHistoryLength-1):]...)

	s.logger.Debug("transcript truncated",
		zap.Int("dropped", len(s.transcript)-len(kept)),
	)
	s.transcript = kept
}

// BuildRequest assembles the provider request from the current state without mutating it.
// The first message always carries the current system prompt.
func (s *Session) BuildRequest() llm.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := make([]llm.Message, len(s.transcript))
	for i, turn := range s.transcript {
		messages[i] = llm.Message{Role: turn.Role, Content: turn.Content}
	}
	messages[0] = llm.Message{Role: llm.RoleSystem, Content: s.config.SystemPrompt}

	return llm.Request{
		Model:       s.config.Model,
		Messages:    messages,
		Temperature: s.config.Temperature,
		TopP:        s.config.TopP,
		MaxTokens:   s.config.MaxTokens,
	}
}

// HandleProviderResult applies a provider response. On success the reply is appended
// as an assistant turn; on failure the transcript is left untouched and a
// *ProviderCallFailedError is returned.
func (s *Session) HandleProviderResult(reply llm.Reply, err error) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		failed := &ProviderCallFailedError{Err: err}
		s.outcome = Outcome{Done: true, OK: false, Message: failed.Error()}
		s.logger.Warn("provider call failed", zap.Error(err))
		return Turn{}, failed
	}

	turn := Turn{Role: llm.RoleAssistant, Content: reply.Text}
	s.transcript = append(s.transcript, turn)
	s.truncateLocked()
	s.outcome = Outcome{Done: true, OK: true, Message: reply.Text}

	s.logger.Debug("assistant turn appended", zap.Int("transcript_len", len(s.transcript)))
	return turn, nil
}

// Submit runs one full exchange: record the user turn, call the provider with the
// current settings, and record the reply. Only one Submit runs at a time; a concurrent
// call returns ErrBusy without touching the transcript.
func (s *Session) Submit(ctx context.Context, provider llm.Provider, text string) (Turn, error) {
	if strings.TrimSpace(text) == "" {
		return Turn{}, ErrEmptyInput
	}

	if !s.inflight.CompareAndSwap(false, true) {
		return Turn{}, ErrBusy
	}
	defer s.inflight.Store(false)

	if err := s.AppendUserTurn(text); err != nil {
		return Turn{}, err
	}

	req := s.BuildRequest()
	s.logger.Debug("requesting completion",
		zap.String("provider", provider.Name()),
		zap.String("model", req.Model),
		zap.Int("messages", len(req.Messages)),
	)

	reply, err := provider.Complete(ctx, req)
	return s.HandleProviderResult(reply, err)
}

// Busy reports whether a provider call is outstanding.
func (s *Session) Busy() bool {
	return s.inflight.Load()
}

// SetSystemPrompt changes the system prompt and the system turn that mirrors it.
func (s *Session) SetSystemPrompt(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.SystemPrompt = text
	s.transcript[0] = Turn{Role: llm.RoleSystem, Content: text}
}

// SetModel changes the model used for the next request.
func (s *Session) SetModel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.Model = name
}

// SetTemperature changes the sampling temperature.
func (s *Session) SetTemperature(v float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.Temperature = v
}

// SetTopP changes the nucleus sampling parameter.
func (s *Session) SetTopP(v float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.TopP = v
}

// SetMaxTokens changes the reply length limit.
func (s *Session) SetMaxTokens(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.MaxTokens = n
}

// Reset replaces the transcript with a single system turn carrying the current prompt.
// It returns ErrBusy while a Submit is waiting on the provider, so a late reply
// never lands in the fresh transcript.
func (s *Session) Reset() error {
	if s.inflight.Load() {
		return ErrBusy
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = []Turn{{Role: llm.RoleSystem, Content: s.config.SystemPrompt}}
	s.outcome = Outcome{}
	s.logger.Debug("transcript reset")
	return nil
}
