// Package tui is the full-screen chat front-end.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/miosync/miochat/chat"
	"github.com/miosync/miochat/llm"
	"github.com/miosync/miochat/render"
	"github.com/miosync/miochat/session"
	"go.uber.org/zap"
)

const (
	headerHeight = 1
	footerHeight = 3 // status, notice, input
)

// replyMsg carries the result of a Submit back to Update.
type replyMsg struct {
	turn session.Turn
	err  error
}

// Options configures the model.
type Options struct {
	Provider llm.Provider
	Models   []string
	Renderer *render.Renderer
	Logger   *zap.Logger
	Title    string
}

// Model is the bubbletea model wrapping one session.
type Model struct {
	ctx      context.Context
	session  *session.Session
	provider llm.Provider
	commands *chat.Commands
	renderer *render.Renderer
	logger   *zap.Logger
	title    string

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	ready    bool
	width    int

	loading  bool
	pending  string // user text shown while the reply is generated
	notice   string
	errLine  string
	quitting bool
}

// New creates the model. ctx is passed to every provider call.
func New(ctx context.Context, s *session.Session, opts Options) Model {
	if opts.Renderer == nil {
		opts.Renderer = render.New(render.Options{})
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Title == "" {
		opts.Title = "miochat"
	}

	ti := textinput.New()
	ti.Placeholder = "Your message (/help for commands)"
	ti.Prompt = "> "
	ti.CharLimit = 8000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = render.SuccessStyle

	return Model{
		ctx:      ctx,
		session:  s,
		provider: opts.Provider,
		commands: chat.NewCommands(s, opts.Models, opts.Renderer),
		renderer: opts.Renderer,
		logger:   opts.Logger,
		title:    opts.Title,
		input:    ti,
		spinner:  sp,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.handleSubmit()
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		height := max(msg.Height-headerHeight-footerHeight, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.width = msg.Width
		m.input.Width = max(msg.Width-4, 10)
		m.renderer.SetWidth(max(msg.Width-4, 20))
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case replyMsg:
		m.loading = false
		m.pending = ""
		if msg.err != nil {
			var failed *session.ProviderCallFailedError
			if errors.As(msg.err, &failed) {
				m.errLine = render.ErrorLine(failed.Error())
			} else {
				m.errLine = "Error: " + msg.err.Error()
			}
		}
		m.refresh()
		return m, nil
	}

	return m, nil
}

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if chat.IsCommand(text) {
		m.input.Reset()
		res, err := m.commands.Execute(text)
		if err != nil {
			m.notice = ""
			m.errLine = "Error: " + err.Error()
			return m, nil
		}
		if res.Exit {
			m.quitting = true
			return m, tea.Quit
		}
		m.errLine = ""
		m.notice = res.Output
		m.refresh()
		return m, nil
	}

	if m.loading {
		m.notice = "Waiting for the current reply..."
		return m, nil
	}

	m.input.Reset()
	m.loading = true
	m.pending = text
	m.notice = ""
	m.errLine = ""
	m.refresh()

	return m, tea.Batch(m.submit(text), m.spinner.Tick)
}

func (m Model) submit(text string) tea.Cmd {
	ctx, s, provider, logger := m.ctx, m.session, m.provider, m.logger
	return func() tea.Msg {
		turn, err := s.Submit(ctx, provider, text)
		if err != nil {
			logger.Debug("submit failed", zap.Error(err))
		}
		return replyMsg{turn: turn, err: err}
	}
}

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	turns := m.session.Transcript()
	if m.pending != "" {
		last := turns[len(turns)-1]
		if last.Role != llm.RoleUser || last.Content != m.pending {
			turns = append(turns, session.Turn{Role: llm.RoleUser, Content: m.pending})
		}
	}
	content := m.renderer.Transcript(turns)
	if strings.Contains(m.notice, "\n") {
		content += "\n\n" + m.notice
	}
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

// Run starts the program and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, s *session.Session, opts Options) error {
	p := tea.NewProgram(New(ctx, s, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
