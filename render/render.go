// Package render turns a session transcript into markdown and renders it for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/miosync/miochat/llm"
	"github.com/miosync/miochat/session"
)

// Options controls labels and layout of the rendered transcript.
type Options struct {
	UserName      string
	AssistantName string
	Width         int
	// Plain skips glamour and returns the markdown source.
	Plain bool
}

// Renderer renders transcripts. A Renderer is not safe for concurrent use.
type Renderer struct {
	opts Options
	term *glamour.TermRenderer
}

// New creates a renderer. When glamour cannot be initialised the renderer falls back to plain output.
func New(opts Options) *Renderer {
	if opts.UserName == "" {
		opts.UserName = "You"
	}
	if opts.AssistantName == "" {
		opts.AssistantName = "Assistant"
	}
	if opts.Width <= 0 {
		opts.Width = 80
	}

	r := &Renderer{opts: opts}
	r.rebuild()
	return r
}

func (r *Renderer) rebuild() {
	r.term = nil
	if r.opts.Plain {
		return
	}
	term, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(r.opts.Width),
	)
	if err == nil {
		r.term = term
	}
}

// SetWidth changes the wrap width.
func (r *Renderer) SetWidth(width int) {
	if width <= 0 || width == r.opts.Width {
		return
	}
	r.opts.Width = width
	r.rebuild()
}

// Label returns the display name for a role.
func (r *Renderer) Label(role string) string {
	switch role {
	case llm.RoleUser:
		return r.opts.UserName
	case llm.RoleAssistant:
		return r.opts.AssistantName
	default:
		return ""
	}
}

// Markdown returns the markdown source of the transcript. The system turn is not shown.
func (r *Renderer) Markdown(turns []session.Turn) string {
	var sb strings.Builder
	for _, turn := range turns {
		label := r.Label(turn.Role)
		if label == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "**%s:** %s", label, turn.Content)
	}
	return sb.String()
}

// Transcript renders the visible turns for display.
func (r *Renderer) Transcript(turns []session.Turn) string {
	return r.render(r.Markdown(turns))
}

// Turn renders a single turn.
func (r *Renderer) Turn(turn session.Turn) string {
	return r.render(r.Markdown([]session.Turn{turn}))
}

func (r *Renderer) render(md string) string {
	if md == "" || r.term == nil {
		return md
	}
	out, err := r.term.Render(md)
	if err != nil {
		return md
	}
	return out
}
