package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/miosync/miochat/llm"
	"github.com/miosync/miochat/render"
)

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(render.Accent)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")

	status := render.Settings(m.session.Config())
	if m.provider != nil {
		status = m.provider.Name() + " | " + status
	}
	sb.WriteString(render.StatusStyle.Width(m.width).Render(status))
	sb.WriteString("\n")

	switch {
	case m.loading:
		sb.WriteString(m.spinner.View() + " " + render.HintStyle.Render(m.renderer.Label(llm.RoleAssistant)+" is thinking..."))
	case m.errLine != "":
		sb.WriteString(render.ErrorStyle.Render(m.errLine))
	case m.notice != "" && !strings.Contains(m.notice, "\n"):
		sb.WriteString(render.HintStyle.Render(m.notice))
	}
	sb.WriteString("\n")
	sb.WriteString(m.input.View())
	return sb.String()
}
