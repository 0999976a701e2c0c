package render

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/miosync/miochat/session"
)

var (
	Accent      = lipgloss.Color("#8BC34A")
	Destructive = lipgloss.Color("#e53935")
	Muted       = lipgloss.Color("#6c7a89")

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f2f2f2")).
			Background(lipgloss.Color("#1e2a3d")).
			Padding(0, 1)

	ErrorStyle   = lipgloss.NewStyle().Foreground(Destructive).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(Accent)
	HintStyle    = lipgloss.NewStyle().Foreground(Muted)
)

// ErrorLine formats a failed provider call for display.
func ErrorLine(msg string) string {
	return "An error occurred: " + msg
}

// Settings describes the generation settings on one line.
func Settings(cfg session.GenerationConfig) string {
	return fmt.Sprintf("model=%s temperature=%.2f top_p=%.2f max_tokens=%d",
		cfg.Model, cfg.Temperature, cfg.TopP, cfg.MaxTokens)
}
