package tui

import (
	"filedeck/internal/browser"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the full-screen browser at root and blocks until the user quits.
func Run(root *browser.Controller, opts ...Option) error {
	p := tea.NewProgram(New(root, opts...), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
