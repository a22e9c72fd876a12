package components

import (
	"filedeck/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Level picks the status line color.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

type StatusBar struct {
	text    string
	level   Level
	spinner spinner.Model
	loading bool
}

func NewStatusBar() *StatusBar {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Theme.Help

	return &StatusBar{spinner: s}
}

func (s *StatusBar) SetLoading(loading bool) {
	s.loading = loading
}

func (s *StatusBar) Loading() bool {
	return s.loading
}

func (s *StatusBar) SetText(text string) {
	s.text = text
	s.level = LevelInfo
}

func (s *StatusBar) Set(level Level, text string) {
	s.text = text
	s.level = level
}

func (s *StatusBar) Text() string {
	return s.text
}

// Tick starts the spinner.
func (s *StatusBar) Tick() tea.Cmd {
	return s.spinner.Tick
}

func (s *StatusBar) Update(msg tea.Msg) tea.Cmd {
	if s.loading {
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return cmd
	}
	return nil
}

func (s *StatusBar) style() lipgloss.Style {
	switch s.level {
	case LevelSuccess:
		return styles.Theme.Success
	case LevelWarning:
		return styles.Theme.Warning
	case LevelError:
		return styles.Theme.Error
	default:
		return styles.Theme.Help
	}
}

func (s *StatusBar) View() string {
	if s.text == "" && !s.loading {
		return ""
	}

	if s.loading {
		return s.style().Render(s.spinner.View() + " " + s.text)
	}
	return s.style().Render(s.text)
}
