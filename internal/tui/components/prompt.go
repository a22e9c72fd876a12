package components

import (
	"filedeck/internal/tui/styles"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Prompt is a single-line text input with a label.
type Prompt struct {
	label string
	input textinput.Model
}

func NewPrompt(label, placeholder string) *Prompt {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = 255
	input.Width = 40
	input.Focus()
	return &Prompt{label: label, input: input}
}

func (p *Prompt) Value() string {
	return p.input.Value()
}

func (p *Prompt) SetValue(v string) {
	p.input.SetValue(v)
}

func (p *Prompt) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p *Prompt) View() string {
	return styles.Theme.Title.Render(p.label) + " " + p.input.View() + "\n" +
		styles.Theme.Help.Render("[enter] confirm  [esc] cancel")
}
