package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the browser key bindings.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Open    key.Binding
	Back    key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Add     key.Binding
	Mkdir   key.Binding
	Import  key.Binding
	Display key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Open:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "open/select")),
		Back:    key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit mode")),
		Delete:  key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete selected")),
		Add:     key.NewBinding(key.WithKeys("a", "+"), key.WithHelp("a", "add")),
		Mkdir:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new directory")),
		Import:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import image")),
		Display: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "list/grid")),
		Refresh: key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Back, k.Edit, k.Add, k.Display, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Open, k.Back, k.Refresh},
		{k.Edit, k.Delete},
		{k.Add, k.Mkdir, k.Import},
		{k.Display, k.Help, k.Quit},
	}
}
