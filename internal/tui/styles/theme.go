package styles

import (
	"filedeck/internal/config"

	"github.com/charmbracelet/lipgloss"
)

// Styles defines the core UI styles
type Styles struct {
	App        lipgloss.Style
	Title      lipgloss.Style
	Path       lipgloss.Style
	Badge      lipgloss.Style
	Directory  lipgloss.Style
	Image      lipgloss.Style
	Selected   lipgloss.Style
	Unselected lipgloss.Style
	Cursor     lipgloss.Style
	Cell       lipgloss.Style
	CellCursor lipgloss.Style
	CellMarked lipgloss.Style
	Help       lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
}

// Theme is the active style set.
var Theme = New(config.New().Theme)

// New builds styles from theme colors.
func New(t config.Theme) Styles {
	primary := lipgloss.Color(t.Primary)
	emphasis := lipgloss.Color(t.Emphasis)
	border := lipgloss.Color(t.Border)

	cell := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(CellWidth - 2).
		Height(CellHeight - 2)

	return Styles{
		App: lipgloss.NewStyle().
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),
		Path: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Info)),
		Badge: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(emphasis).
			Padding(0, 1),
		Directory: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#81A1C1")).
			Bold(true),
		Image: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC")),
		Selected: lipgloss.NewStyle().
			Foreground(emphasis).
			Bold(true),
		Unselected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")),
		Cursor: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true),
		Cell:       cell,
		CellCursor: cell.BorderForeground(primary),
		CellMarked: cell.BorderForeground(emphasis).BorderStyle(lipgloss.ThickBorder()),
		Help: lipgloss.NewStyle().
			Foreground(border),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Error)),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),
	}
}

// Grid cell size including the border.
const (
	CellWidth  = 18
	CellHeight = 5
)

// SetTheme replaces the active styles.
func SetTheme(t config.Theme) {
	Theme = New(t)
}
