package components

import (
	"strings"

	"filedeck/internal/browser"
	"filedeck/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// GridColumns returns how many fixed-size cells fit in width.
func GridColumns(width int) int {
	cols := width / styles.CellWidth
	if cols < 1 {
		return 1
	}
	return cols
}

// RenderGrid lays entries out in fixed cells, cols per row.
func RenderGrid(view browser.View, cursor, cols int) string {
	if cols < 1 {
		cols = 1
	}
	editing := view.State == browser.Editing

	var rows []string
	var row []string
	for i, e := range view.Entries {
		style := styles.Theme.Cell
		switch {
		case editing && view.IsSelected(e):
			style = styles.Theme.CellMarked
		case i == cursor:
			style = styles.Theme.CellCursor
		}
		row = append(row, style.Render(cellContent(e, editing && view.IsSelected(e))))
		if len(row) == cols {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func cellContent(e browser.Entry, selected bool) string {
	width := styles.CellWidth - 2
	name := truncate(e.Name(), width)

	var icon, detail string
	switch e.Kind {
	case browser.Directory:
		icon = DirectoryIcon
		detail = "folder"
	case browser.Image:
		icon = ImageIcon
		detail = humanize.Bytes(uint64(e.Size))
	}
	if selected {
		icon = "✓ " + icon
	}
	return strings.Join([]string{icon, name, styles.Theme.Unselected.Render(detail)}, "\n")
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
