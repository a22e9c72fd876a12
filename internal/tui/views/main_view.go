package views

import (
	"fmt"
	"strings"

	"filedeck/internal/browser"
	"filedeck/internal/preview"
	"filedeck/internal/tui/common"
	"filedeck/internal/tui/components"
	"filedeck/internal/tui/styles"

	"github.com/dustin/go-humanize"
)

// Icons shown on the display toggle for the mode it switches to.
const (
	ListIcon = "☰ list"
	GridIcon = "▦ grid"
)

// ToggleLabel names the mode a display toggle would switch to.
func ToggleLabel(current browser.DisplayMode) string {
	if current.Other() == browser.Grid {
		return GridIcon
	}
	return ListIcon
}

// RenderMainView draws the header and the listing.
func RenderMainView(m common.ModelReader) string {
	var sb strings.Builder
	view := m.Snapshot()

	sb.WriteString(RenderHeader(m))
	sb.WriteString("\n\n")

	switch {
	case view.Err != nil:
		sb.WriteString(styles.Theme.Error.Render("Listing unavailable: " + view.Err.Error()))
		sb.WriteString("\n")
	case len(view.Entries) == 0:
		sb.WriteString(styles.Theme.Unselected.Render("Empty directory"))
		sb.WriteString("\n")
	case view.Mode == browser.Grid:
		sb.WriteString(components.RenderGrid(view, m.Cursor(), components.GridColumns(m.Width())))
		sb.WriteString("\n")
	default:
		sb.WriteString(components.RenderList(view, m.Cursor()))
	}

	return sb.String()
}

// RenderHeader draws the title line: path, depth, edit state and the toggle.
func RenderHeader(m common.ModelReader) string {
	view := m.Snapshot()

	parts := []string{
		styles.Theme.Title.Render("filedeck"),
		styles.Theme.Path.Render(view.Path),
	}
	if m.Depth() > 1 {
		parts = append(parts, styles.Theme.Unselected.Render(fmt.Sprintf("(depth %d)", m.Depth())))
	}
	if view.State == browser.Editing {
		parts = append(parts, styles.Theme.Badge.Render(fmt.Sprintf("EDIT %d selected", len(view.Selected))))
	}
	parts = append(parts, styles.Theme.Help.Render("[v] "+ToggleLabel(view.Mode)))
	return strings.Join(parts, "  ")
}

// PreviewState is what the preview screen shows.
type PreviewState struct {
	Entry browser.Entry
	Info  preview.Info
	Art   string
	Err   error
}

// RenderPreview draws the read-only image preview.
func RenderPreview(p PreviewState) string {
	var sb strings.Builder
	sb.WriteString(styles.Theme.Title.Render(p.Entry.Name()))
	sb.WriteString("  ")
	if p.Err != nil {
		sb.WriteString(styles.Theme.Unselected.Render(humanize.Bytes(uint64(p.Info.Bytes))))
		sb.WriteString("\n\n")
		sb.WriteString(styles.Theme.Error.Render("Cannot preview: " + p.Err.Error()))
	} else {
		sb.WriteString(styles.Theme.Path.Render(p.Info.String()))
		sb.WriteString("  ")
		sb.WriteString(styles.Theme.Unselected.Render(humanize.Bytes(uint64(p.Info.Bytes))))
		sb.WriteString("\n\n")
		sb.WriteString(p.Art)
	}
	sb.WriteString("\n\n")
	sb.WriteString(styles.Theme.Help.Render("[esc] back"))
	return sb.String()
}

// RenderAddMenu offers the two ways to add to a directory.
func RenderAddMenu() string {
	return styles.Theme.Title.Render("Add") + "\n" +
		"  [n] New directory\n" +
		"  [i] Import image\n" +
		styles.Theme.Help.Render("[esc] cancel")
}

// RenderConfirmDelete asks before a batch delete.
func RenderConfirmDelete(count int) string {
	noun := "entries"
	if count == 1 {
		noun = "entry"
	}
	return styles.Theme.Warning.Render(fmt.Sprintf("Delete %d %s? This cannot be undone.", count, noun)) + "\n" +
		styles.Theme.Help.Render("[y] delete  [n/esc] cancel")
}
