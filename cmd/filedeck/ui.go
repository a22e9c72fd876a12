package main

import (
	"fmt"
	"io"

	"filedeck/internal/browser"
	"filedeck/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

func errorStyle() lipgloss.Style {
	return styles.Theme.Error
}

func printSuccess(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, styles.Theme.Success.Render(fmt.Sprintf(format, args...)))
}

func printWarning(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, styles.Theme.Warning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, styles.Theme.Path.Render(fmt.Sprintf(format, args...)))
}

// entryTable renders a listing as a three-column table.
func entryTable(entries []browser.Entry) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.Theme.Help).
		Headers("KIND", "SIZE", "NAME")

	for _, e := range entries {
		switch e.Kind {
		case browser.Directory:
			t.Row("dir", "-", e.Name()+"/")
		default:
			t.Row("image", humanize.Bytes(uint64(e.Size)), e.Name())
		}
	}
	return t.String()
}
