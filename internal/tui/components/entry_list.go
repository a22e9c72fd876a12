package components

import (
	"fmt"
	"strings"

	"filedeck/internal/browser"
	"filedeck/internal/tui/styles"

	"github.com/dustin/go-humanize"
)

// Icons per entry kind.
const (
	DirectoryIcon = "▸"
	ImageIcon     = "◼"
)

// RenderList draws one row per entry. Directory rows take one line, image
// rows two: name, then size.
func RenderList(view browser.View, cursor int) string {
	var s strings.Builder
	editing := view.State == browser.Editing

	for i, e := range view.Entries {
		pointer := "  "
		if i == cursor {
			pointer = styles.Theme.Cursor.Render("> ")
		}

		mark := ""
		if editing {
			mark = "[ ] "
			if view.IsSelected(e) {
				mark = "[x] "
			}
		}

		name := e.Name()
		switch e.Kind {
		case browser.Directory:
			style := styles.Theme.Directory
			if editing && view.IsSelected(e) {
				style = styles.Theme.Selected
			}
			fmt.Fprintf(&s, "%s%s%s\n", pointer, mark, style.Render(DirectoryIcon+" "+name+"/"))
		case browser.Image:
			style := styles.Theme.Image
			if editing && view.IsSelected(e) {
				style = styles.Theme.Selected
			}
			fmt.Fprintf(&s, "%s%s%s\n", pointer, mark, style.Render(ImageIcon+" "+name))
			indent := strings.Repeat(" ", 2+len(mark)+2)
			fmt.Fprintf(&s, "%s%s\n", indent, styles.Theme.Unselected.Render(humanize.Bytes(uint64(e.Size))))
		}
	}

	return s.String()
}
