package common

import "filedeck/internal/browser"

// Mode is the screen the model is showing.
type Mode int

const (
	Normal Mode = iota
	AddMenu
	MkdirPrompt
	ImportPrompt
	ConfirmDelete
	Preview
)

func (m Mode) String() string {
	switch m {
	case AddMenu:
		return "add"
	case MkdirPrompt:
		return "mkdir"
	case ImportPrompt:
		return "import"
	case ConfirmDelete:
		return "confirm-delete"
	case Preview:
		return "preview"
	default:
		return "normal"
	}
}

// ModelReader defines the interface that views use to read model state
type ModelReader interface {
	Snapshot() browser.View
	Cursor() int
	Mode() Mode
	Depth() int
	Width() int
	Busy() bool
}
