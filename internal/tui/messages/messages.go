package messages

import "filedeck/internal/browser"

type ErrorMsg struct {
	Err error
}

// ImportDoneMsg reports the end of an import started from the prompt.
type ImportDoneMsg struct {
	Controller *browser.Controller
	Imported   bool
	Err        error
}
