package browser

import (
	"path"
	"strings"
)

// Entry is one classified child of a listed directory. Entries are values:
// two entries are the same entry when their paths match.
type Entry struct {
	Kind Kind   `json:"kind"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Name returns the last element of the entry path for either separator.
func (e Entry) Name() string {
	p := strings.ReplaceAll(e.Path, "\\", "/")
	return path.Base(p)
}

// Same reports whether e and other refer to the same path.
func (e Entry) Same(other Entry) bool {
	return e.Path == other.Path
}
