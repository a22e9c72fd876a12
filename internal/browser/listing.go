package browser

import (
	"filedeck/internal/fsys"
	"filedeck/internal/log"
)

// Listing is the classified snapshot of one directory's immediate children.
// It is only as fresh as the last Refresh.
type Listing struct {
	fs         fsys.Filesystem
	classifier *Classifier
	path       string
	entries    []Entry
	err        error
}

// NewListing creates an empty listing for dir. Call Refresh to populate it.
func NewListing(fs fsys.Filesystem, classifier *Classifier, dir string) *Listing {
	return &Listing{fs: fs, classifier: classifier, path: dir}
}

// Path returns the listed directory.
func (l *Listing) Path() string {
	return l.path
}

// Refresh re-reads the directory and replaces the whole sequence. On failure
// the listing becomes empty and the error is kept for Err.
func (l *Listing) Refresh() ([]Entry, error) {
	children, err := l.fs.ListChildren(l.path)
	if err != nil {
		l.entries = nil
		l.err = err
		log.LogWithError(err).Warn("listing unavailable")
		return nil, err
	}

	entries := make([]Entry, 0, len(children))
	for _, child := range children {
		entries = append(entries, Entry{
			Kind: l.classifier.ClassifyChild(child.Name, child.IsDir),
			Path: child.Path,
			Size: child.Size,
		})
	}
	l.entries = entries
	l.err = nil
	log.Debugf("listed %s: %d entries", l.path, len(entries))
	return l.Entries(), nil
}

// Entries returns a copy of the current sequence.
func (l *Listing) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Err returns the failure of the last Refresh, if any.
func (l *Listing) Err() error {
	return l.err
}

// Len returns the number of listed entries.
func (l *Listing) Len() int {
	return len(l.entries)
}

// Lookup finds the listed entry with the given path.
func (l *Listing) Lookup(path string) (Entry, bool) {
	for _, e := range l.entries {
		if e.Path == path {
			return e, true
		}
	}
	return Entry{}, false
}

// LookupName finds the listed entry with the given base name.
func (l *Listing) LookupName(name string) (Entry, bool) {
	for _, e := range l.entries {
		if e.Name() == name {
			return e, true
		}
	}
	return Entry{}, false
}
