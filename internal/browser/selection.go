package browser

// Selection tracks edit mode and the entries picked for a batch operation.
// Entries are keyed by path and kept in the order they were selected.
type Selection struct {
	editMode bool
	order    []string
	selected map[string]Entry
}

// NewSelection returns an empty selection outside edit mode.
func NewSelection() *Selection {
	return &Selection{selected: make(map[string]Entry)}
}

// EditMode reports whether multi-select is active.
func (s *Selection) EditMode() bool {
	return s.editMode
}

// EnterEditMode turns multi-select on. It never pre-selects anything.
func (s *Selection) EnterEditMode() {
	s.editMode = true
}

// CancelEditMode leaves edit mode and drops the selection.
func (s *Selection) CancelEditMode() {
	s.editMode = false
	s.Clear()
}

// Toggle adds e if absent and removes it if present. Outside edit mode it
// does nothing and returns false; otherwise it returns whether e is now
// selected.
func (s *Selection) Toggle(e Entry) bool {
	if !s.editMode {
		return false
	}
	if _, ok := s.selected[e.Path]; ok {
		s.remove(e.Path)
		return false
	}
	s.selected[e.Path] = e
	s.order = append(s.order, e.Path)
	return true
}

// IsSelected reports whether an entry with e's path is selected.
func (s *Selection) IsSelected(e Entry) bool {
	_, ok := s.selected[e.Path]
	return ok
}

// Clear empties the selection without leaving edit mode.
func (s *Selection) Clear() {
	s.order = nil
	s.selected = make(map[string]Entry)
}

// Len returns the number of selected entries.
func (s *Selection) Len() int {
	return len(s.order)
}

// Selected returns the selected entries in selection order.
func (s *Selection) Selected() []Entry {
	out := make([]Entry, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, s.selected[p])
	}
	return out
}

// Retain drops every selected entry whose path is not in entries and
// refreshes the kept ones with their newly listed values.
func (s *Selection) Retain(entries []Entry) {
	listed := make(map[string]Entry, len(entries))
	for _, e := range entries {
		listed[e.Path] = e
	}

	kept := s.order[:0]
	for _, p := range s.order {
		if e, ok := listed[p]; ok {
			s.selected[p] = e
			kept = append(kept, p)
			continue
		}
		delete(s.selected, p)
	}
	s.order = kept
}

func (s *Selection) remove(p string) {
	delete(s.selected, p)
	for i, q := range s.order {
		if q == p {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
