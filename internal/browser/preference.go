package browser

import (
	"filedeck/internal/log"
	"filedeck/internal/settings"
)

// DisplayModeKey is the settings key holding the display preference.
const DisplayModeKey = "display_mode"

// DisplayMode selects list-style or grid-style rendering.
type DisplayMode string

const (
	List DisplayMode = "list"
	Grid DisplayMode = "grid"
)

// Other returns the mode a toggle switches to.
func (m DisplayMode) Other() DisplayMode {
	switch m {
	case Grid:
		return List
	default:
		return Grid
	}
}

// ParseDisplayMode maps a stored value to a mode, falling back to List.
func ParseDisplayMode(s string) (DisplayMode, bool) {
	switch DisplayMode(s) {
	case List:
		return List, true
	case Grid:
		return Grid, true
	default:
		return List, false
	}
}

// Preferences reads and writes the display preference through a Store.
// It holds no copy of the value; every read goes to the store.
type Preferences struct {
	store settings.Store
}

// NewPreferences wraps store.
func NewPreferences(store settings.Store) *Preferences {
	return &Preferences{store: store}
}

// DisplayMode returns the stored mode, or List when the value is missing,
// unrecognized or unreadable.
func (p *Preferences) DisplayMode() DisplayMode {
	v, ok, err := p.store.Get(DisplayModeKey)
	if err != nil {
		log.LogWithError(err).Warn("display preference unreadable, using list")
		return List
	}
	if !ok {
		return List
	}
	mode, known := ParseDisplayMode(v)
	if !known {
		log.LogWithFields(log.F("value", v)).Warn("unrecognized display preference, using list")
	}
	return mode
}

// SetDisplayMode stores mode.
func (p *Preferences) SetDisplayMode(mode DisplayMode) error {
	return p.store.Set(DisplayModeKey, string(mode))
}

// ToggleDisplayMode flips List and Grid and returns the new mode.
func (p *Preferences) ToggleDisplayMode() (DisplayMode, error) {
	next := p.DisplayMode().Other()
	if err := p.SetDisplayMode(next); err != nil {
		return p.DisplayMode(), err
	}
	log.Debugf("display mode set to %s", next)
	return next, nil
}
