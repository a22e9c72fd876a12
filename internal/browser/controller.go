// Package browser holds the directory-browsing core: classification of
// directory children, listings, the multi-select model and the controller
// that ties them to the file system and the display preference.
package browser

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"filedeck/internal/errors"
	"filedeck/internal/fsys"
	"filedeck/internal/importer"
	"filedeck/internal/log"

	"github.com/hashicorp/go-multierror"
)

// State is the controller's interaction mode.
type State int

const (
	Browsing State = iota
	Editing
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	default:
		return "browsing"
	}
}

// Action says what a tap did.
type Action int

const (
	ActionToggle Action = iota
	ActionOpenDirectory
	ActionPreviewImage
)

// TapResult describes the outcome of Tap. Child is set for
// ActionOpenDirectory, Selected for ActionToggle.
type TapResult struct {
	Action   Action
	Entry    Entry
	Child    *Controller
	Selected bool
}

// Deps are the collaborators shared by every controller of a browsing session.
type Deps struct {
	Filesystem  fsys.Filesystem
	Classifier  *Classifier
	Preferences *Preferences
}

// Controller drives one open directory: its listing, its selection and the
// mutations issued from it. Child directories get their own Controller.
type Controller struct {
	deps      Deps
	listing   *Listing
	selection *Selection
	importing atomic.Bool
}

// NewController creates a controller for dir. It does not read the directory
// until Load is called.
func NewController(dir string, deps Deps) *Controller {
	if deps.Classifier == nil {
		deps.Classifier = MustClassifier(ClassifierOptions{})
	}
	return &Controller{
		deps:      deps,
		listing:   NewListing(deps.Filesystem, deps.Classifier, dir),
		selection: NewSelection(),
	}
}

// logger is resolved per call so a reconfigured package logger takes effect
// on controllers that already exist.
func (c *Controller) logger() *log.Logger {
	return log.LogWithFields(log.F("dir", c.Path()))
}

// Load performs the initial listing. A failure leaves the listing empty with
// the error available from Snapshot.
func (c *Controller) Load() error {
	return c.Refresh()
}

// Path returns the directory this controller shows.
func (c *Controller) Path() string {
	return c.listing.Path()
}

// State returns Editing while multi-select is active, Browsing otherwise.
func (c *Controller) State() State {
	if c.selection.EditMode() {
		return Editing
	}
	return Browsing
}

// Entries returns the current listing.
func (c *Controller) Entries() []Entry {
	return c.listing.Entries()
}

// Selection exposes the selection model for read access.
func (c *Controller) Selection() *Selection {
	return c.selection
}

// Lookup finds a listed entry by base name.
func (c *Controller) Lookup(name string) (Entry, bool) {
	return c.listing.LookupName(name)
}

// Refresh re-lists the directory and drops selections that vanished.
func (c *Controller) Refresh() error {
	entries, err := c.listing.Refresh()
	c.selection.Retain(entries)
	return err
}

// EnterEditMode switches to Editing.
func (c *Controller) EnterEditMode() {
	c.selection.EnterEditMode()
}

// CancelEditMode switches to Browsing and clears the selection.
func (c *Controller) CancelEditMode() {
	c.selection.CancelEditMode()
}

// Child creates an independent controller for a subdirectory.
func (c *Controller) Child(dir string) *Controller {
	return NewController(dir, c.deps)
}

// Tap dispatches a tap on a listed entry according to the current state.
func (c *Controller) Tap(e Entry) (TapResult, error) {
	listed, ok := c.listing.Lookup(e.Path)
	if !ok {
		return TapResult{}, errors.NewFileError("entry not in listing", e.Path, errors.NotListed, nil)
	}

	if c.State() == Editing {
		selected := c.selection.Toggle(listed)
		return TapResult{Action: ActionToggle, Entry: listed, Selected: selected}, nil
	}

	switch listed.Kind {
	case Directory:
		child := c.Child(listed.Path)
		if err := child.Load(); err != nil {
			c.logger().WithError(err).Warn("opened directory is not listable")
		}
		return TapResult{Action: ActionOpenDirectory, Entry: listed, Child: child}, nil
	case Image:
		return TapResult{Action: ActionPreviewImage, Entry: listed}, nil
	default:
		return TapResult{}, errors.NewOperationError(fmt.Sprintf("unknown entry kind %d", listed.Kind), "tap", nil)
	}
}

// ValidateName accepts a single path element usable as a directory or file name.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.NewFileError("name is empty", name, errors.NameInvalid, nil)
	case strings.ContainsAny(name, "/\\\x00"):
		return errors.NewFileError("name contains a path separator", name, errors.NameInvalid, nil)
	case name == "." || name == "..":
		return errors.NewFileError("name is reserved", name, errors.NameInvalid, nil)
	}
	return nil
}

// CreateDirectory creates name inside the current directory and re-lists.
func (c *Controller) CreateDirectory(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	path := c.deps.Filesystem.Join(c.Path(), name)
	if err := c.deps.Filesystem.CreateDirectory(path); err != nil {
		c.logger().WithError(err).Error("create directory failed")
		return err
	}
	c.logger().With(log.F("name", name)).Info("directory created")

	c.refreshAfter("create directory")
	return nil
}

// Importing reports whether an import is in flight.
func (c *Controller) Importing() bool {
	return c.importing.Load()
}

// ImportImage writes data under the base name of suggestedName. While another
// import is in flight the call is ignored and returns false.
func (c *Controller) ImportImage(data []byte, suggestedName string) (bool, error) {
	if !c.importing.CompareAndSwap(false, true) {
		c.logger().Debug("import already in flight, ignoring duplicate request")
		return false, nil
	}
	defer c.importing.Store(false)

	if err := c.writeImage(data, suggestedName); err != nil {
		return false, err
	}
	return true, nil
}

// Import picks one image and writes it. The in-flight guard covers both the
// pick and the write. A cancelled pick returns false without error.
func (c *Controller) Import(ctx context.Context, picker importer.Picker) (bool, error) {
	if !c.importing.CompareAndSwap(false, true) {
		c.logger().Debug("import already in flight, ignoring duplicate request")
		return false, nil
	}
	defer c.importing.Store(false)

	picked, err := picker.Pick(ctx)
	if err != nil {
		if errors.Is(err, importer.ErrCancelled) {
			c.logger().Debug("import cancelled")
			return false, nil
		}
		c.logger().WithError(err).Error("import pick failed")
		return false, err
	}

	if err := c.writeImage(picked.Data, picked.Name); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Controller) writeImage(data []byte, suggestedName string) error {
	name := baseName(suggestedName)
	if err := ValidateName(name); err != nil {
		return err
	}

	path := c.deps.Filesystem.Join(c.Path(), name)
	if err := c.deps.Filesystem.WriteFile(path, data); err != nil {
		c.logger().WithError(err).Error("image import failed")
		return err
	}
	c.logger().With(log.F("name", name), log.F("bytes", len(data))).Info("image imported")

	c.refreshAfter("import image")
	return nil
}

// DeleteFailure pairs an entry with the error its deletion returned.
type DeleteFailure struct {
	Entry Entry
	Err   error
}

func (f DeleteFailure) Error() string {
	return fmt.Sprintf("delete %s: %v", f.Entry.Name(), f.Err)
}

func (f DeleteFailure) Unwrap() error {
	return f.Err
}

// DeleteReport lists what a batch delete removed and what it could not.
type DeleteReport struct {
	Deleted  []Entry
	Failures []DeleteFailure
}

// Err aggregates the failures, or returns nil when every delete succeeded.
func (r *DeleteReport) Err() error {
	var result *multierror.Error
	for _, f := range r.Failures {
		result = multierror.Append(result, f)
	}
	return result.ErrorOrNil()
}

// DeleteSelected deletes every selected entry, continuing past failures, then
// re-lists and returns to Browsing. The returned error aggregates the failed
// deletions; the report is non-nil whenever deletion was attempted.
func (c *Controller) DeleteSelected() (*DeleteReport, error) {
	if c.State() != Editing {
		return nil, errors.NewOperationError("not in edit mode", "delete", nil)
	}
	if c.selection.Len() == 0 {
		return nil, errors.NewOperationError("nothing selected", "delete", nil)
	}

	report := &DeleteReport{}
	for _, e := range c.selection.Selected() {
		if err := c.deps.Filesystem.DeleteEntry(e.Path); err != nil {
			c.logger().WithError(err).Warn("delete failed")
			report.Failures = append(report.Failures, DeleteFailure{Entry: e, Err: err})
			continue
		}
		report.Deleted = append(report.Deleted, e)
	}
	c.logger().With(log.F("deleted", len(report.Deleted)), log.F("failed", len(report.Failures))).Info("batch delete finished")

	c.refreshAfter("delete")
	c.selection.CancelEditMode()
	return report, report.Err()
}

// DisplayMode returns the current display preference.
func (c *Controller) DisplayMode() DisplayMode {
	if c.deps.Preferences == nil {
		return List
	}
	return c.deps.Preferences.DisplayMode()
}

// ToggleDisplayMode flips the display preference. The listing is untouched.
func (c *Controller) ToggleDisplayMode() (DisplayMode, error) {
	if c.deps.Preferences == nil {
		return List, errors.NewOperationError("no preference store", "toggle display mode", nil)
	}
	mode, err := c.deps.Preferences.ToggleDisplayMode()
	if err != nil {
		c.logger().WithError(err).Error("display mode not saved")
	}
	return mode, err
}

// ReadImage returns the bytes of a listed image for preview.
func (c *Controller) ReadImage(e Entry) ([]byte, error) {
	listed, ok := c.listing.Lookup(e.Path)
	if !ok {
		return nil, errors.NewFileError("entry not in listing", e.Path, errors.NotListed, nil)
	}
	if listed.Kind != Image {
		return nil, errors.NewOperationError("entry is not an image", "preview", nil)
	}
	return c.deps.Filesystem.ReadFile(listed.Path)
}

// View is a read-only snapshot for presentation layers.
type View struct {
	Path      string
	Entries   []Entry
	Selected  map[string]bool
	State     State
	Mode      DisplayMode
	Err       error
	Importing bool
}

// IsSelected reports whether e was selected when the snapshot was taken.
func (v View) IsSelected(e Entry) bool {
	return v.Selected[e.Path]
}

// Snapshot captures what a renderer needs.
func (c *Controller) Snapshot() View {
	selected := make(map[string]bool, c.selection.Len())
	for _, e := range c.selection.Selected() {
		selected[e.Path] = true
	}
	return View{
		Path:      c.Path(),
		Entries:   c.listing.Entries(),
		Selected:  selected,
		State:     c.State(),
		Mode:      c.DisplayMode(),
		Err:       c.listing.Err(),
		Importing: c.Importing(),
	}
}

// refreshAfter re-lists after a mutation. A failing re-list shows up as an
// unavailable listing, it does not undo the mutation.
func (c *Controller) refreshAfter(op string) {
	if err := c.Refresh(); err != nil {
		c.logger().WithError(err).Warnf("refresh after %s failed", op)
	}
}

func baseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
