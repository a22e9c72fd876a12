package tui

import (
	"context"
	"fmt"
	"strings"

	"filedeck/internal/browser"
	"filedeck/internal/importer"
	"filedeck/internal/log"
	"filedeck/internal/preview"
	"filedeck/internal/tui/common"
	"filedeck/internal/tui/components"
	"filedeck/internal/tui/messages"
	"filedeck/internal/tui/styles"
	"filedeck/internal/tui/views"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// frame is one level of the navigation stack. view is the last snapshot of
// ctrl taken on the update goroutine; rendering only reads view.
type frame struct {
	ctrl   *browser.Controller
	view   browser.View
	cursor int
}

// Option configures a Model.
type Option func(*Model)

// WithPickerFactory replaces how an entered path becomes an import source.
func WithPickerFactory(f func(path string) importer.Picker) Option {
	return func(m *Model) { m.newPicker = f }
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(m *Model) {
		m.width = width
		m.height = height
		m.help.Width = width
	}
}

type Model struct {
	stack  []*frame
	mode   common.Mode
	keys   KeyMap
	help   help.Model
	prompt *components.Prompt
	status *components.StatusBar

	preview views.PreviewState

	// Imports in flight per controller. A controller with pending imports is
	// owned by the import goroutine and is not touched until ImportDoneMsg.
	pending map[*browser.Controller]int

	width     int
	height    int
	newPicker func(path string) importer.Picker
}

// New creates a model showing root, which should already be loaded.
func New(root *browser.Controller, opts ...Option) *Model {
	m := &Model{
		mode:    common.Normal,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		status:  components.NewStatusBar(),
		pending: make(map[*browser.Controller]int),
		width:   80,
		height:  24,
		newPicker: func(path string) importer.Picker {
			return importer.NewFilePicker(path)
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.push(root)
	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case messages.ImportDoneMsg:
		m.handleImportDone(msg)
		return m, nil
	case messages.ErrorMsg:
		m.status.Set(components.LevelError, msg.Err.Error())
		return m, nil
	case spinner.TickMsg:
		return m, m.status.Update(msg)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.mode {
	case common.MkdirPrompt, common.ImportPrompt:
		return m.handlePromptKeys(msg)
	case common.AddMenu:
		return m.handleAddMenuKeys(msg)
	case common.ConfirmDelete:
		return m.handleConfirmKeys(msg)
	case common.Preview:
		if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Quit) || key.Matches(msg, m.keys.Open) {
			m.mode = common.Normal
			m.preview = views.PreviewState{}
		}
		return m, nil
	default:
		return m.handleNormalKeys(msg)
	}
}

func (m *Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	grid := m.top().view.Mode == browser.Grid

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		m.move(-m.step())
	case key.Matches(msg, m.keys.Down):
		m.move(m.step())
	case key.Matches(msg, m.keys.Left):
		if grid {
			m.move(-1)
		} else {
			m.back()
		}
	case key.Matches(msg, m.keys.Right):
		if grid {
			m.move(1)
		} else {
			m.open()
		}
	case key.Matches(msg, m.keys.Open):
		m.open()
	case key.Matches(msg, m.keys.Back):
		m.back()
	case key.Matches(msg, m.keys.Display):
		m.toggleDisplay()
	case key.Matches(msg, m.keys.Edit):
		m.toggleEdit()
	case key.Matches(msg, m.keys.Delete):
		m.confirmDelete()
	case key.Matches(msg, m.keys.Add):
		if !m.blocked() {
			m.mode = common.AddMenu
		}
	case key.Matches(msg, m.keys.Mkdir):
		m.startMkdir()
	case key.Matches(msg, m.keys.Import):
		m.startImport()
	case key.Matches(msg, m.keys.Refresh):
		m.refresh()
	}
	return m, nil
}

func (m *Model) handleAddMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Mkdir):
		m.mode = common.Normal
		m.startMkdir()
	case key.Matches(msg, m.keys.Import):
		m.mode = common.Normal
		m.startImport()
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit):
		m.mode = common.Normal
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = common.Normal
		m.deleteSelected()
	case "n", "N", "esc", "q":
		m.mode = common.Normal
	}
	return m, nil
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = common.Normal
		m.prompt = nil
		return m, nil
	case tea.KeyEnter:
		value := m.prompt.Value()
		mode := m.mode
		m.mode = common.Normal
		m.prompt = nil
		if mode == common.MkdirPrompt {
			m.createDirectory(value)
			return m, nil
		}
		return m, m.submitImport(value)
	}
	return m, m.prompt.Update(msg)
}

func (m *Model) top() *frame {
	return m.stack[len(m.stack)-1]
}

func (m *Model) push(c *browser.Controller) {
	f := &frame{ctrl: c}
	m.stack = append(m.stack, f)
	m.sync(f)
	if f.view.Err != nil {
		m.status.Set(components.LevelError, "Listing unavailable: "+f.view.Err.Error())
	}
}

// sync re-snapshots f unless an import goroutine owns its controller.
func (m *Model) sync(f *frame) {
	if m.pending[f.ctrl] > 0 {
		f.view.Mode = f.ctrl.DisplayMode()
		return
	}
	f.view = f.ctrl.Snapshot()
	f.cursor = clamp(f.cursor, len(f.view.Entries))
}

func (m *Model) blocked() bool {
	if m.pending[m.top().ctrl] > 0 {
		m.status.Set(components.LevelWarning, "Import in progress")
		return true
	}
	return false
}

func (m *Model) step() int {
	if m.top().view.Mode == browser.Grid {
		return components.GridColumns(m.width - 2)
	}
	return 1
}

func (m *Model) move(delta int) {
	f := m.top()
	n := len(f.view.Entries)
	if n == 0 {
		return
	}
	next := f.cursor + delta
	if next < 0 || next >= n {
		return
	}
	f.cursor = next
}

func (m *Model) current() (browser.Entry, bool) {
	f := m.top()
	if f.cursor < 0 || f.cursor >= len(f.view.Entries) {
		return browser.Entry{}, false
	}
	return f.view.Entries[f.cursor], true
}

func (m *Model) open() {
	if m.blocked() {
		return
	}
	e, ok := m.current()
	if !ok {
		return
	}
	f := m.top()
	res, err := f.ctrl.Tap(e)
	if err != nil {
		m.status.Set(components.LevelError, err.Error())
		m.sync(f)
		return
	}

	switch res.Action {
	case browser.ActionOpenDirectory:
		m.status.SetText("")
		m.push(res.Child)
	case browser.ActionPreviewImage:
		m.openPreview(f.ctrl, res.Entry)
	case browser.ActionToggle:
		m.sync(f)
	}
}

func (m *Model) back() {
	f := m.top()
	if f.view.State == browser.Editing {
		if m.blocked() {
			return
		}
		f.ctrl.CancelEditMode()
		m.sync(f)
		return
	}
	if len(m.stack) == 1 {
		return
	}
	m.stack = m.stack[:len(m.stack)-1]
	m.sync(m.top())
}

func (m *Model) toggleEdit() {
	if m.blocked() {
		return
	}
	f := m.top()
	if f.view.State == browser.Editing {
		f.ctrl.CancelEditMode()
	} else {
		f.ctrl.EnterEditMode()
	}
	m.sync(f)
}

func (m *Model) toggleDisplay() {
	mode, err := m.top().ctrl.ToggleDisplayMode()
	if err != nil {
		m.status.Set(components.LevelError, "Display mode not saved: "+err.Error())
	} else {
		m.status.SetText(fmt.Sprintf("%s view", mode))
	}
	m.sync(m.top())
}

func (m *Model) refresh() {
	if m.blocked() {
		return
	}
	f := m.top()
	if err := f.ctrl.Refresh(); err != nil {
		m.status.Set(components.LevelError, "Listing unavailable: "+err.Error())
	} else {
		m.status.SetText("Refreshed")
	}
	m.sync(f)
}

func (m *Model) confirmDelete() {
	if m.blocked() {
		return
	}
	f := m.top()
	if f.view.State != browser.Editing {
		m.status.Set(components.LevelWarning, "Press e to select entries first")
		return
	}
	if len(f.view.Selected) == 0 {
		m.status.Set(components.LevelWarning, "Nothing selected")
		return
	}
	m.mode = common.ConfirmDelete
}

func (m *Model) deleteSelected() {
	f := m.top()
	report, err := f.ctrl.DeleteSelected()
	m.sync(f)
	switch {
	case report == nil:
		m.status.Set(components.LevelError, err.Error())
	case err != nil:
		failed := make([]string, 0, len(report.Failures))
		for _, fail := range report.Failures {
			failed = append(failed, fail.Entry.Name())
		}
		m.status.Set(components.LevelError, fmt.Sprintf("Deleted %d, failed %d: %s",
			len(report.Deleted), len(report.Failures), strings.Join(failed, ", ")))
	default:
		m.status.Set(components.LevelSuccess, fmt.Sprintf("Deleted %d", len(report.Deleted)))
	}
}

func (m *Model) startMkdir() {
	if m.blocked() {
		return
	}
	m.prompt = components.NewPrompt("New directory:", "name")
	m.mode = common.MkdirPrompt
}

func (m *Model) createDirectory(name string) {
	f := m.top()
	if err := f.ctrl.CreateDirectory(name); err != nil {
		m.status.Set(components.LevelError, err.Error())
		return
	}
	m.sync(f)
	m.focus(f, name)
	m.status.Set(components.LevelSuccess, "Created "+name)
}

// startImport opens the path prompt. It stays available while an import is
// running; the controller drops the duplicate.
func (m *Model) startImport() {
	m.prompt = components.NewPrompt("Import image:", "path to image file")
	m.mode = common.ImportPrompt
}

func (m *Model) submitImport(path string) tea.Cmd {
	ctrl := m.top().ctrl
	picker := m.newPicker(path)
	m.pending[ctrl]++
	m.status.SetLoading(true)
	m.status.SetText("Importing")
	return tea.Batch(importCmd(ctrl, picker), m.status.Tick())
}

func importCmd(ctrl *browser.Controller, picker importer.Picker) tea.Cmd {
	return func() tea.Msg {
		ok, err := ctrl.Import(context.Background(), picker)
		return messages.ImportDoneMsg{Controller: ctrl, Imported: ok, Err: err}
	}
}

func (m *Model) handleImportDone(msg messages.ImportDoneMsg) {
	if m.pending[msg.Controller] > 1 {
		m.pending[msg.Controller]--
	} else {
		delete(m.pending, msg.Controller)
	}
	m.status.SetLoading(len(m.pending) > 0)

	for _, f := range m.stack {
		if f.ctrl == msg.Controller {
			m.sync(f)
		}
	}

	switch {
	case msg.Err != nil:
		log.LogWithError(msg.Err).Debug("import failed")
		m.status.Set(components.LevelError, "Import failed: "+msg.Err.Error())
	case msg.Imported:
		m.status.Set(components.LevelSuccess, "Image imported")
	default:
		m.status.SetText("Nothing imported")
	}
}

func (m *Model) openPreview(ctrl *browser.Controller, e browser.Entry) {
	state := views.PreviewState{Entry: e}
	data, err := ctrl.ReadImage(e)
	if err != nil {
		state.Err = err
	} else if state.Info, err = preview.Describe(data); err != nil {
		state.Err = err
	} else if state.Art, err = preview.Render(data, m.width-4); err != nil {
		state.Err = err
	}
	m.preview = state
	m.mode = common.Preview
}

func (m *Model) focus(f *frame, name string) {
	for i, e := range f.view.Entries {
		if e.Name() == name {
			f.cursor = i
			return
		}
	}
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	if m.mode == common.Preview {
		sb.WriteString(views.RenderPreview(m.preview))
		return styles.Theme.App.Render(sb.String())
	}

	sb.WriteString(views.RenderMainView(m))

	switch m.mode {
	case common.AddMenu:
		sb.WriteString("\n" + views.RenderAddMenu() + "\n")
	case common.MkdirPrompt, common.ImportPrompt:
		sb.WriteString("\n" + m.prompt.View() + "\n")
	case common.ConfirmDelete:
		sb.WriteString("\n" + views.RenderConfirmDelete(len(m.top().view.Selected)) + "\n")
	}

	if status := m.status.View(); status != "" {
		sb.WriteString("\n" + status)
	}
	sb.WriteString("\n" + m.help.View(m.keys))

	return styles.Theme.App.Render(sb.String())
}

// Getters

func (m *Model) Snapshot() browser.View {
	return m.top().view
}

func (m *Model) Cursor() int {
	return m.top().cursor
}

func (m *Model) Mode() common.Mode {
	return m.mode
}

func (m *Model) Depth() int {
	return len(m.stack)
}

func (m *Model) Width() int {
	return m.width - 2
}

func (m *Model) Busy() bool {
	return len(m.pending) > 0
}

// Status returns the status line text.
func (m *Model) Status() string {
	return m.status.Text()
}

// SetCursor sets the cursor position
func (m *Model) SetCursor(pos int) {
	f := m.top()
	if pos >= 0 && pos < len(f.view.Entries) {
		f.cursor = pos
	}
}

// Controller returns the controller of the open directory.
func (m *Model) Controller() *browser.Controller {
	return m.top().ctrl
}

func clamp(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}
