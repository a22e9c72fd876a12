package tui

import (
	"testing"

	"filedeck/internal/browser"
	"filedeck/internal/fsys"
	"filedeck/internal/importer"
	"filedeck/internal/settings"
	"filedeck/internal/testutil"
	"filedeck/internal/tui/common"
	"filedeck/internal/tui/messages"

	alsrt "github.com/alecthomas/assert"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func newTestModel(t *testing.T) (*Model, *fsys.Local, settings.Store) {
	t.Helper()
	fs := fsys.NewMemory()
	testutil.MkdirAll(t, fs.Fs(), "/root/sub/inner")
	testutil.WriteFiles(t, fs.Fs(), map[string][]byte{
		"/root/a.png":  testutil.PNG(t, 4, 4),
		"/src/new.png": testutil.PNG(t, 4, 4),
	})

	store := settings.NewMemoryStore()
	root := browser.NewController("/root", browser.Deps{
		Filesystem:  fs,
		Preferences: browser.NewPreferences(store),
	})
	require.NoError(t, root.Load())

	m := New(root, WithSize(100, 40), WithPickerFactory(func(path string) importer.Picker {
		return &importer.FilePicker{Fs: fs.Fs(), Path: path}
	}))
	return m, fs, store
}

func send(m *Model, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

// drain runs cmd and feeds import results back into m.
func drain(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			drain(m, c)
		}
	case messages.ImportDoneMsg:
		m.Update(msg)
	}
}

func TestModelInitialization(t *testing.T) {
	m, _, _ := newTestModel(t)

	assert.Equal(t, common.Normal, m.Mode())
	assert.Equal(t, 1, m.Depth())
	assert.Equal(t, 0, m.Cursor())
	assert.Nil(t, m.Init())

	view := m.View()
	alsrt.Contains(t, view, "/root")
	alsrt.Contains(t, view, "a.png")
	alsrt.Contains(t, view, "sub/")
	alsrt.Contains(t, view, "▦ grid", "toggle shows the mode it switches to")
}

func TestNavigation(t *testing.T) {
	m, _, _ := newTestModel(t)

	send(m, runes("j"))
	alsrt.Equal(t, 1, m.Cursor())
	send(m, runes("j"))
	alsrt.Equal(t, 1, m.Cursor(), "cursor stays on the last entry")

	send(m, enter)
	alsrt.Equal(t, 2, m.Depth())
	alsrt.Equal(t, "/root/sub", m.Snapshot().Path)
	alsrt.Contains(t, m.View(), "inner/")

	send(m, esc)
	alsrt.Equal(t, 1, m.Depth())
	alsrt.Equal(t, 1, m.Cursor(), "parent keeps its cursor")

	send(m, esc)
	alsrt.Equal(t, 1, m.Depth())
}

func TestEditModeDelete(t *testing.T) {
	m, fs, _ := newTestModel(t)

	send(m, runes("d"))
	assert.Equal(t, common.Normal, m.Mode())
	assert.Contains(t, m.Status(), "select entries first")

	send(m, runes("e"))
	assert.Equal(t, browser.Editing, m.Snapshot().State)
	assert.Contains(t, m.View(), "EDIT 0 selected")

	send(m, runes(" "))
	assert.True(t, m.Snapshot().IsSelected(m.Snapshot().Entries[0]))
	assert.Contains(t, m.View(), "[x]")

	send(m, runes("d"))
	require.Equal(t, common.ConfirmDelete, m.Mode())
	assert.Contains(t, m.View(), "Delete 1 entry?")

	send(m, runes("y"))
	assert.Equal(t, common.Normal, m.Mode())
	assert.Equal(t, browser.Browsing, m.Snapshot().State)
	assert.Equal(t, "Deleted 1", m.Status())

	exists, err := afero.Exists(fs.Fs(), "/root/a.png")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Len(t, m.Snapshot().Entries, 1)
}

func TestEditModeCancel(t *testing.T) {
	m, _, _ := newTestModel(t)

	send(m, runes("e"), runes(" "), runes("j"), runes(" "))
	assert.Len(t, m.Snapshot().Selected, 2)

	send(m, runes("d"), runes("n"))
	assert.Equal(t, common.Normal, m.Mode())

	send(m, esc)
	assert.Equal(t, browser.Browsing, m.Snapshot().State)
	assert.Empty(t, m.Snapshot().Selected)
	assert.Equal(t, 1, m.Depth())
}

func TestCreateDirectoryFromAddMenu(t *testing.T) {
	m, fs, _ := newTestModel(t)

	send(m, runes("a"))
	require.Equal(t, common.AddMenu, m.Mode())
	alsrt.Contains(t, m.View(), "New directory")

	send(m, runes("n"))
	require.Equal(t, common.MkdirPrompt, m.Mode())

	send(m, runes("albums"), enter)
	assert.Equal(t, common.Normal, m.Mode())
	assert.Equal(t, "Created albums", m.Status())

	exists, err := afero.DirExists(fs.Fs(), "/root/albums")
	require.NoError(t, err)
	assert.True(t, exists)

	cur := m.Snapshot().Entries[m.Cursor()]
	assert.Equal(t, "albums", cur.Name())
}

func TestCreateDirectoryInvalidName(t *testing.T) {
	m, _, _ := newTestModel(t)

	send(m, runes("n"), runes("a/b"), enter)
	assert.Equal(t, common.Normal, m.Mode())
	assert.Contains(t, m.Status(), "path separator")
	assert.Len(t, m.Snapshot().Entries, 2)
}

func TestPromptEscapeCancels(t *testing.T) {
	m, _, _ := newTestModel(t)

	send(m, runes("n"), runes("x"), esc)
	assert.Equal(t, common.Normal, m.Mode())
	assert.Len(t, m.Snapshot().Entries, 2)
}

func TestImport(t *testing.T) {
	m, fs, _ := newTestModel(t)

	send(m, runes("i"))
	require.Equal(t, common.ImportPrompt, m.Mode())

	cmd := send(m, runes("/src/new.png"), enter)
	require.NotNil(t, cmd)
	assert.True(t, m.Busy())

	send(m, runes("e"))
	assert.Equal(t, browser.Browsing, m.Snapshot().State, "controller is not touched while importing")
	assert.Equal(t, "Import in progress", m.Status())

	drain(m, cmd)
	assert.False(t, m.Busy())
	assert.Equal(t, "Image imported", m.Status())

	exists, err := afero.Exists(fs.Fs(), "/root/new.png")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Len(t, m.Snapshot().Entries, 3)
}

func TestImportCancelledAndFailed(t *testing.T) {
	m, _, _ := newTestModel(t)

	drain(m, send(m, runes("i"), enter))
	assert.Equal(t, "Nothing imported", m.Status())

	drain(m, send(m, runes("i"), runes("/src/missing.png"), enter))
	assert.Contains(t, m.Status(), "Import failed")
	assert.Len(t, m.Snapshot().Entries, 2)
}

func TestToggleDisplayMode(t *testing.T) {
	m, _, store := newTestModel(t)

	send(m, runes("v"))
	assert.Equal(t, browser.Grid, m.Snapshot().Mode)
	v, ok, err := store.Get(browser.DisplayModeKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "grid", v)

	view := m.View()
	alsrt.Contains(t, view, "☰ list")
	alsrt.Contains(t, view, "folder")

	send(m, runes("l"))
	assert.Equal(t, 1, m.Cursor(), "right moves across cells in grid mode")

	send(m, runes("v"))
	assert.Equal(t, browser.List, m.Snapshot().Mode)
}

func TestToggleDisplayModeKeepsSelection(t *testing.T) {
	m, _, _ := newTestModel(t)

	send(m, runes("e"), enter)
	first := m.Snapshot().Entries[0]
	require.True(t, m.Snapshot().IsSelected(first))

	send(m, runes("v"))
	view := m.Snapshot()
	assert.Equal(t, browser.Grid, view.Mode)
	assert.Equal(t, browser.Editing, view.State)
	assert.True(t, view.IsSelected(first))
	assert.Len(t, view.Selected, 1)
	assert.Equal(t, common.Normal, m.Mode())
	alsrt.Contains(t, m.View(), "EDIT 1 selected")

	send(m, runes("v"))
	assert.Equal(t, browser.List, m.Snapshot().Mode)
	assert.True(t, m.Snapshot().IsSelected(first))
}

func TestPreview(t *testing.T) {
	m, _, _ := newTestModel(t)

	send(m, enter)
	require.Equal(t, common.Preview, m.Mode())
	alsrt.Contains(t, m.View(), "PNG 4x4")

	send(m, esc)
	assert.Equal(t, common.Normal, m.Mode())
}

func TestListingUnavailable(t *testing.T) {
	fs := fsys.NewMemory()
	root := browser.NewController("/missing", browser.Deps{Filesystem: fs})
	assert.Error(t, root.Load())

	m := New(root)
	alsrt.Contains(t, m.View(), "Listing unavailable")

	send(m, enter, runes("j"))
	assert.Equal(t, 0, m.Cursor())
}

func TestEmptyDirectory(t *testing.T) {
	fs := fsys.NewMemory()
	require.NoError(t, fs.Fs().MkdirAll("/empty", 0755))
	root := browser.NewController("/empty", browser.Deps{Filesystem: fs})
	require.NoError(t, root.Load())

	m := New(root)
	alsrt.Contains(t, m.View(), "Empty directory")
}

func TestQuitAndHelp(t *testing.T) {
	m, _, _ := newTestModel(t)

	send(m, runes("?"))
	alsrt.Contains(t, m.View(), "new directory")

	cmd := send(m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestWindowResize(t *testing.T) {
	m, _, _ := newTestModel(t)
	send(m, tea.WindowSizeMsg{Width: 40, Height: 10})
	assert.Equal(t, 38, m.Width())
}
