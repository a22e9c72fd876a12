package browser

import (
	"bytes"
	"context"
	"io"
	"path"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"filedeck/internal/errors"
	"filedeck/internal/fsys"
	"filedeck/internal/importer"
	"filedeck/internal/log"
	"filedeck/internal/settings"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockFS is a testify mock of fsys.Filesystem with slash-separated paths.
type mockFS struct {
	mock.Mock
}

func (m *mockFS) ListChildren(dir string) ([]fsys.Child, error) {
	args := m.Called(dir)
	children, _ := args.Get(0).([]fsys.Child)
	return children, args.Error(1)
}

func (m *mockFS) CreateDirectory(p string) error { return m.Called(p).Error(0) }

func (m *mockFS) DeleteEntry(p string) error { return m.Called(p).Error(0) }

func (m *mockFS) WriteFile(p string, data []byte) error { return m.Called(p, data).Error(0) }

func (m *mockFS) ReadFile(p string) ([]byte, error) {
	args := m.Called(p)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockFS) Join(elem ...string) string { return path.Join(elem...) }

func (m *mockFS) Base(p string) string { return path.Base(p) }

func (m *mockFS) Close() error { return nil }

func file(dir, name string) fsys.Child {
	return fsys.Child{Name: name, Path: path.Join(dir, name)}
}

func dir(parent, name string) fsys.Child {
	return fsys.Child{Name: name, Path: path.Join(parent, name), IsDir: true}
}

func memoryController(t *testing.T, files ...string) (*Controller, *fsys.Local) {
	t.Helper()
	fs := fsys.NewMemory()
	require.NoError(t, fs.Fs().MkdirAll("/root", 0755))
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs.Fs(), filepath.Join("/root", f), []byte(f), 0644))
	}
	c := NewController("/root", Deps{
		Filesystem:  fs,
		Classifier:  MustClassifier(ClassifierOptions{}),
		Preferences: NewPreferences(settings.NewMemoryStore()),
	})
	require.NoError(t, c.Load())
	return c, fs
}

func names(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out
}

func TestRefreshKeepsEnumerationOrder(t *testing.T) {
	fs := &mockFS{}
	fs.On("ListChildren", "/root").Return([]fsys.Child{file("/root", "a.png"), dir("/root", "sub")}, nil)

	c := NewController("/root", Deps{Filesystem: fs})
	require.NoError(t, c.Load())

	assert.Equal(t, []Entry{
		{Kind: Image, Path: "/root/a.png"},
		{Kind: Directory, Path: "/root/sub"},
	}, c.Entries())
	fs.AssertExpectations(t)
}

func TestRefreshFailureMakesListingUnavailable(t *testing.T) {
	fs := &mockFS{}
	fs.On("ListChildren", "/root").Return([]fsys.Child{file("/root", "a.png")}, nil).Once()
	fs.On("ListChildren", "/root").Return(nil, errors.IOError("list", "/root", assert.AnError)).Once()

	c := NewController("/root", Deps{Filesystem: fs})
	require.NoError(t, c.Load())
	c.EnterEditMode()
	_, err := c.Tap(Entry{Kind: Image, Path: "/root/a.png"})
	require.NoError(t, err)

	err = c.Refresh()
	require.Error(t, err)
	assert.True(t, errors.IsIOFailure(err))

	view := c.Snapshot()
	assert.Empty(t, view.Entries)
	assert.Empty(t, view.Selected)
	assert.Error(t, view.Err)
}

func TestCreateDirectoryRoundTrip(t *testing.T) {
	c, _ := memoryController(t, "a.png")

	require.NoError(t, c.CreateDirectory("foo"))

	e, ok := c.Lookup("foo")
	require.True(t, ok)
	assert.Equal(t, Directory, e.Kind)
	assert.Equal(t, filepath.Join("/root", "foo"), e.Path)
}

func TestCreateDirectoryErrors(t *testing.T) {
	c, _ := memoryController(t, "a.png")
	require.NoError(t, c.CreateDirectory("foo"))

	tests := []struct {
		name  string
		input string
		check func(error) bool
	}{
		{"empty", "", errors.IsNameInvalid},
		{"blank", "   ", errors.IsNameInvalid},
		{"slash", "a/b", errors.IsNameInvalid},
		{"backslash", `a\b`, errors.IsNameInvalid},
		{"dot", ".", errors.IsNameInvalid},
		{"dotdot", "..", errors.IsNameInvalid},
		{"existing directory", "foo", errors.IsAlreadyExists},
		{"existing file", "a.png", errors.IsAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := c.Entries()
			err := c.CreateDirectory(tt.input)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error kind: %v", err)
			assert.Equal(t, before, c.Entries())
		})
	}
}

func TestCreateDirectoryIOFailure(t *testing.T) {
	fs := &mockFS{}
	fs.On("ListChildren", "/root").Return([]fsys.Child{}, nil).Once()
	fs.On("CreateDirectory", "/root/foo").Return(errors.IOError("create directory", "/root/foo", assert.AnError))

	c := NewController("/root", Deps{Filesystem: fs})
	require.NoError(t, c.Load())

	err := c.CreateDirectory("foo")
	assert.True(t, errors.IsIOFailure(err))
	fs.AssertNumberOfCalls(t, "ListChildren", 1)
}

func TestTapDispatch(t *testing.T) {
	c, fs := memoryController(t, "a.png")
	require.NoError(t, fs.Fs().MkdirAll("/root/sub/inner", 0755))
	require.NoError(t, c.Refresh())

	sub, ok := c.Lookup("sub")
	require.True(t, ok)
	img, ok := c.Lookup("a.png")
	require.True(t, ok)

	t.Run("directory opens child", func(t *testing.T) {
		res, err := c.Tap(sub)
		require.NoError(t, err)
		assert.Equal(t, ActionOpenDirectory, res.Action)
		require.NotNil(t, res.Child)
		assert.Equal(t, sub.Path, res.Child.Path())
		assert.Equal(t, []string{"inner"}, names(res.Child.Entries()))
		assert.Equal(t, Browsing, res.Child.State())
	})

	t.Run("image previews", func(t *testing.T) {
		res, err := c.Tap(img)
		require.NoError(t, err)
		assert.Equal(t, ActionPreviewImage, res.Action)
		assert.Nil(t, res.Child)

		data, err := c.ReadImage(img)
		require.NoError(t, err)
		assert.Equal(t, []byte("a.png"), data)
	})

	t.Run("editing toggles", func(t *testing.T) {
		c.EnterEditMode()
		defer c.CancelEditMode()

		res, err := c.Tap(sub)
		require.NoError(t, err)
		assert.Equal(t, ActionToggle, res.Action)
		assert.True(t, res.Selected)
		assert.True(t, c.Selection().IsSelected(sub))
	})

	t.Run("unlisted entry", func(t *testing.T) {
		_, err := c.Tap(Entry{Kind: Image, Path: "/root/ghost.png"})
		assert.True(t, errors.IsNotListed(err))
	})
}

func TestChildControllersAreIndependent(t *testing.T) {
	c, fs := memoryController(t)
	require.NoError(t, fs.Fs().MkdirAll("/root/sub", 0755))
	require.NoError(t, afero.WriteFile(fs.Fs(), "/root/sub/x.png", nil, 0644))
	require.NoError(t, c.Refresh())

	sub, _ := c.Lookup("sub")
	res, err := c.Tap(sub)
	require.NoError(t, err)
	child := res.Child

	child.EnterEditMode()
	x, _ := child.Lookup("x.png")
	_, err = child.Tap(x)
	require.NoError(t, err)

	assert.Equal(t, Browsing, c.State())
	assert.Equal(t, 0, c.Selection().Len())
	assert.Equal(t, 1, child.Selection().Len())
}

func TestSelectionSubsetOfListingAfterRefresh(t *testing.T) {
	c, fs := memoryController(t, "a.png", "b.png", "c.png")
	c.EnterEditMode()
	for _, e := range c.Entries() {
		_, err := c.Tap(e)
		require.NoError(t, err)
	}

	require.NoError(t, fs.Fs().Remove("/root/b.png"))
	require.NoError(t, c.Refresh())

	listed := map[string]bool{}
	for _, e := range c.Entries() {
		listed[e.Path] = true
	}
	for _, e := range c.Selection().Selected() {
		assert.True(t, listed[e.Path], "dangling selection %s", e.Path)
	}
	assert.Equal(t, 2, c.Selection().Len())
}

func TestCancelEditModeClearsSelection(t *testing.T) {
	c, _ := memoryController(t, "a.png", "b.png")

	c.EnterEditMode()
	assert.Equal(t, Editing, c.State())
	for _, e := range c.Entries() {
		_, err := c.Tap(e)
		require.NoError(t, err)
	}
	require.Equal(t, 2, c.Selection().Len())

	c.CancelEditMode()
	assert.Equal(t, Browsing, c.State())
	assert.Equal(t, 0, c.Selection().Len())
	assert.False(t, c.Selection().EditMode())
}

func TestDeleteSelectedPartialFailure(t *testing.T) {
	fs := &mockFS{}
	fs.On("ListChildren", "/root").Return([]fsys.Child{file("/root", "a.png"), file("/root", "b.png")}, nil).Once()
	fs.On("ListChildren", "/root").Return([]fsys.Child{file("/root", "a.png")}, nil).Once()
	fs.On("DeleteEntry", "/root/a.png").Return(errors.IOError("delete", "/root/a.png", assert.AnError))
	fs.On("DeleteEntry", "/root/b.png").Return(nil)

	c := NewController("/root", Deps{Filesystem: fs})
	require.NoError(t, c.Load())
	c.EnterEditMode()
	entries := c.Entries()
	for _, e := range entries {
		_, err := c.Tap(e)
		require.NoError(t, err)
	}

	report, err := c.DeleteSelected()
	require.Error(t, err)
	require.NotNil(t, report)

	require.Len(t, report.Failures, 1)
	assert.Equal(t, entries[0], report.Failures[0].Entry)
	assert.True(t, errors.IsIOFailure(report.Failures[0].Err))
	assert.Equal(t, []Entry{entries[1]}, report.Deleted)
	assert.ErrorIs(t, err, assert.AnError)

	assert.Equal(t, []string{"a.png"}, names(c.Entries()))
	assert.Equal(t, Browsing, c.State())
	assert.Equal(t, 0, c.Selection().Len())

	fs.AssertCalled(t, "DeleteEntry", "/root/a.png")
	fs.AssertCalled(t, "DeleteEntry", "/root/b.png")
}

func TestDeleteSelectedSuccess(t *testing.T) {
	c, fs := memoryController(t, "a.png", "b.png")
	require.NoError(t, fs.Fs().MkdirAll("/root/sub/deep", 0755))
	require.NoError(t, c.Refresh())

	c.EnterEditMode()
	for _, n := range []string{"a.png", "sub"} {
		e, ok := c.Lookup(n)
		require.True(t, ok)
		_, err := c.Tap(e)
		require.NoError(t, err)
	}

	report, err := c.DeleteSelected()
	require.NoError(t, err)
	assert.Len(t, report.Deleted, 2)
	assert.Empty(t, report.Failures)
	assert.NoError(t, report.Err())
	assert.Equal(t, []string{"b.png"}, names(c.Entries()))
	assert.Equal(t, Browsing, c.State())
}

func TestDeleteSelectedInvalidState(t *testing.T) {
	c, _ := memoryController(t, "a.png")

	_, err := c.DeleteSelected()
	assert.True(t, errors.IsInvalidOperation(err))

	c.EnterEditMode()
	_, err = c.DeleteSelected()
	assert.True(t, errors.IsInvalidOperation(err))
	assert.Equal(t, Editing, c.State())
}

// blockingFS holds every WriteFile until release is closed.
type blockingFS struct {
	*fsys.Local
	started chan struct{}
	release chan struct{}
	once    sync.Once
	writes  atomic.Int32
}

func (b *blockingFS) WriteFile(p string, data []byte) error {
	b.writes.Add(1)
	b.once.Do(func() { close(b.started) })
	<-b.release
	return b.Local.WriteFile(p, data)
}

func TestImportImageSingleFlight(t *testing.T) {
	local := fsys.NewMemory()
	require.NoError(t, local.Fs().MkdirAll("/root", 0755))
	fs := &blockingFS{Local: local, started: make(chan struct{}), release: make(chan struct{})}

	c := NewController("/root", Deps{Filesystem: fs})
	require.NoError(t, c.Load())

	type result struct {
		ok  bool
		err error
	}
	first := make(chan result, 1)
	go func() {
		ok, err := c.ImportImage([]byte("first"), "a.png")
		first <- result{ok, err}
	}()
	<-fs.started
	assert.True(t, c.Importing())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := c.ImportImage([]byte("duplicate"), "a.png")
			assert.False(t, ok)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	close(fs.release)

	r := <-first
	require.NoError(t, r.err)
	assert.True(t, r.ok)
	assert.Equal(t, int32(1), fs.writes.Load())
	assert.False(t, c.Importing())

	data, err := afero.ReadFile(local.Fs(), "/root/a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), data)
	assert.Equal(t, []string{"a.png"}, names(c.Entries()))
}

func TestImportImageReleasesGuardAfterFailure(t *testing.T) {
	fs := &mockFS{}
	fs.On("ListChildren", "/root").Return([]fsys.Child{}, nil).Once()
	fs.On("WriteFile", "/root/a.png", []byte("x")).Return(errors.IOError("write", "/root/a.png", assert.AnError)).Once()
	fs.On("WriteFile", "/root/a.png", []byte("x")).Return(nil).Once()
	fs.On("ListChildren", "/root").Return([]fsys.Child{file("/root", "a.png")}, nil).Once()

	c := NewController("/root", Deps{Filesystem: fs})
	require.NoError(t, c.Load())

	ok, err := c.ImportImage([]byte("x"), "a.png")
	assert.False(t, ok)
	assert.True(t, errors.IsIOFailure(err))
	assert.Empty(t, c.Entries())

	ok, err = c.ImportImage([]byte("x"), "a.png")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"a.png"}, names(c.Entries()))
	fs.AssertExpectations(t)
}

func TestImportImageUsesBaseName(t *testing.T) {
	c, fs := memoryController(t)

	ok, err := c.ImportImage([]byte("img"), `C:\Users\me\cat.png`)
	require.NoError(t, err)
	assert.True(t, ok)
	exists, err := afero.Exists(fs.Fs(), "/root/cat.png")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = c.ImportImage([]byte("img"), "dir/")
	assert.True(t, errors.IsNameInvalid(err))
}

func TestImportWithPicker(t *testing.T) {
	c, fs := memoryController(t)

	t.Run("picked", func(t *testing.T) {
		ok, err := c.Import(context.Background(), importer.Static([]byte("img"), "b.png"))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"b.png"}, names(c.Entries()))
	})

	t.Run("cancelled", func(t *testing.T) {
		picker := importer.PickerFunc(func(ctx context.Context) (importer.Picked, error) {
			return importer.Picked{}, importer.ErrCancelled
		})
		ok, err := c.Import(context.Background(), picker)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.False(t, c.Importing())
	})

	t.Run("pick failure", func(t *testing.T) {
		picker := &importer.FilePicker{Fs: fs.Fs(), Path: "/missing.png"}
		ok, err := c.Import(context.Background(), picker)
		assert.False(t, ok)
		assert.True(t, errors.IsIOFailure(err))
	})

	t.Run("duplicate callback during pick", func(t *testing.T) {
		var inner bool
		var innerErr error
		picker := importer.PickerFunc(func(ctx context.Context) (importer.Picked, error) {
			inner, innerErr = c.ImportImage([]byte("dup"), "dup.png")
			return importer.Picked{Data: []byte("img"), Name: "c.png"}, nil
		})
		ok, err := c.Import(context.Background(), picker)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.False(t, inner)
		assert.NoError(t, innerErr)
		_, found := c.Lookup("dup.png")
		assert.False(t, found)
	})
}

func TestToggleDisplayModeDoesNotRefresh(t *testing.T) {
	fs := &mockFS{}
	fs.On("ListChildren", "/root").Return([]fsys.Child{}, nil).Once()

	c := NewController("/root", Deps{Filesystem: fs, Preferences: NewPreferences(settings.NewMemoryStore())})
	require.NoError(t, c.Load())

	assert.Equal(t, List, c.DisplayMode())
	mode, err := c.ToggleDisplayMode()
	require.NoError(t, err)
	assert.Equal(t, Grid, mode)
	assert.Equal(t, Grid, c.Snapshot().Mode)
	fs.AssertNumberOfCalls(t, "ListChildren", 1)
}

func TestToggleDisplayModeKeepsSelection(t *testing.T) {
	c, _ := memoryController(t, "a.png", "b.png")
	c.EnterEditMode()
	a, _ := c.Lookup("a.png")
	_, err := c.Tap(a)
	require.NoError(t, err)

	mode, err := c.ToggleDisplayMode()
	require.NoError(t, err)
	assert.Equal(t, Grid, mode)

	view := c.Snapshot()
	assert.Equal(t, Editing, view.State)
	assert.Equal(t, Grid, view.Mode)
	assert.True(t, view.IsSelected(a))
	assert.Equal(t, 1, c.Selection().Len())

	mode, err = c.ToggleDisplayMode()
	require.NoError(t, err)
	assert.Equal(t, List, mode)
	assert.True(t, c.Snapshot().IsSelected(a))
	assert.Equal(t, Editing, c.State())
}

func TestControllerLogsToCurrentLogger(t *testing.T) {
	t.Cleanup(func() { log.Configure(log.WithOutput(io.Discard)) })

	var before, after bytes.Buffer
	log.Configure(log.WithOutput(&before))
	c, _ := memoryController(t)

	log.Configure(log.WithOutput(&after))
	require.NoError(t, c.CreateDirectory("x"))

	assert.NotContains(t, before.String(), "directory created")
	assert.Contains(t, after.String(), "directory created")
	assert.Contains(t, after.String(), "dir=/root")
}

func TestSnapshot(t *testing.T) {
	c, _ := memoryController(t, "a.png", "b.png")
	c.EnterEditMode()
	a, _ := c.Lookup("a.png")
	_, err := c.Tap(a)
	require.NoError(t, err)

	view := c.Snapshot()
	assert.Equal(t, "/root", view.Path)
	assert.Equal(t, Editing, view.State)
	assert.Equal(t, List, view.Mode)
	assert.True(t, view.IsSelected(a))
	assert.Len(t, view.Entries, 2)
	assert.NoError(t, view.Err)
	assert.False(t, view.Importing)
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("holiday 2024"))
	assert.NoError(t, ValidateName(".hidden"))
	assert.Error(t, ValidateName("a\x00b"))
}
