package settings

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"filedeck/internal/errors"
	"filedeck/internal/log"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStores(t *testing.T) {
	backends := []struct {
		name    string
		backend string
		file    string
	}{
		{"yaml", BackendYAML, "settings.yaml"},
		{"toml", BackendTOML, "settings.toml"},
		{"bolt", BackendBolt, "settings.db"},
		{"memory", BackendMemory, ""},
	}

	for _, tt := range backends {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", tt.file)
			s, err := Open(tt.backend, path)
			require.NoError(t, err)
			defer s.Close()

			_, ok, err := s.Get("display_mode")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set("display_mode", "grid"))
			v, ok, err := s.Get("display_mode")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "grid", v)

			require.NoError(t, s.Set("display_mode", "list"))
			v, _, err = s.Get("display_mode")
			require.NoError(t, err)
			assert.Equal(t, "list", v)
		})
	}
}

func TestFileStoreSharedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	writer := NewYAMLStore(path)
	reader := NewYAMLStore(path)

	require.NoError(t, writer.Set("display_mode", "grid"))
	require.NoError(t, writer.Set("other", "value"))

	v, ok, err := reader.Get("display_mode")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "grid", v)
	assert.Equal(t, path, reader.Path())
}

func TestBoltStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")
	s, err := OpenBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("display_mode", "grid"))
	require.NoError(t, s.Close())

	s, err = OpenBoltStore(path)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Get("display_mode")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "grid", v)
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- a\n- b\n"), 0644))

	_, _, err := NewYAMLStore(path).Get("display_mode")
	assert.True(t, errors.IsIOFailure(err))
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("redis", "")
	assert.True(t, errors.IsInvalidConfig(err))
}

// stuckFs accepts writes but refuses renames and removals.
type stuckFs struct {
	afero.Fs
}

func (stuckFs) Rename(oldname, newname string) error { return os.ErrPermission }

func (stuckFs) Remove(name string) error { return os.ErrPermission }

func TestFileStoreReportsLeftoverTempFile(t *testing.T) {
	var buf bytes.Buffer
	log.Configure(log.WithOutput(&buf))
	t.Cleanup(func() { log.Configure(log.WithOutput(io.Discard)) })

	mem := afero.NewMemMapFs()
	s := NewYAMLStore("/cfg/settings.yaml")
	s.fs = stuckFs{Fs: mem}

	err := s.Set("display_mode", "grid")
	assert.True(t, errors.IsIOFailure(err), "got %v", err)
	assert.Contains(t, buf.String(), "failed to remove temp file")
	assert.Contains(t, buf.String(), "path=/cfg/settings.yaml.tmp")

	exists, err := afero.Exists(mem, "/cfg/settings.yaml")
	require.NoError(t, err)
	assert.False(t, exists)
}
