package fsys

import (
	"os"
	"path/filepath"

	"filedeck/internal/errors"
	"filedeck/internal/log"

	"github.com/spf13/afero"
)

// Local is a Filesystem over an afero.Fs: the OS disk in production and a
// memory-backed tree in tests.
type Local struct {
	fs afero.Fs
}

// NewLocal returns a Filesystem backed by the operating system.
func NewLocal() *Local {
	return &Local{fs: afero.NewOsFs()}
}

// NewMemory returns a Filesystem that lives entirely in memory.
func NewMemory() *Local {
	return &Local{fs: afero.NewMemMapFs()}
}

// Fs exposes the underlying afero.Fs, mostly for test fixtures.
func (l *Local) Fs() afero.Fs {
	return l.fs
}

// ListChildren reads dir without sorting so the OS enumeration order is kept.
func (l *Local) ListChildren(dir string) ([]Child, error) {
	f, err := l.fs.Open(dir)
	if err != nil {
		return nil, errors.IOError("list", dir, err)
	}
	defer f.Close()

	infos, err := f.Readdir(-1)
	if err != nil {
		return nil, errors.IOError("list", dir, err)
	}

	children := make([]Child, 0, len(infos))
	for _, info := range infos {
		children = append(children, Child{
			Name:    info.Name(),
			Path:    filepath.Join(dir, info.Name()),
			IsDir:   info.IsDir(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return children, nil
}

// CreateDirectory creates path without intermediate directories.
func (l *Local) CreateDirectory(path string) error {
	if _, err := l.fs.Stat(path); err == nil {
		return errors.NewFileError("already exists", path, errors.AlreadyExists, nil)
	}
	if err := l.fs.Mkdir(path, 0755); err != nil {
		if os.IsExist(err) {
			return errors.NewFileError("already exists", path, errors.AlreadyExists, err)
		}
		return errors.IOError("create directory", path, err)
	}
	return nil
}

// DeleteEntry removes path and anything below it.
func (l *Local) DeleteEntry(path string) error {
	if _, err := l.fs.Stat(path); err != nil {
		return errors.IOError("delete", path, err)
	}
	if err := l.fs.RemoveAll(path); err != nil {
		return errors.IOError("delete", path, err)
	}
	return nil
}

// WriteFile writes to a temporary sibling and renames it into place, so a
// failed write never leaves a partial file at path.
func (l *Local) WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := afero.TempFile(l.fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.IOError("write", path, err)
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = l.fs.Rename(tmpName, path)
	}
	if werr != nil {
		if rerr := l.fs.Remove(tmpName); rerr != nil && !os.IsNotExist(rerr) {
			log.LogWithFields(log.F("path", tmpName)).Warnf("failed to remove temp file: %v", rerr)
		}
		return errors.IOError("write", path, werr)
	}
	return nil
}

// ReadFile returns the file contents.
func (l *Local) ReadFile(path string) ([]byte, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, errors.IOError("read", path, err)
	}
	return data, nil
}

func (l *Local) Join(elem ...string) string { return filepath.Join(elem...) }

func (l *Local) Base(path string) string { return filepath.Base(path) }

func (l *Local) Close() error { return nil }
