// Package fsys is the file-system boundary of filedeck. Every backend
// (local disk, in-memory, SFTP, FTP) implements Filesystem and reports
// failures as errors.FileError values with IOFailure or AlreadyExists kinds.
package fsys

import (
	"time"

	"filedeck/internal/errors"
)

// Backend names accepted by Open.
const (
	BackendLocal = "local"
	BackendSFTP  = "sftp"
	BackendFTP   = "ftp"
)

// Child is one immediate child of a listed directory.
type Child struct {
	Name    string
	Path    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// Filesystem defines the operations the browser core needs from storage.
type Filesystem interface {
	// ListChildren returns the immediate children of dir in enumeration order.
	ListChildren(dir string) ([]Child, error)

	// CreateDirectory creates a single directory. It fails with AlreadyExists
	// when anything is already present at path.
	CreateDirectory(path string) error

	// DeleteEntry removes a file or a directory tree.
	DeleteEntry(path string) error

	// WriteFile stores data at path, replacing an existing file.
	WriteFile(path string, data []byte) error

	// ReadFile returns the contents of the file at path.
	ReadFile(path string) ([]byte, error)

	// Join joins path elements with the backend's separator.
	Join(elem ...string) string

	// Base returns the last element of path.
	Base(path string) string

	// Close releases connections held by the backend.
	Close() error
}

// Open returns the backend named kind. Remote backends dial immediately.
func Open(kind string, remote RemoteConfig) (Filesystem, error) {
	switch kind {
	case "", BackendLocal:
		return NewLocal(), nil
	case BackendSFTP:
		s, err := DialSFTP(remote)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendFTP:
		f, err := DialFTP(remote)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, errors.NewConfigError("unknown filesystem backend", "backend.type", errors.InvalidConfig, errors.New(kind))
	}
}
