// Package importer supplies image bytes and a suggested name for import.
package importer

import (
	"context"
	"path/filepath"
	"strings"

	"filedeck/internal/errors"

	"github.com/spf13/afero"
)

// ErrCancelled is returned by a Picker when the user backs out.
var ErrCancelled = errors.New("import cancelled")

// Picked is the result of a successful pick.
type Picked struct {
	Data []byte
	Name string
}

// Picker is a single-shot source of one image.
type Picker interface {
	Pick(ctx context.Context) (Picked, error)
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(ctx context.Context) (Picked, error)

func (f PickerFunc) Pick(ctx context.Context) (Picked, error) { return f(ctx) }

// FilePicker picks a file from a local file system by path. An empty path
// is treated as a cancellation.
type FilePicker struct {
	Fs   afero.Fs
	Path string
}

// NewFilePicker picks path from the OS file system.
func NewFilePicker(path string) *FilePicker {
	return &FilePicker{Fs: afero.NewOsFs(), Path: path}
}

func (p *FilePicker) Pick(ctx context.Context) (Picked, error) {
	path := strings.TrimSpace(p.Path)
	if path == "" {
		return Picked{}, ErrCancelled
	}
	if err := ctx.Err(); err != nil {
		return Picked{}, ErrCancelled
	}

	info, err := p.Fs.Stat(path)
	if err != nil {
		return Picked{}, errors.IOError("read import source", path, err)
	}
	if info.IsDir() {
		return Picked{}, errors.NewFileError("import source is a directory", path, errors.NameInvalid, nil)
	}

	data, err := afero.ReadFile(p.Fs, path)
	if err != nil {
		return Picked{}, errors.IOError("read import source", path, err)
	}
	return Picked{Data: data, Name: filepath.Base(path)}, nil
}

// Static returns a picker that always yields data under name.
func Static(data []byte, name string) Picker {
	return PickerFunc(func(ctx context.Context) (Picked, error) {
		return Picked{Data: data, Name: name}, nil
	})
}
