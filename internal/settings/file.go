package settings

import (
	"os"
	"path/filepath"
	"sync"

	"filedeck/internal/errors"
	"filedeck/internal/log"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

type codec struct {
	marshal   func(v interface{}) ([]byte, error)
	unmarshal func(data []byte, v interface{}) error
}

// FileStore keeps all keys in one document on disk and re-reads it on every
// Get, so separate store instances over one file observe each other's writes.
type FileStore struct {
	mu    sync.Mutex
	fs    afero.Fs
	path  string
	codec codec
}

// NewYAMLStore stores settings as a YAML mapping.
func NewYAMLStore(path string) *FileStore {
	return &FileStore{fs: afero.NewOsFs(), path: path, codec: codec{marshal: yaml.Marshal, unmarshal: yaml.Unmarshal}}
}

// NewTOMLStore stores settings as a TOML table.
func NewTOMLStore(path string) *FileStore {
	return &FileStore{fs: afero.NewOsFs(), path: path, codec: codec{marshal: toml.Marshal, unmarshal: toml.Unmarshal}}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) load() (map[string]string, error) {
	values := make(map[string]string)
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, errors.IOError("read settings", s.path, err)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := s.codec.unmarshal(data, &values); err != nil {
		return nil, errors.NewFileError("corrupt settings file", s.path, errors.IOFailure, err)
	}
	return values, nil
}

func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// Set rewrites the whole document through a temporary file.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value

	data, err := s.codec.marshal(values)
	if err != nil {
		return errors.Wrap(err, "failed to encode settings")
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.IOError("create settings directory", filepath.Dir(s.path), err)
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0644); err != nil {
		return errors.IOError("write settings", tmp, err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		if rerr := s.fs.Remove(tmp); rerr != nil && !os.IsNotExist(rerr) {
			log.LogWithFields(log.F("path", tmp)).Warnf("failed to remove temp file: %v", rerr)
		}
		return errors.IOError("write settings", s.path, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
