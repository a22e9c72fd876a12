package settings

import (
	"os"
	"path/filepath"
	"time"

	"filedeck/internal/errors"

	bolt "go.etcd.io/bbolt"
)

var settingsBucket = []byte("settings")

// BoltStore keeps settings in a bbolt database.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens or creates the database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.IOError("create settings directory", filepath.Dir(path), err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.IOError("open settings db", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(settingsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.IOError("init settings db", path, err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Get(key string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(settingsBucket).Get([]byte(key))
		if v != nil {
			value, ok = string(v), true
		}
		return nil
	})
	if err != nil {
		return "", false, errors.IOError("read settings", s.db.Path(), err)
	}
	return value, ok, nil
}

func (s *BoltStore) Set(key, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(settingsBucket).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return errors.IOError("write settings", s.db.Path(), err)
	}
	return nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
