package store

import (
	"errors"
	"os"
	"path/filepath"

	// Packages
	pebble "github.com/cockroachdb/pebble"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// PebbleStore is a Store backed by a PebbleDB key-value database. It is
// used by the Telegram front end, where many conversations share one
// backend through prefixed views.
type PebbleStore struct {
	db *pebble.DB
}

var _ Store = (*PebbleStore)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewPebbleStore opens (or creates) a Pebble database at the given
// directory.
func NewPebbleStore(dir string) (*PebbleStore, error) {
	if dir == "" {
		return nil, os.ErrInvalid
	}
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return nil, err
	}
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &PebbleStore{db: db}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (s *PebbleStore) Get(key string) (string, bool) {
	value, closer, err := s.db.Get([]byte(key))
	if err != nil {
		return "", false
	}
	result := string(value)
	if err := closer.Close(); err != nil {
		return "", false
	}
	return result, true
}

func (s *PebbleStore) Set(key, value string) error {
	return s.db.Set([]byte(key), []byte(value), pebble.Sync)
}

func (s *PebbleStore) Delete(key string) error {
	err := s.db.Delete([]byte(key), pebble.Sync)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil
	}
	return err
}

func (s *PebbleStore) Close() error {
	return s.db.Close()
}
