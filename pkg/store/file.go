package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DirPerm  os.FileMode = 0o700 // Directory permission for the state dir
	FilePerm os.FileMode = 0o600 // File permission for the state file
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// FileStore is a Store backed by a single JSON file on disk. The whole map
// is rewritten on every Set, which is fine for the handful of keys the
// client persists. It is safe for concurrent use.
type FileStore struct {
	mu   sync.RWMutex
	path string
	data map[string]string
}

var _ Store = (*FileStore)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewFileStore creates a file-backed store at the given path. An existing
// file is loaded; a corrupt or missing file yields an empty store rather
// than an error, so stale state never prevents startup.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, os.ErrInvalid
	}

	s := &FileStore{
		path: path,
		data: make(map[string]string),
	}

	if data, err := os.ReadFile(path); err == nil {
		// Corrupt contents are discarded, not fatal
		_ = json.Unmarshal(data, &s.data)
		if s.data == nil {
			s.data = make(map[string]string)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	return s, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	return value, ok
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.save()
}

func (s *FileStore) Close() error {
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// save writes the store to disk as indented JSON, creating parent
// directories as needed.
func (s *FileStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), DirPerm); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, FilePerm)
}
