/*
Package store provides the persisted key-value space used for conversation
history, preferences and mode memory. Backends are interchangeable: a JSON
file for single-user use, PebbleDB for the Telegram front end, and an
in-memory map for tests.

Writes are a mirror of in-memory controller state, not a lock: controllers
update state first, then persist, and swallow persistence failures.
*/
package store

import (
	"encoding/json"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// Persisted key contract. These names are stable: they are the keys the
// Mini App has always written, so existing state survives upgrades.
const (
	KeyHistory   = "chat_history_v1"
	KeyStyle     = "ai_style"
	KeyPersona   = "ai_persona"
	KeyLanguage  = "miniapp_lang_v1"
	KeyTheme     = "miniapp_theme_v1"
	KeyImageMode = "miniapp_img_mode_v1"
)

///////////////////////////////////////////////////////////////////////////////
// INTERFACE

// Store is a string-keyed persistence space. Implementations are safe for
// concurrent use. Get returns false when the key is absent; Set and Delete
// report failures so callers can decide whether to swallow them.
type Store interface {
	// Get returns the value for a key, or false when absent.
	Get(key string) (string, bool)

	// Set stores a value, replacing any previous value (last write wins).
	Set(key, value string) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(key string) error

	// Close releases any resources held by the backend.
	Close() error
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC FUNCTIONS

// GetJSON decodes the JSON value stored under key into v. It returns false
// when the key is absent or holds a value of the wrong shape, leaving v
// untouched on failure where possible.
func GetJSON(s Store, key string, v any) bool {
	value, ok := s.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(value), v) == nil
}

// SetJSON encodes v as JSON and stores it under key.
func SetJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(key, string(data))
}

///////////////////////////////////////////////////////////////////////////////
// PREFIXED STORE

// prefixed namespaces every key with a fixed prefix, so several
// conversations can share one backend without colliding.
type prefixed struct {
	Store
	prefix string
}

// WithPrefix returns a view of s where every key is namespaced with the
// given prefix.
func WithPrefix(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	return &prefixed{Store: s, prefix: prefix + ":"}
}

func (p *prefixed) Get(key string) (string, bool) {
	return p.Store.Get(p.prefix + key)
}

func (p *prefixed) Set(key, value string) error {
	return p.Store.Set(p.prefix+key, value)
}

func (p *prefixed) Delete(key string) error {
	return p.Store.Delete(p.prefix + key)
}

// Close is a no-op on a prefixed view; the owner closes the backend.
func (p *prefixed) Close() error {
	return nil
}
