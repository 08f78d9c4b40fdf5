package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mutablelogic/go-miniapp/pkg/schema"
	"github.com/mutablelogic/go-miniapp/pkg/store"
	"github.com/stretchr/testify/assert"
)

func TestMemoryStore(t *testing.T) {
	assert := assert.New(t)

	s := store.NewMemoryStore()
	defer s.Close()

	_, ok := s.Get("missing")
	assert.False(ok)

	assert.NoError(s.Set(store.KeyStyle, "short"))
	value, ok := s.Get(store.KeyStyle)
	assert.True(ok)
	assert.Equal("short", value)

	// Last write wins
	assert.NoError(s.Set(store.KeyStyle, "detail"))
	value, _ = s.Get(store.KeyStyle)
	assert.Equal("detail", value)

	assert.NoError(s.Delete(store.KeyStyle))
	_, ok = s.Get(store.KeyStyle)
	assert.False(ok)

	// Deleting an absent key is not an error
	assert.NoError(s.Delete(store.KeyStyle))
}

func TestFileStoreRoundTrip(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := store.NewFileStore(path)
	assert.NoError(err)
	assert.NoError(s.Set(store.KeyLanguage, "en"))
	assert.NoError(s.Close())

	// Reopen and verify the value survived
	s2, err := store.NewFileStore(path)
	assert.NoError(err)
	value, ok := s2.Get(store.KeyLanguage)
	assert.True(ok)
	assert.Equal("en", value)
}

func TestFileStoreCorrupt(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "state.json")

	assert.NoError(os.WriteFile(path, []byte("{not json"), 0o600))

	// Corrupt state yields an empty store, not an error
	s, err := store.NewFileStore(path)
	assert.NoError(err)
	_, ok := s.Get(store.KeyHistory)
	assert.False(ok)
}

func TestJSONHelpers(t *testing.T) {
	assert := assert.New(t)

	s := store.NewMemoryStore()

	var history schema.Conversation
	history.Append(schema.RoleUser, "hello")
	history.Append(schema.RoleAssistant, "hi")

	assert.NoError(store.SetJSON(s, store.KeyHistory, history))

	var loaded schema.Conversation
	assert.True(store.GetJSON(s, store.KeyHistory, &loaded))
	assert.Equal(history, loaded)
}

func TestJSONCorrupt(t *testing.T) {
	assert := assert.New(t)

	s := store.NewMemoryStore()
	assert.NoError(s.Set(store.KeyHistory, "{{{"))

	var loaded schema.Conversation
	assert.False(store.GetJSON(s, store.KeyHistory, &loaded))
	assert.Empty(loaded)
}

func TestWithPrefix(t *testing.T) {
	assert := assert.New(t)

	backend := store.NewMemoryStore()
	a := store.WithPrefix(backend, "chat-1")
	b := store.WithPrefix(backend, "chat-2")

	assert.NoError(a.Set(store.KeyStyle, "short"))
	assert.NoError(b.Set(store.KeyStyle, "detail"))

	value, _ := a.Get(store.KeyStyle)
	assert.Equal("short", value)
	value, _ = b.Get(store.KeyStyle)
	assert.Equal("detail", value)

	// The backend sees namespaced keys
	value, ok := backend.Get("chat-1:" + store.KeyStyle)
	assert.True(ok)
	assert.Equal("short", value)

	// Closing a view does not close the backend
	assert.NoError(a.Close())
	_, ok = backend.Get("chat-2:" + store.KeyStyle)
	assert.True(ok)
}

func TestPebbleStore(t *testing.T) {
	assert := assert.New(t)

	s, err := store.NewPebbleStore(filepath.Join(t.TempDir(), "pebble"))
	assert.NoError(err)
	defer s.Close()

	assert.NoError(s.Set(store.KeyImageMode, "txt2img"))
	value, ok := s.Get(store.KeyImageMode)
	assert.True(ok)
	assert.Equal("txt2img", value)

	assert.NoError(s.Delete(store.KeyImageMode))
	_, ok = s.Get(store.KeyImageMode)
	assert.False(ok)
	assert.NoError(s.Delete(store.KeyImageMode))
}
