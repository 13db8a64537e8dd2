package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZentaChain/zentalk-session/pkg/session"
)

func TestSessionStoreSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	store, err := OpenSessionStore(path, "hunter2")
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNotFound)

	s, err := session.New("tok-abc", "im.example.com:9000", "0123456789abcdef")
	require.NoError(t, err)
	require.NoError(t, store.Save(s))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, s.Token(), loaded.Token())
	assert.Equal(t, s.Address(), loaded.Address())
	assert.Equal(t, s.AESKey(), loaded.AESKey())

	fp, err := store.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, s.Fingerprint(), fp)
}

func TestSessionStoreWithoutKey(t *testing.T) {
	store, err := OpenSessionStore(filepath.Join(t.TempDir(), "session.db"), "pw")
	require.NoError(t, err)
	defer store.Close()

	s, err := session.New("tok", "127.0.0.1:1", "")
	require.NoError(t, err)
	require.NoError(t, store.Save(s))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.False(t, loaded.HasKey())
}

func TestSessionStoreWrongPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	store, err := OpenSessionStore(path, "right")
	require.NoError(t, err)
	s, _ := session.New("tok", "127.0.0.1:1", "")
	require.NoError(t, store.Save(s))
	require.NoError(t, store.Close())

	other, err := OpenSessionStore(path, "wrong")
	require.NoError(t, err)
	defer other.Close()

	_, err = other.Load()
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestSessionStoreFollowsHolder(t *testing.T) {
	store, err := OpenSessionStore(filepath.Join(t.TempDir(), "session.db"), "pw")
	require.NoError(t, err)
	defer store.Close()

	h := session.NewHolder()
	store.Attach(h)

	s, _ := session.New("tok-live", "127.0.0.1:1", "")
	h.Set(s)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-live", loaded.Token())

	h.ClearIf(s)
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNotFound)
}
