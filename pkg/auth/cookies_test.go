package auth

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProfile(name string) *Profile {
	return &Profile{
		Name: name,
		Cookies: []Cookie{
			{
				Name:     "web_session",
				Value:    "abc123",
				Domain:   ".xiaohongshu.com",
				Path:     "/",
				HTTPOnly: true,
				Secure:   true,
				SameSite: "Lax",
			},
			{
				Name:   "webId",
				Value:  "deadbeef",
				Domain: ".xiaohongshu.com",
				Path:   "/",
			},
		},
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "cookies"))

	profile := sampleProfile("alice")
	require.NoError(t, store.Store(profile))
	assert.True(t, store.Exists("alice"))

	loaded, err := store.Retrieve("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded.Name)
	require.Len(t, loaded.Cookies, 2)
	assert.Equal(t, "web_session", loaded.Cookies[0].Name)
	assert.Equal(t, "abc123", loaded.Cookies[0].Value)
	assert.True(t, loaded.Cookies[0].HTTPOnly)

	require.NoError(t, store.Delete("alice"))
	assert.False(t, store.Exists("alice"))
}

func TestFileStore_MissingProfile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "cookies"))

	_, err := store.Retrieve("nobody")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	err = store.Delete("nobody")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestFileStore_InvalidInput(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "cookies"))

	assert.ErrorIs(t, store.Store(nil), ErrInvalidProfile)
	assert.ErrorIs(t, store.Store(&Profile{}), ErrInvalidProfile)

	_, err := store.Retrieve("")
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestEncryptedFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.enc")

	store, err := NewEncryptedFileStore(path, "correct horse battery staple")
	require.NoError(t, err)

	require.NoError(t, store.Store(sampleProfile("alice")))
	require.NoError(t, store.Store(sampleProfile("bob")))

	loaded, err := store.Retrieve("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded.Name)
	assert.Len(t, loaded.Cookies, 2)

	assert.True(t, store.Exists("bob"))
	require.NoError(t, store.Delete("bob"))
	assert.False(t, store.Exists("bob"))
	assert.True(t, store.Exists("alice"))
}

func TestEncryptedFileStore_WrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.enc")

	store, err := NewEncryptedFileStore(path, "first passphrase")
	require.NoError(t, err)
	require.NoError(t, store.Store(sampleProfile("alice")))

	other, err := NewEncryptedFileStore(path, "wrong passphrase")
	require.NoError(t, err)

	_, err = other.Retrieve("alice")
	assert.Error(t, err)
}

func TestEncryptedFileStore_RequiresPassphrase(t *testing.T) {
	_, err := NewEncryptedFileStore(filepath.Join(t.TempDir(), "cookies.enc"), "")
	assert.Error(t, err)
}

func TestManager_FallbackChain(t *testing.T) {
	dir := t.TempDir()
	primary := NewFileStore(filepath.Join(dir, "primary"))
	fallback := NewFileStore(filepath.Join(dir, "fallback"))

	mgr := NewManagerWithStores(primary, fallback)

	require.NoError(t, mgr.Store(sampleProfile("alice")))
	// First backend accepted the write
	assert.True(t, primary.Exists("alice"))
	assert.False(t, fallback.Exists("alice"))

	// A profile present only in the fallback is still found
	require.NoError(t, fallback.Store(sampleProfile("bob")))
	loaded, err := mgr.Retrieve("bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", loaded.Name)

	assert.True(t, mgr.Exists("bob"))
	require.NoError(t, mgr.Delete("bob"))
	assert.False(t, mgr.Exists("bob"))
}

func TestManager_RejectsEmptyProfiles(t *testing.T) {
	mgr := NewManagerWithStores(NewFileStore(filepath.Join(t.TempDir(), "c")))

	assert.ErrorIs(t, mgr.Store(nil), ErrInvalidProfile)
	assert.Error(t, mgr.Store(&Profile{Name: "alice"}), "profiles without cookies are rejected")
}
