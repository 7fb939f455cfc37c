package session_test

import (
	"testing"

	session "github.com/brochaworks/go-session"
	"github.com/brochaworks/go-session/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialStoreRoundTrip(t *testing.T) {
	backing := store.NewMemory()
	cfg := session.DefaultConfig("http://backend.test")
	creds := session.NewCredentialStore(backing, cfg).WithLogger(nopLogger{})

	assert.Equal(t, "", creds.ReadCredential())
	assert.Nil(t, creds.ReadProfile())

	creds.WriteCredential("tok-1")
	creds.WriteAuthResponse(map[string]any{
		"token": "tok-1",
		"user": map[string]any{
			"id":     "u-1",
			"nombre": "Ana",
			"rol":    "admin",
		},
	})

	assert.Equal(t, "tok-1", creds.ReadCredential())

	profile := creds.ReadProfile()
	require.NotNil(t, profile)
	assert.Equal(t, "u-1", profile.ID())
	assert.Equal(t, "Ana", profile.DisplayName())
	assert.True(t, profile.IsAdmin())

	creds.Clear()
	assert.Equal(t, "", creds.ReadCredential())
	assert.Nil(t, creds.ReadProfile())
	assert.Equal(t, 0, backing.Len())
}

func TestCredentialStoreFlattenedResponse(t *testing.T) {
	backing := store.NewMemory()
	cfg := session.DefaultConfig("http://backend.test")
	creds := session.NewCredentialStore(backing, cfg).WithLogger(nopLogger{})

	// No wrapper object: the profile fields arrive alongside the token.
	creds.WriteAuthResponse(map[string]any{
		"token":  "tok-2",
		"id":     "u-2",
		"correo": "bo@example.com",
		"rol":    "worker",
	})

	profile := creds.ReadProfile()
	require.NotNil(t, profile)
	assert.Equal(t, "u-2", profile.ID())
	assert.Equal(t, "bo@example.com", profile.Email())

	// The credential never survives inside the profile record.
	_, ok := profile.Raw()["token"]
	assert.False(t, ok)
}

func TestCredentialStoreCorruptProfile(t *testing.T) {
	backing := store.NewMemory()
	cfg := session.DefaultConfig("http://backend.test")
	creds := session.NewCredentialStore(backing, cfg).WithLogger(nopLogger{})

	require.NoError(t, backing.Set(cfg.GetProfileKey(), "{not json"))

	assert.Nil(t, creds.ReadProfile())
}

// failingStore errors on every operation so the degrade-to-empty contract can
// be observed.
type failingStore struct{ err error }

func (f failingStore) Get(key string) (string, error) { return "", f.err }
func (f failingStore) Set(key, value string) error    { return f.err }
func (f failingStore) Delete(key string) error        { return f.err }

func TestCredentialStoreAbsorbsBackendFailures(t *testing.T) {
	cfg := session.DefaultConfig("http://backend.test")
	creds := session.NewCredentialStore(failingStore{err: assert.AnError}, cfg).WithLogger(nopLogger{})

	assert.NotPanics(t, func() {
		creds.WriteCredential("tok")
		creds.WriteAuthResponse(map[string]any{"token": "tok"})
		creds.Clear()
	})

	assert.Equal(t, "", creds.ReadCredential())
	assert.Nil(t, creds.ReadProfile())
}
