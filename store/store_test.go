package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func TestMemoryRoundTrip(t *testing.T) {
	s := NewMemory()

	_, err := s.Get("token")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set("token", "abc123"))
	val, err := s.Get("token")
	require.NoError(t, err)
	assert.Equal(t, "abc123", val)

	require.NoError(t, s.Delete("token"))
	_, err = s.Get("token")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent key is not an error.
	assert.NoError(t, s.Delete("token"))
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")
	s := NewFile(path)

	_, err := s.Get("token")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set("token", "abc123"))
	require.NoError(t, s.Set("auth", `{"user":{"id":"1"}}`))

	// A fresh handle reads what the first one wrote.
	reopened := NewFile(path)
	val, err := reopened.Get("token")
	require.NoError(t, err)
	assert.Equal(t, "abc123", val)

	blob, err := reopened.Get("auth")
	require.NoError(t, err)
	assert.Equal(t, `{"user":{"id":"1"}}`, blob)

	require.NoError(t, reopened.Delete("token"))
	_, err = reopened.Get("token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewFile(path)
	require.NoError(t, s.Set("token", "abc123"))

	writeGarbage(t, path)

	_, err := s.Get("token")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestBunRoundTrip(t *testing.T) {
	s, cleanup := setupBunStore(t)
	defer cleanup()

	_, err := s.Get("token")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set("token", "abc123"))
	val, err := s.Get("token")
	require.NoError(t, err)
	assert.Equal(t, "abc123", val)

	// Upsert overwrites in place.
	require.NoError(t, s.Set("token", "def456"))
	val, err = s.Get("token")
	require.NoError(t, err)
	assert.Equal(t, "def456", val)

	require.NoError(t, s.Delete("token"))
	_, err = s.Get("token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func writeGarbage(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("not-json{{"), 0600))
}

func setupBunStore(t *testing.T) (*Bun, func()) {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	s, err := NewBun(context.Background(), bunDB)
	require.NoError(t, err)

	cleanup := func() {
		_ = bunDB.Close()
		_ = db.Close()
	}
	return s, cleanup
}
