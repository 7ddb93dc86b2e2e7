package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/listenupapp/bookshelf-server/internal/store"
	"github.com/listenupapp/bookshelf-server/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRepository(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Repository {
		return newTestStore(t)
	})
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	// Verify WAL mode is set.
	var journalMode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	require.NoError(t, err)
	assert.Equal(t, "wal", journalMode)

	var name string
	err = s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='users'").Scan(&name)
	require.NoError(t, err)
}

func TestOpen_SchemaIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.CreateUser(context.Background(), storetest.NewUser("user_ada", "ada@example.com")))
	require.NoError(t, s.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	u, err := reopened.GetUser(context.Background(), "user_ada")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
}

func TestSavedBooksColumnStaysJSONArray(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, storetest.NewUser("user_ada", "ada@example.com")))

	_, err := s.AddSavedBook(ctx, "user_ada", storetest.NewBook("b1"))
	require.NoError(t, err)
	_, err = s.RemoveSavedBook(ctx, "user_ada", "b1")
	require.NoError(t, err)

	var raw string
	require.NoError(t, s.db.QueryRow("SELECT saved_books FROM users WHERE id = ?", "user_ada").Scan(&raw))
	assert.Equal(t, "[]", raw)
}
