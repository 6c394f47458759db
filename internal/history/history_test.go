package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolsuite/pagebuilder/internal/editor"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open("sqlite", filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "dsn")
	require.Error(t, err)
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	entries := []Entry{
		{PageKey: "home", SectionID: 1, Operation: "save", Level: "success", Message: "Section saved."},
		{PageKey: "home", SectionID: 2, Operation: "delete", Level: "success", Message: "Section deleted."},
		{PageKey: "about", SectionID: 3, Operation: "save", Level: "error", Message: "validation failed"},
	}
	for _, e := range entries {
		require.NoError(t, store.Record(ctx, e))
	}

	got, err := store.Recent(ctx, "home", 10)
	require.NoError(t, err)
	require.Len(t, got, 2, "entries are scoped per page")

	// Most recent first.
	assert.Equal(t, "delete", got[0].Operation)
	assert.Equal(t, int64(2), got[0].SectionID)
	assert.Equal(t, "save", got[1].Operation)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestRecentLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(ctx, Entry{
			PageKey: "home", Operation: "save", Level: "success", Message: "ok",
		}))
	}

	got, err := store.Recent(ctx, "home", 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	// Non-positive limit falls back to the default window.
	got, err = store.Recent(ctx, "home", 0)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestRecentEmptyPage(t *testing.T) {
	store := openTestStore(t)
	got, err := store.Recent(context.Background(), "missing", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecorderSkipsInfoNotices(t *testing.T) {
	store := openTestStore(t)
	rec := store.Recorder()

	rec.Notify(editor.Notice{
		Level: editor.LevelInfo, Operation: "save-all",
		Message: "No unsaved changes.", PageKey: "home", At: time.Now(),
	})
	rec.Notify(editor.Notice{
		Level: editor.LevelError, Operation: "reorder",
		Message: "conflict", PageKey: "home", SectionID: 4, At: time.Now(),
	})

	got, err := store.Recent(context.Background(), "home", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "reorder", got[0].Operation)
	assert.Equal(t, "error", got[0].Level)
	assert.Equal(t, int64(4), got[0].SectionID)
}

func TestRebindPostgresPlaceholders(t *testing.T) {
	s := &Store{driver: "postgres"}
	assert.Equal(t, "INSERT INTO t (a, b) VALUES ($1, $2)",
		s.rebind("INSERT INTO t (a, b) VALUES (?, ?)"))

	s = &Store{driver: "sqlite"}
	assert.Equal(t, "SELECT * FROM t WHERE a = ?",
		s.rebind("SELECT * FROM t WHERE a = ?"))
}
