package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/monotes/monotes/internal/client/models"
	"github.com/monotes/monotes/internal/client/repositories/notes"
	"github.com/monotes/monotes/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE notes (
  id TEXT PRIMARY KEY,
  content TEXT NOT NULL DEFAULT '',
  updated_at INTEGER NOT NULL DEFAULT 0,
  cloud_status TEXT NOT NULL DEFAULT 'local'
);
`)
	require.NoError(t, err)

	return New(notes.NewSQLiteRepository(db), opts...)
}

func TestSave_LazyCreateThenUpdate(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	n, err := s.Save(ctx, "abc0001234", "hello")
	require.NoError(t, err)
	assert.Equal(t, models.StatusLocal, n.CloudStatus)
	assert.Equal(t, "hello", n.Content)

	require.NoError(t, s.SetStatus(ctx, "abc0001234", models.StatusSynced))

	// a later save keeps the status
	n, err = s.Save(ctx, "abc0001234", "hello world")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSynced, n.CloudStatus)
	assert.Equal(t, "hello world", n.Content)
}

func TestSave_UpdatedAtStrictlyIncreases(t *testing.T) {
	// a frozen clock: every save happens at the same wall time
	frozen := time.UnixMilli(42_000)
	s := setupStore(t, WithClock(func() time.Time { return frozen }))
	ctx := context.Background()

	n1, err := s.Save(ctx, "abc0001234", "a")
	require.NoError(t, err)
	n2, err := s.Save(ctx, "abc0001234", "ab")
	require.NoError(t, err)
	n3, err := s.Save(ctx, "abc0001234", "abc")
	require.NoError(t, err)

	assert.Greater(t, n2.UpdatedAt, n1.UpdatedAt)
	assert.Greater(t, n3.UpdatedAt, n2.UpdatedAt)
}

func TestSubscribe_PushesOrderedListOnMutation(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	sub := s.Subscribe()
	defer sub.Cancel()

	_, err := s.Save(ctx, "a234567890", "first")
	require.NoError(t, err)
	_, err = s.Save(ctx, "b234567890", "second")
	require.NoError(t, err)

	// latest-wins delivery: the pending update reflects both saves
	var got []models.Note
	select {
	case got = <-sub.C:
	case <-time.After(time.Second):
		t.Fatal("no store notification received")
	}

	require.Len(t, got, 2)
	assert.Equal(t, "b234567890", got[0].ID, "newest first")
	assert.Equal(t, "a234567890", got[1].ID)
}

func TestSubscribe_CancelClosesChannel(t *testing.T) {
	s := setupStore(t)

	sub := s.Subscribe()
	sub.Cancel()

	_, ok := <-sub.C
	assert.False(t, ok, "channel must be closed after Cancel")

	// mutations after cancel must not panic
	_, err := s.Save(context.Background(), "a234567890", "x")
	require.NoError(t, err)
}

func TestDelete_Notifies(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, "a234567890", "x")
	require.NoError(t, err)

	sub := s.Subscribe()
	defer sub.Cancel()

	require.NoError(t, s.Delete(ctx, "a234567890"))

	select {
	case got := <-sub.C:
		assert.Empty(t, got)
	case <-time.After(time.Second):
		t.Fatal("no store notification received")
	}

	_, err = s.Get(ctx, "a234567890")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
