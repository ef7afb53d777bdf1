package localdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

func TestOpenMigratesSchema(t *testing.T) {
	ctx := context.Background()

	db, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.QueryContext(ctx, `PRAGMA table_info(notes)`)
	require.NoError(t, err)
	defer rows.Close()

	cols := make(map[string]struct{})
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notnull    int
			dfltValue  any
			primaryKey int
		)
		require.NoError(t, rows.Scan(&cid, &name, &typ, &notnull, &dfltValue, &primaryKey))
		cols[name] = struct{}{}
	}
	require.NoError(t, rows.Err())

	assert.Contains(t, cols, "id")
	assert.Contains(t, cols, "content")
	assert.Contains(t, cols, "updated_at")
	assert.Contains(t, cols, "cloud_status")
	// dropped by the final migration
	assert.NotContains(t, cols, "access_key")
}

func TestOpenIsIdempotent(t *testing.T) {
	ctx := context.Background()

	dsn := "file:" + t.TempDir() + "/notes.db"

	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// second open must re-apply nothing and succeed
	db, err = Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}
