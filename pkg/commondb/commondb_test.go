package commondb_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/palfa/commondb/pkg/commondb"
)

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	applied, err := commondb.Migrate(ctx, db, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_init"}, applied)

	applied, err = commondb.Migrate(ctx, db, nil)
	require.NoError(t, err)
	assert.Empty(t, applied)

	for _, table := range []string{"observations", "headers", "diagnostics"} {
		var n int
		require.NoError(t, db.GetContext(ctx, &n,
			"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name=?", table))
		assert.Equal(t, 1, n, table)
	}
}

func TestDialect(t *testing.T) {
	d, err := commondb.Dialect("pgx")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d)

	d, err = commondb.Dialect("sqlite")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d)

	_, err = commondb.Dialect("snowflake")
	require.Error(t, err)
}
