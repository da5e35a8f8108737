package testsupport

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/palfa/commondb/pkg/commondb"
)

// OpenDB opens an in-memory SQLite common DB with the schema applied and
// registers cleanup. The pool is limited to one connection so every query
// sees the same database.
func OpenDB(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sqlx.Open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		db.Close()
	})

	if _, err := commondb.Migrate(context.Background(), db, nil); err != nil {
		t.Fatalf("commondb.Migrate: %v", err)
	}
	return db
}

// CountRows returns the number of rows in table
func CountRows(t testing.TB, db sqlx.QueryerContext, table string) int {
	t.Helper()

	var n int
	if err := sqlx.GetContext(context.Background(), db, &n, "SELECT COUNT(1) FROM "+table); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
