// pkg/connector/sqlite.go
package connector

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteConnector implements the Connector interface for a local SQLite
// common DB, used for development and tests
type SQLiteConnector struct {
	db     *sqlx.DB
	logger *zap.Logger
	path   string
}

// NewSQLiteConnector opens the SQLite database at path (":memory:" for a
// private in-memory database)
func NewSQLiteConnector(ctx context.Context, path string, logger *zap.Logger) (*SQLiteConnector, error) {
	logger = namedLogger(logger, "sqlite-connector")
	logger.Info("Opening SQLite database", zap.String("path", path))

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// One writer; also keeps an in-memory database alive across queries
	db.SetMaxOpenConns(1)

	if err := PingWithTimeout(ctx, db, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return &SQLiteConnector{db: db, logger: logger, path: path}, nil
}

// DB returns the underlying database connection
func (c *SQLiteConnector) DB() *sqlx.DB {
	return c.db
}

// Validate checks that the common DB tables exist
func (c *SQLiteConnector) Validate(ctx context.Context) error {
	for _, table := range requiredTables {
		var n int
		err := c.db.GetContext(ctx, &n,
			"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name=?", table)
		if err != nil {
			return fmt.Errorf("failed to check table %s: %w", table, err)
		}
		if n == 0 {
			return fmt.Errorf("table %s does not exist, run init-db", table)
		}
	}
	return nil
}

// Close closes the database connection
func (c *SQLiteConnector) Close() error {
	c.logger.Debug("Closing SQLite database", zap.String("path", c.path))
	return c.db.Close()
}
