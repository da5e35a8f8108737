// pkg/connector/postgres.go
package connector

import (
	"context"
	"fmt"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/palfa/commondb/pkg/config"
)

// PostgresConnector implements the Connector interface for PostgreSQL
type PostgresConnector struct {
	db     *sqlx.DB
	logger *zap.Logger
	name   string
}

// NewPostgresConnector creates and initializes a new PostgreSQL connector
// from the POSTGRES_* settings
func NewPostgresConnector(ctx context.Context, cfg *config.PostgresConfig, logger *zap.Logger) (*PostgresConnector, error) {
	logger = namedLogger(logger, "postgres-connector")

	// Log connection attempt
	logger.Info("Connecting to PostgreSQL",
		zap.String("driver", cfg.Driver),
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	return openPostgres(ctx, cfg.Driver, cfg.ConnectionString(), cfg, logger, cfg.Database)
}

// NewPostgresURLConnector connects to a postgres:// URL with the given
// driver ("pgx" or "postgres") and default pool settings
func NewPostgresURLConnector(ctx context.Context, driver, rawURL string, logger *zap.Logger) (*PostgresConnector, error) {
	logger = namedLogger(logger, "postgres-connector")

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid PostgreSQL URL: %w", err)
	}
	logger.Info("Connecting to PostgreSQL",
		zap.String("driver", driver),
		zap.String("url", u.Redacted()))

	cfg := &config.PostgresConfig{
		Driver:          driver,
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
	}
	return openPostgres(ctx, driver, rawURL, cfg, logger, u.Path)
}

func openPostgres(ctx context.Context, driver, dsn string, cfg *config.PostgresConfig, logger *zap.Logger, name string) (*PostgresConnector, error) {
	// Open database connection
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL connection: %w", err)
	}

	// Configure connection pool
	ApplyConnectionSettings(
		db,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	// Verify connection
	if err := PingWithTimeout(ctx, db, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	connector := &PostgresConnector{
		db:     db,
		logger: logger,
		name:   name,
	}

	LogConnectionStats(logger, name, db)
	return connector, nil
}

// DB returns the underlying database connection
func (c *PostgresConnector) DB() *sqlx.DB {
	return c.db
}

// Validate verifies the PostgreSQL connection and the common DB tables
func (c *PostgresConnector) Validate(ctx context.Context) error {
	// Check database version
	var version string
	if err := c.db.QueryRowxContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return fmt.Errorf("failed to query PostgreSQL version: %w", err)
	}
	c.logger.Info("Connected to PostgreSQL", zap.String("version", version))

	for _, table := range requiredTables {
		var found *string
		if err := c.db.QueryRowxContext(ctx, "SELECT to_regclass($1)::text", table).Scan(&found); err != nil {
			return fmt.Errorf("failed to check table %s: %w", table, err)
		}
		if found == nil {
			return fmt.Errorf("table %s does not exist, run init-db", table)
		}
	}

	c.logger.Info("PostgreSQL connection validated", zap.String("database", c.name))
	return nil
}

// Close closes the database connection
func (c *PostgresConnector) Close() error {
	c.logger.Info("Closing PostgreSQL connection")
	LogConnectionStats(c.logger, c.name, c.db)
	return c.db.Close()
}
