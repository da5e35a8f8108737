// pkg/connector/snowflake.go
package connector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/palfa/commondb/pkg/config"
)

// SnowflakeConnector implements the Connector interface for Snowflake
type SnowflakeConnector struct {
	db       *sqlx.DB
	logger   *zap.Logger
	database string
	schema   string
}

// NewSnowflakeConnector creates a new Snowflake connection from the
// SNOWFLAKE_* settings
func NewSnowflakeConnector(ctx context.Context, cfg *config.SnowflakeConfig, logger *zap.Logger) (*SnowflakeConnector, error) {
	logger = namedLogger(logger, "snowflake-connector")

	// Log connection attempt (without credentials)
	logger.Info("Connecting to Snowflake",
		zap.String("account", cfg.Account),
		zap.String("user", cfg.User),
		zap.String("database", cfg.Database),
		zap.String("warehouse", cfg.Warehouse),
		zap.String("role", cfg.Role))

	dsn, err := cfg.DSN()
	if err != nil {
		return nil, fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}

	c, err := openSnowflake(ctx, dsn, cfg.Database, cfg.Schema, logger)
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	ApplyConnectionSettings(
		c.db,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	// Set query timeout if configured
	if cfg.QueryTimeout > 0 {
		_, err = c.db.ExecContext(
			ctx,
			fmt.Sprintf("ALTER SESSION SET STATEMENT_TIMEOUT_IN_SECONDS = %d",
				int(cfg.QueryTimeout.Seconds())),
		)
		if err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	return c, nil
}

// NewSnowflakeURLConnector connects using a gosnowflake DSN, the part of a
// snowflake:// target URL after the scheme
func NewSnowflakeURLConnector(ctx context.Context, dsn string, logger *zap.Logger) (*SnowflakeConnector, error) {
	logger = namedLogger(logger, "snowflake-connector")

	sfConfig, err := sf.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid Snowflake DSN: %w", err)
	}

	logger.Info("Connecting to Snowflake",
		zap.String("account", sfConfig.Account),
		zap.String("user", sfConfig.User),
		zap.String("database", sfConfig.Database),
		zap.String("warehouse", sfConfig.Warehouse))

	return openSnowflake(ctx, dsn, sfConfig.Database, sfConfig.Schema, logger)
}

func openSnowflake(ctx context.Context, dsn, database, schema string, logger *zap.Logger) (*SnowflakeConnector, error) {
	// Open connection pool
	db, err := sqlx.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Snowflake connection: %w", err)
	}

	// Verify connection
	if err := PingWithTimeout(ctx, db, 10*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to Snowflake: %w", err)
	}

	connector := &SnowflakeConnector{
		db:       db,
		logger:   logger,
		database: database,
		schema:   schema,
	}

	LogConnectionStats(logger, database, db)
	return connector, nil
}

// DB returns the underlying database connection
func (c *SnowflakeConnector) DB() *sqlx.DB {
	return c.db
}

// Validate verifies the Snowflake connection and the common DB tables
func (c *SnowflakeConnector) Validate(ctx context.Context) error {
	// Check basic connectivity and permissions
	var role, database, warehouse string
	err := c.db.QueryRowxContext(ctx, "SELECT CURRENT_ROLE(), CURRENT_DATABASE(), CURRENT_WAREHOUSE()").Scan(
		&role, &database, &warehouse)
	if err != nil {
		return fmt.Errorf("failed to verify Snowflake access: %w", err)
	}

	c.logger.Info("Connected to Snowflake",
		zap.String("role", role),
		zap.String("database", database),
		zap.String("warehouse", warehouse))

	// Verify we're connected to the correct database
	if c.database != "" && !strings.EqualFold(database, c.database) {
		return fmt.Errorf("connected to wrong database: %s (expected: %s)",
			database, c.database)
	}

	missing, err := c.missingTables(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify tables: %w", err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("common DB tables not found: %s", strings.Join(missing, ", "))
	}

	return nil
}

// Close closes the database connection
func (c *SnowflakeConnector) Close() error {
	c.logger.Info("Closing Snowflake connection")
	LogConnectionStats(c.logger, c.database, c.db)
	return c.db.Close()
}

// missingTables returns the common DB tables absent from the current schema
func (c *SnowflakeConnector) missingTables(ctx context.Context) ([]string, error) {
	schema := c.schema
	if schema == "" {
		schema = "PUBLIC"
	}

	var found []string
	err := c.db.SelectContext(ctx, &found,
		"SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = ?",
		strings.ToUpper(schema))
	if err != nil {
		return nil, err
	}

	tables := make(map[string]bool, len(found))
	for _, t := range found {
		tables[strings.ToUpper(t)] = true
	}

	var missing []string
	for _, t := range requiredTables {
		if !tables[strings.ToUpper(t)] {
			missing = append(missing, strings.ToUpper(t))
		}
	}
	return missing, nil
}
