// pkg/connector/registry.go
package connector

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/palfa/commondb/pkg/config"
)

// Scheme identifies the kind of database behind a target URL
type Scheme string

const (
	SchemePostgres  Scheme = "postgres"
	SchemeSQLite    Scheme = "sqlite"
	SchemeSnowflake Scheme = "snowflake"
)

// ParseURL splits a target URL into its scheme and the data source name
// handed to the driver. PostgreSQL URLs are passed through whole.
//
//	postgres://user:pw@host:5432/commondb
//	sqlite://palfa.db, sqlite://:memory:
//	snowflake://user:pw@account/COMMONDB/PUBLIC?warehouse=WH
func ParseURL(rawURL string) (Scheme, string, error) {
	scheme, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		return "", "", fmt.Errorf("target URL %q has no scheme", rawURL)
	}

	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return SchemePostgres, rawURL, nil
	case "sqlite", "sqlite3", "file":
		if rest == "" {
			return "", "", fmt.Errorf("target URL %q has no path", rawURL)
		}
		return SchemeSQLite, rest, nil
	case "snowflake":
		return SchemeSnowflake, rest, nil
	default:
		return "", "", fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

// Registry resolves logical target names to open connectors. The default
// target is COMMONDB_URL's first entry, or the POSTGRES_* settings. The
// name "snowflake" falls back to the SNOWFLAKE_* settings.
type Registry struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewRegistry creates a new registry
func NewRegistry(cfg *config.Config, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		cfg:    cfg,
		logger: logger,
	}
}

// Connect opens and returns the connector for a logical target name
func (r *Registry) Connect(ctx context.Context, name string) (Connector, error) {
	key := name
	if key == config.DefaultTarget {
		key = ""
	}

	if rawURL, ok := r.cfg.Targets[key]; ok {
		r.logger.Info("Creating connector from target URL", zap.String("target", name))
		return r.connectURL(ctx, rawURL)
	}

	switch {
	case key == "" && r.cfg.Postgres != nil:
		r.logger.Info("Creating PostgreSQL connector", zap.String("target", name))
		c, err := NewPostgresConnector(ctx, r.cfg.Postgres, r.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL connector: %w", err)
		}
		return c, nil
	case key == string(SchemeSnowflake) && r.cfg.Snowflake != nil:
		r.logger.Info("Creating Snowflake connector", zap.String("target", name))
		c, err := NewSnowflakeConnector(ctx, r.cfg.Snowflake, r.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Snowflake connector: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown database target %q", name)
	}
}

// Open implements upload.Resolver. The caller owns the returned pool.
func (r *Registry) Open(ctx context.Context, name string) (*sqlx.DB, error) {
	c, err := r.Connect(ctx, name)
	if err != nil {
		return nil, err
	}
	return c.DB(), nil
}

func (r *Registry) connectURL(ctx context.Context, rawURL string) (Connector, error) {
	scheme, dsn, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	switch scheme {
	case SchemePostgres:
		driver := "pgx"
		if r.cfg.Postgres != nil && r.cfg.Postgres.Driver != "" {
			driver = r.cfg.Postgres.Driver
		}
		return NewPostgresURLConnector(ctx, driver, dsn, r.logger)
	case SchemeSQLite:
		return NewSQLiteConnector(ctx, dsn, r.logger)
	case SchemeSnowflake:
		return NewSnowflakeURLConnector(ctx, dsn, r.logger)
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", scheme)
	}
}
