package connector_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/palfa/commondb/pkg/commondb"
	"github.com/palfa/commondb/pkg/config"
	"github.com/palfa/commondb/pkg/connector"
)

func TestParseURL(t *testing.T) {
	for _, tc := range []struct {
		url    string
		scheme connector.Scheme
		dsn    string
	}{
		{"postgres://palfa@db:5432/commondb", connector.SchemePostgres, "postgres://palfa@db:5432/commondb"},
		{"postgresql://db/commondb", connector.SchemePostgres, "postgresql://db/commondb"},
		{"sqlite://palfa.db", connector.SchemeSQLite, "palfa.db"},
		{"sqlite://:memory:", connector.SchemeSQLite, ":memory:"},
		{"snowflake://u:p@acct/COMMONDB/PUBLIC?warehouse=WH", connector.SchemeSnowflake, "u:p@acct/COMMONDB/PUBLIC?warehouse=WH"},
	} {
		scheme, dsn, err := connector.ParseURL(tc.url)
		require.NoError(t, err, tc.url)
		assert.Equal(t, tc.scheme, scheme, tc.url)
		assert.Equal(t, tc.dsn, dsn, tc.url)
	}

	for _, bad := range []string{"palfa.db", "mysql://db/x", "sqlite://"} {
		_, _, err := connector.ParseURL(bad)
		require.Error(t, err, bad)
	}
}

func TestRegistrySQLiteTarget(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "commondb.sqlite")
	cfg := &config.Config{
		Targets: map[string]string{
			"":      "sqlite://" + path,
			"local": "sqlite://:memory:",
		},
	}
	registry := connector.NewRegistry(cfg, zaptest.NewLogger(t))

	c, err := registry.Connect(ctx, config.DefaultTarget)
	require.NoError(t, err)
	defer c.Close()

	require.Error(t, c.Validate(ctx))
	_, err = commondb.Migrate(ctx, c.DB(), nil)
	require.NoError(t, err)
	require.NoError(t, c.Validate(ctx))

	db, err := registry.Open(ctx, "local")
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, "sqlite", db.DriverName())
}

func TestRegistryUnknownTarget(t *testing.T) {
	registry := connector.NewRegistry(&config.Config{}, nil)
	_, err := registry.Open(context.Background(), "archive")
	require.Error(t, err)

	_, err = registry.Open(context.Background(), config.DefaultTarget)
	require.Error(t, err)
}
