// Package dbtest opens migrated databases for repository tests.
package dbtest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/database/postgres"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/migrations"
)

// SQLite returns a migrated private in-memory database.
func SQLite(t testing.TB) database.Connection {
	t.Helper()
	return open(t, sqlite.NewConnection, database.Config{Driver: database.DriverSQLite, SQLitePath: sqlite.MemoryPath})
}

// SQLiteFile returns a migrated database in a temp dir. Separate
// connections to the returned path see the same data.
func SQLiteFile(t testing.TB) (database.Connection, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobflow.db")
	return open(t, sqlite.NewConnection, database.Config{Driver: database.DriverSQLite, SQLitePath: path}), path
}

// Postgres returns a migrated connection to TEST_DATABASE_URL or skips.
func Postgres(t testing.TB) database.Connection {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	return open(t, postgres.NewConnection, database.Config{Driver: database.DriverPostgres, URL: url})
}

func open(t testing.TB, connect func(context.Context, database.Config) (database.Connection, error), cfg database.Config) database.Connection {
	t.Helper()
	ctx := context.Background()
	conn, err := connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))
	return conn
}
