// Package testdb opens migrated in-memory SQLite databases for package tests.
package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"testing"

	attendance "github.com/goliatone/go-attendance"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/migrate"
)

// New returns an isolated SQLite database with the users bootstrap and core
// attendance migrations applied.
func New(t testing.TB) *bun.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	sqldb, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	bootstrap, err := attendance.BootstrapMigrations("sqlite")
	require.NoError(t, err)
	core, err := attendance.CoreMigrations("sqlite")
	require.NoError(t, err)
	Apply(t, db, bootstrap, core)
	return db
}

// Apply runs the migrations found in the filesystems against db.
func Apply(t testing.TB, db *bun.DB, sources ...fs.FS) {
	t.Helper()
	ctx := context.Background()
	set := migrate.NewMigrations()
	for _, source := range sources {
		require.NoError(t, set.Discover(source))
	}
	migrator := migrate.NewMigrator(db, set)
	require.NoError(t, migrator.Init(ctx))
	_, err := migrator.Migrate(ctx)
	require.NoError(t, err)
}

// InsertUser seeds a row in the bootstrap users table.
func InsertUser(t testing.TB, db *bun.DB, id uuid.UUID, status string) {
	t.Helper()
	_, err := db.NewRaw("INSERT INTO users (id, status) VALUES (?, ?)", id.String(), status).
		Exec(context.Background())
	require.NoError(t, err)
}
