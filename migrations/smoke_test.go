package migrations_test

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"testing"

	"github.com/goliatone/go-attendance/migrations"
	"github.com/goliatone/go-attendance/migrations/bootstrap"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/migrate"
)

func TestRegisteredSourcesShipBothDialects(t *testing.T) {
	names := make([]string, 0)
	for _, source := range migrations.Sources() {
		names = append(names, source.Name)
	}
	require.Contains(t, names, migrations.CoreSourceName)
	require.Contains(t, names, bootstrap.SourceName)

	for _, dialect := range []string{"postgres", "sqlite"} {
		fsystems := migrations.Filesystems(dialect)
		require.Len(t, fsystems, 2)
		for _, fsys := range fsystems {
			ups, err := fs.Glob(fsys, "*.up.sql")
			require.NoError(t, err)
			downs, err := fs.Glob(fsys, "*.down.sql")
			require.NoError(t, err)
			require.NotEmpty(t, ups)
			require.Len(t, downs, len(ups))
		}
	}
}

func TestRegisterIgnoresDuplicates(t *testing.T) {
	before := len(migrations.Sources())
	migrations.Register(migrations.Source{Name: migrations.CoreSourceName, Dialect: func(string) (fs.FS, error) { return nil, nil }})
	migrations.Register(migrations.Source{Name: "nil-dialect"})
	require.Len(t, migrations.Sources(), before)
}

func TestMigrationsApplyToSQLite(t *testing.T) {
	ctx := context.Background()
	sqldb, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	set := migrate.NewMigrations()
	for _, fsys := range migrations.Filesystems("sqlite") {
		require.NoError(t, set.Discover(fsys))
	}
	migrator := migrate.NewMigrator(db, set)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	require.NoError(t, migrations.ValidateSchema(ctx, sqldb, "sqlite3"))

	_, err = sqldb.ExecContext(ctx, "ALTER TABLE attendance_tokens DROP COLUMN used_at")
	require.NoError(t, err)
	err = migrations.ValidateSchema(ctx, sqldb, "sqlite")
	var schemaErr *migrations.SchemaValidationError
	require.ErrorAs(t, err, &schemaErr)
	require.Equal(t, []string{"used_at"}, schemaErr.MissingColumns["attendance_tokens"])
}

func TestNormalizeDialect(t *testing.T) {
	for input, want := range map[string]string{
		"pgx": "postgres", "PostgreSQL": "postgres", "pg": "postgres", "sqlite3": "sqlite",
	} {
		got, err := migrations.NormalizeDialect(input)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := migrations.NormalizeDialect("mysql")
	require.Error(t, err)
}
