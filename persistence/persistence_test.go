package persistence

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	attendance "github.com/goliatone/go-attendance"
	"github.com/goliatone/go-attendance/migrations"
	_ "github.com/goliatone/go-attendance/migrations/bootstrap"
	"github.com/goliatone/go-attendance/pkg/types"
	"github.com/goliatone/go-attendance/records"
	"github.com/goliatone/go-attendance/tokens"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func openTestDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := Open(Config{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle", DSN: "x"})
	require.Error(t, err)

	_, err = Open(Config{Driver: "sqlite"})
	require.Error(t, err)
}

func TestMigrateAppliesRegisteredSources(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.Equal(t, "sqlite", DialectName(db))

	applied, err := Migrate(ctx, db, WithSchemaValidation())
	require.NoError(t, err)
	require.Contains(t, applied, "20240101000001")
	require.Contains(t, applied, "20240101000010")
	require.Contains(t, applied, "20240101000020")
	require.Contains(t, applied, "20240101000030")

	again, err := Migrate(ctx, db)
	require.NoError(t, err)
	require.Empty(t, again)
}

func TestMigrateWithExplicitSources(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	core, err := attendance.CoreMigrations("sqlite")
	require.NoError(t, err)
	_, err = Migrate(ctx, db, WithSources(core))
	require.NoError(t, err)

	err = migrations.ValidateSchema(ctx, db.DB, "sqlite")
	var schemaErr *migrations.SchemaValidationError
	require.True(t, errors.As(err, &schemaErr))
	require.Equal(t, []string{"users"}, schemaErr.MissingTables)

	require.NoError(t, migrations.ValidateSchema(ctx, db.DB, "sqlite",
		migrations.WithSchemaChecks(migrations.CoreSchemaChecks...)))
}

func TestTransactorCommitsAndRollsBack(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	_, err := Migrate(ctx, db)
	require.NoError(t, err)

	now := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	clock := types.FixedClock{At: now}
	tokenRepo, err := tokens.NewRepository(tokens.RepositoryConfig{DB: db, Clock: clock})
	require.NoError(t, err)
	recordRepo, err := records.NewRepository(records.RepositoryConfig{DB: db, Clock: clock})
	require.NoError(t, err)
	tx, err := NewTransactor(db, tokenRepo, recordRepo)
	require.NoError(t, err)

	day := types.MustParseDate("2024-05-06")
	userID := uuid.New()

	boom := errors.New("boom")
	err = tx.RunInTx(ctx, func(ctx context.Context, repos types.Repositories) error {
		_, err := repos.Attendance.CreateRecord(ctx, types.AttendanceRecord{
			UserID: userID, Date: day, Status: types.AttendanceStatusAbsent,
		})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	rec, err := recordRepo.GetRecord(ctx, userID, day)
	require.NoError(t, err)
	require.Nil(t, rec)

	require.NoError(t, tx.RunInTx(ctx, func(ctx context.Context, repos types.Repositories) error {
		_, err := repos.Attendance.CreateRecord(ctx, types.AttendanceRecord{
			UserID: userID, Date: day, Status: types.AttendanceStatusAbsent,
		})
		return err
	}))
	rec, err = recordRepo.GetRecord(ctx, userID, day)
	require.NoError(t, err)
	require.NotNil(t, rec)
}
