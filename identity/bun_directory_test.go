package identity

import (
	"context"
	"testing"

	"github.com/goliatone/go-attendance/command"
	"github.com/goliatone/go-attendance/internal/testdb"
	"github.com/goliatone/go-attendance/pkg/types"
	"github.com/goliatone/go-attendance/records"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestDirectory_UserExists(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	known := uuid.New()
	testdb.InsertUser(t, db, known, StatusActive)

	dir, err := NewDirectory(DirectoryConfig{DB: db})
	require.NoError(t, err)

	ok, err := dir.UserExists(ctx, known)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = dir.UserExists(ctx, uuid.New())
	require.NoError(t, err)
	require.False(t, ok)

	_, err = dir.UserExists(ctx, uuid.Nil)
	require.Error(t, err)
}

func TestDirectory_ListActiveUsers(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	active := []uuid.UUID{uuid.New(), uuid.New()}
	for _, id := range active {
		testdb.InsertUser(t, db, id, StatusActive)
	}
	testdb.InsertUser(t, db, uuid.New(), "suspended")

	dir, err := NewDirectory(DirectoryConfig{DB: db})
	require.NoError(t, err)

	ids, err := dir.ListActiveUsers(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, active, ids)
}

func TestDirectory_ListActiveUsersReturnsEveryUser(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	active := make([]uuid.UUID, 30)
	for i := range active {
		active[i] = uuid.New()
		testdb.InsertUser(t, db, active[i], StatusActive)
	}

	dir, err := NewDirectory(DirectoryConfig{DB: db})
	require.NoError(t, err)

	ids, err := dir.ListActiveUsers(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, active, ids)

	store, err := records.NewRepository(records.RepositoryConfig{DB: db})
	require.NoError(t, err)
	day := types.MustParseDate("2024-06-03")
	var summary types.ReconcileSummary
	cmd := command.NewAttendanceReconcileCommand(command.AttendanceReconcileConfig{
		Attendance: store,
		Directory:  dir,
	})
	require.NoError(t, cmd.Execute(ctx, command.AttendanceReconcileInput{Date: day, Result: &summary}))
	require.Equal(t, 30, summary.Users)
	require.Equal(t, 30, summary.Created)
	require.Zero(t, summary.Failed)

	absent, err := store.ListRecords(ctx, types.AttendanceFilter{From: day, To: day})
	require.NoError(t, err)
	require.Len(t, absent, 30)
	for _, rec := range absent {
		require.Equal(t, types.AttendanceStatusAbsent, rec.Status)
	}
}

func TestDirectory_CacheWrapsRepository(t *testing.T) {
	db := testdb.New(t)
	dir, err := NewDirectory(DirectoryConfig{DB: db}, WithCache(true))
	require.NoError(t, err)

	_, ok := dir.users.(*repositorycache.CachedRepository[*UserRecord])
	require.True(t, ok)
}

func TestDirectory_CachedLookupsHitStoreOnce(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	known := uuid.New()
	testdb.InsertUser(t, db, known, StatusActive)

	spy := &spyUserRepository{Repository: newBaseUserRepository(db)}
	dir, err := NewDirectory(DirectoryConfig{Repository: spy}, WithCache(true))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		ok, err := dir.UserExists(ctx, known)
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.Equal(t, 1, spy.getCalls)
}

func TestDirectory_ActiveSweepBypassesCache(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	first := uuid.New()
	testdb.InsertUser(t, db, first, StatusActive)

	spy := &spyUserRepository{Repository: newBaseUserRepository(db)}
	dir, err := NewDirectory(DirectoryConfig{Repository: spy}, WithCache(true))
	require.NoError(t, err)

	ids, err := dir.ListActiveUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{first}, ids)

	second := uuid.New()
	testdb.InsertUser(t, db, second, StatusActive)

	ids, err = dir.ListActiveUsers(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []uuid.UUID{first, second}, ids)
	require.Equal(t, 2, spy.listCalls)

	for i := 0; i < 2; i++ {
		ok, err := dir.UserExists(ctx, second)
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.Equal(t, 1, spy.getCalls)
}

type spyUserRepository struct {
	repository.Repository[*UserRecord]
	getCalls  int
	listCalls int
}

func (s *spyUserRepository) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*UserRecord, error) {
	s.getCalls++
	return s.Repository.GetByID(ctx, id, criteria...)
}

func (s *spyUserRepository) List(ctx context.Context, criteria ...repository.SelectCriteria) ([]*UserRecord, int, error) {
	s.listCalls++
	return s.Repository.List(ctx, criteria...)
}
