package records

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-attendance/internal/testdb"
	"github.com/goliatone/go-attendance/pkg/types"
	"github.com/goliatone/go-attendance/query"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(RepositoryConfig{
		DB:    testdb.New(t),
		Clock: types.FixedClock{At: testNow},
	})
	require.NoError(t, err)
	return repo
}

func checkIn(userID uuid.UUID, day types.Date, at time.Time) types.AttendanceRecord {
	return types.AttendanceRecord{
		UserID:      userID,
		Date:        day,
		CheckInTime: &at,
		Status:      types.AttendanceStatusCheckedIn,
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	userID := uuid.New()
	day := types.MustParseDate("2024-05-06")

	none, err := repo.GetRecord(ctx, userID, day)
	require.NoError(t, err)
	require.Nil(t, none)

	created, err := repo.CreateRecord(ctx, checkIn(userID, day, testNow))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	found, err := repo.GetRecord(ctx, userID, day)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, created.ID, found.ID)
	require.Equal(t, types.AttendanceStatusCheckedIn, found.Status)
	require.NotNil(t, found.CheckInTime)
	require.True(t, found.CheckInTime.Equal(testNow))
	require.Nil(t, found.CheckOutTime)
	require.Equal(t, uuid.Nil, found.MarkedBy)
}

func TestRepository_CreateDuplicateDayConflicts(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	userID := uuid.New()
	day := types.MustParseDate("2024-05-06")

	_, err := repo.CreateRecord(ctx, checkIn(userID, day, testNow))
	require.NoError(t, err)

	_, err = repo.CreateRecord(ctx, types.AttendanceRecord{
		UserID: userID,
		Date:   day,
		Status: types.AttendanceStatusAbsent,
	})
	require.ErrorIs(t, err, types.ErrConflict)

	_, err = repo.CreateRecord(ctx, checkIn(userID, day.AddDays(1), testNow))
	require.NoError(t, err)
}

func TestRepository_UpdateRequiresExpectedStatus(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	day := types.MustParseDate("2024-05-06")
	created, err := repo.CreateRecord(ctx, checkIn(uuid.New(), day, testNow))
	require.NoError(t, err)

	checkout := testNow.Add(8 * time.Hour)
	next := *created
	next.CheckOutTime = &checkout
	next.Status = types.AttendanceStatusCheckedOut

	_, err = repo.UpdateRecord(ctx, next, types.AttendanceStatusWFH)
	require.ErrorIs(t, err, types.ErrConflict)

	updated, err := repo.UpdateRecord(ctx, next, types.AttendanceStatusCheckedIn)
	require.NoError(t, err)
	require.Equal(t, types.AttendanceStatusCheckedOut, updated.Status)

	_, err = repo.UpdateRecord(ctx, next, types.AttendanceStatusCheckedOut)
	require.ErrorIs(t, err, types.ErrConflict, "checked out rows are final")

	found, err := repo.GetRecord(ctx, created.UserID, day)
	require.NoError(t, err)
	require.True(t, found.CheckOutTime.Equal(checkout))
	require.True(t, found.CheckInTime.Equal(testNow))
}

func TestRepository_ListRecordsFilters(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	alice := uuid.New()
	bob := uuid.New()
	start := types.MustParseDate("2024-05-01")

	for i := 0; i < 4; i++ {
		_, err := repo.CreateRecord(ctx, checkIn(alice, start.AddDays(i), testNow))
		require.NoError(t, err)
	}
	_, err := repo.CreateRecord(ctx, types.AttendanceRecord{
		UserID: bob,
		Date:   start,
		Status: types.AttendanceStatusLeave,
	})
	require.NoError(t, err)

	all, err := repo.ListRecords(ctx, types.AttendanceFilter{})
	require.NoError(t, err)
	require.Len(t, all, 5)

	ranged, err := repo.ListRecords(ctx, types.AttendanceFilter{
		UserID: alice,
		From:   start.AddDays(1),
		To:     start.AddDays(2),
	})
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	require.Equal(t, start.AddDays(2), ranged[0].Date)
	require.Equal(t, start.AddDays(1), ranged[1].Date)

	bobs, err := repo.ListRecords(ctx, types.AttendanceFilter{UserID: bob})
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	require.Equal(t, types.AttendanceStatusLeave, bobs[0].Status)
}

func TestRepository_ListRecordsReturnsEveryRow(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	userID := uuid.New()
	start := types.MustParseDate("2024-01-01")

	for i := 0; i < 40; i++ {
		record := types.AttendanceRecord{
			UserID: userID,
			Date:   start.AddDays(i),
			Status: types.AttendanceStatusAbsent,
		}
		if i < 20 {
			in := testNow
			out := testNow.Add(8 * time.Hour)
			record.Status = types.AttendanceStatusCheckedOut
			record.CheckInTime = &in
			record.CheckOutTime = &out
		}
		_, err := repo.CreateRecord(ctx, record)
		require.NoError(t, err)
	}

	all, err := repo.ListRecords(ctx, types.AttendanceFilter{UserID: userID})
	require.NoError(t, err)
	require.Len(t, all, 40)
	require.Equal(t, start.AddDays(39), all[0].Date)
	require.Equal(t, start, all[39].Date)

	result, err := query.NewAttendancePercentageQuery(repo).Query(ctx, query.AttendancePercentageInput{UserID: userID})
	require.NoError(t, err)
	require.Equal(t, 40, result.TotalDays)
	require.Equal(t, 20, result.PresentDays)
	require.Equal(t, 20, result.AbsentDays)
	require.Equal(t, 50.0, result.Percentage)
}

func TestRepository_RangePercentagesCoverManyUsers(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	start := types.MustParseDate("2024-02-01")

	for u := 0; u < 10; u++ {
		userID := uuid.New()
		for d := 0; d < 3; d++ {
			_, err := repo.CreateRecord(ctx, types.AttendanceRecord{
				UserID: userID,
				Date:   start.AddDays(d),
				Status: types.AttendanceStatusAbsent,
			})
			require.NoError(t, err)
		}
	}

	results, err := query.NewAttendancePercentageRangeQuery(repo).Query(ctx, query.AttendancePercentageRangeInput{
		From: start,
		To:   start.AddDays(2),
	})
	require.NoError(t, err)
	require.Len(t, results, 10)
	for _, result := range results {
		require.Equal(t, 3, result.TotalDays)
		require.Equal(t, 3, result.AbsentDays)
	}
}
