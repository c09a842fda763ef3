package query

import (
	"context"
	"testing"

	"github.com/goliatone/go-attendance/internal/memory"
	"github.com/goliatone/go-attendance/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, store *memory.Store, userID uuid.UUID, start types.Date, statuses ...types.AttendanceStatus) {
	t.Helper()
	for i, status := range statuses {
		_, err := store.CreateRecord(context.Background(), types.AttendanceRecord{
			UserID: userID,
			Date:   start.AddDays(i),
			Status: status,
		})
		require.NoError(t, err)
	}
}

func TestSummarizeExcludesLeaveFromDenominator(t *testing.T) {
	store := memory.NewStore()
	userID := uuid.New()
	start := types.MustParseDate("2024-05-01")
	seed(t, store, userID, start,
		types.AttendanceStatusCheckedOut,
		types.AttendanceStatusCheckedOut,
		types.AttendanceStatusAbsent,
		types.AttendanceStatusLeave,
	)

	result, err := NewAttendancePercentageQuery(store).Query(context.Background(), AttendancePercentageInput{
		UserID: userID,
		From:   start,
		To:     start.AddDays(3),
	})
	require.NoError(t, err)
	require.Equal(t, types.PercentageResult{
		UserID:      userID,
		TotalDays:   4,
		PresentDays: 2,
		AbsentDays:  1,
		LeaveDays:   1,
		Percentage:  66.67,
	}, result)
}

func TestSummarizeAllLeaveYieldsZero(t *testing.T) {
	userID := uuid.New()
	result := Summarize(userID, []types.AttendanceRecord{
		{UserID: userID, Status: types.AttendanceStatusLeave},
		{UserID: userID, Status: types.AttendanceStatusLeave},
	})
	require.Equal(t, 2, result.TotalDays)
	require.Equal(t, 2, result.LeaveDays)
	require.Zero(t, result.Percentage)
}

func TestSummarizeCountsWFHAsPresent(t *testing.T) {
	result := Summarize(uuid.New(), []types.AttendanceRecord{
		{Status: types.AttendanceStatusWFH},
		{Status: types.AttendanceStatusCheckedIn},
		{Status: types.AttendanceStatusAbsent},
	})
	require.Equal(t, 2, result.PresentDays)
	require.Equal(t, 66.67, result.Percentage)
}

func TestPercentageWithoutRecordsIsZero(t *testing.T) {
	store := memory.NewStore()
	userID := uuid.New()

	result, err := NewAttendancePercentageQuery(store).Query(context.Background(), AttendancePercentageInput{UserID: userID})
	require.NoError(t, err)
	require.Equal(t, types.PercentageResult{UserID: userID}, result)

	results, err := NewAttendancePercentageRangeQuery(store).Query(context.Background(), AttendancePercentageRangeInput{
		From:   types.MustParseDate("2024-05-01"),
		To:     types.MustParseDate("2024-05-31"),
		UserID: userID,
	})
	require.NoError(t, err)
	require.Equal(t, []types.PercentageResult{{UserID: userID}}, results)
}

func TestPercentageRangeGroupsByUser(t *testing.T) {
	store := memory.NewStore()
	alice := uuid.New()
	bob := uuid.New()
	start := types.MustParseDate("2024-05-01")
	seed(t, store, alice, start, types.AttendanceStatusCheckedOut, types.AttendanceStatusAbsent)
	seed(t, store, bob, start, types.AttendanceStatusWFH, types.AttendanceStatusWFH, types.AttendanceStatusCheckedOut)
	seed(t, store, bob, start.AddDays(30), types.AttendanceStatusAbsent)

	results, err := NewAttendancePercentageRangeQuery(store).Query(context.Background(), AttendancePercentageRangeInput{
		From: start,
		To:   start.AddDays(6),
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.True(t, results[0].UserID.String() < results[1].UserID.String())

	byUser := map[uuid.UUID]types.PercentageResult{}
	for _, result := range results {
		byUser[result.UserID] = result
	}
	require.Equal(t, 50.0, byUser[alice].Percentage)
	require.Equal(t, 3, byUser[bob].TotalDays)
	require.Equal(t, 100.0, byUser[bob].Percentage)

	empty, err := NewAttendancePercentageRangeQuery(store).Query(context.Background(), AttendancePercentageRangeInput{
		From: start.AddDays(100),
		To:   start.AddDays(110),
	})
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestPercentageRangeValidation(t *testing.T) {
	q := NewAttendancePercentageRangeQuery(memory.NewStore())
	_, err := q.Query(context.Background(), AttendancePercentageRangeInput{From: types.MustParseDate("2024-05-01")})
	require.ErrorIs(t, err, types.ErrDateRequired)

	_, err = q.Query(context.Background(), AttendancePercentageRangeInput{
		From: types.MustParseDate("2024-05-10"),
		To:   types.MustParseDate("2024-05-01"),
	})
	require.ErrorIs(t, err, types.ErrInvalidDateRange)
}

func TestAttendanceListNewestFirst(t *testing.T) {
	store := memory.NewStore()
	userID := uuid.New()
	start := types.MustParseDate("2024-05-01")
	seed(t, store, userID, start, types.AttendanceStatusCheckedOut, types.AttendanceStatusAbsent, types.AttendanceStatusLeave)
	seed(t, store, uuid.New(), start, types.AttendanceStatusAbsent)

	records, err := NewAttendanceListQuery(store).Query(context.Background(), AttendanceListInput{UserID: userID})
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, start.AddDays(2), records[0].Date)

	_, err = NewAttendanceListQuery(store).Query(context.Background(), AttendanceListInput{})
	require.ErrorIs(t, err, types.ErrUserIDRequired)
}
