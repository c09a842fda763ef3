package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-attendance/command"
	"github.com/goliatone/go-attendance/internal/memory"
	"github.com/goliatone/go-attendance/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T) (*Service, *memory.Store, *stepClock) {
	t.Helper()
	store := memory.NewStore()
	clock := &stepClock{now: time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC)}
	svc := New(Config{
		TokenRepository:      store,
		AttendanceRepository: store,
		IdentityDirectory:    store,
		Clock:                clock,
	})
	return svc, store, clock
}

func TestServiceFullDay(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := newTestService(t)
	user := uuid.New()
	store.AddUser(user, true)

	require.True(t, svc.Ready())
	require.NoError(t, svc.HealthCheck(ctx))

	token, err := svc.IssueToken(ctx, user, "morning")
	require.NoError(t, err)
	require.Equal(t, svc.Today(), token.Date)
	require.Equal(t, clock.Now().Add(command.DefaultTokenTTL), token.ExpiresAt)

	clock.Advance(30 * time.Second)
	record, err := svc.ResolveScan(ctx, "morning")
	require.NoError(t, err)
	require.Equal(t, types.AttendanceStatusCheckedIn, record.Status)

	_, err = svc.ResolveScan(ctx, "morning")
	require.ErrorIs(t, err, types.ErrInvalidToken)

	clock.Advance(8 * time.Hour)
	_, err = svc.IssueToken(ctx, user, "evening")
	require.NoError(t, err)
	record, err = svc.ResolveScan(ctx, "evening")
	require.NoError(t, err)
	require.Equal(t, types.AttendanceStatusCheckedOut, record.Status)
	require.NotNil(t, record.CheckOutTime)

	_, err = svc.IssueToken(ctx, user, "late")
	require.ErrorIs(t, err, types.ErrAlreadyMarked)

	records, err := svc.ListMyAttendance(ctx, user)
	require.NoError(t, err)
	require.Len(t, records, 1)

	pct, err := svc.ComputePercentage(ctx, user)
	require.NoError(t, err)
	require.Equal(t, 1, pct.PresentDays)
	require.Equal(t, 100.0, pct.Percentage)
}

func TestServiceReconcileAndRange(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	present, missing := uuid.New(), uuid.New()
	store.AddUser(present, true)
	store.AddUser(missing, true)
	day := svc.Today()

	_, err := svc.IssueToken(ctx, present, "tok")
	require.NoError(t, err)
	_, err = svc.ResolveScan(ctx, "tok")
	require.NoError(t, err)

	summary, err := svc.ReconcileDay(ctx, day)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Users)
	require.Equal(t, 1, summary.Created)
	require.Equal(t, 1, summary.Skipped)

	results, err := svc.ComputePercentageForRange(ctx, day, day, uuid.Nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	byUser := map[uuid.UUID]types.PercentageResult{}
	for _, result := range results {
		byUser[result.UserID] = result
	}
	require.Equal(t, 100.0, byUser[present].Percentage)
	require.Equal(t, 1, byUser[missing].AbsentDays)
	require.Equal(t, 0.0, byUser[missing].Percentage)
}

func TestServiceMarkAndPurge(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := newTestService(t)
	user := uuid.New()
	store.AddUser(user, true)
	operator := types.ActorRef{ID: uuid.New(), Type: "operator"}

	tomorrow := svc.Today().AddDays(1)
	record, err := svc.MarkAttendance(ctx, operator, user, tomorrow, types.AttendanceStatusLeave)
	require.NoError(t, err)
	require.Equal(t, types.AttendanceStatusLeave, record.Status)
	require.Equal(t, operator.ID, record.MarkedBy)

	_, err = svc.IssueToken(ctx, user, "stale")
	require.NoError(t, err)
	clock.Advance(command.DefaultTokenTTL + command.DefaultPurgeGrace + time.Second)

	deleted, err := svc.PurgeExpiredTokens(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, deleted)
	_, ok := store.Token("stale")
	require.False(t, ok)
}

func TestServiceHealthCheckReportsMissingDependencies(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	var nilSvc *Service
	require.ErrorIs(t, nilSvc.HealthCheck(ctx), types.ErrServiceNotReady)
	require.False(t, nilSvc.Ready())

	svc := New(Config{})
	require.False(t, svc.Ready())
	require.ErrorIs(t, svc.HealthCheck(ctx), types.ErrMissingTokenRepository)

	svc = New(Config{TokenRepository: store})
	require.ErrorIs(t, svc.HealthCheck(ctx), types.ErrMissingAttendanceRepository)

	svc = New(Config{TokenRepository: store, AttendanceRepository: records{store}})
	require.ErrorIs(t, svc.HealthCheck(ctx), command.ErrMissingTransactor)

	svc = New(Config{TokenRepository: store, AttendanceRepository: store})
	require.ErrorIs(t, svc.HealthCheck(ctx), types.ErrMissingIdentityDirectory)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	svc = New(Config{TokenRepository: store, AttendanceRepository: store, IdentityDirectory: store})
	require.ErrorIs(t, svc.HealthCheck(cancelled), context.Canceled)
}

// records hides the Transactor implementation of the wrapped store.
type records struct {
	types.AttendanceRepository
}
