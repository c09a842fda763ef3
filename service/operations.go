package service

import (
	"context"

	"github.com/goliatone/go-attendance/command"
	"github.com/goliatone/go-attendance/pkg/types"
	"github.com/goliatone/go-attendance/query"
	"github.com/google/uuid"
)

// IssueToken stores rawToken as the user's only active token for today. An
// empty rawToken is replaced with a generated value.
func (s *Service) IssueToken(ctx context.Context, userID uuid.UUID, rawToken string) (types.AttendanceToken, error) {
	result := &command.AttendanceTokenIssueResult{}
	err := s.commands.TokenIssue.Execute(ctx, command.AttendanceTokenIssueInput{
		UserID: userID,
		Token:  rawToken,
		Result: result,
	})
	return result.Token, err
}

// ResolveScan consumes the token and returns the advanced record.
func (s *Service) ResolveScan(ctx context.Context, rawToken string) (types.AttendanceRecord, error) {
	record := types.AttendanceRecord{}
	err := s.commands.ScanResolve.Execute(ctx, command.AttendanceScanResolveInput{
		Token:  rawToken,
		Result: &record,
	})
	return record, err
}

// ReconcileDay inserts ABSENT records for active users missing the day.
func (s *Service) ReconcileDay(ctx context.Context, day types.Date) (types.ReconcileSummary, error) {
	summary := types.ReconcileSummary{}
	err := s.commands.Reconcile.Execute(ctx, command.AttendanceReconcileInput{
		Date:   day,
		Result: &summary,
	})
	return summary, err
}

// PurgeExpiredTokens removes tokens past the grace window.
func (s *Service) PurgeExpiredTokens(ctx context.Context) (int, error) {
	result := &command.AttendanceTokenPurgeResult{}
	err := s.commands.TokenPurge.Execute(ctx, command.AttendanceTokenPurgeInput{Result: result})
	return result.Deleted, err
}

// ListMyAttendance lists every record of the user, newest first.
func (s *Service) ListMyAttendance(ctx context.Context, userID uuid.UUID) ([]types.AttendanceRecord, error) {
	return s.queries.AttendanceList.Query(ctx, query.AttendanceListInput{UserID: userID})
}

// ComputePercentage summarises every record of the user.
func (s *Service) ComputePercentage(ctx context.Context, userID uuid.UUID) (types.PercentageResult, error) {
	return s.queries.Percentage.Query(ctx, query.AttendancePercentageInput{UserID: userID})
}

// ComputePercentageForRange summarises [from, to] per user; a nil userID spans
// every user.
func (s *Service) ComputePercentageForRange(ctx context.Context, from, to types.Date, userID uuid.UUID) ([]types.PercentageResult, error) {
	return s.queries.PercentageForRange.Query(ctx, query.AttendancePercentageRangeInput{
		From:   from,
		To:     to,
		UserID: userID,
	})
}

// MarkAttendance records an operator supplied LEAVE, WFH or ABSENT status.
func (s *Service) MarkAttendance(ctx context.Context, actor types.ActorRef, userID uuid.UUID, day types.Date, status types.AttendanceStatus) (types.AttendanceRecord, error) {
	record := types.AttendanceRecord{}
	err := s.commands.Mark.Execute(ctx, command.AttendanceMarkInput{
		UserID: userID,
		Date:   day,
		Status: status,
		Actor:  actor,
		Result: &record,
	})
	return record, err
}
