package query

import (
	"context"

	"github.com/goliatone/go-attendance/pkg/types"
	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"
)

// AttendanceListInput lists a user's records, optionally bounded by day.
type AttendanceListInput struct {
	UserID uuid.UUID
	From   types.Date
	To     types.Date
}

// Type implements gocommand.Message.
func (AttendanceListInput) Type() string {
	return "query.attendance.list"
}

// Validate implements gocommand.Message.
func (input AttendanceListInput) Validate() error {
	if input.UserID == uuid.Nil {
		return types.ErrUserIDRequired
	}
	return validateRange(input.From, input.To)
}

// AttendanceListQuery lists records newest first.
type AttendanceListQuery struct {
	records types.AttendanceRepository
}

// NewAttendanceListQuery constructs the query.
func NewAttendanceListQuery(records types.AttendanceRepository) *AttendanceListQuery {
	return &AttendanceListQuery{records: records}
}

var _ gocommand.Querier[AttendanceListInput, []types.AttendanceRecord] = (*AttendanceListQuery)(nil)

// Query returns the matching records.
func (q *AttendanceListQuery) Query(ctx context.Context, input AttendanceListInput) ([]types.AttendanceRecord, error) {
	if q.records == nil {
		return nil, types.ErrMissingAttendanceRepository
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return q.records.ListRecords(ctx, types.AttendanceFilter{
		UserID: input.UserID,
		From:   input.From,
		To:     input.To,
	})
}

func validateRange(from, to types.Date) error {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return types.ErrInvalidDateRange
	}
	return nil
}
