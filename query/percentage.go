package query

import (
	"context"
	"math"
	"sort"

	"github.com/goliatone/go-attendance/pkg/types"
	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"
)

// AttendancePercentageInput computes one user's percentage. Zero bounds span
// every record the user has.
type AttendancePercentageInput struct {
	UserID uuid.UUID
	From   types.Date
	To     types.Date
}

// Type implements gocommand.Message.
func (AttendancePercentageInput) Type() string {
	return "query.attendance.percentage"
}

// Validate implements gocommand.Message.
func (input AttendancePercentageInput) Validate() error {
	if input.UserID == uuid.Nil {
		return types.ErrUserIDRequired
	}
	return validateRange(input.From, input.To)
}

// AttendancePercentageRangeInput computes percentages for [From, To] grouped
// by user. UserID narrows the scope to one user.
type AttendancePercentageRangeInput struct {
	From   types.Date
	To     types.Date
	UserID uuid.UUID
}

// Type implements gocommand.Message.
func (AttendancePercentageRangeInput) Type() string {
	return "query.attendance.percentage.range"
}

// Validate implements gocommand.Message.
func (input AttendancePercentageRangeInput) Validate() error {
	if input.From.IsZero() || input.To.IsZero() {
		return types.ErrDateRequired
	}
	return validateRange(input.From, input.To)
}

// AttendancePercentageQuery aggregates a single user's records.
type AttendancePercentageQuery struct {
	records types.AttendanceRepository
}

// NewAttendancePercentageQuery constructs the query.
func NewAttendancePercentageQuery(records types.AttendanceRepository) *AttendancePercentageQuery {
	return &AttendancePercentageQuery{records: records}
}

var _ gocommand.Querier[AttendancePercentageInput, types.PercentageResult] = (*AttendancePercentageQuery)(nil)

// Query returns the summary; a user without records gets a zero result.
func (q *AttendancePercentageQuery) Query(ctx context.Context, input AttendancePercentageInput) (types.PercentageResult, error) {
	if q.records == nil {
		return types.PercentageResult{}, types.ErrMissingAttendanceRepository
	}
	if err := input.Validate(); err != nil {
		return types.PercentageResult{}, err
	}
	records, err := q.records.ListRecords(ctx, types.AttendanceFilter{
		UserID: input.UserID,
		From:   input.From,
		To:     input.To,
	})
	if err != nil {
		return types.PercentageResult{}, err
	}
	return Summarize(input.UserID, records), nil
}

// AttendancePercentageRangeQuery aggregates every user in range.
type AttendancePercentageRangeQuery struct {
	records types.AttendanceRepository
}

// NewAttendancePercentageRangeQuery constructs the query.
func NewAttendancePercentageRangeQuery(records types.AttendanceRepository) *AttendancePercentageRangeQuery {
	return &AttendancePercentageRangeQuery{records: records}
}

var _ gocommand.Querier[AttendancePercentageRangeInput, []types.PercentageResult] = (*AttendancePercentageRangeQuery)(nil)

// Query returns one result per user ordered by user id. When scoped to a
// single user that has no records, the slice holds one zero result.
func (q *AttendancePercentageRangeQuery) Query(ctx context.Context, input AttendancePercentageRangeInput) ([]types.PercentageResult, error) {
	if q.records == nil {
		return nil, types.ErrMissingAttendanceRepository
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	records, err := q.records.ListRecords(ctx, types.AttendanceFilter{
		UserID: input.UserID,
		From:   input.From,
		To:     input.To,
	})
	if err != nil {
		return nil, err
	}

	grouped := make(map[uuid.UUID][]types.AttendanceRecord)
	for _, record := range records {
		grouped[record.UserID] = append(grouped[record.UserID], record)
	}
	if input.UserID != uuid.Nil && len(grouped) == 0 {
		return []types.PercentageResult{{UserID: input.UserID}}, nil
	}

	out := make([]types.PercentageResult, 0, len(grouped))
	for userID, group := range grouped {
		out = append(out, Summarize(userID, group))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UserID.String() < out[j].UserID.String()
	})
	return out, nil
}

// Summarize counts the records of one user. Leave days are excluded from the
// denominator; a range of only leave days yields 0.
func Summarize(userID uuid.UUID, records []types.AttendanceRecord) types.PercentageResult {
	result := types.PercentageResult{UserID: userID, TotalDays: len(records)}
	for _, record := range records {
		switch {
		case record.Status.Present():
			result.PresentDays++
		case record.Status == types.AttendanceStatusAbsent:
			result.AbsentDays++
		case record.Status == types.AttendanceStatusLeave:
			result.LeaveDays++
		}
	}
	if effective := result.EffectiveDays(); effective > 0 {
		result.Percentage = round2(float64(result.PresentDays) * 100 / float64(effective))
	}
	return result
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
