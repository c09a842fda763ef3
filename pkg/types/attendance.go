package types

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AttendanceStatus captures the state of a single attendance day.
type AttendanceStatus string

const (
	AttendanceStatusCheckedIn  AttendanceStatus = "CHECKED_IN"
	AttendanceStatusCheckedOut AttendanceStatus = "CHECKED_OUT"
	AttendanceStatusLeave      AttendanceStatus = "LEAVE"
	AttendanceStatusWFH        AttendanceStatus = "WFH"
	AttendanceStatusAbsent     AttendanceStatus = "ABSENT"
)

// Valid reports whether the status is one of the known values.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusCheckedIn, AttendanceStatusCheckedOut, AttendanceStatusLeave,
		AttendanceStatusWFH, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// Present reports whether the status counts as attendance in summaries.
func (s AttendanceStatus) Present() bool {
	switch s {
	case AttendanceStatusCheckedIn, AttendanceStatusCheckedOut, AttendanceStatusWFH:
		return true
	default:
		return false
	}
}

// DayComplete reports whether the status closes the day for scanning.
func (s AttendanceStatus) DayComplete() bool {
	switch s {
	case AttendanceStatusCheckedOut, AttendanceStatusAbsent, AttendanceStatusLeave:
		return true
	default:
		return false
	}
}

// AttendanceRecord is the single row kept per (user, day).
type AttendanceRecord struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Date         Date
	CheckInTime  *time.Time
	CheckOutTime *time.Time
	Status       AttendanceStatus
	MarkedBy     uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Closed reports whether no further scans may advance the record.
func (r AttendanceRecord) Closed() bool {
	return r.CheckOutTime != nil || r.Status.DayComplete()
}

// Scanned reports whether a scan already touched the record.
func (r AttendanceRecord) Scanned() bool {
	return r.CheckInTime != nil || r.CheckOutTime != nil
}

// AttendanceFilter narrows record listings. Zero dates leave that bound open
// and a nil UserID spans every user.
type AttendanceFilter struct {
	UserID uuid.UUID
	From   Date
	To     Date
}

// AttendanceRepository persists one record per (user, day).
type AttendanceRepository interface {
	GetRecord(ctx context.Context, userID uuid.UUID, date Date) (*AttendanceRecord, error)
	// CreateRecord inserts a new record. A duplicate (user, day) yields ErrConflict.
	CreateRecord(ctx context.Context, record AttendanceRecord) (*AttendanceRecord, error)
	// UpdateRecord persists record only if the stored status still equals
	// expected and the stored row is not checked out; otherwise ErrConflict.
	UpdateRecord(ctx context.Context, record AttendanceRecord, expected AttendanceStatus) (*AttendanceRecord, error)
	ListRecords(ctx context.Context, filter AttendanceFilter) ([]AttendanceRecord, error)
}

// Repositories bundles the stores that share a unit of work.
type Repositories struct {
	Tokens     AttendanceTokenRepository
	Attendance AttendanceRepository
}

// Transactor runs fn with repositories bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// IdentityDirectory is the narrow view of the external user store.
type IdentityDirectory interface {
	UserExists(ctx context.Context, userID uuid.UUID) (bool, error)
	ListActiveUsers(ctx context.Context) ([]uuid.UUID, error)
}

// PercentageResult summarises a user's attendance over a range.
type PercentageResult struct {
	UserID      uuid.UUID `json:"user_id"`
	TotalDays   int       `json:"total_days"`
	PresentDays int       `json:"present_days"`
	AbsentDays  int       `json:"absent_days"`
	LeaveDays   int       `json:"leave_days"`
	Percentage  float64   `json:"percentage"`
}

// EffectiveDays is the percentage denominator: total days minus leave.
func (r PercentageResult) EffectiveDays() int {
	return r.TotalDays - r.LeaveDays
}
