package records

import (
	"time"

	"github.com/goliatone/go-attendance/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the persisted attendance_records row.
type Record struct {
	bun.BaseModel `bun:"table:attendance_records"`

	ID             uuid.UUID  `bun:"id,pk,type:uuid"`
	UserID         uuid.UUID  `bun:"user_id,notnull,type:uuid"`
	AttendanceDate types.Date `bun:"attendance_date,notnull,type:date"`
	CheckInTime    *time.Time `bun:"check_in_time,nullzero"`
	CheckOutTime   *time.Time `bun:"check_out_time,nullzero"`
	Status         string     `bun:"status,notnull"`
	MarkedBy       uuid.UUID  `bun:"marked_by,type:uuid,nullzero"`
	CreatedAt      time.Time  `bun:"created_at"`
	UpdatedAt      time.Time  `bun:"updated_at"`
}
