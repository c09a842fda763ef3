package tokens

import (
	"time"

	"github.com/goliatone/go-attendance/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the persisted attendance_tokens row.
type Record struct {
	bun.BaseModel `bun:"table:attendance_tokens"`

	ID             uuid.UUID  `bun:"id,pk,type:uuid"`
	Token          string     `bun:"token,notnull"`
	UserID         uuid.UUID  `bun:"user_id,notnull,type:uuid"`
	AttendanceDate types.Date `bun:"attendance_date,notnull,type:date"`
	ExpiresAt      time.Time  `bun:"expires_at,notnull"`
	Used           bool       `bun:"used,notnull"`
	UsedAt         *time.Time `bun:"used_at,nullzero"`
	CreatedAt      time.Time  `bun:"created_at"`
	UpdatedAt      time.Time  `bun:"updated_at"`
}
