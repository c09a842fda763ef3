package types

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AttendanceToken is a short lived, single use authorization to scan for one
// user and day.
type AttendanceToken struct {
	ID        uuid.UUID
	Token     string
	UserID    uuid.UUID
	Date      Date
	ExpiresAt time.Time
	Used      bool
	UsedAt    time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Usable reports whether the token can still be redeemed at the instant.
func (t AttendanceToken) Usable(at time.Time) bool {
	return !t.Used && at.Before(t.ExpiresAt)
}

// AttendanceTokenRepository persists attendance tokens.
type AttendanceTokenRepository interface {
	CreateToken(ctx context.Context, token AttendanceToken) (*AttendanceToken, error)
	// GetActiveToken returns the unused token matching the raw value, or nil.
	GetActiveToken(ctx context.Context, token string) (*AttendanceToken, error)
	// InvalidateActive marks every unused token for (user, day) as used and
	// reports how many were touched.
	InvalidateActive(ctx context.Context, userID uuid.UUID, date Date, at time.Time) (int, error)
	// ConsumeToken flips used to true when the token is unused and unexpired at
	// the instant. Any other state yields ErrInvalidToken.
	ConsumeToken(ctx context.Context, token string, at time.Time) error
	// PurgeExpired deletes tokens that expired before the instant.
	PurgeExpired(ctx context.Context, before time.Time) (int, error)
}
