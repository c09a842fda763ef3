package command

import (
	"context"
	"time"

	"github.com/goliatone/go-attendance/pkg/types"
	gocommand "github.com/goliatone/go-command"
)

// DefaultPurgeGrace keeps recently expired tokens around for diagnostics.
const DefaultPurgeGrace = time.Hour

// AttendanceTokenPurgeInput removes expired tokens. A zero Before purges
// tokens that expired more than the configured grace window ago.
type AttendanceTokenPurgeInput struct {
	Before time.Time
	Result *AttendanceTokenPurgeResult
}

// Type implements gocommand.Message.
func (AttendanceTokenPurgeInput) Type() string {
	return "command.attendance.token.purge"
}

// Validate implements gocommand.Message.
func (AttendanceTokenPurgeInput) Validate() error {
	return nil
}

// AttendanceTokenPurgeResult reports how many tokens were deleted.
type AttendanceTokenPurgeResult struct {
	Before  time.Time
	Deleted int
}

// AttendanceTokenPurgeConfig wires dependencies for token purging.
type AttendanceTokenPurgeConfig struct {
	Tokens types.AttendanceTokenRepository
	Clock  types.Clock
	Logger types.Logger
	// Grace defaults to DefaultPurgeGrace. Negative values purge immediately.
	Grace time.Duration
}

// AttendanceTokenPurgeCommand garbage collects expired tokens.
type AttendanceTokenPurgeCommand struct {
	tokens types.AttendanceTokenRepository
	clock  types.Clock
	logger types.Logger
	grace  time.Duration
}

// NewAttendanceTokenPurgeCommand constructs the handler.
func NewAttendanceTokenPurgeCommand(cfg AttendanceTokenPurgeConfig) *AttendanceTokenPurgeCommand {
	grace := cfg.Grace
	if grace < 0 {
		grace = 0
	} else if grace == 0 {
		grace = DefaultPurgeGrace
	}
	return &AttendanceTokenPurgeCommand{
		tokens: cfg.Tokens,
		clock:  safeClock(cfg.Clock),
		logger: safeLogger(cfg.Logger),
		grace:  grace,
	}
}

var _ gocommand.Commander[AttendanceTokenPurgeInput] = (*AttendanceTokenPurgeCommand)(nil)

// Execute deletes the expired tokens.
func (c *AttendanceTokenPurgeCommand) Execute(ctx context.Context, input AttendanceTokenPurgeInput) error {
	if c.tokens == nil {
		return types.ErrMissingTokenRepository
	}
	before := input.Before
	if before.IsZero() {
		before = now(c.clock).Add(-c.grace)
	}
	deleted, err := c.tokens.PurgeExpired(ctx, before)
	if err != nil {
		return err
	}
	c.logger.Debug("attendance tokens purged", "before", before.UTC().Format(time.RFC3339), "deleted", deleted)
	if input.Result != nil {
		*input.Result = AttendanceTokenPurgeResult{Before: before, Deleted: deleted}
	}
	return nil
}
