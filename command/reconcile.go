package command

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-attendance/pkg/types"
	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"
)

// AttendanceReconcileInput requests an absence sweep for a day. A zero Date
// reconciles the current day in the configured location.
type AttendanceReconcileInput struct {
	Date   types.Date
	Result *types.ReconcileSummary
}

// Type implements gocommand.Message.
func (AttendanceReconcileInput) Type() string {
	return "command.attendance.reconcile"
}

// Validate implements gocommand.Message.
func (AttendanceReconcileInput) Validate() error {
	return nil
}

// AttendanceReconcileConfig wires dependencies for the absence reconciler.
type AttendanceReconcileConfig struct {
	Attendance types.AttendanceRepository
	Directory  types.IdentityDirectory
	Clock      types.Clock
	IDGen      types.IDGenerator
	Logger     types.Logger
	Hooks      types.Hooks
	Activity   types.ActivitySink
	Location   *time.Location
}

// AttendanceReconcileCommand inserts an ABSENT record for every active user
// without a record for the day. Each insert is independent: a failure for one
// user is logged and the sweep moves on.
type AttendanceReconcileCommand struct {
	records   types.AttendanceRepository
	directory types.IdentityDirectory
	clock     types.Clock
	idGen     types.IDGenerator
	logger    types.Logger
	hooks     types.Hooks
	activity  types.ActivitySink
	location  *time.Location
}

// NewAttendanceReconcileCommand constructs the handler.
func NewAttendanceReconcileCommand(cfg AttendanceReconcileConfig) *AttendanceReconcileCommand {
	return &AttendanceReconcileCommand{
		records:   cfg.Attendance,
		directory: cfg.Directory,
		clock:     safeClock(cfg.Clock),
		idGen:     safeIDGen(cfg.IDGen),
		logger:    safeLogger(cfg.Logger),
		hooks:     cfg.Hooks,
		activity:  cfg.Activity,
		location:  safeLocation(cfg.Location),
	}
}

var _ gocommand.Commander[AttendanceReconcileInput] = (*AttendanceReconcileCommand)(nil)

// Execute runs the sweep. It only fails when the active user list cannot be
// read or the context is cancelled; per-user failures land in the summary.
func (c *AttendanceReconcileCommand) Execute(ctx context.Context, input AttendanceReconcileInput) error {
	if c.records == nil {
		return types.ErrMissingAttendanceRepository
	}
	if c.directory == nil {
		return types.ErrMissingIdentityDirectory
	}
	started := now(c.clock)
	day := input.Date
	if day.IsZero() {
		day = types.DateOf(started, c.location)
	}

	users, err := c.directory.ListActiveUsers(ctx)
	if err != nil {
		return err
	}

	summary := types.ReconcileSummary{Date: day, Users: len(users)}
	defer func() {
		if input.Result != nil {
			*input.Result = summary
		}
	}()

	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			c.logger.Error("attendance reconcile interrupted", err, "date", day.String(), "processed", summary.Created+summary.Skipped+summary.Failed)
			return err
		}
		created, err := c.reconcileUser(ctx, userID, day)
		switch {
		case err != nil:
			summary.Failed++
			c.logger.Error("attendance reconcile user failed", err, "user_id", userID.String(), "date", day.String())
		case created:
			summary.Created++
		default:
			summary.Skipped++
		}
	}

	c.logger.Info("attendance reconcile completed",
		"date", day.String(),
		"users", summary.Users,
		"created", summary.Created,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	emitReconcileHook(ctx, c.hooks, summary)
	return nil
}

func (c *AttendanceReconcileCommand) reconcileUser(ctx context.Context, userID uuid.UUID, day types.Date) (bool, error) {
	existing, err := c.records.GetRecord(ctx, userID, day)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	at := now(c.clock)
	saved, err := c.records.CreateRecord(ctx, types.AttendanceRecord{
		ID:     c.idGen.UUID(),
		UserID: userID,
		Date:   day,
		Status: types.AttendanceStatusAbsent,
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return false, nil
		}
		return false, err
	}

	emitAttendanceHook(ctx, c.hooks, types.AttendanceEvent{
		UserID:     userID,
		Date:       day,
		FromStatus: types.AttendanceStatusNone,
		ToStatus:   saved.Status,
		Record:     *saved,
		OccurredAt: at,
	})
	publish(ctx, c.activity, c.hooks, c.logger, recordActivity(VerbAbsentReconciled, *saved, uuid.Nil, types.AttendanceStatusNone, at))
	return true, nil
}
