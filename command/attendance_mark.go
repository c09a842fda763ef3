package command

import (
	"context"
	"time"

	"github.com/goliatone/go-attendance/pkg/types"
	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"
)

// AttendanceMarkInput lets an operator mark LEAVE, WFH or ABSENT for a user's
// day. A zero Date targets the current day.
type AttendanceMarkInput struct {
	UserID uuid.UUID
	Date   types.Date
	Status types.AttendanceStatus
	Actor  types.ActorRef
	Result *types.AttendanceRecord
}

// Type implements gocommand.Message.
func (AttendanceMarkInput) Type() string {
	return "command.attendance.mark"
}

// Validate implements gocommand.Message.
func (input AttendanceMarkInput) Validate() error {
	if input.UserID == uuid.Nil {
		return ErrUserIDRequired
	}
	if input.Actor.ID == uuid.Nil {
		return ErrActorRequired
	}
	switch input.Status {
	case types.AttendanceStatusLeave, types.AttendanceStatusWFH, types.AttendanceStatusAbsent:
		return nil
	default:
		return ErrStatusNotMarkable
	}
}

// AttendanceMarkConfig wires dependencies for operator marking.
type AttendanceMarkConfig struct {
	Transactor types.Transactor
	Directory  types.IdentityDirectory
	Clock      types.Clock
	IDGen      types.IDGenerator
	Logger     types.Logger
	Hooks      types.Hooks
	Activity   types.ActivitySink
	Location   *time.Location
	Policy     types.TransitionPolicy
}

// AttendanceMarkCommand records an operator decision for a day that has not
// been scanned.
type AttendanceMarkCommand struct {
	tx        types.Transactor
	directory types.IdentityDirectory
	clock     types.Clock
	idGen     types.IDGenerator
	logger    types.Logger
	hooks     types.Hooks
	activity  types.ActivitySink
	location  *time.Location
	policy    types.TransitionPolicy
}

// NewAttendanceMarkCommand constructs the handler.
func NewAttendanceMarkCommand(cfg AttendanceMarkConfig) *AttendanceMarkCommand {
	return &AttendanceMarkCommand{
		tx:        cfg.Transactor,
		directory: cfg.Directory,
		clock:     safeClock(cfg.Clock),
		idGen:     safeIDGen(cfg.IDGen),
		logger:    safeLogger(cfg.Logger),
		hooks:     cfg.Hooks,
		activity:  cfg.Activity,
		location:  safeLocation(cfg.Location),
		policy:    safeMarkPolicy(cfg.Policy),
	}
}

var _ gocommand.Commander[AttendanceMarkInput] = (*AttendanceMarkCommand)(nil)

// Execute marks the day. Marking the status a record already has is a no-op.
func (c *AttendanceMarkCommand) Execute(ctx context.Context, input AttendanceMarkInput) error {
	if c.tx == nil {
		return ErrMissingTransactor
	}
	if err := input.Validate(); err != nil {
		return err
	}
	if err := requireUser(ctx, c.directory, input.UserID); err != nil {
		return err
	}

	at := now(c.clock)
	day := input.Date
	if day.IsZero() {
		day = types.DateOf(at, c.location)
	}

	var (
		result  types.AttendanceRecord
		from    types.AttendanceStatus
		changed bool
	)
	err := c.tx.RunInTx(ctx, func(ctx context.Context, repos types.Repositories) error {
		current, err := repos.Attendance.GetRecord(ctx, input.UserID, day)
		if err != nil {
			return err
		}
		if current == nil {
			saved, err := repos.Attendance.CreateRecord(ctx, types.AttendanceRecord{
				ID:       c.idGen.UUID(),
				UserID:   input.UserID,
				Date:     day,
				Status:   input.Status,
				MarkedBy: input.Actor.ID,
			})
			if err != nil {
				return err
			}
			result, from, changed = *saved, types.AttendanceStatusNone, true
			return nil
		}
		if current.Scanned() {
			return ErrAlreadyMarked
		}
		if current.Status == input.Status {
			result = *current
			return nil
		}
		if err := c.policy.Validate(current.Status, input.Status); err != nil {
			return ErrAlreadyMarked
		}
		next := *current
		next.Status = input.Status
		next.MarkedBy = input.Actor.ID
		saved, err := repos.Attendance.UpdateRecord(ctx, next, current.Status)
		if err != nil {
			return err
		}
		result, from, changed = *saved, current.Status, true
		return nil
	})
	if err != nil {
		return err
	}

	if changed {
		c.logger.Info("attendance marked",
			"user_id", input.UserID.String(),
			"date", day.String(),
			"status", string(result.Status),
			"marked_by", input.Actor.ID.String(),
		)
		emitAttendanceHook(ctx, c.hooks, types.AttendanceEvent{
			UserID:     input.UserID,
			ActorID:    input.Actor.ID,
			Date:       day,
			FromStatus: from,
			ToStatus:   result.Status,
			Record:     result,
			OccurredAt: at,
		})
		publish(ctx, c.activity, c.hooks, c.logger, recordActivity(VerbMarked, result, input.Actor.ID, from, at))
	}

	if input.Result != nil {
		*input.Result = result
	}
	return nil
}
