package command

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-attendance/pkg/types"
	gocommand "github.com/goliatone/go-command"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/google/uuid"
)

// AttendanceScanResolveInput carries a scanned token.
type AttendanceScanResolveInput struct {
	Token string
	// Actor optionally identifies the device or operator that scanned.
	Actor  types.ActorRef
	Result *types.AttendanceRecord
}

// Type implements gocommand.Message.
func (AttendanceScanResolveInput) Type() string {
	return "command.attendance.scan.resolve"
}

// Validate implements gocommand.Message.
func (input AttendanceScanResolveInput) Validate() error {
	if strings.TrimSpace(input.Token) == "" {
		return ErrTokenRequired
	}
	return nil
}

// AttendanceScanResolveConfig wires dependencies for scan resolution.
type AttendanceScanResolveConfig struct {
	Transactor  types.Transactor
	Clock       types.Clock
	Logger      types.Logger
	Hooks       types.Hooks
	Activity    types.ActivitySink
	FeatureGate featuregate.FeatureGate
	Policy      types.TransitionPolicy
}

// AttendanceScanResolveCommand consumes a token and advances the day's record
// by exactly one transition.
type AttendanceScanResolveCommand struct {
	tx       types.Transactor
	clock    types.Clock
	logger   types.Logger
	hooks    types.Hooks
	activity types.ActivitySink
	gate     featuregate.FeatureGate
	policy   types.TransitionPolicy
}

// NewAttendanceScanResolveCommand constructs the handler.
func NewAttendanceScanResolveCommand(cfg AttendanceScanResolveConfig) *AttendanceScanResolveCommand {
	return &AttendanceScanResolveCommand{
		tx:       cfg.Transactor,
		clock:    safeClock(cfg.Clock),
		logger:   safeLogger(cfg.Logger),
		hooks:    cfg.Hooks,
		activity: cfg.Activity,
		gate:     cfg.FeatureGate,
		policy:   safeScanPolicy(cfg.Policy),
	}
}

var _ gocommand.Commander[AttendanceScanResolveInput] = (*AttendanceScanResolveCommand)(nil)

// Execute resolves the scan. Token consumption and the record write commit
// together or not at all.
func (c *AttendanceScanResolveCommand) Execute(ctx context.Context, input AttendanceScanResolveInput) error {
	if c.tx == nil {
		return ErrMissingTransactor
	}
	if err := input.Validate(); err != nil {
		return err
	}
	if err := requireFeature(ctx, c.gate, FeatureScan, input.Actor.ID); err != nil {
		return err
	}

	raw := strings.TrimSpace(input.Token)
	at := now(c.clock)

	var (
		result types.AttendanceRecord
		from   types.AttendanceStatus
	)
	err := c.tx.RunInTx(ctx, func(ctx context.Context, repos types.Repositories) error {
		token, err := repos.Tokens.GetActiveToken(ctx, raw)
		if err != nil {
			return err
		}
		if token == nil {
			return ErrInvalidToken
		}
		if !at.Before(token.ExpiresAt) {
			return ErrTokenExpired
		}
		if err := repos.Tokens.ConsumeToken(ctx, token.Token, at); err != nil {
			return err
		}

		current, err := repos.Attendance.GetRecord(ctx, token.UserID, token.Date)
		if err != nil {
			return err
		}
		next, prev, err := c.advance(current, token, at)
		if err != nil {
			return err
		}
		from = prev

		var saved *types.AttendanceRecord
		if current == nil {
			saved, err = repos.Attendance.CreateRecord(ctx, next)
		} else {
			saved, err = repos.Attendance.UpdateRecord(ctx, next, current.Status)
		}
		if err != nil {
			return err
		}
		result = *saved
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			c.logger.Info("attendance scan lost concurrent update")
		}
		return err
	}

	verb := VerbCheckedIn
	if result.Status == types.AttendanceStatusCheckedOut {
		verb = VerbCheckedOut
	}
	actorID := input.Actor.ID
	if actorID == uuid.Nil {
		actorID = result.UserID
	}
	c.logger.Debug("attendance scan resolved",
		"user_id", result.UserID.String(),
		"date", result.Date.String(),
		"status", string(result.Status),
	)
	emitAttendanceHook(ctx, c.hooks, types.AttendanceEvent{
		UserID:     result.UserID,
		ActorID:    actorID,
		Date:       result.Date,
		FromStatus: from,
		ToStatus:   result.Status,
		Record:     result,
		OccurredAt: at,
	})
	publish(ctx, c.activity, c.hooks, c.logger, recordActivity(verb, result, actorID, from, at))

	if input.Result != nil {
		*input.Result = result
	}
	return nil
}

// advance computes the next record state for a scan at the instant. It
// returns the previous status (AttendanceStatusNone when no record exists).
func (c *AttendanceScanResolveCommand) advance(current *types.AttendanceRecord, token *types.AttendanceToken, at time.Time) (types.AttendanceRecord, types.AttendanceStatus, error) {
	if current == nil {
		if err := c.policy.Validate(types.AttendanceStatusNone, types.AttendanceStatusCheckedIn); err != nil {
			return types.AttendanceRecord{}, types.AttendanceStatusNone, ErrAttendanceComplete
		}
		checkIn := at
		return types.AttendanceRecord{
			UserID:      token.UserID,
			Date:        token.Date,
			CheckInTime: &checkIn,
			Status:      types.AttendanceStatusCheckedIn,
		}, types.AttendanceStatusNone, nil
	}

	if current.CheckOutTime != nil {
		return types.AttendanceRecord{}, current.Status, ErrAttendanceComplete
	}
	next := *current
	target := types.AttendanceStatusCheckedOut
	if current.CheckInTime == nil {
		target = types.AttendanceStatusCheckedIn
	}
	if err := c.policy.Validate(current.Status, target); err != nil {
		return types.AttendanceRecord{}, current.Status, ErrAttendanceComplete
	}

	stamp := at
	if target == types.AttendanceStatusCheckedIn {
		next.CheckInTime = &stamp
	} else {
		if stamp.Before(*current.CheckInTime) {
			stamp = *current.CheckInTime
		}
		next.CheckOutTime = &stamp
	}
	next.Status = target
	return next, current.Status, nil
}
