package command

import (
	"context"
	"time"

	"github.com/goliatone/go-attendance/pkg/types"
	"github.com/google/uuid"
)

const (
	activityObjectRecord = "attendance_record"
	activityObjectToken  = "attendance_token"
	activityChannel      = "attendance"
)

// Activity verbs emitted by attendance commands.
const (
	VerbTokenIssued      = "attendance.token.issued"
	VerbCheckedIn        = "attendance.checked_in"
	VerbCheckedOut       = "attendance.checked_out"
	VerbAbsentReconciled = "attendance.absent.reconciled"
	VerbMarked           = "attendance.marked"
)

func safeClock(clock types.Clock) types.Clock {
	if clock != nil {
		return clock
	}
	return types.SystemClock{}
}

func safeLogger(logger types.Logger) types.Logger {
	if logger != nil {
		return logger
	}
	return types.NopLogger{}
}

func safeIDGen(gen types.IDGenerator) types.IDGenerator {
	if gen != nil {
		return gen
	}
	return types.UUIDGenerator{}
}

func safeLocation(loc *time.Location) *time.Location {
	if loc != nil {
		return loc
	}
	return time.UTC
}

func safeScanPolicy(policy types.TransitionPolicy) types.TransitionPolicy {
	if policy != nil {
		return policy
	}
	return types.DefaultScanPolicy()
}

func safeMarkPolicy(policy types.TransitionPolicy) types.TransitionPolicy {
	if policy != nil {
		return policy
	}
	return types.DefaultMarkPolicy()
}

func now(clock types.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now()
}

func requireUser(ctx context.Context, directory types.IdentityDirectory, userID uuid.UUID) error {
	if directory == nil {
		return types.ErrMissingIdentityDirectory
	}
	ok, err := directory.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return types.ErrUserNotFound
	}
	return nil
}

func recordActivity(verb string, record types.AttendanceRecord, actorID uuid.UUID, from types.AttendanceStatus, at time.Time) types.ActivityRecord {
	data := map[string]any{
		"date":   record.Date.String(),
		"status": string(record.Status),
	}
	if from != types.AttendanceStatusNone {
		data["from_status"] = string(from)
	}
	if record.CheckInTime != nil {
		data["check_in_time"] = record.CheckInTime.UTC().Format(time.RFC3339)
	}
	if record.CheckOutTime != nil {
		data["check_out_time"] = record.CheckOutTime.UTC().Format(time.RFC3339)
	}
	return types.ActivityRecord{
		UserID:     record.UserID,
		ActorID:    actorID,
		Verb:       verb,
		ObjectType: activityObjectRecord,
		ObjectID:   record.ID.String(),
		Channel:    activityChannel,
		Data:       data,
		OccurredAt: at,
	}
}

func emitAttendanceHook(ctx context.Context, hooks types.Hooks, event types.AttendanceEvent) {
	if hooks.AfterAttendanceChange == nil {
		return
	}
	hooks.AfterAttendanceChange(ctx, event)
}

func emitReconcileHook(ctx context.Context, hooks types.Hooks, summary types.ReconcileSummary) {
	if hooks.AfterReconcile == nil {
		return
	}
	hooks.AfterReconcile(ctx, summary)
}

func logActivity(ctx context.Context, sink types.ActivitySink, logger types.Logger, record types.ActivityRecord) {
	if sink == nil {
		return
	}
	if err := sink.Log(ctx, record); err != nil {
		safeLogger(logger).Error("attendance activity sink failed", err, "verb", record.Verb, "user_id", record.UserID.String())
	}
}

func emitActivityHook(ctx context.Context, hooks types.Hooks, record types.ActivityRecord) {
	if hooks.AfterActivity == nil {
		return
	}
	hooks.AfterActivity(ctx, record)
}

func publish(ctx context.Context, sink types.ActivitySink, hooks types.Hooks, logger types.Logger, record types.ActivityRecord) {
	logActivity(ctx, sink, logger, record)
	emitActivityHook(ctx, hooks, record)
}
