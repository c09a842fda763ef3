package command

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-attendance/pkg/types"
	gocommand "github.com/goliatone/go-command"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/google/uuid"
)

// DefaultTokenTTL bounds how long an issued token can be redeemed.
const DefaultTokenTTL = 2 * time.Minute

// AttendanceTokenIssueInput requests a scan token for the caller's current day.
type AttendanceTokenIssueInput struct {
	UserID uuid.UUID
	// Token is caller supplied opaque data. It is generated when empty.
	Token  string
	Result *AttendanceTokenIssueResult
}

// Type implements gocommand.Message.
func (AttendanceTokenIssueInput) Type() string {
	return "command.attendance.token.issue"
}

// Validate implements gocommand.Message.
func (input AttendanceTokenIssueInput) Validate() error {
	if input.UserID == uuid.Nil {
		return ErrUserIDRequired
	}
	return nil
}

// AttendanceTokenIssueResult reports the stored token.
type AttendanceTokenIssueResult struct {
	Token       types.AttendanceToken
	Invalidated int
}

// AttendanceTokenIssueConfig wires dependencies for token issuance.
type AttendanceTokenIssueConfig struct {
	Transactor     types.Transactor
	Directory      types.IdentityDirectory
	Clock          types.Clock
	IDGen          types.IDGenerator
	Logger         types.Logger
	Hooks          types.Hooks
	Activity       types.ActivitySink
	FeatureGate    featuregate.FeatureGate
	TTL            time.Duration
	Location       *time.Location
	TokenGenerator func() string
}

// AttendanceTokenIssueCommand invalidates the caller's active tokens for the
// day and stores a fresh one, atomically.
type AttendanceTokenIssueCommand struct {
	tx        types.Transactor
	directory types.IdentityDirectory
	clock     types.Clock
	idGen     types.IDGenerator
	logger    types.Logger
	hooks     types.Hooks
	activity  types.ActivitySink
	gate      featuregate.FeatureGate
	ttl       time.Duration
	location  *time.Location
	generate  func() string
}

// NewAttendanceTokenIssueCommand constructs the handler.
func NewAttendanceTokenIssueCommand(cfg AttendanceTokenIssueConfig) *AttendanceTokenIssueCommand {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	generate := cfg.TokenGenerator
	if generate == nil {
		generate = uuid.NewString
	}
	return &AttendanceTokenIssueCommand{
		tx:        cfg.Transactor,
		directory: cfg.Directory,
		clock:     safeClock(cfg.Clock),
		idGen:     safeIDGen(cfg.IDGen),
		logger:    safeLogger(cfg.Logger),
		hooks:     cfg.Hooks,
		activity:  cfg.Activity,
		gate:      cfg.FeatureGate,
		ttl:       ttl,
		location:  safeLocation(cfg.Location),
		generate:  generate,
	}
}

var _ gocommand.Commander[AttendanceTokenIssueInput] = (*AttendanceTokenIssueCommand)(nil)

// Execute issues the token.
func (c *AttendanceTokenIssueCommand) Execute(ctx context.Context, input AttendanceTokenIssueInput) error {
	if c.tx == nil {
		return ErrMissingTransactor
	}
	if err := input.Validate(); err != nil {
		return err
	}
	if err := requireFeature(ctx, c.gate, FeatureTokenIssue, input.UserID); err != nil {
		return err
	}
	if err := requireUser(ctx, c.directory, input.UserID); err != nil {
		return err
	}

	raw := strings.TrimSpace(input.Token)
	if raw == "" {
		raw = c.generate()
	}
	issuedAt := now(c.clock)
	day := types.DateOf(issuedAt, c.location)

	var (
		stored      *types.AttendanceToken
		invalidated int
	)
	err := c.tx.RunInTx(ctx, func(ctx context.Context, repos types.Repositories) error {
		record, err := repos.Attendance.GetRecord(ctx, input.UserID, day)
		if err != nil {
			return err
		}
		if record != nil && record.Closed() {
			return ErrAlreadyMarked
		}
		invalidated, err = repos.Tokens.InvalidateActive(ctx, input.UserID, day, issuedAt)
		if err != nil {
			return err
		}
		stored, err = repos.Tokens.CreateToken(ctx, types.AttendanceToken{
			ID:        c.idGen.UUID(),
			Token:     raw,
			UserID:    input.UserID,
			Date:      day,
			ExpiresAt: issuedAt.Add(c.ttl),
			CreatedAt: issuedAt,
			UpdatedAt: issuedAt,
		})
		return err
	})
	if err != nil {
		return err
	}

	c.logger.Debug("attendance token issued",
		"user_id", input.UserID.String(),
		"date", day.String(),
		"invalidated", invalidated,
	)
	publish(ctx, c.activity, c.hooks, c.logger, types.ActivityRecord{
		UserID:     input.UserID,
		ActorID:    input.UserID,
		Verb:       VerbTokenIssued,
		ObjectType: activityObjectToken,
		ObjectID:   stored.ID.String(),
		Channel:    activityChannel,
		Data: map[string]any{
			"date":        day.String(),
			"expires_at":  stored.ExpiresAt.UTC().Format(time.RFC3339),
			"invalidated": invalidated,
		},
		OccurredAt: issuedAt,
	})

	if input.Result != nil {
		*input.Result = AttendanceTokenIssueResult{Token: *stored, Invalidated: invalidated}
	}
	return nil
}
