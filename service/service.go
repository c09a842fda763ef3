package service

import (
	"context"
	"time"

	"github.com/goliatone/go-attendance/command"
	"github.com/goliatone/go-attendance/pkg/types"
	"github.com/goliatone/go-attendance/query"
	featuregate "github.com/goliatone/go-featuregate/gate"
)

// Service is the entry point for go-attendance. It wires repositories, the
// identity directory, hooks and command/query facades supplied by the host.
type Service struct {
	cfg      Config
	commands Commands
	queries  Queries
}

// Commands exposes the service command handlers.
type Commands struct {
	TokenIssue  *command.AttendanceTokenIssueCommand
	ScanResolve *command.AttendanceScanResolveCommand
	Reconcile   *command.AttendanceReconcileCommand
	TokenPurge  *command.AttendanceTokenPurgeCommand
	Mark        *command.AttendanceMarkCommand
}

// Queries exposes read-model helpers.
type Queries struct {
	AttendanceList     *query.AttendanceListQuery
	Percentage         *query.AttendancePercentageQuery
	PercentageForRange *query.AttendancePercentageRangeQuery
}

// Config captures all required dependencies so callers can provide their own
// instances (bun-backed repositories, in-memory stores, hooks, etc.).
type Config struct {
	TokenRepository      types.AttendanceTokenRepository
	AttendanceRepository types.AttendanceRepository
	// Transactor defaults to AttendanceRepository when it also implements
	// types.Transactor.
	Transactor        types.Transactor
	IdentityDirectory types.IdentityDirectory
	ActivitySink      types.ActivitySink
	Hooks             types.Hooks
	Clock             types.Clock
	IDGenerator       types.IDGenerator
	Logger            types.Logger
	FeatureGate       featuregate.FeatureGate
	ScanPolicy        types.TransitionPolicy
	MarkPolicy        types.TransitionPolicy
	TokenTTL          time.Duration
	PurgeGrace        time.Duration
	// Location is the canonical server timezone that defines "today".
	Location       *time.Location
	TokenGenerator func() string
}

// New constructs a Service from the supplied configuration.
func New(cfg Config) *Service {
	s := &Service{cfg: normalizeConfig(cfg)}
	s.commands = s.buildCommands()
	s.queries = s.buildQueries()
	return s
}

func normalizeConfig(cfg Config) Config {
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = types.UUIDGenerator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	if cfg.ScanPolicy == nil {
		cfg.ScanPolicy = types.DefaultScanPolicy()
	}
	if cfg.MarkPolicy == nil {
		cfg.MarkPolicy = types.DefaultMarkPolicy()
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = command.DefaultTokenTTL
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Transactor == nil {
		if tx, ok := cfg.AttendanceRepository.(types.Transactor); ok {
			cfg.Transactor = tx
		}
	}
	return cfg
}

func (s *Service) buildCommands() Commands {
	cfg := s.cfg
	return Commands{
		TokenIssue: command.NewAttendanceTokenIssueCommand(command.AttendanceTokenIssueConfig{
			Transactor:     cfg.Transactor,
			Directory:      cfg.IdentityDirectory,
			Clock:          cfg.Clock,
			IDGen:          cfg.IDGenerator,
			Logger:         cfg.Logger,
			Hooks:          cfg.Hooks,
			Activity:       cfg.ActivitySink,
			FeatureGate:    cfg.FeatureGate,
			TTL:            cfg.TokenTTL,
			Location:       cfg.Location,
			TokenGenerator: cfg.TokenGenerator,
		}),
		ScanResolve: command.NewAttendanceScanResolveCommand(command.AttendanceScanResolveConfig{
			Transactor:  cfg.Transactor,
			Clock:       cfg.Clock,
			Logger:      cfg.Logger,
			Hooks:       cfg.Hooks,
			Activity:    cfg.ActivitySink,
			FeatureGate: cfg.FeatureGate,
			Policy:      cfg.ScanPolicy,
		}),
		Reconcile: command.NewAttendanceReconcileCommand(command.AttendanceReconcileConfig{
			Attendance: cfg.AttendanceRepository,
			Directory:  cfg.IdentityDirectory,
			Clock:      cfg.Clock,
			IDGen:      cfg.IDGenerator,
			Logger:     cfg.Logger,
			Hooks:      cfg.Hooks,
			Activity:   cfg.ActivitySink,
			Location:   cfg.Location,
		}),
		TokenPurge: command.NewAttendanceTokenPurgeCommand(command.AttendanceTokenPurgeConfig{
			Tokens: cfg.TokenRepository,
			Clock:  cfg.Clock,
			Logger: cfg.Logger,
			Grace:  cfg.PurgeGrace,
		}),
		Mark: command.NewAttendanceMarkCommand(command.AttendanceMarkConfig{
			Transactor: cfg.Transactor,
			Directory:  cfg.IdentityDirectory,
			Clock:      cfg.Clock,
			IDGen:      cfg.IDGenerator,
			Logger:     cfg.Logger,
			Hooks:      cfg.Hooks,
			Activity:   cfg.ActivitySink,
			Location:   cfg.Location,
			Policy:     cfg.MarkPolicy,
		}),
	}
}

func (s *Service) buildQueries() Queries {
	return Queries{
		AttendanceList:     query.NewAttendanceListQuery(s.cfg.AttendanceRepository),
		Percentage:         query.NewAttendancePercentageQuery(s.cfg.AttendanceRepository),
		PercentageForRange: query.NewAttendancePercentageRangeQuery(s.cfg.AttendanceRepository),
	}
}

// Commands returns the command facade.
func (s *Service) Commands() Commands {
	return s.commands
}

// Queries returns the query facade.
func (s *Service) Queries() Queries {
	return s.queries
}

// Today returns the current attendance day in the configured location.
func (s *Service) Today() types.Date {
	return types.Today(s.cfg.Clock, s.cfg.Location)
}

// Ready reports whether the service has the required dependencies wired in.
func (s *Service) Ready() bool {
	return s != nil &&
		s.cfg.TokenRepository != nil &&
		s.cfg.AttendanceRepository != nil &&
		s.cfg.Transactor != nil &&
		s.cfg.IdentityDirectory != nil
}

// HealthCheck surfaces the first missing dependency so upstream transports
// (REST, jobs) can refuse to start.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s == nil {
		return types.ErrServiceNotReady
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	switch {
	case s.cfg.TokenRepository == nil:
		return types.ErrMissingTokenRepository
	case s.cfg.AttendanceRepository == nil:
		return types.ErrMissingAttendanceRepository
	case s.cfg.Transactor == nil:
		return command.ErrMissingTransactor
	case s.cfg.IdentityDirectory == nil:
		return types.ErrMissingIdentityDirectory
	}
	return nil
}
