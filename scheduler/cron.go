package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-attendance/pkg/types"
	"github.com/robfig/cron/v3"
)

const (
	// DefaultReconcileSpec runs the absence sweep just before midnight.
	DefaultReconcileSpec = "55 23 * * *"
	// DefaultPurgeSpec runs token garbage collection every hour.
	DefaultPurgeSpec = "@hourly"
	// DefaultJobTimeout bounds a single job run.
	DefaultJobTimeout = 5 * time.Minute
	// DefaultLockTTL outlives the day a reconcile lock was taken for.
	DefaultLockTTL = 26 * time.Hour
)

// ErrDayLocked indicates another instance already reconciled the day.
var ErrDayLocked = errors.New("go-attendance: reconcile already claimed for the day")

// Runner is implemented by service.Service.
type Runner interface {
	Today() types.Date
	ReconcileDay(ctx context.Context, day types.Date) (types.ReconcileSummary, error)
	PurgeExpiredTokens(ctx context.Context) (int, error)
}

// Config configures the cron scheduler.
type Config struct {
	Runner Runner
	// Lock is optional; without it every instance reconciles.
	Lock          DayLock
	Logger        types.Logger
	Location      *time.Location
	ReconcileSpec string
	PurgeSpec     string
	JobTimeout    time.Duration
	LockTTL       time.Duration
}

// Daily owns the cron runner and its two jobs.
type Daily struct {
	cron    *cron.Cron
	runner  Runner
	lock    DayLock
	logger  types.Logger
	timeout time.Duration
	lockTTL time.Duration
}

// New registers the reconcile and purge jobs. The cron is not started.
func New(cfg Config) (*Daily, error) {
	if cfg.Runner == nil {
		return nil, errors.New("go-attendance: scheduler runner required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	d := &Daily{
		runner:  cfg.Runner,
		lock:    cfg.Lock,
		logger:  logger,
		timeout: cfg.JobTimeout,
		lockTTL: cfg.LockTTL,
	}
	if d.timeout <= 0 {
		d.timeout = DefaultJobTimeout
	}
	if d.lockTTL <= 0 {
		d.lockTTL = DefaultLockTTL
	}

	cl := cronLogger{logger: logger}
	d.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	reconcileSpec := cfg.ReconcileSpec
	if reconcileSpec == "" {
		reconcileSpec = DefaultReconcileSpec
	}
	if _, err := d.cron.AddFunc(reconcileSpec, d.reconcileJob); err != nil {
		return nil, err
	}
	purgeSpec := cfg.PurgeSpec
	if purgeSpec == "" {
		purgeSpec = DefaultPurgeSpec
	}
	if _, err := d.cron.AddFunc(purgeSpec, d.purgeJob); err != nil {
		return nil, err
	}
	return d, nil
}

// Start runs the cron in its own goroutine.
func (d *Daily) Start() {
	d.cron.Start()
}

// Stop halts scheduling; the returned context is done once running jobs end.
func (d *Daily) Stop() context.Context {
	return d.cron.Stop()
}

// RunReconcile reconciles today, claiming the day lock first when configured.
// A failed sweep releases the lock so another run can redo the day.
func (d *Daily) RunReconcile(ctx context.Context) (types.ReconcileSummary, error) {
	day := d.runner.Today()
	if d.lock == nil {
		return d.runner.ReconcileDay(ctx, day)
	}
	key := "reconcile:" + day.String()
	ok, err := d.lock.Acquire(ctx, key, d.lockTTL)
	if err != nil {
		return types.ReconcileSummary{Date: day}, err
	}
	if !ok {
		return types.ReconcileSummary{Date: day}, ErrDayLocked
	}
	summary, err := d.runner.ReconcileDay(ctx, day)
	if err != nil {
		if releaseErr := d.lock.Release(context.WithoutCancel(ctx), key); releaseErr != nil {
			d.logger.Error("attendance reconcile lock release failed", releaseErr, "date", day.String())
		}
	}
	return summary, err
}

// RunPurge deletes expired tokens.
func (d *Daily) RunPurge(ctx context.Context) (int, error) {
	return d.runner.PurgeExpiredTokens(ctx)
}

func (d *Daily) reconcileJob() {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	summary, err := d.RunReconcile(ctx)
	switch {
	case errors.Is(err, ErrDayLocked):
		d.logger.Info("attendance reconcile skipped, lock held", "date", summary.Date.String())
	case err != nil:
		d.logger.Error("attendance reconcile job failed", err, "date", summary.Date.String())
	default:
		d.logger.Info("attendance reconcile job finished", "date", summary.Date.String(), "created", summary.Created)
	}
}

func (d *Daily) purgeJob() {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	deleted, err := d.RunPurge(ctx)
	if err != nil {
		d.logger.Error("attendance token purge job failed", err)
		return
	}
	d.logger.Debug("attendance token purge job finished", "deleted", deleted)
}

// cronLogger adapts types.Logger to cron.Logger.
type cronLogger struct {
	logger types.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, err, keysAndValues...)
}
