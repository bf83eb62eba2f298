// Package schedule provides the polling scheduler for unattended
// maintenance. It uses robfig/cron/v3 to fire the auto-maintain
// orchestrator on a fixed daily cadence, an hourly emergency size check,
// and (in development mode) an additional six-hourly run.
//
// Jobs never run concurrently with each other: the cron instance is built
// with a job wrapper that skips an invocation while the previous one is
// still running, which preserves the one-maintenance-action-at-a-time model.
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/lmurray-au/dbmaint/internal/audit"
	"github.com/lmurray-au/dbmaint/internal/format"
	"github.com/lmurray-au/dbmaint/internal/logger"
	"github.com/lmurray-au/dbmaint/internal/maint"
)

// emergencyFactor is how far past max_db_size_mb the hourly size check lets
// the database grow before trimming to the newest rows.
const emergencyFactor = 1.5

// Job names as registered, in registration order. Exposed for status output.
const (
	JobDaily     = "daily auto-maintain"
	JobHourly    = "hourly size check"
	JobSixHourly = "six-hourly auto-maintain (development)"
)

// Scheduler fires maintenance jobs on a fixed cadence until its context is
// cancelled.
type Scheduler struct {
	cron *cron.Cron
	svc  *maint.Service
	log  *logger.Logger

	mu      sync.Mutex
	jobs    []string
	started bool
}

// New creates a scheduler around an existing maintenance service. The
// service's config supplies both the cadence settings and the thresholds
// used by the emergency size check.
func New(svc *maint.Service, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Discard()
	}
	return &Scheduler{
		// SkipIfStillRunning keeps a slow VACUUM from overlapping the next
		// firing of the same job.
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		svc:  svc,
		log:  log,
	}
}

// Enabled reports whether scheduling is switched on in config. When false,
// callers should fall back to on-demand maintenance and tell the operator.
func (s *Scheduler) Enabled() bool {
	return s.svc.Config().Schedule.Enabled
}

// Register adds the configured jobs. Returns an error if the configured
// daily time cannot be parsed.
func (s *Scheduler) Register() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.svc.Config().Schedule

	daily, err := dailySpec(cfg.DailyAt)
	if err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(daily, func() { s.runAuto("sched:daily") }); err != nil {
		return fmt.Errorf("register daily job: %w", err)
	}
	s.jobs = append(s.jobs, JobDaily)

	if _, err := s.cron.AddFunc("0 * * * *", s.sizeCheck); err != nil {
		return fmt.Errorf("register hourly job: %w", err)
	}
	s.jobs = append(s.jobs, JobHourly)

	if cfg.Development {
		if _, err := s.cron.AddFunc("0 */6 * * *", func() { s.runAuto("sched:6h") }); err != nil {
			return fmt.Errorf("register six-hourly job: %w", err)
		}
		s.jobs = append(s.jobs, JobSixHourly)
	}
	return nil
}

// Jobs returns the names of the registered jobs in registration order.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.jobs...)
}

// Start runs the scheduler until ctx is cancelled. It blocks.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already started")
	}
	s.started = true
	jobs := len(s.jobs)
	s.mu.Unlock()

	s.cron.Start()
	s.log.Info("scheduler started",
		logger.Field{Key: "jobs", Value: jobs},
		logger.Field{Key: "db", Value: s.svc.DBPath()})

	<-ctx.Done()

	// Stop returns a context that completes once running jobs finish;
	// wait for it so an in-flight VACUUM isn't abandoned mid-run.
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
	return nil
}

// runAuto fires one orchestrator run on behalf of a scheduled job.
func (s *Scheduler) runAuto(source string) {
	s.log.Info("scheduled maintenance starting", logger.Field{Key: "source", Value: source})

	result := s.svc.AutoMaintain(context.Background())
	audit.Event(source, "maintain").Detail("tasks", len(result.Tasks)).Write(nil)

	for _, task := range result.Tasks {
		s.log.Info("task finished",
			logger.Field{Key: "source", Value: source},
			logger.Field{Key: "task", Value: task.Name})
	}
	if result.Error != "" {
		s.log.Warn("scheduled maintenance reported an error",
			logger.Field{Key: "source", Value: source},
			logger.Field{Key: "error", Value: result.Error})
	}
}

// sizeCheck trims the store to the newest rows when it has grown well past
// the configured maximum. This is the emergency brake between daily runs.
func (s *Scheduler) sizeCheck() {
	cfg := s.svc.Config()

	result := s.svc.Info(context.Background())
	if result.Error != "" || !result.Exists {
		s.log.Warn("size check skipped",
			logger.Field{Key: "error", Value: result.Error})
		return
	}

	limit := float64(cfg.MaxDBSizeMB) * emergencyFactor
	if result.SizeMB <= limit {
		return
	}

	s.log.Warn("emergency cleanup triggered",
		logger.Field{Key: "size_mb", Value: result.SizeMB},
		logger.Field{Key: "limit_mb", Value: limit})

	trim := s.svc.TrimToNewest(context.Background(), maint.EmergencyKeepRows)
	audit.Event("sched:hourly", "delete").Rows(trim.DeletedRows).Write(nil)
	s.log.Info("emergency cleanup finished",
		logger.Field{Key: "deleted_rows", Value: trim.DeletedRows},
		logger.Field{Key: "kept", Value: trim.Keep},
		logger.Field{Key: "size_before", Value: format.HumanSize(result.SizeBytes)})
}

// dailySpec converts a "HH:MM" wall-clock time to a cron expression.
func dailySpec(at string) (string, error) {
	parts := strings.Split(at, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid daily_at %q (want HH:MM)", at)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid daily_at hour %q", parts[0])
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid daily_at minute %q", parts[1])
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
