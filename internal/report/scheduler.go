package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/CameronXie/nsa-protrack/internal/domain"
	"github.com/CameronXie/nsa-protrack/internal/repository"
)

const (
	defaultLockTTL = 5 * time.Minute
	defaultTimeout = 2 * time.Minute
)

// ScheduledReports lists every report with an enabled schedule and reloads a
// single report before each scheduled run.
type ScheduledReports interface {
	ListScheduled(ctx context.Context) ([]*domain.ReportConfig, error)
	GetReportByID(ctx context.Context, userID, id uuid.UUID) (*domain.ReportConfig, error)
}

type FileGenerator interface {
	GenerateAll(ctx context.Context, cfg *domain.ReportConfig) ([]*File, error)
}

type SchedulerConfig struct {
	// Location is the zone schedule times are evaluated in; nil means UTC.
	Location *time.Location
	// LockTTL bounds how long a run lock is held across replicas.
	LockTTL time.Duration
	// RunTimeout caps a single generate-and-send cycle.
	RunTimeout time.Duration
}

// Scheduler keeps one cron job per scheduled report and emails the rendered
// files when the job fires.
type Scheduler struct {
	cfg       SchedulerConfig
	cron      *cron.Cron
	reports   ScheduledReports
	generator FileGenerator
	mailer    Mailer
	locker    Locker
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	entries map[uuid.UUID]cron.EntryID
}

func NewScheduler(
	cfg SchedulerConfig,
	reports ScheduledReports,
	generator FileGenerator,
	mailer Mailer,
	locker Locker,
	logger *slog.Logger,
) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = defaultTimeout
	}
	if locker == nil {
		locker = NewLocalLocker()
	}

	return &Scheduler{
		cfg:       cfg,
		cron:      cron.New(cron.WithParser(cronParser), cron.WithLocation(cfg.Location)),
		reports:   reports,
		generator: generator,
		mailer:    mailer,
		locker:    locker,
		logger:    logger,
		now:       time.Now,
		entries:   make(map[uuid.UUID]cron.EntryID),
	}
}

// Start registers every stored schedule and starts the cron loop. A report
// whose schedule cannot be registered is logged and skipped.
func (s *Scheduler) Start(ctx context.Context) error {
	reports, err := s.reports.ListScheduled(ctx)
	if err != nil {
		return fmt.Errorf("load scheduled reports: %w", err)
	}

	for _, r := range reports {
		if _, err := s.Schedule(r); err != nil {
			s.logger.Error("report_schedule_failed", "report_id", r.ID, "error", err)
		}
	}

	s.cron.Start()
	s.logger.Info("report_scheduler_started", "jobs", s.Len(), "location", s.cfg.Location.String())

	return nil
}

// Stop halts the cron loop and waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// scheduledJob identifies the stored report a cron entry fires for. The
// report itself is reloaded on every run.
type scheduledJob struct {
	reportID uuid.UUID
	userID   uuid.UUID
	expr     string
	entryID  cron.EntryID
}

// Schedule replaces any job registered for the report and, when its schedule
// is enabled, registers a new one. It returns the next activation time, or nil
// when the report is not scheduled.
func (s *Scheduler) Schedule(r *domain.ReportConfig) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.scheduleLocked(r)
}

func (s *Scheduler) scheduleLocked(r *domain.ReportConfig) (*time.Time, error) {
	s.unscheduleLocked(r.ID)

	if !r.Scheduled() {
		return nil, nil
	}

	expr, err := CronExpression(r.Schedule)
	if err != nil {
		return nil, err
	}

	next, err := NextRun(r.Schedule, s.now(), s.cfg.Location)
	if err != nil {
		return nil, err
	}

	job := &scheduledJob{reportID: r.ID, userID: r.UserID, expr: expr}
	id, err := s.cron.AddFunc(expr, func() { s.runScheduled(job) })
	if err != nil {
		return nil, fmt.Errorf("register report %s: %w", r.ID, err)
	}
	job.entryID = id
	s.entries[r.ID] = id

	s.logger.Info("report_scheduled", "report_id", r.ID, "cron", expr, "next_run", next)

	return &next, nil
}

// Unschedule removes the report's job if one is registered.
func (s *Scheduler) Unschedule(reportID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.unscheduleLocked(reportID)
}

func (s *Scheduler) unscheduleLocked(reportID uuid.UUID) {
	id, ok := s.entries[reportID]
	if !ok {
		return
	}

	s.cron.Remove(id)
	delete(s.entries, reportID)
}

// resync brings the job in line with the stored report: it is dropped when the
// report is gone (current is nil) and re-registered when the schedule changed.
// Jobs already replaced by a newer registration are left alone.
func (s *Scheduler) resync(job *scheduledJob, current *domain.ReportConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.entries[job.reportID]; !ok || id != job.entryID {
		return
	}

	if current == nil {
		s.unscheduleLocked(job.reportID)
		return
	}

	if _, err := s.scheduleLocked(current); err != nil {
		s.logger.Error("report_schedule_failed", "report_id", job.reportID, "error", err)
	}
}

// Scheduled reports whether a job is registered for the report.
func (s *Scheduler) Scheduled(reportID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[reportID]
	return ok
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// Run generates the report in every format and emails it to the schedule's recipients.
func (s *Scheduler) Run(ctx context.Context, r *domain.ReportConfig) error {
	if r.Schedule == nil || len(r.Schedule.Recipients) == 0 {
		return errors.New("report has no recipients")
	}

	files, err := s.generator.GenerateAll(ctx, r)
	if err != nil {
		return fmt.Errorf("generate report %s: %w", r.ID, err)
	}

	if err := s.mailer.Send(ctx, NewReportMessage(r, files)); err != nil {
		return fmt.Errorf("deliver report %s: %w", r.ID, err)
	}

	return nil
}

func (s *Scheduler) runScheduled(job *scheduledJob) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("report_run_panic", "report_id", job.reportID, "panic", fmt.Sprint(p))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
	defer cancel()

	r, err := s.reports.GetReportByID(ctx, job.userID, job.reportID)
	if err != nil {
		var notFoundErr *repository.NotFoundError
		if errors.As(err, &notFoundErr) {
			s.logger.Info("report_run_skipped", "report_id", job.reportID, "reason", "report deleted")
			s.resync(job, nil)
			return
		}
		s.logger.Error("report_load_failed", "report_id", job.reportID, "error", err)
		return
	}

	if !r.Scheduled() {
		s.logger.Info("report_run_skipped", "report_id", job.reportID, "reason", "schedule disabled")
		s.resync(job, r)
		return
	}

	if expr, err := CronExpression(r.Schedule); err != nil || expr != job.expr {
		s.logger.Info("report_run_skipped", "report_id", job.reportID, "reason", "schedule changed")
		s.resync(job, r)
		return
	}

	key := lockKey(r.ID, s.now())
	ok, err := s.locker.Acquire(ctx, key, s.cfg.LockTTL)
	if err != nil {
		s.logger.Error("report_lock_failed", "report_id", r.ID, "error", err)
		return
	}
	if !ok {
		s.logger.Info("report_run_skipped", "report_id", r.ID, "reason", "already running elsewhere")
		return
	}

	start := s.now()
	if err := s.Run(ctx, r); err != nil {
		s.logger.Error("report_run_failed", "report_id", r.ID, "error", err)
		return
	}

	s.logger.Info(
		"report_sent",
		"report_id", r.ID,
		"recipients", len(r.Schedule.Recipients),
		"duration", s.now().Sub(start).String(),
	)
}

func lockKey(id uuid.UUID, at time.Time) string {
	return fmt.Sprintf("report-run:%s:%s", id, at.UTC().Truncate(time.Minute).Format("200601021504"))
}
