// Package scheduler implements the tick loop that claims due jobs,
// dispatches them to a bounded worker pool, and reschedules or
// finalizes them on completion. Stale-lease reclaim is folded directly
// into claimDue's predicate, so one component covers both claim and
// reclaim rather than running a separate reaper goroutine.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ottoassistant/otto/internal/domain"
	"github.com/ottoassistant/otto/internal/idgen"
	"github.com/ottoassistant/otto/internal/metrics"
	"github.com/ottoassistant/otto/internal/repository"
)

// Config tunes the tick loop: how often it polls, how long a claimed
// job's lease lasts, how many jobs it claims per tick, and how many
// run concurrently.
type Config struct {
	TickInterval time.Duration
	LeaseMs      int64
	BatchLimit   int
	WorkerCount  int
}

type Scheduler struct {
	jobs     repository.JobRepository
	runs     repository.JobRunRepository
	registry *Registry
	logger   *slog.Logger
	cfg      Config
}

func New(jobs repository.JobRepository, runs repository.JobRunRepository, registry *Registry, logger *slog.Logger, cfg Config) *Scheduler {
	return &Scheduler{
		jobs:     jobs,
		runs:     runs,
		registry: registry,
		logger:   logger.With("component", "scheduler"),
		cfg:      cfg,
	}
}

// SeedSystemJobs creates the compile-time reserved jobs if absent. It
// is safe to call on every process start.
func (s *Scheduler) SeedSystemJobs(ctx context.Context, cadenceMinutes map[string]int) error {
	now := time.Now().UnixMilli()
	for jobType := range domain.SystemReservedTypes {
		existing, err := s.jobs.List(ctx, repository.ListJobsFilter{Type: jobType})
		if err != nil {
			return fmt.Errorf("check existing system job %s: %w", jobType, err)
		}
		if len(existing) > 0 {
			continue
		}
		cadence := cadenceMinutes[jobType]
		if cadence <= 0 {
			cadence = 60
		}
		nextRunAt := now + int64(cadence)*60_000
		job := &domain.Job{
			ID:             idgen.New(),
			Type:           jobType,
			ScheduleType:   domain.ScheduleRecurring,
			Status:         domain.JobIdle,
			CadenceMinutes: &cadence,
			NextRunAt:      &nextRunAt,
			CreatedAt:      now,
			UpdatedAt:      now,
			ManagedBy:      domain.ManagedBySystem,
		}
		if _, err := s.jobs.Create(ctx, job); err != nil {
			return fmt.Errorf("seed system job %s: %w", jobType, err)
		}
		s.logger.Info("seeded system job", "type", jobType, "next_run_at", nextRunAt)
	}
	return nil
}

// Run blocks until ctx is cancelled, ticking at cfg.TickInterval.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "tick_interval", s.cfg.TickInterval, "workers", s.cfg.WorkerCount)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler shut down")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	start := time.Now()
	defer func() {
		metrics.SchedulerTickDuration.Observe(time.Since(start).Seconds())
	}()

	now := start.UnixMilli()
	jobs, err := s.jobs.ClaimDue(ctx, now, s.cfg.LeaseMs, s.cfg.BatchLimit)
	if err != nil {
		s.logger.Error("claim due jobs", "error", err)
		return
	}
	if len(jobs) == 0 {
		return
	}
	s.logger.Info("claimed jobs", "count", len(jobs))

	sem := make(chan struct{}, s.cfg.WorkerCount)
	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		sem <- struct{}{}
		go func(j *domain.Job) {
			defer wg.Done()
			defer func() { <-sem }()
			s.runJob(ctx, j)
		}(job)
	}
	wg.Wait()
}

func (s *Scheduler) runJob(ctx context.Context, job *domain.Job) {
	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	now := time.Now().UnixMilli()
	run := &domain.JobRun{
		ID:           idgen.New(),
		JobID:        job.ID,
		ScheduledFor: job.NextRunAt,
		StartedAt:    now,
		Status:       domain.RunFailed,
		CreatedAt:    now,
	}
	run, err := s.runs.Insert(ctx, run)
	if err != nil {
		s.logger.Error("insert job run", "job_id", job.ID, "error", err)
		return
	}

	start := time.Now()
	handler, ok := s.registry.Lookup(job.Type)
	if !ok {
		code := "handler_not_found"
		msg := fmt.Sprintf("no handler registered for job type %q", job.Type)
		s.finishRun(ctx, run.ID, domain.RunFailed, &code, &msg, nil)
		metrics.JobsCompletedTotal.WithLabelValues(job.Type, "handler_not_found").Inc()
		s.finalizeJob(ctx, job, start.UnixMilli(), domain.RunFailed, &code)
		return
	}

	leaseDeadline := time.UnixMilli(*job.LockExpiresAt)
	handlerCtx, cancel := context.WithDeadline(ctx, leaseDeadline)
	defer cancel()

	result, handlerErr := handler(handlerCtx, job)
	duration := time.Since(start)
	metrics.JobExecutionDuration.WithLabelValues(job.Type, string(result.Status)).Observe(duration.Seconds())

	if handlerErr != nil {
		code := "handler_error"
		msg := handlerErr.Error()
		result = HandlerResult{Status: domain.RunFailed, ErrorCode: &code, ErrorMessage: &msg}
	}
	if handlerCtx.Err() != nil {
		code := "lease_expired"
		msg := "handler exceeded its lease"
		result = HandlerResult{Status: domain.RunFailed, ErrorCode: &code, ErrorMessage: &msg}
	}

	s.finishRun(ctx, run.ID, result.Status, result.ErrorCode, result.ErrorMessage, result.ResultJSON)
	outcome := string(result.Status)
	if result.ErrorCode != nil {
		outcome = *result.ErrorCode
	}
	metrics.JobsCompletedTotal.WithLabelValues(job.Type, outcome).Inc()

	s.finalizeJob(ctx, job, start.UnixMilli(), result.Status, result.ErrorCode)
}

func (s *Scheduler) finishRun(ctx context.Context, runID string, status domain.RunStatus, errCode, errMessage, resultJSON *string) {
	finishedAt := time.Now().UnixMilli()
	if err := s.runs.MarkFinished(ctx, runID, finishedAt, status, errCode, errMessage, resultJSON); err != nil {
		s.logger.Error("mark run finished", "run_id", runID, "error", err)
	}
}

// finalizeJob reschedules a recurring job or finalizes a oneshot job,
// guarded by the lock token the job was claimed with.
func (s *Scheduler) finalizeJob(ctx context.Context, job *domain.Job, startedAt int64, status domain.RunStatus, errCode *string) {
	lockToken := ""
	if job.LockToken != nil {
		lockToken = *job.LockToken
	}

	switch job.ScheduleType {
	case domain.ScheduleRecurring:
		nextRunAt := startedAt + int64(*job.CadenceMinutes)*60_000
		now := time.Now().UnixMilli()
		for nextRunAt <= now {
			nextRunAt += int64(*job.CadenceMinutes) * 60_000
		}
		if err := s.jobs.RescheduleRecurring(ctx, job.ID, lockToken, startedAt, nextRunAt); err != nil {
			s.logger.Error("reschedule recurring job", "job_id", job.ID, "error", err)
		}
	case domain.ScheduleOneshot:
		terminal := domain.TerminalCompleted
		reason := "completed"
		if status == domain.RunFailed {
			if errCode != nil && *errCode == "missed_window" {
				terminal = domain.TerminalExpired
				reason = "missed window"
			} else {
				terminal = domain.TerminalCompleted
				reason = "handler reported failure"
			}
		}
		if err := s.jobs.FinalizeOneShot(ctx, job.ID, lockToken, startedAt, terminal, reason); err != nil {
			s.logger.Error("finalize oneshot job", "job_id", job.ID, "error", err)
		}
	}
}
