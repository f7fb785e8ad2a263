// Package repository declares the storage-facing interfaces the
// scheduler, outbound worker, task mutation service, system job
// handlers, and both control planes depend on. Concrete implementations live in
// internal/infrastructure/sqlite; depending on the interface here keeps
// every consumer swappable in tests without touching a real database.
package repository

import (
	"context"

	"github.com/ottoassistant/otto/internal/domain"
)

// ListJobsFilter narrows the job list/tasks-list endpoints shared by
// both control planes.
type ListJobsFilter struct {
	Type       string
	Status     domain.JobStatus
	ManagedBy  domain.ManagedBy
	OnlyActive bool
}

// JobRepository owns the Job table. Claim/Release/Reschedule/Finalize
// form the atomic core the scheduler's tick loop is built on.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) (*domain.Job, error)
	Update(ctx context.Context, job *domain.Job) (*domain.Job, error)
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	List(ctx context.Context, filter ListJobsFilter) ([]*domain.Job, error)
	Delete(ctx context.Context, id string) error

	// ClaimDue atomically leases up to limit due, idle jobs: it reclaims
	// jobs whose lease has expired in the same predicate, so no separate
	// reaper pass is needed.
	ClaimDue(ctx context.Context, now int64, leaseDuration int64, limit int) ([]*domain.Job, error)

	// ReleaseLock returns a claimed job to idle and clears
	// lock_token/lock_expires_at, but only while lockToken still matches
	// the row's current lease.
	ReleaseLock(ctx context.Context, jobID, lockToken string) error

	// RescheduleRecurring advances a recurring job to its next firing time
	// and releases its lease, in one statement.
	RescheduleRecurring(ctx context.Context, jobID, lockToken string, lastRunAt, nextRunAt int64) error

	// FinalizeOneShot marks a oneshot job terminal and releases its lease.
	FinalizeOneShot(ctx context.Context, jobID, lockToken string, lastRunAt int64, state domain.TerminalState, reason string) error

	// Cancel marks any job (oneshot or recurring) cancelled regardless of
	// current lease state.
	Cancel(ctx context.Context, jobID, reason string) error
}

// JobRunRepository owns the append-only JobRun table.
type JobRunRepository interface {
	Insert(ctx context.Context, run *domain.JobRun) (*domain.JobRun, error)
	MarkFinished(ctx context.Context, runID string, finishedAt int64, status domain.RunStatus, errCode, errMessage, resultJSON *string) error
	GetByID(ctx context.Context, id string) (*domain.JobRun, error)
	ListByJobID(ctx context.Context, jobID string, limit, offset int) ([]*domain.JobRun, error)
	CountByJobID(ctx context.Context, jobID string) (int, error)
	ListRecentFailed(ctx context.Context, since int64, limit int) ([]*domain.JobRun, error)
	ListRecent(ctx context.Context, since int64, limit int) ([]*domain.JobRun, error)

	// DeleteOlderThan removes runs older than cutoff, for the
	// retention_compact system job. Returns the number of rows removed.
	DeleteOlderThan(ctx context.Context, cutoff int64) (int, error)
}
