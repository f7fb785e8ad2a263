package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ottoassistant/otto/internal/domain"
	"github.com/ottoassistant/otto/internal/idgen"
	"github.com/ottoassistant/otto/internal/repository"
	"github.com/ottoassistant/otto/internal/store"
)

type JobRepository struct {
	st *store.Store
}

func NewJobRepository(st *store.Store) *JobRepository {
	return &JobRepository{st: st}
}

const jobColumns = `id, type, schedule_type, status, profile_id, model_ref, payload,
	run_at, cadence_minutes, last_run_at, next_run_at, terminal_state, terminal_reason,
	lock_token, lock_expires_at, created_at, updated_at, managed_by`

func (r *JobRepository) Create(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	if job.ID == "" {
		job.ID = idgen.New()
	}
	_, err := r.st.DB.NamedExecContext(ctx, `
		INSERT INTO jobs (`+jobColumns+`)
		VALUES (:id, :type, :schedule_type, :status, :profile_id, :model_ref, :payload,
			:run_at, :cadence_minutes, :last_run_at, :next_run_at, :terminal_state, :terminal_reason,
			:lock_token, :lock_expires_at, :created_at, :updated_at, :managed_by)`,
		job,
	)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return job, nil
}

func (r *JobRepository) Update(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	res, err := r.st.DB.NamedExecContext(ctx, `
		UPDATE jobs SET
			type = :type, schedule_type = :schedule_type, status = :status,
			profile_id = :profile_id, model_ref = :model_ref, payload = :payload,
			run_at = :run_at, cadence_minutes = :cadence_minutes,
			last_run_at = :last_run_at, next_run_at = :next_run_at,
			terminal_state = :terminal_state, terminal_reason = :terminal_reason,
			updated_at = :updated_at
		WHERE id = :id`,
		job,
	)
	if err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrJobNotFound
	}
	return job, nil
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	var j domain.Job
	err := r.st.DB.GetContext(ctx, &j, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

func (r *JobRepository) List(ctx context.Context, filter repository.ListJobsFilter) ([]*domain.Job, error) {
	where := []string{"1 = 1"}
	args := []any{}

	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, filter.Type)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.ManagedBy != "" {
		where = append(where, "managed_by = ?")
		args = append(args, filter.ManagedBy)
	}
	if filter.OnlyActive {
		where = append(where, "terminal_state IS NULL")
	}

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY updated_at DESC, id ASC`

	var jobs []*domain.Job
	if err := r.st.DB.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

func (r *JobRepository) Delete(ctx context.Context, id string) error {
	res, err := r.st.DB.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

// ClaimDue leases up to limit due jobs in one exclusive transaction: a
// SELECT of candidate IDs (due-and-idle, or leased-but-expired) followed
// by a per-row CAS UPDATE that only succeeds if the row still matches
// the predicate it was selected under. BEGIN IMMEDIATE (via the store's
// _txlock=immediate DSN) makes the select-then-update atomic against
// every other writer, SQLite's answer to SELECT FOR UPDATE SKIP LOCKED.
func (r *JobRepository) ClaimDue(ctx context.Context, now, leaseDuration int64, limit int) ([]*domain.Job, error) {
	tx, err := r.st.BeginImmediate(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin claim tx: %w", err)
	}
	defer tx.Rollback()

	var ids []string
	err = tx.SelectContext(ctx, &ids, `
		SELECT id FROM jobs
		WHERE status != 'paused'
		  AND terminal_state IS NULL
		  AND next_run_at IS NOT NULL
		  AND next_run_at <= ?
		  AND (lock_token IS NULL OR lock_expires_at <= ?)
		ORDER BY next_run_at ASC, id ASC
		LIMIT ?`,
		now, now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select claimable: %w", err)
	}
	if len(ids) == 0 {
		return nil, tx.Commit()
	}

	leaseExpiresAt := now + leaseDuration
	var claimed []*domain.Job
	for _, id := range ids {
		token := idgen.LockToken()
		res, err := tx.ExecContext(ctx, `
			UPDATE jobs SET
				status = 'running',
				lock_token = ?,
				lock_expires_at = ?,
				updated_at = ?
			WHERE id = ?
			  AND terminal_state IS NULL
			  AND (lock_token IS NULL OR lock_expires_at <= ?)`,
			token, leaseExpiresAt, now, id, now,
		)
		if err != nil {
			return nil, fmt.Errorf("claim job %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}
		var j domain.Job
		if err := tx.GetContext(ctx, &j, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id); err != nil {
			return nil, fmt.Errorf("reload claimed job %s: %w", id, err)
		}
		claimed = append(claimed, &j)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim tx: %w", err)
	}
	return claimed, nil
}

func (r *JobRepository) ReleaseLock(ctx context.Context, jobID, lockToken string) error {
	_, err := r.st.DB.ExecContext(ctx, `
		UPDATE jobs SET status = 'idle', lock_token = NULL, lock_expires_at = NULL
		WHERE id = ? AND lock_token = ?`,
		jobID, lockToken,
	)
	if err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

func (r *JobRepository) RescheduleRecurring(ctx context.Context, jobID, lockToken string, lastRunAt, nextRunAt int64) error {
	res, err := r.st.DB.ExecContext(ctx, `
		UPDATE jobs SET
			status = 'idle',
			lock_token = NULL,
			lock_expires_at = NULL,
			last_run_at = ?,
			next_run_at = ?,
			updated_at = ?
		WHERE id = ? AND lock_token = ?`,
		lastRunAt, nextRunAt, lastRunAt, jobID, lockToken,
	)
	if err != nil {
		return fmt.Errorf("reschedule recurring job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("reschedule recurring job %s: %w", jobID, domain.ErrStateConflict)
	}
	return nil
}

func (r *JobRepository) FinalizeOneShot(ctx context.Context, jobID, lockToken string, lastRunAt int64, state domain.TerminalState, reason string) error {
	res, err := r.st.DB.ExecContext(ctx, `
		UPDATE jobs SET
			status = 'idle',
			lock_token = NULL,
			lock_expires_at = NULL,
			last_run_at = ?,
			next_run_at = NULL,
			terminal_state = ?,
			terminal_reason = ?,
			updated_at = ?
		WHERE id = ? AND lock_token = ?`,
		lastRunAt, state, reason, lastRunAt, jobID, lockToken,
	)
	if err != nil {
		return fmt.Errorf("finalize oneshot job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finalize oneshot job %s: %w", jobID, domain.ErrStateConflict)
	}
	return nil
}

func (r *JobRepository) Cancel(ctx context.Context, jobID, reason string) error {
	res, err := r.st.DB.ExecContext(ctx, `
		UPDATE jobs SET
			terminal_state = ?,
			terminal_reason = ?,
			next_run_at = NULL,
			lock_token = NULL,
			lock_expires_at = NULL,
			updated_at = ?
		WHERE id = ? AND terminal_state IS NULL`,
		domain.TerminalCancelled, reason, nowMillis(), jobID,
	)
	if err != nil {
		return fmt.Errorf("cancel job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}
