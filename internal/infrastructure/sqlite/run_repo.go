package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ottoassistant/otto/internal/domain"
	"github.com/ottoassistant/otto/internal/idgen"
	"github.com/ottoassistant/otto/internal/store"
)

type JobRunRepository struct {
	st *store.Store
}

func NewJobRunRepository(st *store.Store) *JobRunRepository {
	return &JobRunRepository{st: st}
}

const runColumns = `id, job_id, scheduled_for, started_at, finished_at,
	status, error_code, error_message, result_json, created_at`

func (r *JobRunRepository) Insert(ctx context.Context, run *domain.JobRun) (*domain.JobRun, error) {
	if run.ID == "" {
		run.ID = idgen.New()
	}
	_, err := r.st.DB.NamedExecContext(ctx, `
		INSERT INTO job_runs (`+runColumns+`)
		VALUES (:id, :job_id, :scheduled_for, :started_at, :finished_at,
			:status, :error_code, :error_message, :result_json, :created_at)`,
		run,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job run: %w", err)
	}
	return run, nil
}

func (r *JobRunRepository) MarkFinished(ctx context.Context, runID string, finishedAt int64, status domain.RunStatus, errCode, errMessage, resultJSON *string) error {
	res, err := r.st.DB.ExecContext(ctx, `
		UPDATE job_runs SET finished_at = ?, status = ?, error_code = ?, error_message = ?, result_json = ?
		WHERE id = ?`,
		finishedAt, status, errCode, errMessage, resultJSON, runID,
	)
	if err != nil {
		return fmt.Errorf("mark run finished: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrRunNotFound
	}
	return nil
}

func (r *JobRunRepository) GetByID(ctx context.Context, id string) (*domain.JobRun, error) {
	var run domain.JobRun
	err := r.st.DB.GetContext(ctx, &run, `SELECT `+runColumns+` FROM job_runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &run, nil
}

func (r *JobRunRepository) ListByJobID(ctx context.Context, jobID string, limit, offset int) ([]*domain.JobRun, error) {
	var runs []*domain.JobRun
	err := r.st.DB.SelectContext(ctx, &runs, `
		SELECT `+runColumns+` FROM job_runs WHERE job_id = ?
		ORDER BY started_at DESC LIMIT ? OFFSET ?`,
		jobID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs by job: %w", err)
	}
	return runs, nil
}

func (r *JobRunRepository) CountByJobID(ctx context.Context, jobID string) (int, error) {
	var n int
	err := r.st.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM job_runs WHERE job_id = ?`, jobID)
	if err != nil {
		return 0, fmt.Errorf("count runs by job: %w", err)
	}
	return n, nil
}

func (r *JobRunRepository) ListRecentFailed(ctx context.Context, since int64, limit int) ([]*domain.JobRun, error) {
	var runs []*domain.JobRun
	err := r.st.DB.SelectContext(ctx, &runs, `
		SELECT `+runColumns+` FROM job_runs
		WHERE status = 'failed' AND started_at >= ?
		ORDER BY started_at DESC LIMIT ?`,
		since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent failed runs: %w", err)
	}
	return runs, nil
}

func (r *JobRunRepository) ListRecent(ctx context.Context, since int64, limit int) ([]*domain.JobRun, error) {
	var runs []*domain.JobRun
	err := r.st.DB.SelectContext(ctx, &runs, `
		SELECT `+runColumns+` FROM job_runs
		WHERE started_at >= ?
		ORDER BY started_at DESC LIMIT ?`,
		since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent runs: %w", err)
	}
	return runs, nil
}

func (r *JobRunRepository) DeleteOlderThan(ctx context.Context, cutoff int64) (int, error) {
	res, err := r.st.DB.ExecContext(ctx, `DELETE FROM job_runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old runs: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
