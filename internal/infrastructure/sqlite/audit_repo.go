package sqlite

import (
	"context"
	"fmt"

	"github.com/ottoassistant/otto/internal/domain"
	"github.com/ottoassistant/otto/internal/idgen"
	"github.com/ottoassistant/otto/internal/store"
)

type AuditRepository struct {
	st *store.Store
}

func NewAuditRepository(st *store.Store) *AuditRepository {
	return &AuditRepository{st: st}
}

const taskAuditColumns = `id, task_id, action, lane, actor, before_json, after_json, metadata_json, created_at`

func (r *AuditRepository) RecordTaskAudit(ctx context.Context, entry *domain.TaskAudit) error {
	if entry.ID == "" {
		entry.ID = idgen.New()
	}
	_, err := r.st.DB.NamedExecContext(ctx, `
		INSERT INTO task_audit (`+taskAuditColumns+`)
		VALUES (:id, :task_id, :action, :lane, :actor, :before_json, :after_json, :metadata_json, :created_at)`,
		entry,
	)
	if err != nil {
		return fmt.Errorf("record task audit: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListTaskAudit(ctx context.Context, taskID string, limit int) ([]*domain.TaskAudit, error) {
	var entries []*domain.TaskAudit
	err := r.st.DB.SelectContext(ctx, &entries, `
		SELECT `+taskAuditColumns+` FROM task_audit WHERE task_id = ?
		ORDER BY created_at DESC LIMIT ?`,
		taskID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list task audit: %w", err)
	}
	return entries, nil
}

const commandAuditColumns = `id, command, lane, status, error_message, metadata_json, created_at`

func (r *AuditRepository) RecordCommandAudit(ctx context.Context, entry *domain.CommandAudit) error {
	if entry.ID == "" {
		entry.ID = idgen.New()
	}
	_, err := r.st.DB.NamedExecContext(ctx, `
		INSERT INTO command_audit (`+commandAuditColumns+`)
		VALUES (:id, :command, :lane, :status, :error_message, :metadata_json, :created_at)`,
		entry,
	)
	if err != nil {
		return fmt.Errorf("record command audit: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListCommandAudit(ctx context.Context, limit int) ([]*domain.CommandAudit, error) {
	var entries []*domain.CommandAudit
	err := r.st.DB.SelectContext(ctx, &entries, `
		SELECT `+commandAuditColumns+` FROM command_audit ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list command audit: %w", err)
	}
	return entries, nil
}

func (r *AuditRepository) DeleteTaskAuditOlderThan(ctx context.Context, cutoff int64) (int, error) {
	res, err := r.st.DB.ExecContext(ctx, `DELETE FROM task_audit WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old task audit: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *AuditRepository) DeleteCommandAuditOlderThan(ctx context.Context, cutoff int64) (int, error) {
	res, err := r.st.DB.ExecContext(ctx, `DELETE FROM command_audit WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old command audit: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
