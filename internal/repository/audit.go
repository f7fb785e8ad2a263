package repository

import (
	"context"

	"github.com/ottoassistant/otto/internal/domain"
)

// AuditRepository owns the two append-only audit tables.
type AuditRepository interface {
	RecordTaskAudit(ctx context.Context, entry *domain.TaskAudit) error
	ListTaskAudit(ctx context.Context, taskID string, limit int) ([]*domain.TaskAudit, error)

	RecordCommandAudit(ctx context.Context, entry *domain.CommandAudit) error
	ListCommandAudit(ctx context.Context, limit int) ([]*domain.CommandAudit, error)

	DeleteTaskAuditOlderThan(ctx context.Context, cutoff int64) (int, error)
	DeleteCommandAuditOlderThan(ctx context.Context, cutoff int64) (int, error)
}
