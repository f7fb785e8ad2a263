package jobhandlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ottoassistant/otto/internal/domain"
	"github.com/ottoassistant/otto/internal/repository"
	"github.com/ottoassistant/otto/internal/scheduler"
)

// RetentionConfig carries the per-table TTLs the retention_compact job
// enforces on each run.
type RetentionConfig struct {
	RunRetention           time.Duration
	CommandAuditRetention  time.Duration
	TaskAuditRetention     time.Duration
	OutboundRetention      time.Duration
}

// NewRetentionCompact builds the handler for the system-reserved
// "retention_compact" job: deletes rows older than the configured TTLs
// from the three append-only ledgers plus terminal outbound messages,
// so the store's disk footprint stays bounded.
func NewRetentionCompact(runs repository.JobRunRepository, audit repository.AuditRepository, outbound repository.OutboundRepository, cfg RetentionConfig) scheduler.Handler {
	return func(ctx context.Context, job *domain.Job) (scheduler.HandlerResult, error) {
		now := time.Now()

		runsDeleted, err := runs.DeleteOlderThan(ctx, now.Add(-cfg.RunRetention).UnixMilli())
		if err != nil {
			return scheduler.HandlerResult{}, fmt.Errorf("compact job runs: %w", err)
		}
		taskAuditDeleted, err := audit.DeleteTaskAuditOlderThan(ctx, now.Add(-cfg.TaskAuditRetention).UnixMilli())
		if err != nil {
			return scheduler.HandlerResult{}, fmt.Errorf("compact task audit: %w", err)
		}
		commandAuditDeleted, err := audit.DeleteCommandAuditOlderThan(ctx, now.Add(-cfg.CommandAuditRetention).UnixMilli())
		if err != nil {
			return scheduler.HandlerResult{}, fmt.Errorf("compact command audit: %w", err)
		}
		outboundDeleted, err := outbound.DeleteOlderThan(ctx, now.Add(-cfg.OutboundRetention).UnixMilli())
		if err != nil {
			return scheduler.HandlerResult{}, fmt.Errorf("compact outbound messages: %w", err)
		}

		resultJSON, _ := json.Marshal(map[string]int{
			"jobRunsDeleted":       runsDeleted,
			"taskAuditDeleted":     taskAuditDeleted,
			"commandAuditDeleted":  commandAuditDeleted,
			"outboundMessagesDeleted": outboundDeleted,
		})
		result := string(resultJSON)
		return scheduler.HandlerResult{Status: domain.RunSuccess, ResultJSON: &result}, nil
	}
}
