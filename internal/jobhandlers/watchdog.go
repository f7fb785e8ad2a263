package jobhandlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ottoassistant/otto/internal/domain"
	"github.com/ottoassistant/otto/internal/idgen"
	"github.com/ottoassistant/otto/internal/repository"
	"github.com/ottoassistant/otto/internal/scheduler"
)

// NewWatchdogFailures builds the handler for the system-reserved
// "watchdog_failures" job: scans JobRun history for failures since the
// job's last firing and, if any are found, queues a single notification
// rather than letting operators only learn about failures from the
// run-history view.
func NewWatchdogFailures(jobs repository.JobRepository, runs repository.JobRunRepository, outbound repository.OutboundRepository, ownerChat HeartbeatChatID) scheduler.Handler {
	return func(ctx context.Context, job *domain.Job) (scheduler.HandlerResult, error) {
		since := int64(0)
		if job.LastRunAt != nil {
			since = *job.LastRunAt
		} else if job.CadenceMinutes != nil {
			since = time.Now().Add(-time.Duration(*job.CadenceMinutes) * time.Minute).UnixMilli()
		}

		failed, err := runs.ListRecentFailed(ctx, since, 50)
		if err != nil {
			return scheduler.HandlerResult{}, fmt.Errorf("list recent failed runs: %w", err)
		}

		if len(failed) == 0 {
			return scheduler.HandlerResult{Status: domain.RunSuccess}, nil
		}

		chatID, ok := ownerChat()
		if ok {
			content := fmt.Sprintf("Otto watchdog: %d job run(s) failed since %s.", len(failed), time.UnixMilli(since).Format(time.RFC3339))
			msg := &domain.OutboundMessage{
				ID:        idgen.New(),
				ChatID:    chatID,
				Content:   content,
				Priority:  domain.PriorityHigh,
				Status:    domain.MessageQueued,
				CreatedAt: time.Now().UnixMilli(),
				UpdatedAt: time.Now().UnixMilli(),
			}
			if _, err := outbound.Enqueue(ctx, msg); err != nil {
				return scheduler.HandlerResult{}, fmt.Errorf("enqueue watchdog alert: %w", err)
			}
		}

		resultJSON, _ := json.Marshal(map[string]any{"failedRuns": len(failed)})
		result := string(resultJSON)
		return scheduler.HandlerResult{Status: domain.RunSuccess, ResultJSON: &result}, nil
	}
}
