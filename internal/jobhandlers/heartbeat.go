// Package jobhandlers implements the scheduler.Handler for each of
// Otto's system-reserved job types. Each constructor closes over the
// repositories it needs and returns a scheduler.Handler, the same shape
// an installation-supplied handler would satisfy.
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

// HeartbeatChatID resolves the chat a heartbeat message should be
// delivered to. Telegram ingestion is out of scope, so the operator
// configures a single owner chat for system notifications.
type HeartbeatChatID func() (int64, bool)

// NewHeartbeat builds the handler for the system-reserved "heartbeat"
// job: composes a short status line from the user profile and enqueues
// it on the outbound queue, skipping the send when the profile's
// heartbeatOnlyIfSignal flag is set and there is nothing noteworthy to
// report (a failed run in the last window).
func NewHeartbeat(profiles repository.ProfileRepository, runs repository.JobRunRepository, outbound repository.OutboundRepository, ownerChat HeartbeatChatID) scheduler.Handler {
	return func(ctx context.Context, job *domain.Job) (scheduler.HandlerResult, error) {
		profile, err := profiles.Get(ctx)
		if err != nil {
			return scheduler.HandlerResult{}, fmt.Errorf("load profile: %w", err)
		}

		if profile.MuteUntil != nil && *profile.MuteUntil > time.Now().UnixMilli() {
			skipped := domain.RunSkipped
			return scheduler.HandlerResult{Status: skipped}, nil
		}

		windowStart := time.Now().Add(-time.Duration(profile.HeartbeatCadenceMin) * time.Minute).UnixMilli()
		failed, err := runs.ListRecentFailed(ctx, windowStart, 50)
		if err != nil {
			return scheduler.HandlerResult{}, fmt.Errorf("check recent failures: %w", err)
		}

		if profile.HeartbeatOnlyIfSignal && len(failed) == 0 {
			return scheduler.HandlerResult{Status: domain.RunSkipped}, nil
		}

		chatID, ok := ownerChat()
		if !ok {
			code := "no_owner_chat"
			msg := "heartbeat has no configured owner chat"
			return scheduler.HandlerResult{Status: domain.RunSuccess, ErrorCode: &code, ErrorMessage: &msg}, nil
		}

		content := "Otto heartbeat: all systems nominal."
		if len(failed) > 0 {
			content = fmt.Sprintf("Otto heartbeat: %d job failure(s) since last check.", len(failed))
		}

		dedupeKey := fmt.Sprintf("heartbeat-%d", time.Now().Truncate(time.Minute).Unix())
		msg := &domain.OutboundMessage{
			ID:        idgen.New(),
			ChatID:    chatID,
			Content:   content,
			Priority:  domain.PriorityLow,
			Status:    domain.MessageQueued,
			DedupeKey: &dedupeKey,
			CreatedAt: time.Now().UnixMilli(),
			UpdatedAt: time.Now().UnixMilli(),
		}
		if _, _, err := outbound.EnqueueOrIgnoreDedupe(ctx, msg); err != nil {
			return scheduler.HandlerResult{}, fmt.Errorf("enqueue heartbeat message: %w", err)
		}

		resultJSON, _ := json.Marshal(map[string]any{"failedRuns": len(failed)})
		result := string(resultJSON)
		return scheduler.HandlerResult{Status: domain.RunSuccess, ResultJSON: &result}, nil
	}
}
