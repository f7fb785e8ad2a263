// Package outbound implements the durable delivery worker that drains
// the outbound_messages queue through an injected Transport, applying
// priority ordering and exponential backoff with jitter.
package outbound

import (
	"context"
	"log/slog"
	"time"

	"github.com/ottoassistant/otto/internal/metrics"
	"github.com/ottoassistant/otto/internal/repository"
)

type Config struct {
	PollInterval time.Duration
	BatchSize    int
	Backoff      BackoffConfig
	SendTimeout  time.Duration
}

type Worker struct {
	repo      repository.OutboundRepository
	transport Transport
	logger    *slog.Logger
	cfg       Config
}

func NewWorker(repo repository.OutboundRepository, transport Transport, logger *slog.Logger, cfg Config) *Worker {
	if cfg.SendTimeout == 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	return &Worker{
		repo:      repo,
		transport: transport,
		logger:    logger.With("component", "outbound_worker"),
		cfg:       cfg,
	}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.logger.Info("outbound worker started", "poll_interval", w.cfg.PollInterval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("outbound worker shut down")
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	now := time.Now().UnixMilli()
	msgs, err := w.repo.ListDue(ctx, now, w.cfg.BatchSize)
	if err != nil {
		w.logger.Error("list due outbound messages", "error", err)
		return
	}
	metrics.OutboundQueueDepth.Set(float64(len(msgs)))

	for _, msg := range msgs {
		w.deliver(ctx, msg.ID, msg.ChatID, msg.Content, msg.AttemptCount)
	}
}

func (w *Worker) deliver(ctx context.Context, id string, chatID int64, content string, attemptCount int) {
	sendCtx, cancel := context.WithTimeout(ctx, w.cfg.SendTimeout)
	defer cancel()

	start := time.Now()
	outcome, err := w.transport.Send(sendCtx, chatID, content)
	metrics.OutboundDeliveryDuration.Observe(time.Since(start).Seconds())

	if sendCtx.Err() != nil {
		outcome = OutcomeTransient
	}
	if err != nil && outcome == OutcomeOK {
		// a transport that returns an error without naming an outcome is
		// treated as transient.
		outcome = OutcomeTransient
	}

	now := time.Now().UnixMilli()
	switch outcome {
	case OutcomeOK:
		if markErr := w.repo.MarkSent(ctx, id, now); markErr != nil {
			w.logger.Error("mark outbound sent", "message_id", id, "error", markErr)
		}
		metrics.OutboundDeliveryAttemptsTotal.WithLabelValues("ok").Inc()

	case OutcomeTransient:
		nextAttemptCount := attemptCount + 1
		if nextAttemptCount > w.cfg.Backoff.MaxAttempts {
			errMsg := "max attempts exceeded"
			if err != nil {
				errMsg = err.Error()
			}
			if markErr := w.repo.MarkFailed(ctx, id, now, errMsg); markErr != nil {
				w.logger.Error("mark outbound failed", "message_id", id, "error", markErr)
			}
			metrics.OutboundDeliveryAttemptsTotal.WithLabelValues("permanent_after_retries").Inc()
			return
		}
		nextAttemptAt := now + retryDelay(w.cfg.Backoff, nextAttemptCount).Milliseconds()
		errMsg := ""
		if err != nil {
			errMsg = err.Error()
		}
		if markErr := w.repo.MarkRetry(ctx, id, nextAttemptAt, nextAttemptCount, errMsg); markErr != nil {
			w.logger.Error("mark outbound retry", "message_id", id, "error", markErr)
		}
		metrics.OutboundDeliveryAttemptsTotal.WithLabelValues("transient").Inc()

	case OutcomePermanent:
		errMsg := "permanent delivery failure"
		if err != nil {
			errMsg = err.Error()
		}
		if markErr := w.repo.MarkFailed(ctx, id, now, errMsg); markErr != nil {
			w.logger.Error("mark outbound failed", "message_id", id, "error", markErr)
		}
		metrics.OutboundDeliveryAttemptsTotal.WithLabelValues("permanent").Inc()
	}
}
