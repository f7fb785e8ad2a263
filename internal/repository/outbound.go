package repository

import (
	"context"

	"github.com/ottoassistant/otto/internal/domain"
)

// OutboundRepository owns the outbound_messages table.
type OutboundRepository interface {
	// EnqueueOrIgnoreDedupe inserts a message unless dedupeKey is set and
	// already present on any stored message, whatever its status.
	EnqueueOrIgnoreDedupe(ctx context.Context, msg *domain.OutboundMessage) (*domain.OutboundMessage, domain.EnqueueOutcome, error)

	// Enqueue inserts unconditionally, for callers that manage dedupe
	// themselves or never supply a dedupeKey.
	Enqueue(ctx context.Context, msg *domain.OutboundMessage) (*domain.OutboundMessage, error)

	GetByID(ctx context.Context, id string) (*domain.OutboundMessage, error)

	// ListDue returns up to limit queued messages whose next_attempt_at has
	// passed, ordered by priority rank ascending then created_at ascending
	// so ordering is enforced in SQL, not just reconstructed in memory.
	ListDue(ctx context.Context, now int64, limit int) ([]*domain.OutboundMessage, error)

	MarkSent(ctx context.Context, id string, sentAt int64) error
	MarkRetry(ctx context.Context, id string, nextAttemptAt int64, attemptCount int, errMessage string) error
	MarkFailed(ctx context.Context, id string, failedAt int64, errMessage string) error
	Cancel(ctx context.Context, id string) error

	DeleteOlderThan(ctx context.Context, cutoff int64) (int, error)
}
