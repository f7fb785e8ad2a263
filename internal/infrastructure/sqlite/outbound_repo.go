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

type OutboundRepository struct {
	st *store.Store
}

func NewOutboundRepository(st *store.Store) *OutboundRepository {
	return &OutboundRepository{st: st}
}

const outboundColumns = `id, chat_id, content, priority, status, dedupe_key,
	attempt_count, next_attempt_at, sent_at, failed_at, error_message, created_at, updated_at`

// EnqueueOrIgnoreDedupe relies on the partial unique index on
// dedupe_key (schema.go) rather than a SELECT-then-INSERT: a concurrent
// enqueue of the same key either wins the insert or hits the unique
// constraint, which we fold into "duplicate" without a second query.
func (r *OutboundRepository) EnqueueOrIgnoreDedupe(ctx context.Context, msg *domain.OutboundMessage) (*domain.OutboundMessage, domain.EnqueueOutcome, error) {
	if msg.ID == "" {
		msg.ID = idgen.New()
	}
	_, err := r.st.DB.NamedExecContext(ctx, `
		INSERT INTO outbound_messages (`+outboundColumns+`)
		VALUES (:id, :chat_id, :content, :priority, :status, :dedupe_key,
			:attempt_count, :next_attempt_at, :sent_at, :failed_at, :error_message, :created_at, :updated_at)`,
		msg,
	)
	if err != nil {
		if isUniqueConstraintErr(err) && msg.DedupeKey != nil {
			existing, getErr := r.getByDedupeKey(ctx, *msg.DedupeKey)
			if getErr != nil {
				return nil, "", fmt.Errorf("load duplicate by dedupe key: %w", getErr)
			}
			return existing, domain.EnqueueOutcomeDuplicate, nil
		}
		return nil, "", fmt.Errorf("enqueue outbound message: %w", err)
	}
	return msg, domain.EnqueueOutcomeEnqueued, nil
}

// Enqueue inserts unconditionally — used by callers such
// as the watchdog handler that never set a dedupeKey.
func (r *OutboundRepository) Enqueue(ctx context.Context, msg *domain.OutboundMessage) (*domain.OutboundMessage, error) {
	if msg.ID == "" {
		msg.ID = idgen.New()
	}
	_, err := r.st.DB.NamedExecContext(ctx, `
		INSERT INTO outbound_messages (`+outboundColumns+`)
		VALUES (:id, :chat_id, :content, :priority, :status, :dedupe_key,
			:attempt_count, :next_attempt_at, :sent_at, :failed_at, :error_message, :created_at, :updated_at)`,
		msg,
	)
	if err != nil {
		return nil, fmt.Errorf("enqueue outbound message: %w", err)
	}
	return msg, nil
}

func (r *OutboundRepository) getByDedupeKey(ctx context.Context, key string) (*domain.OutboundMessage, error) {
	var m domain.OutboundMessage
	err := r.st.DB.GetContext(ctx, &m, `SELECT `+outboundColumns+` FROM outbound_messages WHERE dedupe_key = ?`, key)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *OutboundRepository) GetByID(ctx context.Context, id string) (*domain.OutboundMessage, error) {
	var m domain.OutboundMessage
	err := r.st.DB.GetContext(ctx, &m, `SELECT `+outboundColumns+` FROM outbound_messages WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get outbound message: %w", err)
	}
	return &m, nil
}

// ListDue orders by the same priority rank the domain package exposes,
// reproduced here as a CASE expression so the queue drains in priority
// order at the SQL layer instead of depending on an in-memory re-sort.
func (r *OutboundRepository) ListDue(ctx context.Context, now int64, limit int) ([]*domain.OutboundMessage, error) {
	var msgs []*domain.OutboundMessage
	err := r.st.DB.SelectContext(ctx, &msgs, `
		SELECT `+outboundColumns+` FROM outbound_messages
		WHERE status = 'queued' AND (next_attempt_at IS NULL OR next_attempt_at <= ?)
		ORDER BY
			CASE priority
				WHEN 'critical' THEN 0
				WHEN 'high' THEN 1
				WHEN 'normal' THEN 2
				WHEN 'low' THEN 3
				ELSE 2
			END ASC,
			created_at ASC
		LIMIT ?`,
		now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list due outbound messages: %w", err)
	}
	return msgs, nil
}

func (r *OutboundRepository) MarkSent(ctx context.Context, id string, sentAt int64) error {
	_, err := r.st.DB.ExecContext(ctx, `
		UPDATE outbound_messages SET status = 'sent', sent_at = ?, updated_at = ? WHERE id = ?`,
		sentAt, sentAt, id,
	)
	if err != nil {
		return fmt.Errorf("mark outbound sent: %w", err)
	}
	return nil
}

func (r *OutboundRepository) MarkRetry(ctx context.Context, id string, nextAttemptAt int64, attemptCount int, errMessage string) error {
	_, err := r.st.DB.ExecContext(ctx, `
		UPDATE outbound_messages SET
			next_attempt_at = ?, attempt_count = ?, error_message = ?, updated_at = ?
		WHERE id = ?`,
		nextAttemptAt, attemptCount, errMessage, nowMillis(), id,
	)
	if err != nil {
		return fmt.Errorf("mark outbound retry: %w", err)
	}
	return nil
}

func (r *OutboundRepository) MarkFailed(ctx context.Context, id string, failedAt int64, errMessage string) error {
	_, err := r.st.DB.ExecContext(ctx, `
		UPDATE outbound_messages SET status = 'failed', failed_at = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		failedAt, errMessage, failedAt, id,
	)
	if err != nil {
		return fmt.Errorf("mark outbound failed: %w", err)
	}
	return nil
}

func (r *OutboundRepository) Cancel(ctx context.Context, id string) error {
	res, err := r.st.DB.ExecContext(ctx, `
		UPDATE outbound_messages SET status = 'cancelled', updated_at = ? WHERE id = ? AND status = 'queued'`,
		nowMillis(), id,
	)
	if err != nil {
		return fmt.Errorf("cancel outbound message: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrStateConflict
	}
	return nil
}

func (r *OutboundRepository) DeleteOlderThan(ctx context.Context, cutoff int64) (int, error) {
	res, err := r.st.DB.ExecContext(ctx, `
		DELETE FROM outbound_messages WHERE created_at < ? AND status IN ('sent', 'failed', 'cancelled')`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("delete old outbound messages: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
