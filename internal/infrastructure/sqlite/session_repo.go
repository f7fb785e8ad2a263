package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ottoassistant/otto/internal/domain"
	"github.com/ottoassistant/otto/internal/store"
)

type SessionBindingRepository struct {
	st *store.Store
}

func NewSessionBindingRepository(st *store.Store) *SessionBindingRepository {
	return &SessionBindingRepository{st: st}
}

const sessionBindingColumns = `session_id, chat_id, created_at, updated_at`

func (r *SessionBindingRepository) Resolve(ctx context.Context, sessionID string) (*domain.SessionBinding, error) {
	var b domain.SessionBinding
	err := r.st.DB.GetContext(ctx, &b, `SELECT `+sessionBindingColumns+` FROM session_bindings WHERE session_id = ?`, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionBindingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve session binding: %w", err)
	}
	return &b, nil
}

func (r *SessionBindingRepository) Bind(ctx context.Context, sessionID string, chatID int64) (*domain.SessionBinding, error) {
	now := nowMillis()
	_, err := r.st.DB.ExecContext(ctx, `
		INSERT INTO session_bindings (session_id, chat_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET chat_id = excluded.chat_id, updated_at = excluded.updated_at`,
		sessionID, chatID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("bind session: %w", err)
	}
	return &domain.SessionBinding{SessionID: sessionID, ChatID: chatID, CreatedAt: now, UpdatedAt: now}, nil
}
