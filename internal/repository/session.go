package repository

import (
	"context"

	"github.com/ottoassistant/otto/internal/domain"
)

// SessionBindingRepository owns the session_bindings table: the lookup
// the internal control plane's queue-telegram-message tool uses to
// resolve a chatId when the caller supplies sessionId instead.
type SessionBindingRepository interface {
	Resolve(ctx context.Context, sessionID string) (*domain.SessionBinding, error)
	Bind(ctx context.Context, sessionID string, chatID int64) (*domain.SessionBinding, error)
}
