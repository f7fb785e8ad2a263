package internalapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ottoassistant/otto/internal/domain"
	"github.com/ottoassistant/otto/internal/idgen"
)

type queueTelegramMessageRequest struct {
	SessionID string  `json:"sessionId"`
	ChatID    *int64  `json:"chatId"`
	Content   string  `json:"content" binding:"required"`
	DedupeKey *string `json:"dedupeKey"`
	Priority  string  `json:"priority" binding:"omitempty,oneof=low normal high critical"`
}

type queueTelegramMessageResponse struct {
	Status         string  `json:"status"`
	QueuedCount    int     `json:"queuedCount"`
	DuplicateCount int     `json:"duplicateCount"`
	DedupeKey      *string `json:"dedupeKey"`
}

// queueTelegramMessage resolves chatId from sessionId when the caller
// didn't supply one directly, then enqueues the outbound message.
func (h *handlers) queueTelegramMessage(c *gin.Context) {
	var req queueTelegramMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	chatID, ok := h.resolveChat(c, req.SessionID, req.ChatID)
	if !ok {
		return
	}

	priority := domain.Priority(req.Priority)
	if priority == "" {
		priority = domain.PriorityNormal
	}

	now := time.Now().UnixMilli()
	msg := &domain.OutboundMessage{
		ID:        idgen.New(),
		ChatID:    chatID,
		Content:   req.Content,
		Priority:  priority,
		Status:    domain.MessageQueued,
		DedupeKey: req.DedupeKey,
		CreatedAt: now,
		UpdatedAt: now,
	}

	saved, outcome, err := h.deps.Outbound.EnqueueOrIgnoreDedupe(c.Request.Context(), msg)
	if err != nil {
		h.deps.Logger.Error("enqueue telegram message", "error", err)
		h.recordCommand(c, "queue-telegram-message", domain.CommandFailed, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to enqueue message"})
		return
	}

	resp := queueTelegramMessageResponse{Status: string(outcome), DedupeKey: saved.DedupeKey}
	if outcome == domain.EnqueueOutcomeEnqueued {
		resp.QueuedCount = 1
	} else {
		resp.DuplicateCount = 1
	}

	h.recordCommand(c, "queue-telegram-message", domain.CommandSuccess, nil)
	c.JSON(http.StatusOK, resp)
}

// resolveChat falls back from an explicit chatId to a session binding
// lookup; it writes a 400 missing_chat response itself and returns
// ok=false when no chat can be determined.
func (h *handlers) resolveChat(c *gin.Context, sessionID string, chatID *int64) (int64, bool) {
	if chatID != nil {
		return *chatID, true
	}
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_chat", "message": "chatId or sessionId is required"})
		return 0, false
	}

	binding, err := h.deps.Sessions.Resolve(c.Request.Context(), sessionID)
	if errors.Is(err, domain.ErrSessionBindingNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_chat", "message": "no chat bound to sessionId " + sessionID})
		return 0, false
	}
	if err != nil {
		h.deps.Logger.Error("resolve session binding", "session_id", sessionID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to resolve chat"})
		return 0, false
	}
	return binding.ChatID, true
}
