package domain

// SessionBinding maps an upstream conversational session to the chat
// address outbound messages should be delivered to. Telegram ingestion
// itself is out of scope; this is the narrow piece of that surface the
// internal control plane's queue-telegram-message endpoint depends on
// to resolve a chatId when the caller only knows the session it is
// replying within.
type SessionBinding struct {
	SessionID string `db:"session_id" json:"sessionId"`
	ChatID    int64  `db:"chat_id" json:"chatId"`
	CreatedAt int64  `db:"created_at" json:"createdAt"`
	UpdatedAt int64  `db:"updated_at" json:"updatedAt"`
}
