package domain

// Priority orders outbound delivery within a batch: higher priority
// ships first, ties broken by CreatedAt ascending.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// priorityRank gives each Priority a sortable weight, highest first.
// The SQLite ListDue query (infrastructure/sqlite/outbound_repo.go)
// repeats these same weights in its own CASE expression.
var priorityRank = map[Priority]int{
	PriorityCritical: 0,
	PriorityHigh:     1,
	PriorityNormal:   2,
	PriorityLow:      3,
}

func (p Priority) rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return priorityRank[PriorityNormal]
}

// Rank exposes priorityRank outside the package; unknown priorities
// rank as normal.
func (p Priority) Rank() int { return p.rank() }

type MessageStatus string

const (
	MessageQueued    MessageStatus = "queued"
	MessageSent      MessageStatus = "sent"
	MessageFailed    MessageStatus = "failed"
	MessageCancelled MessageStatus = "cancelled"
)

// OutboundMessage is one durable outbound delivery intent.
type OutboundMessage struct {
	ID             string        `db:"id" json:"id"`
	ChatID         int64         `db:"chat_id" json:"chatId"`
	Content        string        `db:"content" json:"content"`
	Priority       Priority      `db:"priority" json:"priority"`
	Status         MessageStatus `db:"status" json:"status"`
	DedupeKey      *string       `db:"dedupe_key" json:"dedupeKey"`
	AttemptCount   int           `db:"attempt_count" json:"attemptCount"`
	NextAttemptAt  *int64        `db:"next_attempt_at" json:"nextAttemptAt"`
	SentAt         *int64        `db:"sent_at" json:"sentAt"`
	FailedAt       *int64        `db:"failed_at" json:"failedAt"`
	ErrorMessage   *string       `db:"error_message" json:"errorMessage"`
	CreatedAt      int64         `db:"created_at" json:"createdAt"`
	UpdatedAt      int64         `db:"updated_at" json:"updatedAt"`
}

// EnqueueOutcome is returned by enqueueOrIgnoreDedupe.
type EnqueueOutcome string

const (
	EnqueueOutcomeEnqueued  EnqueueOutcome = "enqueued"
	EnqueueOutcomeDuplicate EnqueueOutcome = "duplicate"
)
