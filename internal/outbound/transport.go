package outbound

import "context"

// Outcome is the transport-level result of one delivery attempt.
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeTransient Outcome = "transient"
	OutcomePermanent Outcome = "permanent"
)

// Transport ships one message to one chat. Implementations bound their
// own timeout; a timeout must surface as OutcomeTransient.
type Transport interface {
	Send(ctx context.Context, chatID int64, content string) (Outcome, error)
}
