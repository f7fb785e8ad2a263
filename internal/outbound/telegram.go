package outbound

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
)

// TelegramTransport ships messages through a bot.Bot client. One client
// is shared across every Send call; the library pools its own HTTP
// connections, so the worker doesn't need to manage transport state.
type TelegramTransport struct {
	client *bot.Bot
}

func NewTelegramTransport(botToken string) *TelegramTransport {
	b, err := bot.New(botToken)
	if err != nil {
		// An empty or malformed token is detected here but not reported;
		// every Send on the returned transport then returns
		// OutcomePermanent until the process is restarted with a valid one.
		return &TelegramTransport{client: nil}
	}
	return &TelegramTransport{client: b}
}

// Send classifies the outcome into the three-way vocabulary the delivery
// worker retries against: a nil error is OutcomeOK, rate limiting and
// transport-level failures are transient, any other error is permanent.
func (t *TelegramTransport) Send(ctx context.Context, chatID int64, content string) (Outcome, error) {
	if t.client == nil {
		return OutcomePermanent, fmt.Errorf("telegram bot token not configured")
	}

	_, err := t.client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   content,
	})
	if err == nil {
		return OutcomeOK, nil
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "too many requests"), strings.Contains(msg, "retry after"),
		strings.Contains(msg, "timeout"), strings.Contains(msg, "connection"),
		strings.Contains(msg, "server error"), strings.Contains(msg, "bad gateway"),
		strings.Contains(msg, "service unavailable"):
		return OutcomeTransient, fmt.Errorf("send telegram message: %w", err)
	default:
		return OutcomePermanent, fmt.Errorf("telegram rejected message: %w", err)
	}
}
