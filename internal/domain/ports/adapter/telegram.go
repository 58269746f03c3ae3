package adapter

import "context"

// MessageSender is the outbound messaging capability the broadcast path and
// the command layer depend on. The real implementation wraps the Telegram
// Bot API; tests inject fakes.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}
