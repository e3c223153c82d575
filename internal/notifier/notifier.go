package notifier

import "context"

// MessageSender delivers one text message to the configured chat.
type MessageSender interface {
	SendMessage(ctx context.Context, text string) error
}
