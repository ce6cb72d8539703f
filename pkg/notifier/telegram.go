package notifier

import (
	"context"
	"fmt"
)

// TelegramSender is satisfied by *telegram.TelegramRateLimiter.
type TelegramSender interface {
	SendMessage(ctx context.Context, chatID int64, message string, opts ...interface{}) error
}

type Telegram struct {
	sender TelegramSender
	chatID int64
}

func NewTelegram(sender TelegramSender, chatID int64) *Telegram {
	return &Telegram{sender: sender, chatID: chatID}
}

func (t *Telegram) Name() string {
	return "telegram"
}

func (t *Telegram) Notify(ctx context.Context, msg Message) error {
	text := msg.Text
	if msg.Title != "" {
		text = fmt.Sprintf("%s\n%s", msg.Title, msg.Text)
	}
	return t.sender.SendMessage(ctx, t.chatID, text)
}
