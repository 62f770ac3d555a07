package notify

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"horde-image-client/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier pushes job outcomes to a Telegram chat, so the user hears
// about a finished generation without watching the console.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	if token == "" {
		return nil, errors.New("telegram token is empty")
	}
	if chatID == 0 {
		return nil, errors.New("telegram chat id is empty")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) Notify(_ context.Context, notice adapter.Notice) error {
	text := notice.Message
	if notice.Severity == adapter.SeverityError {
		if notice.Code != 0 {
			text = fmt.Sprintf("⚠️ %s (code %d)", notice.Message, notice.Code)
		} else {
			text = "⚠️ " + notice.Message
		}
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	_, err := n.bot.Send(msg)
	return err
}
