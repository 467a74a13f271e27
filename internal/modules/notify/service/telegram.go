package service

import (
	"context"
	"net/http"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"kraken_bot/internal/models"
)

// Telegram дублирует письма в чат. Необязательный канал.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64, timeout time.Duration) (*Telegram, error) {
	return NewTelegramWithEndpoint(token, tgbot.APIEndpoint, chatID, timeout)
}

// NewTelegramWithEndpoint нужен для тестов и прокси Bot API.
// timeout ограничивает каждый HTTP-запрос к Bot API, включая getMe при старте.
func NewTelegramWithEndpoint(token, endpoint string, chatID int64, timeout time.Duration) (*Telegram, error) {
	b, err := tgbot.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, errors.Wrap(err, "telegram: init bot")
	}
	return &Telegram{bot: b, chatID: chatID}, nil
}

// Notify возвращается не позже ctx. Send у библиотеки ctx не принимает,
// поэтому запрос доживает в фоне до таймаута http-клиента.
func (t *Telegram) Notify(ctx context.Context, n models.Notification) error {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := t.bot.Send(tgbot.NewMessage(t.chatID, n.Subject+"\n\n"+n.Body))
		done <- err
	}()

	select {
	case err := <-done:
		return errors.Wrap(err, "telegram: send")
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "telegram: send")
	}
}
