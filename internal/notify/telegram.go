package notify

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lazzaau/witi-watchdog/internal/logger"
	"github.com/lazzaau/witi-watchdog/internal/repository/settings"
)

// errTokenRequired is returned when building a notifier without a bot token.
var errTokenRequired = errors.New("telegram token must be provided")

// Telegram sends fire-and-forget chat notifications. The recipient chat is
// the persisted telegramID setting when registered, otherwise the chat
// from the configuration; with neither, Notify is a no-op.
type Telegram struct {
	bot         *tgbotapi.BotAPI
	repo        settings.Repository
	defaultChat int64
}

// NewTelegram authenticates the bot and returns a notifier. defaultChat
// may be zero when the recipient is registered at runtime instead.
func NewTelegram(token string, defaultChat int64, repo settings.Repository) (*Telegram, error) {
	if token == "" {
		return nil, errTokenRequired
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("authenticate telegram bot: %w", err)
	}

	return &Telegram{
		bot:         bot,
		repo:        repo,
		defaultChat: defaultChat,
	}, nil
}

// recipient resolves the destination chat. The persisted setting wins so
// a runtime registration sticks across configuration reloads.
func (t *Telegram) recipient(ctx context.Context) (int64, bool) {
	chatID, err := t.repo.Get(ctx, settings.KeyTelegramID)

	switch {
	case err == nil:
		return chatID, true
	case errors.Is(err, settings.ErrNotFound):
		return t.defaultChat, t.defaultChat != 0
	default:
		logger.WarnKV(ctx, "Telegram recipient lookup failed", "error", err)

		return 0, false
	}
}

// Notify sends the message to the configured chat. Failures are logged and
// swallowed: notifications are best-effort and never fail the owning
// operation.
func (t *Telegram) Notify(ctx context.Context, text string) {
	chatID, ok := t.recipient(ctx)
	if !ok {
		return
	}

	if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logger.WarnKV(ctx, "Telegram notification failed", "chat_id", chatID, "error", err)
	}
}
