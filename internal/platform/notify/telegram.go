package notify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// TelegramSender delivers reminders to a Telegram chat. The bot's HTTP client
// carries the configured timeout so a slow Telegram API cannot stall a whole
// reminder poll cycle.
type TelegramSender struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramBot constructs the underlying bot with a bounded HTTP timeout.
func NewTelegramBot(token string, timeout time.Duration) (*tgbotapi.BotAPI, error) {
	client := &http.Client{Timeout: timeout}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return bot, nil
}

func NewTelegramSender(bot *tgbotapi.BotAPI) *TelegramSender {
	return &TelegramSender{bot: bot}
}

func (s *TelegramSender) Send(ctx context.Context, ch Channel, text string, correlationID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chatID, err := strconv.ParseInt(ch.Address, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram channel address %q is not a chat id: %w", ch.Address, err)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Taken", "taken:"+correlationID.String()),
			tgbotapi.NewInlineKeyboardButtonData("Skip", "skip:"+correlationID.String()),
		),
	)
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
