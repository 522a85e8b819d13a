package notify

import (
	"context"
	"errors"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UserResolver maps an external Telegram chat to an internal user id.
type UserResolver interface {
	UserIDByTelegramChat(ctx context.Context, chatID int64) (uuid.UUID, error)
}

// IntakeActions is the slice of the intake state machine the inbound command
// path needs.
type IntakeActions interface {
	MarkTaken(ctx context.Context, intakeID, actorID uuid.UUID, now time.Time) error
	MarkSkipped(ctx context.Context, intakeID, actorID uuid.UUID, reason string, now time.Time) error
}

// Command is a parsed inbound taken/skipped action.
type Command struct {
	Action   string // "taken" or "skip"
	IntakeID uuid.UUID
	Reason   string
}

var errNotACommand = errors.New("not an intake command")

// ParseCommand parses "/taken <id>", "/skip <id> [reason]" message text and
// the "taken:<id>" / "skip:<id>" callback payloads of reminder buttons.
func ParseCommand(text string) (Command, error) {
	text = strings.TrimSpace(text)

	if action, rest, ok := strings.Cut(text, ":"); ok && !strings.HasPrefix(text, "/") {
		if action != "taken" && action != "skip" {
			return Command{}, errNotACommand
		}
		id, err := uuid.Parse(rest)
		if err != nil {
			return Command{}, errNotACommand
		}
		return Command{Action: action, IntakeID: id}, nil
	}

	fields := strings.Fields(text)
	if len(fields) < 2 {
		return Command{}, errNotACommand
	}
	action := strings.TrimPrefix(fields[0], "/")
	if action != "taken" && action != "skip" {
		return Command{}, errNotACommand
	}
	id, err := uuid.Parse(fields[1])
	if err != nil {
		return Command{}, errNotACommand
	}
	return Command{
		Action:   action,
		IntakeID: id,
		Reason:   strings.Join(fields[2:], " "),
	}, nil
}

// TelegramListener long-polls Telegram updates and applies taken/skipped
// commands to the intake state machine after resolving the chat to a user.
type TelegramListener struct {
	bot     *tgbotapi.BotAPI
	users   UserResolver
	intakes IntakeActions
	logger  zerolog.Logger
	clock   func() time.Time
}

func NewTelegramListener(bot *tgbotapi.BotAPI, users UserResolver, intakes IntakeActions, logger zerolog.Logger) *TelegramListener {
	return &TelegramListener{
		bot:     bot,
		users:   users,
		intakes: intakes,
		logger:  logger.With().Str("component", "telegram_listener").Logger(),
		clock:   time.Now,
	}
}

// Run blocks until ctx is cancelled. Errors on individual updates are logged
// and never stop the loop.
func (l *TelegramListener) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := l.bot.GetUpdatesChan(cfg)
	defer l.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			l.handleUpdate(ctx, update)
		}
	}
}

func (l *TelegramListener) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var (
		chatID int64
		text   string
	)
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		chatID = update.CallbackQuery.Message.Chat.ID
		text = update.CallbackQuery.Data
	case update.Message != nil:
		chatID = update.Message.Chat.ID
		text = update.Message.Text
	default:
		return
	}

	cmd, err := ParseCommand(text)
	if err != nil {
		return
	}

	userID, err := l.users.UserIDByTelegramChat(ctx, chatID)
	if err != nil {
		l.logger.Warn().Int64("chat_id", chatID).Err(err).Msg("command from unknown chat")
		return
	}

	now := l.clock()
	switch cmd.Action {
	case "taken":
		err = l.intakes.MarkTaken(ctx, cmd.IntakeID, userID, now)
	case "skip":
		err = l.intakes.MarkSkipped(ctx, cmd.IntakeID, userID, cmd.Reason, now)
	}
	if err != nil {
		l.logger.Warn().
			Str("intake_id", cmd.IntakeID.String()).
			Str("action", cmd.Action).
			Err(err).
			Msg("inbound command rejected")
		l.reply(chatID, "Could not record that: "+err.Error())
		return
	}

	if update.CallbackQuery != nil {
		// Ack the button press so the Telegram client stops the spinner.
		_, _ = l.bot.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "Recorded"))
	}
	l.reply(chatID, "Recorded, thank you.")
}

func (l *TelegramListener) reply(chatID int64, text string) {
	if _, err := l.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		l.logger.Warn().Int64("chat_id", chatID).Err(err).Msg("reply failed")
	}
}
