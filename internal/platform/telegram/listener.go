package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pulseprep/pulseprep-api/internal/domain"
	"github.com/pulseprep/pulseprep-api/internal/orchestrator"
	"github.com/pulseprep/pulseprep-api/internal/store"
)

const updateTimeoutSeconds = 30

// Listener consumes Telegram updates: answer button taps feed the
// orchestrator, /start and /stop manage enrollment.
type Listener struct {
	logger     *slog.Logger
	channel    *Channel
	orch       *orchestrator.Orchestrator
	userStates store.UserStateStore
	contents   store.ContentStore
}

// NewListener wires the update loop to its collaborators.
func NewListener(
	log *slog.Logger,
	channel *Channel,
	orch *orchestrator.Orchestrator,
	userStates store.UserStateStore,
	contents store.ContentStore,
) (*Listener, error) {
	switch {
	case log == nil:
		return nil, errors.New("logger cannot be nil")
	case channel == nil:
		return nil, errors.New("channel cannot be nil")
	case orch == nil:
		return nil, errors.New("orchestrator cannot be nil")
	case userStates == nil:
		return nil, errors.New("user state store cannot be nil")
	case contents == nil:
		return nil, errors.New("content store cannot be nil")
	}
	return &Listener{
		logger:     log.With(slog.String("component", "telegram_listener")),
		channel:    channel,
		orch:       orch,
		userStates: userStates,
		contents:   contents,
	}, nil
}

// Run consumes updates until the context is cancelled. It always returns
// ctx.Err().
func (l *Listener) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = updateTimeoutSeconds

	updates := l.channel.Bot().GetUpdatesChan(cfg)
	defer l.channel.Bot().StopReceivingUpdates()

	l.logger.Info("telegram listener started")

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("telegram listener stopping")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return ctx.Err()
			}
			l.handleUpdate(ctx, update)
		}
	}
}

func (l *Listener) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		l.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		l.handleCommand(ctx, update.Message)
	}
}

// handleCallback processes an answer button tap.
func (l *Listener) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	// Acknowledge immediately so the client stops its spinner; the real
	// feedback arrives as a separate message.
	if _, err := l.channel.Bot().Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		l.logger.Warn("failed to acknowledge callback", "error", err)
	}

	contentID, optionIndex, err := decodeCallbackData(q.Data)
	if err != nil {
		l.logger.Warn("ignoring malformed callback", "data", q.Data, "error", err)
		return
	}
	if q.Message == nil {
		return
	}
	chatID := q.Message.Chat.ID

	user, err := l.userStates.GetByChatID(ctx, chatID)
	if err != nil {
		l.logger.Warn("callback from unknown chat", "chat_id", chatID, "error", err)
		return
	}

	item, err := l.contents.GetByID(ctx, contentID)
	if err != nil {
		l.logger.Error("callback references unknown content",
			"content_id", contentID, "error", err)
		return
	}
	selected := item.Options[optionIndex]

	outcome, err := l.orch.ProcessAnswer(ctx, user.ID, contentID, selected, time.Now())
	if err != nil {
		l.logger.Error("answer processing failed",
			"user_id", user.ID, "content_id", contentID, "error", err)
		return
	}
	if outcome.Status == orchestrator.AnswerDuplicate {
		l.logger.Debug("duplicate answer ignored",
			"user_id", user.ID, "content_id", contentID)
		return
	}

	// Freeze the question message so the keyboard cannot be tapped again.
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, q.Message.MessageID,
		tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("answered", "noop"),
		)))
	if _, err := l.channel.Bot().Request(edit); err != nil {
		l.logger.Debug("failed to freeze answered message", "error", err)
	}
}

func (l *Listener) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		l.handleStart(ctx, chatID)
	case "stop":
		l.handleStop(ctx, chatID)
	case "status":
		l.handleStatus(ctx, chatID)
	default:
		l.reply(chatID, "Commands: /start to enroll, /stop to pause, /status for your progress.")
	}
}

// handleStart enrolls a new user or re-opts an existing one.
func (l *Listener) handleStart(ctx context.Context, chatID int64) {
	user, err := l.userStates.GetByChatID(ctx, chatID)
	switch {
	case err == nil:
		if !user.OptedIn {
			user.OptedIn = true
			user.UpdatedAt = time.Now().UTC()
			if err := l.userStates.Upsert(ctx, user); err != nil {
				l.logger.Error("failed to re-enroll user", "chat_id", chatID, "error", err)
				return
			}
		}
		l.reply(chatID, "You're enrolled. Your next question arrives with the daily round.")
	case store.IsNotFound(err):
		user, err := domain.NewUserState(chatID)
		if err != nil {
			l.logger.Error("failed to build user state", "chat_id", chatID, "error", err)
			return
		}
		if err := l.userStates.Upsert(ctx, user); err != nil {
			l.logger.Error("failed to enroll user", "chat_id", chatID, "error", err)
			return
		}
		l.logger.Info("user enrolled", "user_id", user.ID, "chat_id", chatID)
		l.reply(chatID, fmt.Sprintf(
			"Welcome! You'll get one question a day, starting at the %s level.",
			user.Difficulty))
	default:
		l.logger.Error("enrollment lookup failed", "chat_id", chatID, "error", err)
	}
}

func (l *Listener) handleStop(ctx context.Context, chatID int64) {
	user, err := l.userStates.GetByChatID(ctx, chatID)
	if err != nil {
		l.logger.Warn("stop from unknown chat", "chat_id", chatID, "error", err)
		return
	}
	user.OptedIn = false
	user.UpdatedAt = time.Now().UTC()
	if err := l.userStates.Upsert(ctx, user); err != nil {
		l.logger.Error("failed to opt user out", "chat_id", chatID, "error", err)
		return
	}
	l.reply(chatID, "Paused. Send /start whenever you want to resume.")
}

func (l *Listener) handleStatus(ctx context.Context, chatID int64) {
	user, err := l.userStates.GetByChatID(ctx, chatID)
	if err != nil {
		l.reply(chatID, "You're not enrolled yet. Send /start to begin.")
		return
	}
	l.reply(chatID, fmt.Sprintf(
		"Level: %s\nStreak: %d days\nAnswered: %d (%d correct)",
		user.Difficulty, user.Streak, user.TotalAnswered, user.TotalCorrect))
}

func (l *Listener) reply(chatID int64, text string) {
	if _, err := l.channel.Bot().Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		l.logger.Warn("failed to send reply", "chat_id", chatID, "error", err)
	}
}
