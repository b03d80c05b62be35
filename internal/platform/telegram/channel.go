// Package telegram adapts the delivery.Channel contract to the Telegram Bot
// API. Items are rendered as a message with one inline-keyboard button per
// option; the button's callback data carries the content ID and the chosen
// option index so the listener can resolve the answer without server-side
// session state.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/pulseprep/pulseprep-api/internal/delivery"
	"github.com/pulseprep/pulseprep-api/internal/domain"
)

const callbackPrefix = "ans"

// Channel delivers items and feedback over Telegram.
type Channel struct {
	logger *slog.Logger
	bot    *tgbotapi.BotAPI
}

var _ delivery.Channel = (*Channel)(nil)

// NewChannel authenticates against the Bot API and returns a Channel.
func NewChannel(log *slog.Logger, token string) (*Channel, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}

	log.Info("telegram bot authenticated", "username", bot.Self.UserName)

	return &Channel{
		logger: log.With(slog.String("component", "telegram_channel")),
		bot:    bot,
	}, nil
}

// Bot exposes the underlying client for the update listener.
func (c *Channel) Bot() *tgbotapi.BotAPI { return c.bot }

// Deliver implements delivery.Channel. The returned handle is the Telegram
// message ID of the sent question.
func (c *Channel) Deliver(
	ctx context.Context,
	user *domain.UserState,
	item *domain.ContentItem,
) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	msg := tgbotapi.NewMessage(user.ChatID, renderItem(item))
	msg.ReplyMarkup = optionKeyboard(item)

	sent, err := c.bot.Send(msg)
	if err != nil {
		return "", mapSendError(err)
	}

	return strconv.Itoa(sent.MessageID), nil
}

// Notify implements delivery.Channel.
func (c *Channel) Notify(
	ctx context.Context,
	user *domain.UserState,
	fb delivery.Feedback,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(user.ChatID, renderFeedback(fb))
	if _, err := c.bot.Send(msg); err != nil {
		return mapSendError(err)
	}
	return nil
}

func renderItem(item *domain.ContentItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Today's question (%s)\n\n%s", item.Difficulty, item.Prompt)
	return b.String()
}

func optionKeyboard(item *domain.ContentItem) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(item.Options))
	for i, opt := range item.Options {
		data := encodeCallbackData(item.ID, i)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(opt, data),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func renderFeedback(fb delivery.Feedback) string {
	var b strings.Builder

	if fb.Correct {
		b.WriteString("Correct! ✅")
	} else {
		fmt.Fprintf(&b, "Not quite. ❌\nThe answer was: %s", fb.CorrectOption)
	}
	if fb.Explanation != "" {
		fmt.Fprintf(&b, "\n\n%s", fb.Explanation)
	}
	if fb.DifficultyChanged {
		fmt.Fprintf(&b, "\n\nYour level is now %s.", fb.Difficulty)
	}
	if fb.Streak > 1 {
		fmt.Fprintf(&b, "\nStreak: %d days.", fb.Streak)
	}

	return b.String()
}

func encodeCallbackData(contentID uuid.UUID, optionIndex int) string {
	return fmt.Sprintf("%s:%s:%d", callbackPrefix, contentID, optionIndex)
}

// decodeCallbackData parses "ans:<content-uuid>:<option-index>". Anything
// else is not an answer callback.
func decodeCallbackData(data string) (uuid.UUID, int, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 || parts[0] != callbackPrefix {
		return uuid.Nil, 0, fmt.Errorf("not an answer callback: %q", data)
	}
	contentID, err := uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("bad content ID in callback: %w", err)
	}
	idx, err := strconv.Atoi(parts[2])
	if err != nil || idx < 0 || idx >= domain.OptionCount {
		return uuid.Nil, 0, fmt.Errorf("bad option index in callback: %q", parts[2])
	}
	return contentID, idx, nil
}

// mapSendError folds Telegram's "can never succeed" responses into
// delivery.ErrUnreachable so the orchestrator skips retries.
func mapSendError(err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == 403 {
		return fmt.Errorf("%w: %v", delivery.ErrUnreachable, err)
	}
	if strings.Contains(err.Error(), "chat not found") {
		return fmt.Errorf("%w: %v", delivery.ErrUnreachable, err)
	}
	return fmt.Errorf("telegram send failed: %w", err)
}
