package delivery

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pulseprep/pulseprep-api/internal/domain"
)

// LogChannel writes deliveries and feedback to the log instead of a real
// transport. It backs local development runs where no channel is configured.
type LogChannel struct {
	logger *slog.Logger
}

var _ Channel = (*LogChannel)(nil)

// NewLogChannel creates a log-only channel.
func NewLogChannel(log *slog.Logger) (*LogChannel, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &LogChannel{
		logger: log.With(slog.String("component", "log_channel")),
	}, nil
}

// Deliver implements Channel.
func (c *LogChannel) Deliver(
	ctx context.Context,
	user *domain.UserState,
	item *domain.ContentItem,
) (string, error) {
	c.logger.InfoContext(ctx, "item delivered (log only)",
		"user_id", user.ID,
		"chat_id", user.ChatID,
		"content_id", item.ID,
		"prompt", item.Prompt)
	return item.ID.String(), nil
}

// Notify implements Channel.
func (c *LogChannel) Notify(
	ctx context.Context,
	user *domain.UserState,
	fb Feedback,
) error {
	c.logger.InfoContext(ctx, "feedback sent (log only)",
		"user_id", user.ID,
		"correct", fb.Correct,
		"difficulty", fb.Difficulty.String(),
		"streak", fb.Streak)
	return nil
}
