package notify

import (
	"context"
	"log/slog"

	"shortloop/internal/models"
	"shortloop/internal/repository"
)

// Notifier receives publish outcomes so users can be told without reading
// logs. Implementations must not fail the publish path; delivery problems
// are their own to log.
type Notifier interface {
	PublishSucceeded(ctx context.Context, post *models.Post, platformPostID string)
	PublishFailed(ctx context.Context, post *models.Post, cause error)
}

// LogNotifier is the in-app placeholder channel: it resolves the user for
// context and records the event. Email and push hang off the same interface
// when they land.
type LogNotifier struct {
	users repository.UserRepository
}

func NewLogNotifier(users repository.UserRepository) *LogNotifier {
	return &LogNotifier{users: users}
}

func (n *LogNotifier) PublishSucceeded(ctx context.Context, post *models.Post, platformPostID string) {
	email := n.lookupEmail(ctx, post.UserID)
	slog.Info("publish succeeded",
		"post_id", post.ID,
		"platform", post.Platform,
		"platform_post_id", platformPostID,
		"user_email", email)
}

func (n *LogNotifier) PublishFailed(ctx context.Context, post *models.Post, cause error) {
	email := n.lookupEmail(ctx, post.UserID)
	slog.Warn("publish failed",
		"post_id", post.ID,
		"platform", post.Platform,
		"error", cause.Error(),
		"user_email", email)
}

func (n *LogNotifier) lookupEmail(ctx context.Context, userID int64) string {
	user, found, err := n.users.GetByID(ctx, userID)
	if err != nil || !found {
		return ""
	}
	return user.Email
}
