package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"shortloop/internal/models"
	"shortloop/internal/notify"
	"shortloop/internal/platform"
	"shortloop/internal/repository"
	"shortloop/internal/video"
)

// Worker executes due publish tasks: it owns the post's runtime status
// transitions from posting through posted or failed.
type Worker struct {
	posts      repository.PostRepository
	videos     repository.VideoRepository
	accounts   repository.SocialAccountRepository
	analytics  repository.AnalyticsRepository
	publishers platform.Registry
	optimizer  video.Optimizer
	notifier   notify.Notifier
}

func NewWorker(
	posts repository.PostRepository,
	videos repository.VideoRepository,
	accounts repository.SocialAccountRepository,
	analytics repository.AnalyticsRepository,
	publishers platform.Registry,
	optimizer video.Optimizer,
	notifier notify.Notifier) *Worker {
	return &Worker{
		posts:      posts,
		videos:     videos,
		accounts:   accounts,
		analytics:  analytics,
		publishers: publishers,
		optimizer:  optimizer,
		notifier:   notifier,
	}
}

func (w *Worker) HandlePublishTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal publish payload: %v: %w", err, asynq.SkipRetry)
	}

	return w.PublishPost(ctx, payload.PostID)
}

// PublishPost runs one publish attempt for a post. A returned error tells
// the queue to redeliver with backoff until the attempt budget runs out;
// configuration problems skip the retry budget entirely.
func (w *Worker) PublishPost(ctx context.Context, postID int64) error {
	post, err := w.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		// Cancelled between enqueue and fire: the cancelling path already
		// recorded intent, so the task completes as a no-op.
		slog.Info("post missing at publish time, dropping task", "post_id", postID)
		return nil
	}

	// Persisted before any network call so a crash mid-publish shows up as
	// a post stuck in posting rather than a silent loss.
	if err := w.posts.UpdateStatus(ctx, models.PostStatusPosting, postID); err != nil {
		return err
	}

	result, err := w.publish(ctx, post)
	if err != nil {
		if markErr := w.posts.MarkFailed(ctx, postID, err.Error()); markErr != nil {
			slog.Error("failed to record publish failure", "post_id", postID, "error", markErr)
		}
		w.notifier.PublishFailed(ctx, post, err)

		var confErr *platform.ConfigurationError
		if errors.As(err, &confErr) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	if err := w.posts.MarkPosted(ctx, postID, result.ID, time.Now()); err != nil {
		return err
	}

	if _, err := w.analytics.Create(ctx, postID); err != nil {
		slog.Error("failed to create analytics record", "post_id", postID, "error", err)
	}

	w.notifier.PublishSucceeded(ctx, post, result.ID)
	return nil
}

func (w *Worker) publish(ctx context.Context, post *models.Post) (*platform.Result, error) {
	vid, err := w.videos.GetByID(ctx, post.VideoID)
	if err != nil {
		return nil, err
	}
	if vid == nil {
		return nil, fmt.Errorf("video %d not found", post.VideoID)
	}

	account, err := w.accounts.GetByUserAndPlatform(ctx, post.UserID, post.Platform)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, &platform.ConfigurationError{Platform: post.Platform, Reason: "no connected account"}
	}

	publisher, err := w.publishers.Resolve(post.Platform)
	if err != nil {
		return nil, err
	}

	fileURL, err := w.optimizer.OptimizeForPlatform(ctx, vid.FileURL, post.Platform)
	if err != nil {
		return nil, err
	}

	md := platform.Metadata{
		Title:       post.Title,
		Description: post.Description,
		Hashtags:    post.Hashtags,
	}
	if md.Title == "" {
		md.Title = vid.Title
	}
	if md.Description == "" {
		md.Description = vid.Description
	}

	return publisher.Publish(ctx, fileURL, md, account)
}
