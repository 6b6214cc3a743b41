package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	config "shortloop/configs"
	"shortloop/internal/queue"
	"shortloop/internal/repository"
)

// ModeNow schedules a post for "immediately", offset by a random humanizing
// delay. Any other mode string is parsed as an explicit timestamp and
// committed without jitter.
const ModeNow = "now"

// scheduleTimeLayout matches the datetime-local format the frontend sends.
const scheduleTimeLayout = "2006-01-02T15:04"

// Scheduler is the single authority that computes and commits a post's
// scheduled time and arranges its eventual execution through the queue.
type Scheduler struct {
	posts  repository.PostRepository
	queue  queue.Enqueuer
	policy *RatePolicy
	delays *DelayGenerator
	picker *TimePicker
}

func New(cfg config.Scheduling, posts repository.PostRepository, q queue.Enqueuer) *Scheduler {
	delays := NewDelayGenerator(cfg)
	return &Scheduler{
		posts:  posts,
		queue:  q,
		policy: NewRatePolicy(cfg, posts),
		delays: delays,
		picker: NewTimePicker(delays),
	}
}

// ParseScheduleTime accepts the frontend's datetime-local format and RFC3339.
func ParseScheduleTime(value string) (time.Time, error) {
	if t, err := time.ParseInLocation(scheduleTimeLayout, value, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// SchedulePost computes the target fire time for a post, applies the rate
// and spacing policy, persists the decision and enqueues the publish task.
// The returned time is the committed scheduled time.
//
// Policy violations are reported synchronously before anything is mutated;
// an enqueue failure after the post was marked scheduled is surfaced to the
// caller rather than swallowed.
func (s *Scheduler) SchedulePost(ctx context.Context, postID int64, mode string) (time.Time, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return time.Time{}, err
	}
	if post == nil {
		return time.Time{}, ErrPostNotFound
	}

	now := time.Now()

	var target time.Time
	if mode == ModeNow {
		target = now.Add(s.delays.RandomDelay())
	} else {
		// Explicit time selected by the user: committed exactly, no variance.
		target, err = ParseScheduleTime(mode)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid schedule time %q: %w", mode, err)
		}
	}

	canPost, err := s.policy.CanPostToday(ctx, post.UserID, post.Platform)
	if err != nil {
		return time.Time{}, err
	}
	if !canPost {
		return time.Time{}, &RateLimitError{Platform: post.Platform}
	}

	target, err = s.policy.NextEligibleTime(ctx, post.UserID, post.Platform, target)
	if err != nil {
		return time.Time{}, err
	}

	if err := s.posts.SetSchedule(ctx, postID, target); err != nil {
		return time.Time{}, err
	}

	delay := time.Until(target)
	if delay < 0 {
		delay = 0
	}

	taskID, err := s.queue.EnqueuePublish(ctx, postID, delay)
	if err != nil {
		return time.Time{}, fmt.Errorf("post %d marked scheduled but enqueue failed: %w", postID, err)
	}

	slog.Info("post scheduled",
		"post_id", postID,
		"platform", post.Platform,
		"scheduled_time", target,
		"delay", delay,
		"task_id", taskID)

	return target, nil
}

// Reschedule moves a scheduled post to a new time through the same commit
// path, replacing the pending task so a post never has two live jobs.
func (s *Scheduler) Reschedule(ctx context.Context, postID int64, mode string) (time.Time, error) {
	if err := s.queue.Remove(ctx, queue.PublishTaskID(postID)); err != nil {
		slog.Info("could not remove pending task before reschedule", "post_id", postID, "error", err)
	}
	return s.SchedulePost(ctx, postID, mode)
}

// Cancel removes the pending publish task best-effort and deletes the post.
// A task already in flight sees the missing post at load time and drops.
func (s *Scheduler) Cancel(ctx context.Context, postID int64) error {
	if err := s.queue.Remove(ctx, queue.PublishTaskID(postID)); err != nil {
		slog.Info("could not remove pending task on cancel", "post_id", postID, "error", err)
	}
	return s.posts.Remove(ctx, postID)
}

// ScheduleWithAI picks a peak-hour time per post and commits each one
// through SchedulePost, so policy checks still apply.
func (s *Scheduler) ScheduleWithAI(ctx context.Context, postIDs []int64) (map[int64]time.Time, error) {
	scheduled := make(map[int64]time.Time, len(postIDs))

	for _, postID := range postIDs {
		post, err := s.posts.GetByID(ctx, postID)
		if err != nil {
			return scheduled, err
		}
		if post == nil {
			return scheduled, ErrPostNotFound
		}

		proposed := s.picker.PickTime(post.Platform, time.Now())
		committed, err := s.SchedulePost(ctx, postID, proposed.Format(time.RFC3339))
		if err != nil {
			return scheduled, err
		}
		scheduled[postID] = committed
	}

	return scheduled, nil
}
