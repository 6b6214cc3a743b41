package scheduler

import (
	"context"
	"time"

	config "shortloop/configs"
	"shortloop/internal/repository"
)

// RatePolicy decides whether a platform may accept another post for a user
// and how far apart consecutive posts must land. It holds no state of its
// own; history is read from the post store at decision time, so concurrent
// schedule calls for the same user+platform can race past each other within
// the same instant. The spacing rule is best-effort, not a hard guarantee.
type RatePolicy struct {
	cfg   config.Scheduling
	posts repository.PostRepository
}

func NewRatePolicy(cfg config.Scheduling, posts repository.PostRepository) *RatePolicy {
	return &RatePolicy{cfg: cfg, posts: posts}
}

// DailyLimit returns the configured cap for a platform. Unknown platforms
// get a zero cap so nothing slips through on a typo.
func (p *RatePolicy) DailyLimit(platform string) int {
	return p.cfg.DailyLimits[platform]
}

func (p *RatePolicy) MinimumSpacing(platform string) time.Duration {
	return p.cfg.MinSpacing[platform]
}

// CanPostToday counts posts published since local midnight for the
// user+platform pair and compares against the daily cap.
func (p *RatePolicy) CanPostToday(ctx context.Context, userID int64, platform string) (bool, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	count, err := p.posts.CountPostedSince(ctx, userID, platform, midnight)
	if err != nil {
		return false, err
	}

	return count < p.DailyLimit(platform), nil
}

// NextEligibleTime pushes the proposed time forward to lastPostedAt+spacing
// when the most recent published post is too close. The push is only ever
// forward; an already-eligible proposal is returned unchanged.
func (p *RatePolicy) NextEligibleTime(ctx context.Context, userID int64, platform string, proposed time.Time) (time.Time, error) {
	last, err := p.posts.LastPostedAt(ctx, userID, platform)
	if err != nil {
		return time.Time{}, err
	}
	if last == nil {
		return proposed, nil
	}

	spacing := p.MinimumSpacing(platform)
	if proposed.Sub(*last) < spacing {
		return last.Add(spacing), nil
	}
	return proposed, nil
}
