package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "shortloop/configs"
	"shortloop/internal/models"
)

func testSchedulingConfig() config.Scheduling {
	return config.Scheduling{
		DailyLimits: map[string]int{
			"youtube":   5,
			"tiktok":    2,
			"instagram": 3,
			"facebook":  4,
		},
		MinSpacing: map[string]time.Duration{
			"youtube":   2 * time.Hour,
			"tiktok":    4 * time.Hour,
			"instagram": 3 * time.Hour,
			"facebook":  3 * time.Hour,
		},
		MinDelayMinutes: 5,
		MaxDelayMinutes: 15,
		VarianceMinutes: 30,
		QueueAttempts:   3,
		RetryBase:       time.Minute,
	}
}

// fakePostRepo backs scheduler tests with in-memory posts and canned
// policy-query answers.
type fakePostRepo struct {
	posts        map[int64]*models.Post
	postedCount  int
	lastPostedAt *time.Time

	scheduledTimes map[int64]time.Time
	removed        []int64
}

func newFakePostRepo(posts ...*models.Post) *fakePostRepo {
	r := &fakePostRepo{
		posts:          make(map[int64]*models.Post),
		scheduledTimes: make(map[int64]time.Time),
	}
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

func (r *fakePostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	id := int64(len(r.posts) + 1)
	post.ID = id
	r.posts[id] = post
	return id, nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	return r.posts[id], nil
}

func (r *fakePostRepo) ListByUserID(ctx context.Context, userID int64, status string) ([]*models.Post, error) {
	return nil, nil
}

func (r *fakePostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	p, ok := r.posts[postID]
	return ok && p.UserID == userID, nil
}

func (r *fakePostRepo) SetSchedule(ctx context.Context, postID int64, scheduledTime time.Time) error {
	r.scheduledTimes[postID] = scheduledTime
	if p, ok := r.posts[postID]; ok {
		p.Status = models.PostStatusScheduled
		p.ScheduledTime = &scheduledTime
	}
	return nil
}

func (r *fakePostRepo) UpdateStatus(ctx context.Context, status string, postID int64) error {
	if p, ok := r.posts[postID]; ok {
		p.Status = status
	}
	return nil
}

func (r *fakePostRepo) MarkPosted(ctx context.Context, postID int64, platformPostID string, postedAt time.Time) error {
	return nil
}

func (r *fakePostRepo) MarkFailed(ctx context.Context, postID int64, errorMessage string) error {
	return nil
}

func (r *fakePostRepo) CountPostedSince(ctx context.Context, userID int64, platform string, since time.Time) (int, error) {
	return r.postedCount, nil
}

func (r *fakePostRepo) LastPostedAt(ctx context.Context, userID int64, platform string) (*time.Time, error) {
	return r.lastPostedAt, nil
}

func (r *fakePostRepo) Remove(ctx context.Context, id int64) error {
	r.removed = append(r.removed, id)
	delete(r.posts, id)
	return nil
}

type fakeEnqueuer struct {
	enqueued   map[int64]time.Duration
	removed    []string
	enqueueErr error
}

func newFakeEnqueuer() *fakeEnqueuer {
	return &fakeEnqueuer{enqueued: make(map[int64]time.Duration)}
}

func (q *fakeEnqueuer) EnqueuePublish(ctx context.Context, postID int64, delay time.Duration) (string, error) {
	if q.enqueueErr != nil {
		return "", q.enqueueErr
	}
	q.enqueued[postID] = delay
	return "task-id", nil
}

func (q *fakeEnqueuer) Remove(ctx context.Context, taskID string) error {
	q.removed = append(q.removed, taskID)
	return nil
}

func testPost(id int64, platform string) *models.Post {
	return &models.Post{
		ID:       id,
		UserID:   1,
		VideoID:  10,
		Platform: platform,
		Status:   models.PostStatusPending,
	}
}

func TestSchedulePostNowModeWithinDelayWindow(t *testing.T) {
	repo := newFakePostRepo(testPost(1, "youtube"))
	q := newFakeEnqueuer()
	s := New(testSchedulingConfig(), repo, q)

	before := time.Now()
	scheduled, err := s.SchedulePost(context.Background(), 1, ModeNow)
	require.NoError(t, err)
	after := time.Now()

	assert.False(t, scheduled.Before(before.Add(5*time.Minute)))
	assert.False(t, scheduled.After(after.Add(15*time.Minute)))
	assert.Contains(t, q.enqueued, int64(1))
	assert.Equal(t, scheduled, repo.scheduledTimes[1])
}

func TestSchedulePostManualTimeCommittedExactly(t *testing.T) {
	repo := newFakePostRepo(testPost(1, "youtube"))
	q := newFakeEnqueuer()
	s := New(testSchedulingConfig(), repo, q)

	target := time.Now().Add(48 * time.Hour).Truncate(time.Minute)
	scheduled, err := s.SchedulePost(context.Background(), 1, target.Format(time.RFC3339))
	require.NoError(t, err)

	assert.True(t, scheduled.Equal(target), "manual time must not be jittered, got %v want %v", scheduled, target)
}

func TestSchedulePostRateLimited(t *testing.T) {
	repo := newFakePostRepo(testPost(1, "tiktok"))
	repo.postedCount = 2 // tiktok daily cap
	q := newFakeEnqueuer()
	s := New(testSchedulingConfig(), repo, q)

	_, err := s.SchedulePost(context.Background(), 1, ModeNow)

	var rateErr *RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.Equal(t, "tiktok", rateErr.Platform)
	assert.Empty(t, q.enqueued, "nothing may be enqueued on a rate limit")
	assert.Empty(t, repo.scheduledTimes, "nothing may be persisted on a rate limit")
}

func TestSchedulePostSpacingPushesForward(t *testing.T) {
	repo := newFakePostRepo(testPost(1, "youtube"))
	last := time.Now().Add(-30 * time.Minute)
	repo.lastPostedAt = &last
	q := newFakeEnqueuer()
	s := New(testSchedulingConfig(), repo, q)

	scheduled, err := s.SchedulePost(context.Background(), 1, ModeNow)
	require.NoError(t, err)

	assert.True(t, scheduled.Equal(last.Add(2*time.Hour)), "too-close post must land at lastPostedAt+spacing")
}

func TestSchedulePostUnknownPostID(t *testing.T) {
	s := New(testSchedulingConfig(), newFakePostRepo(), newFakeEnqueuer())

	_, err := s.SchedulePost(context.Background(), 99, ModeNow)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestSchedulePostInvalidTime(t *testing.T) {
	repo := newFakePostRepo(testPost(1, "youtube"))
	s := New(testSchedulingConfig(), repo, newFakeEnqueuer())

	_, err := s.SchedulePost(context.Background(), 1, "not-a-time")
	assert.Error(t, err)
	assert.Empty(t, repo.scheduledTimes)
}

func TestSchedulePostEnqueueFailureSurfaced(t *testing.T) {
	repo := newFakePostRepo(testPost(1, "youtube"))
	q := newFakeEnqueuer()
	q.enqueueErr = errors.New("redis down")
	s := New(testSchedulingConfig(), repo, q)

	_, err := s.SchedulePost(context.Background(), 1, ModeNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enqueue failed")
}

func TestRescheduleReplacesPendingTask(t *testing.T) {
	repo := newFakePostRepo(testPost(1, "youtube"))
	q := newFakeEnqueuer()
	s := New(testSchedulingConfig(), repo, q)

	target := time.Now().Add(24 * time.Hour).Truncate(time.Minute)
	scheduled, err := s.Reschedule(context.Background(), 1, target.Format(time.RFC3339))
	require.NoError(t, err)

	assert.Equal(t, []string{"post:publish:1"}, q.removed)
	assert.True(t, scheduled.Equal(target))
	assert.Contains(t, q.enqueued, int64(1))
}

func TestCancelRemovesTaskAndPost(t *testing.T) {
	repo := newFakePostRepo(testPost(1, "youtube"))
	q := newFakeEnqueuer()
	s := New(testSchedulingConfig(), repo, q)

	require.NoError(t, s.Cancel(context.Background(), 1))

	assert.Equal(t, []string{"post:publish:1"}, q.removed)
	assert.Equal(t, []int64{1}, repo.removed)
}

func TestScheduleWithAICommitsEachPost(t *testing.T) {
	repo := newFakePostRepo(testPost(1, "youtube"), testPost(2, "tiktok"))
	q := newFakeEnqueuer()
	s := New(testSchedulingConfig(), repo, q)

	scheduled, err := s.ScheduleWithAI(context.Background(), []int64{1, 2})
	require.NoError(t, err)

	require.Len(t, scheduled, 2)
	for postID, at := range scheduled {
		assert.Contains(t, q.enqueued, postID)
		assert.True(t, at.After(time.Now().Add(-31*time.Minute)), "AI-picked time must not land meaningfully in the past")
	}
}

func TestParseScheduleTimeFormats(t *testing.T) {
	local, err := ParseScheduleTime("2026-09-01T18:30")
	require.NoError(t, err)
	assert.Equal(t, 18, local.Hour())
	assert.Equal(t, 30, local.Minute())

	rfc, err := ParseScheduleTime("2026-09-01T18:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, rfc.Location())

	_, err = ParseScheduleTime("tomorrow")
	assert.Error(t, err)
}
