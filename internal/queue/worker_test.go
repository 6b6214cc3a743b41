package queue

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortloop/internal/models"
	"shortloop/internal/platform"
)

type fakePostStore struct {
	posts map[int64]*models.Post

	statuses    []string
	posted      map[int64]string
	failed      map[int64]string
	markPostErr error
}

func newFakePostStore(posts ...*models.Post) *fakePostStore {
	s := &fakePostStore{
		posts:  make(map[int64]*models.Post),
		posted: make(map[int64]string),
		failed: make(map[int64]string),
	}
	for _, p := range posts {
		s.posts[p.ID] = p
	}
	return s
}

func (s *fakePostStore) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	return 0, errors.New("not implemented")
}

func (s *fakePostStore) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	return s.posts[id], nil
}

func (s *fakePostStore) ListByUserID(ctx context.Context, userID int64, status string) ([]*models.Post, error) {
	return nil, nil
}

func (s *fakePostStore) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	return false, nil
}

func (s *fakePostStore) SetSchedule(ctx context.Context, postID int64, scheduledTime time.Time) error {
	return nil
}

func (s *fakePostStore) UpdateStatus(ctx context.Context, status string, postID int64) error {
	s.statuses = append(s.statuses, status)
	if p, ok := s.posts[postID]; ok {
		p.Status = status
	}
	return nil
}

func (s *fakePostStore) MarkPosted(ctx context.Context, postID int64, platformPostID string, postedAt time.Time) error {
	if s.markPostErr != nil {
		return s.markPostErr
	}
	s.posted[postID] = platformPostID
	return nil
}

func (s *fakePostStore) MarkFailed(ctx context.Context, postID int64, errorMessage string) error {
	s.failed[postID] = errorMessage
	if p, ok := s.posts[postID]; ok {
		p.RetryCount++
	}
	return nil
}

func (s *fakePostStore) CountPostedSince(ctx context.Context, userID int64, platform string, since time.Time) (int, error) {
	return 0, nil
}

func (s *fakePostStore) LastPostedAt(ctx context.Context, userID int64, platform string) (*time.Time, error) {
	return nil, nil
}

func (s *fakePostStore) Remove(ctx context.Context, id int64) error {
	return nil
}

type fakeVideoStore struct {
	videos map[int64]*models.Video
}

func (s *fakeVideoStore) Create(ctx context.Context, tx *sql.Tx, video *models.Video) (int64, error) {
	return 0, errors.New("not implemented")
}

func (s *fakeVideoStore) GetByID(ctx context.Context, id int64) (*models.Video, error) {
	return s.videos[id], nil
}

func (s *fakeVideoStore) ListByUserID(ctx context.Context, userID int64) ([]*models.Video, error) {
	return nil, nil
}

func (s *fakeVideoStore) CheckByUserID(ctx context.Context, videoID, userID int64) (bool, error) {
	return false, nil
}

func (s *fakeVideoStore) Remove(ctx context.Context, id int64) error {
	return nil
}

type fakeAccountStore struct {
	accounts map[string]*models.SocialAccount
}

func (s *fakeAccountStore) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	return nil, nil
}

func (s *fakeAccountStore) GetByUserAndPlatform(ctx context.Context, userID int64, platform string) (*models.SocialAccount, error) {
	return s.accounts[platform], nil
}

func (s *fakeAccountStore) ListByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (s *fakeAccountStore) ListByTimeInterval(ctx context.Context, initialTime, finalTime time.Time) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (s *fakeAccountStore) SetToken(ctx context.Context, userID int64, oldAccessToken string, sa *models.SocialAccount) error {
	return nil
}

func (s *fakeAccountStore) Remove(ctx context.Context, id int64) error {
	return nil
}

type fakeAnalyticsStore struct {
	created []int64
}

func (s *fakeAnalyticsStore) Create(ctx context.Context, postID int64) (int64, error) {
	s.created = append(s.created, postID)
	return int64(len(s.created)), nil
}

func (s *fakeAnalyticsStore) GetByPostID(ctx context.Context, postID int64) (*models.PostAnalytics, error) {
	return nil, nil
}

func (s *fakeAnalyticsStore) Overview(ctx context.Context, userID int64) ([]*models.PlatformOverview, error) {
	return nil, nil
}

func (s *fakeAnalyticsStore) OverviewByPlatform(ctx context.Context, userID int64, platform string) (*models.PlatformOverview, error) {
	return nil, nil
}

type fakePublisher struct {
	calls  int
	lastMD platform.Metadata
	result *platform.Result
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, fileURL string, md platform.Metadata, acc *models.SocialAccount) (*platform.Result, error) {
	p.calls++
	p.lastMD = md
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

type fakeOptimizer struct {
	err error
}

func (o *fakeOptimizer) OptimizeForPlatform(ctx context.Context, fileURL, platform string) (string, error) {
	if o.err != nil {
		return "", o.err
	}
	return fileURL, nil
}

type fakeNotifier struct {
	succeeded []int64
	failed    []int64
}

func (n *fakeNotifier) PublishSucceeded(ctx context.Context, post *models.Post, platformPostID string) {
	n.succeeded = append(n.succeeded, post.ID)
}

func (n *fakeNotifier) PublishFailed(ctx context.Context, post *models.Post, cause error) {
	n.failed = append(n.failed, post.ID)
}

type workerFixture struct {
	worker    *Worker
	posts     *fakePostStore
	analytics *fakeAnalyticsStore
	publisher *fakePublisher
	notifier  *fakeNotifier
}

func newWorkerFixture(posts ...*models.Post) *workerFixture {
	postStore := newFakePostStore(posts...)
	publisher := &fakePublisher{result: &platform.Result{ID: "yt-123"}}
	analytics := &fakeAnalyticsStore{}
	notifier := &fakeNotifier{}

	w := NewWorker(
		postStore,
		&fakeVideoStore{videos: map[int64]*models.Video{
			10: {ID: 10, UserID: 1, Title: "fallback title", Description: "fallback description", FileURL: "https://cdn.example/video.mp4"},
		}},
		&fakeAccountStore{accounts: map[string]*models.SocialAccount{
			"youtube": {ID: 5, UserID: 1, Platform: "youtube"},
		}},
		analytics,
		platform.Registry{"youtube": publisher},
		&fakeOptimizer{},
		notifier,
	)

	return &workerFixture{worker: w, posts: postStore, analytics: analytics, publisher: publisher, notifier: notifier}
}

func scheduledPost(id int64) *models.Post {
	return &models.Post{
		ID:       id,
		UserID:   1,
		VideoID:  10,
		Platform: "youtube",
		Title:    "my title",
		Hashtags: []string{"shorts"},
		Status:   models.PostStatusScheduled,
	}
}

func TestPublishPostSuccess(t *testing.T) {
	f := newWorkerFixture(scheduledPost(1))

	err := f.worker.PublishPost(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, f.publisher.calls)
	assert.Equal(t, []string{models.PostStatusPosting}, f.posts.statuses)
	assert.Equal(t, "yt-123", f.posts.posted[1])
	assert.Equal(t, []int64{1}, f.analytics.created)
	assert.Equal(t, []int64{1}, f.notifier.succeeded)
	assert.Empty(t, f.notifier.failed)
}

func TestPublishPostMissingPostIsNoOp(t *testing.T) {
	f := newWorkerFixture()

	err := f.worker.PublishPost(context.Background(), 42)
	require.NoError(t, err, "a cancelled post must complete the task without retrying")

	assert.Zero(t, f.publisher.calls)
	assert.Empty(t, f.posts.statuses)
}

func TestPublishPostFailureMarksFailedAndRetries(t *testing.T) {
	f := newWorkerFixture(scheduledPost(1))
	f.publisher.err = errors.New("upload timed out")

	err := f.worker.PublishPost(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)

	assert.Equal(t, "upload timed out", f.posts.failed[1])
	assert.Equal(t, 1, f.posts.posts[1].RetryCount)
	assert.Equal(t, []int64{1}, f.notifier.failed)
	assert.Empty(t, f.posts.posted)
}

func TestPublishPostNoAccountSkipsRetry(t *testing.T) {
	f := newWorkerFixture(scheduledPost(1))
	post := f.posts.posts[1]
	post.Platform = "tiktok" // no connected tiktok account in the fixture

	err := f.worker.PublishPost(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry, "a configuration problem must not burn the retry budget")
	assert.Contains(t, f.posts.failed[1], "not configured")
}

func TestPublishPostMetadataFallsBackToVideo(t *testing.T) {
	post := scheduledPost(1)
	post.Title = ""
	post.Description = ""
	f := newWorkerFixture(post)

	err := f.worker.PublishPost(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "fallback title", f.publisher.lastMD.Title)
	assert.Equal(t, "fallback description", f.publisher.lastMD.Description)
	assert.Equal(t, []string{"shorts"}, f.publisher.lastMD.Hashtags)
}

func TestHandlePublishTaskBadPayloadSkipsRetry(t *testing.T) {
	f := newWorkerFixture()

	task := asynq.NewTask(TaskTypePublishPost, []byte("not json"))
	err := f.worker.HandlePublishTask(context.Background(), task)
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestPublishTaskIDDeterministic(t *testing.T) {
	assert.Equal(t, "post:publish:7", PublishTaskID(7))
	assert.Equal(t, PublishTaskID(7), PublishTaskID(7))
}
