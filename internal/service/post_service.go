package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shortloop/internal/models"
	"shortloop/internal/repository"
	"shortloop/internal/scheduler"
	"shortloop/internal/transfer"
)

const (
	ScheduleModeNow    = "now"
	ScheduleModeManual = "manual"
	ScheduleModeAI     = "ai"
)

type PostService interface {
	CreatePosts(ctx context.Context, userID int64, pc *transfer.PostCreation) ([]*transfer.PostScheduleResult, error)
	List(ctx context.Context, userID int64, status string) ([]*models.Post, error)
	PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error)
	Reschedule(ctx context.Context, userID, postID int64, scheduleTime string) (time.Time, error)
	Remove(ctx context.Context, userID, postID int64) error
}

type postService struct {
	db     *sql.DB
	posts  repository.PostRepository
	videos repository.VideoRepository
	sched  *scheduler.Scheduler
}

func NewPostService(db *sql.DB, posts repository.PostRepository, videos repository.VideoRepository, sched *scheduler.Scheduler) PostService {
	return &postService{
		db:     db,
		posts:  posts,
		videos: videos,
		sched:  sched,
	}
}

// CreatePosts creates one pending post per requested platform inside a single
// transaction, then schedules each through the commit path. A platform that
// hits its daily cap is reported in its result entry instead of failing the
// whole request, so the other platforms still go out.
func (s *postService) CreatePosts(ctx context.Context, userID int64, pc *transfer.PostCreation) ([]*transfer.PostScheduleResult, error) {
	if pc == nil {
		err := errors.New("post creation data is nil")
		slog.Error(err.Error())
		return nil, err
	}
	if len(pc.Platforms) == 0 {
		err := errors.New("no platforms selected")
		slog.Info(err.Error())
		return nil, err
	}
	for _, p := range pc.Platforms {
		if !models.IsValidPlatform(p.Platform) {
			err := fmt.Errorf("unsupported platform %q", p.Platform)
			slog.Info(err.Error())
			return nil, err
		}
	}

	switch pc.ScheduleMode {
	case ScheduleModeNow, ScheduleModeAI:
	case ScheduleModeManual:
		if _, err := scheduler.ParseScheduleTime(pc.ScheduleTime); err != nil {
			err = fmt.Errorf("invalid schedule time format: %w", err)
			slog.Info(err.Error())
			return nil, err
		}
	default:
		err := fmt.Errorf("unsupported schedule mode %q", pc.ScheduleMode)
		slog.Info(err.Error())
		return nil, err
	}

	exists, err := s.videos.CheckByUserID(ctx, pc.VideoID, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		err = errors.New("video doesn't exist")
		slog.Info(err.Error())
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	results := make([]*transfer.PostScheduleResult, 0, len(pc.Platforms))
	for _, p := range pc.Platforms {
		post := models.Post{
			UserID:      userID,
			VideoID:     pc.VideoID,
			Platform:    p.Platform,
			Title:       p.Title,
			Description: p.Description,
			Hashtags:    p.Hashtags,
			Status:      models.PostStatusPending,
		}

		var postID int64
		postID, err = s.posts.Create(ctx, tx, &post)
		if err != nil {
			return nil, fmt.Errorf("error creating post for %s: %w", p.Platform, err)
		}

		results = append(results, &transfer.PostScheduleResult{
			PostID:   postID,
			Platform: p.Platform,
		})
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	for _, result := range results {
		scheduled, schedErr := s.schedule(ctx, result.PostID, pc)
		if schedErr != nil {
			var rateErr *scheduler.RateLimitError
			result.Error = schedErr.Error()
			result.RateLimited = errors.As(schedErr, &rateErr)
			continue
		}
		t := scheduled
		result.ScheduledTime = &t
	}

	return results, nil
}

func (s *postService) schedule(ctx context.Context, postID int64, pc *transfer.PostCreation) (time.Time, error) {
	switch pc.ScheduleMode {
	case ScheduleModeNow:
		return s.sched.SchedulePost(ctx, postID, scheduler.ModeNow)
	case ScheduleModeManual:
		return s.sched.SchedulePost(ctx, postID, pc.ScheduleTime)
	case ScheduleModeAI:
		scheduled, err := s.sched.ScheduleWithAI(ctx, []int64{postID})
		if err != nil {
			return time.Time{}, err
		}
		return scheduled[postID], nil
	}
	return time.Time{}, fmt.Errorf("unsupported schedule mode %q", pc.ScheduleMode)
}

func (s *postService) List(ctx context.Context, userID int64, status string) ([]*models.Post, error) {
	posts, err := s.posts.ListByUserID(ctx, userID, status)
	if err != nil {
		return nil, errors.New("error listing posts")
	}
	return posts, nil
}

func (s *postService) PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error) {
	var err error

	if userID == 0 {
		err = errors.New("user is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	if postID == 0 {
		err = errors.New("post id is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	isValid, err := s.posts.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !isValid {
		err = errors.New("post doesn't exist")
		slog.Info(err.Error())
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, errors.New("error getting post info")
	}

	return post, nil
}

// Reschedule moves a scheduled post. Posts that already went out are
// immutable history.
func (s *postService) Reschedule(ctx context.Context, userID, postID int64, scheduleTime string) (time.Time, error) {
	post, err := s.PostInfo(ctx, postID, userID)
	if err != nil {
		return time.Time{}, err
	}

	switch post.Status {
	case models.PostStatusPosted, models.PostStatusPosting:
		err = fmt.Errorf("post %d is already %s", postID, post.Status)
		slog.Info(err.Error())
		return time.Time{}, err
	}

	return s.sched.Reschedule(ctx, postID, scheduleTime)
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	var err error

	if userID == 0 {
		err = errors.New("user is not valid")
		slog.Info(err.Error())
		return err
	}

	if postID == 0 {
		err = errors.New("post id is not valid")
		slog.Info(err.Error())
		return err
	}

	isValid, err := s.posts.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !isValid {
		err = errors.New("post doesn't exist")
		slog.Info(err.Error())
		return err
	}

	if err = s.sched.Cancel(ctx, postID); err != nil {
		return errors.New("error removing post")
	}

	return nil
}
