package service

import (
	"context"
	"errors"
	"log/slog"

	"shortloop/internal/models"
	"shortloop/internal/repository"
)

type AnalyticsService interface {
	Overview(ctx context.Context, userID int64) ([]*models.PlatformOverview, error)
	OverviewByPlatform(ctx context.Context, userID int64, platform string) (*models.PlatformOverview, error)
	PostAnalytics(ctx context.Context, userID, postID int64) (*models.PostAnalytics, error)
}

type analyticsService struct {
	analytics repository.AnalyticsRepository
	posts     repository.PostRepository
}

func NewAnalyticsService(analytics repository.AnalyticsRepository, posts repository.PostRepository) AnalyticsService {
	return &analyticsService{analytics: analytics, posts: posts}
}

func (s *analyticsService) Overview(ctx context.Context, userID int64) ([]*models.PlatformOverview, error) {
	overviews, err := s.analytics.Overview(ctx, userID)
	if err != nil {
		return nil, errors.New("error getting analytics overview")
	}
	return overviews, nil
}

func (s *analyticsService) OverviewByPlatform(ctx context.Context, userID int64, platform string) (*models.PlatformOverview, error) {
	if !models.IsValidPlatform(platform) {
		err := errors.New("unsupported platform")
		slog.Info(err.Error())
		return nil, err
	}

	overview, err := s.analytics.OverviewByPlatform(ctx, userID, platform)
	if err != nil {
		return nil, errors.New("error getting platform analytics")
	}
	return overview, nil
}

func (s *analyticsService) PostAnalytics(ctx context.Context, userID, postID int64) (*models.PostAnalytics, error) {
	var err error

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

	pa, err := s.analytics.GetByPostID(ctx, postID)
	if err != nil {
		return nil, errors.New("error getting post analytics")
	}
	if pa == nil {
		err = errors.New("post has no analytics yet")
		slog.Info(err.Error())
		return nil, err
	}

	return pa, nil
}
