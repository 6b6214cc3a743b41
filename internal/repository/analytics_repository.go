package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"shortloop/internal/models"
)

type AnalyticsRepository interface {
	Create(ctx context.Context, postID int64) (int64, error)
	GetByPostID(ctx context.Context, postID int64) (*models.PostAnalytics, error)
	Overview(ctx context.Context, userID int64) ([]*models.PlatformOverview, error)
	OverviewByPlatform(ctx context.Context, userID int64, platform string) (*models.PlatformOverview, error)
}

type analyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// Create inserts the zeroed placeholder row for a freshly published post.
func (r *analyticsRepository) Create(ctx context.Context, postID int64) (int64, error) {
	query := `
		INSERT INTO post_analytics (post_id)
		VALUES ($1)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, postID).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *analyticsRepository) GetByPostID(ctx context.Context, postID int64) (*models.PostAnalytics, error) {
	query := `SELECT id, post_id, views, likes, comments, shares, last_synced_at FROM post_analytics WHERE post_id = $1`
	row := r.db.QueryRowContext(ctx, query, postID)

	var pa models.PostAnalytics
	err := row.Scan(&pa.ID, &pa.PostID, &pa.Views, &pa.Likes, &pa.Comments, &pa.Shares, &pa.LastSyncedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &pa, nil
}

func (r *analyticsRepository) Overview(ctx context.Context, userID int64) ([]*models.PlatformOverview, error) {
	query := `
		SELECT p.platform,
			COUNT(p.id),
			COALESCE(SUM(a.views), 0),
			COALESCE(SUM(a.likes), 0),
			COALESCE(SUM(a.comments), 0),
			COALESCE(SUM(a.shares), 0)
		FROM posts p
		LEFT JOIN post_analytics a ON a.post_id = p.id
		WHERE p.user_id = $1 AND p.status = $2
		GROUP BY p.platform
	`

	rows, err := r.db.QueryContext(ctx, query, userID, models.PostStatusPosted)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var overviews []*models.PlatformOverview
	for rows.Next() {
		var po models.PlatformOverview
		err := rows.Scan(&po.Platform, &po.Posts, &po.Views, &po.Likes, &po.Comments, &po.Shares)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		overviews = append(overviews, &po)
	}
	return overviews, rows.Err()
}

func (r *analyticsRepository) OverviewByPlatform(ctx context.Context, userID int64, platform string) (*models.PlatformOverview, error) {
	query := `
		SELECT p.platform,
			COUNT(p.id),
			COALESCE(SUM(a.views), 0),
			COALESCE(SUM(a.likes), 0),
			COALESCE(SUM(a.comments), 0),
			COALESCE(SUM(a.shares), 0)
		FROM posts p
		LEFT JOIN post_analytics a ON a.post_id = p.id
		WHERE p.user_id = $1 AND p.platform = $2 AND p.status = $3
		GROUP BY p.platform
	`

	row := r.db.QueryRowContext(ctx, query, userID, platform, models.PostStatusPosted)

	var po models.PlatformOverview
	err := row.Scan(&po.Platform, &po.Posts, &po.Views, &po.Likes, &po.Comments, &po.Shares)
	if err != nil {
		if err == sql.ErrNoRows {
			return &models.PlatformOverview{Platform: platform}, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &po, nil
}
