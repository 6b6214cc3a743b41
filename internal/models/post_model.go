package models

import "time"

// Post is one platform-specific publication unit derived from an uploaded
// video. Title, description and hashtags override the video-level defaults
// when set; the worker falls back to the video's values when they are empty.
type Post struct {
	ID             int64      `db:"id" json:"id"`
	UserID         int64      `db:"user_id" json:"user_id"`
	VideoID        int64      `db:"video_id" json:"video_id"`
	Platform       string     `db:"platform" json:"platform"`
	Title          string     `db:"title" json:"title"`
	Description    string     `db:"description" json:"description"`
	Hashtags       []string   `db:"hashtags" json:"hashtags"`
	Status         string     `db:"status" json:"status"`
	ScheduledTime  *time.Time `db:"scheduled_time" json:"scheduled_time"`
	PostedAt       *time.Time `db:"posted_at" json:"posted_at"`
	PlatformPostID string     `db:"platform_post_id" json:"platform_post_id"`
	ErrorMessage   string     `db:"error_message" json:"error_message"`
	RetryCount     int        `db:"retry_count" json:"retry_count"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

type Video struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	Title        string    `db:"title" json:"title"`
	Description  string    `db:"description" json:"description"`
	FileURL      string    `db:"file_url" json:"file_url"`
	ThumbnailURL string    `db:"thumbnail_url" json:"thumbnail_url"`
	FileSize     int64     `db:"file_size" json:"file_size"`
	Duration     int       `db:"duration" json:"duration"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const (
	PostStatusPending   = "pending"
	PostStatusScheduled = "scheduled"
	PostStatusPosting   = "posting"
	PostStatusPosted    = "posted"
	PostStatusFailed    = "failed"
)

const (
	PlatformYoutube   = "youtube"
	PlatformTiktok    = "tiktok"
	PlatformInstagram = "instagram"
	PlatformFacebook  = "facebook"
)

// Platforms lists every supported publish target.
var Platforms = []string{PlatformYoutube, PlatformTiktok, PlatformInstagram, PlatformFacebook}

func IsValidPlatform(platform string) bool {
	for _, p := range Platforms {
		if p == platform {
			return true
		}
	}
	return false
}
