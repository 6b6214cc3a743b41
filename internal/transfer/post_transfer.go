package transfer

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PostCreation carries one cross-post request: the same video fanned out to
// one or more platforms under a single schedule mode.
type PostCreation struct {
	VideoID      int64          `json:"video_id"`
	Platforms    []PostPlatform `json:"platforms"`
	ScheduleMode string         `json:"schedule_mode"`
	ScheduleTime string         `json:"schedule_time"`
}

// PostPlatform is the per-platform slice of a creation request. Empty title
// or description falls back to the video's own metadata at publish time.
type PostPlatform struct {
	Platform    string   `json:"platform"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Hashtags    []string `json:"hashtags"`
}

// PostScheduleResult reports the per-platform outcome of a creation request.
type PostScheduleResult struct {
	PostID        int64      `json:"post_id"`
	Platform      string     `json:"platform"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`
	Error         string     `json:"error,omitempty"`
	RateLimited   bool       `json:"rate_limited,omitempty"`
}

type PostReschedule struct {
	ScheduleTime string `json:"schedule_time"`
}

type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
