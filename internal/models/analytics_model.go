package models

import "time"

// PostAnalytics starts as a zeroed placeholder row created when a post is
// published; metric columns are filled in later by platform sync.
type PostAnalytics struct {
	ID           int64     `db:"id" json:"id"`
	PostID       int64     `db:"post_id" json:"post_id"`
	Views        int64     `db:"views" json:"views"`
	Likes        int64     `db:"likes" json:"likes"`
	Comments     int64     `db:"comments" json:"comments"`
	Shares       int64     `db:"shares" json:"shares"`
	LastSyncedAt time.Time `db:"last_synced_at" json:"last_synced_at"`
}

type PlatformOverview struct {
	Platform string `db:"platform" json:"platform"`
	Posts    int64  `db:"posts" json:"posts"`
	Views    int64  `db:"views" json:"views"`
	Likes    int64  `db:"likes" json:"likes"`
	Comments int64  `db:"comments" json:"comments"`
	Shares   int64  `db:"shares" json:"shares"`
}
