package platform

import (
	"context"
	"fmt"
	"strings"

	"shortloop/internal/models"
)

// Metadata carries the per-post content handed to a publisher. Fields are
// already resolved against video-level defaults by the worker.
type Metadata struct {
	Title       string
	Description string
	Hashtags    []string
}

// FullDescription renders the description with the hashtag block appended,
// the way every platform expects it inline.
func (m Metadata) FullDescription() string {
	if len(m.Hashtags) == 0 {
		return m.Description
	}

	tags := make([]string, 0, len(m.Hashtags))
	for _, tag := range m.Hashtags {
		if tag == "" {
			continue
		}
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		tags = append(tags, tag)
	}

	if len(tags) == 0 {
		return m.Description
	}
	return m.Description + "\n\n" + strings.Join(tags, " ")
}

// Result is what a platform hands back after a successful upload.
type Result struct {
	ID  string
	URL string
}

// Publisher uploads one video to one platform using the connected account's
// credentials.
type Publisher interface {
	Publish(ctx context.Context, fileURL string, md Metadata, acc *models.SocialAccount) (*Result, error)
}

// TokenRefresher is implemented by publishers whose platform tokens expire
// and can be refreshed; the cron refresh job consumes it.
type TokenRefresher interface {
	RefreshToken(ctx context.Context, acc *models.SocialAccount) error
}

// ConfigurationError means a platform has no publisher wired or no connected
// account; it fails fast before any network call and is never retried.
type ConfigurationError struct {
	Platform string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("platform %s is not configured: %s", e.Platform, e.Reason)
}

// Registry maps platform names to their publishers.
type Registry map[string]Publisher

func (r Registry) Resolve(platform string) (Publisher, error) {
	p, ok := r[platform]
	if !ok {
		return nil, &ConfigurationError{Platform: platform, Reason: "no publisher wired"}
	}
	return p, nil
}
