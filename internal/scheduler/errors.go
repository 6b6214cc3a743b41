package scheduler

import (
	"errors"
	"fmt"
)

// ErrPostNotFound is returned when a schedule operation references a post id
// that no longer exists.
var ErrPostNotFound = errors.New("post not found")

// RateLimitError is raised synchronously at schedule time when the per-day
// cap for a platform is already reached. Nothing is persisted or enqueued
// when it fires, and the queue never retries it.
type RateLimitError struct {
	Platform string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("daily limit reached for %s", e.Platform)
}
