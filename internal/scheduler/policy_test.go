package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanPostTodayUnderLimit(t *testing.T) {
	repo := newFakePostRepo()
	repo.postedCount = 4
	p := NewRatePolicy(testSchedulingConfig(), repo)

	ok, err := p.CanPostToday(context.Background(), 1, "youtube")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanPostTodayAtLimit(t *testing.T) {
	repo := newFakePostRepo()
	repo.postedCount = 5
	p := NewRatePolicy(testSchedulingConfig(), repo)

	ok, err := p.CanPostToday(context.Background(), 1, "youtube")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanPostTodayUnknownPlatformHasZeroCap(t *testing.T) {
	repo := newFakePostRepo()
	repo.postedCount = 0
	p := NewRatePolicy(testSchedulingConfig(), repo)

	ok, err := p.CanPostToday(context.Background(), 1, "myspace")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNextEligibleTimeNoHistory(t *testing.T) {
	p := NewRatePolicy(testSchedulingConfig(), newFakePostRepo())

	proposed := time.Now().Add(10 * time.Minute)
	got, err := p.NextEligibleTime(context.Background(), 1, "youtube", proposed)
	require.NoError(t, err)
	assert.True(t, got.Equal(proposed))
}

func TestNextEligibleTimeTooClose(t *testing.T) {
	repo := newFakePostRepo()
	last := time.Now().Add(-time.Hour)
	repo.lastPostedAt = &last
	p := NewRatePolicy(testSchedulingConfig(), repo)

	proposed := time.Now().Add(10 * time.Minute)
	got, err := p.NextEligibleTime(context.Background(), 1, "youtube", proposed)
	require.NoError(t, err)
	assert.True(t, got.Equal(last.Add(2*time.Hour)))
}

func TestNextEligibleTimeFarEnough(t *testing.T) {
	repo := newFakePostRepo()
	last := time.Now().Add(-3 * time.Hour)
	repo.lastPostedAt = &last
	p := NewRatePolicy(testSchedulingConfig(), repo)

	proposed := time.Now().Add(10 * time.Minute)
	got, err := p.NextEligibleTime(context.Background(), 1, "youtube", proposed)
	require.NoError(t, err)
	assert.True(t, got.Equal(proposed), "an already-eligible proposal must pass through unchanged")
}

func TestNextEligibleTimeOnlyPushesForward(t *testing.T) {
	repo := newFakePostRepo()
	last := time.Now().Add(-30 * time.Minute)
	repo.lastPostedAt = &last
	p := NewRatePolicy(testSchedulingConfig(), repo)

	proposed := time.Now().Add(5 * time.Minute)
	got, err := p.NextEligibleTime(context.Background(), 1, "youtube", proposed)
	require.NoError(t, err)
	assert.True(t, got.After(proposed))
}
