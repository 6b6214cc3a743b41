package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"shortloop/internal/models"
)

func newTestPicker() *TimePicker {
	return NewTimePicker(NewDelayGenerator(testSchedulingConfig()))
}

func TestPickTimeNeverMeaningfullyPast(t *testing.T) {
	p := newTestPicker()
	now := time.Date(2026, 9, 1, 23, 0, 0, 0, time.Local)

	for i := 0; i < 500; i++ {
		picked := p.PickTime(models.PlatformYoutube, now)
		// All peak hours passed at 23:00, so the pick lands 1-3 days out,
		// give or take variance.
		assert.True(t, picked.After(now.Add(-31*time.Minute)), "picked %v for now %v", picked, now)
		assert.True(t, picked.Before(now.AddDate(0, 0, 4)))
	}
}

func TestPickTimeLandsNearPeakHours(t *testing.T) {
	p := newTestPicker()
	now := time.Date(2026, 9, 1, 6, 0, 0, 0, time.Local)

	for i := 0; i < 500; i++ {
		picked := p.PickTime(models.PlatformTiktok, now)

		near := false
		for _, hour := range []int{12, 18, 21} {
			peakStart := time.Date(now.Year(), now.Month(), picked.Day(), hour, 0, 0, 0, now.Location())
			peakEnd := peakStart.Add(time.Hour)
			if !picked.Before(peakStart.Add(-30*time.Minute)) && !picked.After(peakEnd.Add(30*time.Minute)) {
				near = true
				break
			}
		}
		assert.True(t, near, "picked %v is not near any tiktok peak hour", picked)
	}
}

func TestPickTimeUnknownPlatformFallsBack(t *testing.T) {
	p := newTestPicker()
	now := time.Date(2026, 9, 1, 6, 0, 0, 0, time.Local)

	picked := p.PickTime("myspace", now)
	assert.True(t, picked.After(now.Add(-31*time.Minute)))
}

func TestPickTimeVaries(t *testing.T) {
	p := newTestPicker()
	now := time.Date(2026, 9, 1, 6, 0, 0, 0, time.Local)

	seen := make(map[time.Time]bool)
	for i := 0; i < 50; i++ {
		seen[p.PickTime(models.PlatformInstagram, now)] = true
	}
	assert.Greater(t, len(seen), 1)
}
