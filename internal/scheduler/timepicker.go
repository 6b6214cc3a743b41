package scheduler

import (
	"math/rand/v2"
	"time"

	"shortloop/internal/models"
)

// peakHours lists candidate local hours-of-day per platform where engagement
// is typically highest.
var peakHours = map[string][]int{
	models.PlatformYoutube:   {14, 17, 20},
	models.PlatformTiktok:    {12, 18, 21},
	models.PlatformInstagram: {11, 15, 19},
	models.PlatformFacebook:  {13, 18, 20},
}

// TimePicker proposes a plausible publish time inside a platform's peak-hour
// windows. It never commits anything itself; the result goes through the
// scheduler's normal commit path like any explicit time.
type TimePicker struct {
	delays *DelayGenerator
}

func NewTimePicker(delays *DelayGenerator) *TimePicker {
	return &TimePicker{delays: delays}
}

// PickTime chooses a random peak hour with a random minute. A moment that
// already passed today is pushed 1-3 days forward before variance is added.
func (p *TimePicker) PickTime(platform string, now time.Time) time.Time {
	hours, ok := peakHours[platform]
	if !ok {
		hours = peakHours[models.PlatformYoutube]
	}

	hour := hours[rand.IntN(len(hours))]
	t := time.Date(now.Year(), now.Month(), now.Day(), hour, rand.IntN(60), 0, 0, now.Location())

	if !t.After(now) {
		t = t.AddDate(0, 0, 1+rand.IntN(3))
	}

	return p.delays.AddVariance(t)
}
