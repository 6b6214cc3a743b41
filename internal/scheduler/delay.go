package scheduler

import (
	"math/rand/v2"
	"time"

	config "shortloop/configs"
)

// DelayGenerator humanizes posting cadence so published posts don't land on
// a perfectly periodic clock.
type DelayGenerator struct {
	minMinutes      int
	maxMinutes      int
	varianceMinutes int
}

func NewDelayGenerator(cfg config.Scheduling) *DelayGenerator {
	return &DelayGenerator{
		minMinutes:      cfg.MinDelayMinutes,
		maxMinutes:      cfg.MaxDelayMinutes,
		varianceMinutes: cfg.VarianceMinutes,
	}
}

// RandomDelay returns a uniform random whole-minute delay inside the
// configured window. Used only for "post now" requests.
func (g *DelayGenerator) RandomDelay() time.Duration {
	minutes := g.minMinutes
	if g.maxMinutes > g.minMinutes {
		minutes += rand.IntN(g.maxMinutes - g.minMinutes + 1)
	}
	return time.Duration(minutes) * time.Minute
}

// AddVariance shifts a base time by a uniform offset in ±variance. Applied
// only to AI-picked peak-hour times; manual times are a user-facing contract
// and must never pass through here.
func (g *DelayGenerator) AddVariance(t time.Time) time.Time {
	variance := time.Duration(g.varianceMinutes) * time.Minute
	offset := time.Duration(rand.Int64N(int64(2*variance)+1)) - variance
	return t.Add(offset)
}
