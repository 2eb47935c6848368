package carousel

import "time"

// progressTracker measures how much of the current interval has elapsed. The
// measurement restarts whenever the epoch changes and only accumulates while the
// rotation is running, so a paused bar freezes in place.
type progressTracker struct {
	interval time.Duration
	epoch    uint64
	elapsed  time.Duration
	last     time.Time
	primed   bool
}

func newProgressTracker(interval time.Duration) *progressTracker {
	return &progressTracker{interval: interval}
}

// observe folds the time since the previous observation into the fill and
// returns the current fraction.
func (p *progressTracker) observe(now time.Time, epoch uint64, paused bool) float64 {
	switch {
	case !p.primed || epoch != p.epoch:
		p.primed = true
		p.epoch = epoch
		p.elapsed = 0
	case !paused && now.After(p.last):
		p.elapsed += now.Sub(p.last)
	}
	p.last = now
	return p.fraction()
}

func (p *progressTracker) fraction() float64 {
	if p.interval <= 0 {
		return 0
	}
	return clampFraction(float64(p.elapsed) / float64(p.interval))
}
