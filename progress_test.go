package carousel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker(t *testing.T) {
	p := newProgressTracker(5 * time.Second)
	at := func(ms int) time.Time { return epoch0.Add(time.Duration(ms) * time.Millisecond) }

	assert.Equal(t, 0.0, p.observe(at(0), 0, false))
	assert.InDelta(t, 0.2, p.observe(at(1000), 0, false), 1e-9)
	assert.InDelta(t, 0.5, p.observe(at(2500), 0, false), 1e-9)

	// paused: the fill freezes
	assert.InDelta(t, 0.5, p.observe(at(4000), 0, true), 1e-9)
	assert.InDelta(t, 0.5, p.observe(at(9000), 0, true), 1e-9)

	// resumed: only running time counts
	assert.InDelta(t, 0.7, p.observe(at(10000), 0, false), 1e-9)

	// a new epoch restarts from zero
	assert.Equal(t, 0.0, p.observe(at(10500), 1, false))
	assert.InDelta(t, 0.1, p.observe(at(11000), 1, false), 1e-9)

	assert.Equal(t, 1.0, p.observe(at(30000), 1, false), "fill saturates")
}
