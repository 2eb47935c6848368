package carousel

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/carousel/trip"
)

// PauseReason is a set of active pause sources.
type PauseReason uint8

const (
	// PauseHover is held while the pointer is over the carousel.
	PauseHover PauseReason = 1 << iota
	// PauseManual is held for one interval after explicit navigation.
	PauseManual
)

func (r PauseReason) String() string {
	if r == 0 {
		return "none"
	}
	var parts []string
	if r&PauseHover != 0 {
		parts = append(parts, "hover")
	}
	if r&PauseManual != 0 {
		parts = append(parts, "manual")
	}
	return strings.Join(parts, "+")
}

// Command is a navigation request.
type Command int

const (
	CommandNext Command = iota
	CommandPrev
	CommandJump
)

func (c Command) String() string {
	switch c {
	case CommandNext:
		return "next"
	case CommandPrev:
		return "prev"
	case CommandJump:
		return "jump"
	default:
		return fmt.Sprintf("command(%d)", int(c))
	}
}

// Navigation is a command plus its target for CommandJump.
type Navigation struct {
	Command Command
	Index   int
}

// Snapshot is an immutable copy of the rotation state, taken between events.
type Snapshot struct {
	Index           int
	Count           int
	Epoch           uint64
	Paused          bool
	Reasons         PauseReason
	HoveringContent bool
	Tilt            Tilt
	Closed          bool
}

// Controller owns the active-slide index, the progress epoch, the pause sources
// and the two timers that drive them: the repeating autoplay timer and the
// one-shot manual-pause timer.
//
// A Controller is not safe for concurrent use. The host calls it from a single
// event loop and feeds it every Fired message produced by its scheduler.
type Controller struct {
	deck   Deck
	sched  *Scheduler
	cfg    Config
	logger *zap.Logger

	index           int
	epoch           uint64
	reasons         PauseReason
	sharedPaused    bool
	hoveringContent bool
	tilt            Tilt

	autoplay TimerID
	manual   TimerID
	started  bool
	closed   bool
}

// NewController creates a controller over deck. Timers are not armed until Start.
func NewController(deck Deck, sched *Scheduler, cfg Config, logger *zap.Logger) (*Controller, error) {
	if deck.Len() == 0 {
		return nil, trip.NewFall(trip.TypePrecondition, "cannot mount a carousel without slides", nil)
	}
	if sched == nil {
		return nil, trip.NewFall(trip.TypePrecondition, "controller needs a scheduler", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Controller{
		deck:   deck,
		sched:  sched,
		cfg:    cfg,
		logger: logger,
		tilt:   NeutralTilt(),
	}, nil
}

// Start arms the autoplay timer. Calling it twice is a no-op.
func (c *Controller) Start() {
	if c.started || c.closed {
		return
	}
	c.started = true
	c.restartAutoplay()
	c.logger.Debug("rotation started",
		zap.Int("slides", c.deck.Len()),
		zap.Duration("interval", c.cfg.Interval))
}

// Close cancels every timer owned by the controller. Later calls are no-ops and
// later Fired messages are ignored.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.sched.Cancel(c.autoplay)
	c.sched.Cancel(c.manual)
	c.autoplay, c.manual = 0, 0
	c.logger.Debug("rotation closed", zap.Int("index", c.index))
}

// Advance moves to the next slide, wrapping to the first.
func (c *Controller) Advance() {
	if c.closed {
		return
	}
	n := c.deck.Len()
	c.setIndex((c.index + 1) % n)
}

// Retreat moves to the previous slide, wrapping to the last.
func (c *Controller) Retreat() {
	if c.closed {
		return
	}
	n := c.deck.Len()
	c.setIndex((c.index - 1 + n) % n)
}

// JumpTo moves to slide i. Out-of-range indices are refused with a stumble and
// leave the state untouched.
func (c *Controller) JumpTo(i int) error {
	if c.closed {
		return trip.NewStumble(trip.TypePrecondition, "carousel is closed", trip.Context{"index": i})
	}
	if i < 0 || i >= c.deck.Len() {
		return trip.NewStumble(trip.TypePrecondition, fmt.Sprintf("slide index %d out of range", i), trip.Context{
			"index": i,
			"count": c.deck.Len(),
		})
	}
	c.setIndex(i)
	return nil
}

func (c *Controller) setIndex(i int) {
	c.index = i
	c.epoch++
}

// Navigate performs an explicit, user-initiated move and opens a manual-pause
// window of one interval. A new manual move restarts the window; windows never
// stack. A refused jump opens no window.
func (c *Controller) Navigate(nav Navigation) error {
	if c.closed {
		return trip.NewStumble(trip.TypePrecondition, "carousel is closed", trip.Context{"command": nav.Command.String()})
	}

	switch nav.Command {
	case CommandNext:
		c.Advance()
	case CommandPrev:
		c.Retreat()
	case CommandJump:
		if err := c.JumpTo(nav.Index); err != nil {
			return err
		}
	default:
		return trip.NewStumble(trip.TypePrecondition, "unknown navigation command", trip.Context{"command": int(nav.Command)})
	}

	c.logger.Debug("manual navigation",
		zap.Stringer("command", nav.Command),
		zap.Int("index", c.index),
		zap.Uint64("epoch", c.epoch))

	c.holdPause(func() {
		c.reasons |= PauseManual
		c.sharedPaused = true
	})

	c.sched.Cancel(c.manual)
	c.manual = c.sched.After(c.cfg.Interval, TagManualPause)
	return nil
}

// SetHover records whether the pointer is over the carousel.
func (c *Controller) SetHover(hovering bool) {
	if c.closed {
		return
	}
	c.holdPause(func() {
		if hovering {
			c.reasons |= PauseHover
		} else {
			c.reasons &^= PauseHover
		}
		c.sharedPaused = hovering
	})
}

// SetContentHover records whether the pointer is over the active slide's content.
// Leaving resets the tilt to neutral.
func (c *Controller) SetContentHover(hovering bool) {
	if c.closed {
		return
	}
	c.hoveringContent = hovering
	if !hovering {
		c.tilt = NeutralTilt()
	}
}

// SetTilt applies a tilt while content tracking is enabled; otherwise it is ignored.
func (c *Controller) SetTilt(t Tilt) bool {
	if c.closed || !c.hoveringContent {
		return false
	}
	c.tilt = t
	return true
}

// HandleTimer applies a fired timer. It reports whether the index changed.
// Messages from cancelled or superseded timers are ignored.
func (c *Controller) HandleTimer(f Fired) bool {
	if c.closed || f.ID == 0 {
		return false
	}

	switch f.ID {
	case c.autoplay:
		if c.Paused() {
			return false
		}
		c.Advance()
		c.logger.Debug("autoplay advance", zap.Int("index", c.index), zap.Uint64("epoch", c.epoch))
		return true
	case c.manual:
		c.manual = 0
		c.holdPause(func() {
			c.reasons &^= PauseManual
			c.sharedPaused = false
		})
	}
	return false
}

// holdPause runs mutate and recreates the autoplay timer when the effective
// pause flag changed.
func (c *Controller) holdPause(mutate func()) {
	before := c.Paused()
	mutate()
	after := c.Paused()
	if before == after {
		return
	}
	c.logger.Debug("pause changed",
		zap.Bool("paused", after),
		zap.Stringer("reasons", c.reasons),
		zap.String("mode", string(c.cfg.PauseMode)))
	if c.started {
		c.restartAutoplay()
	}
}

func (c *Controller) restartAutoplay() {
	c.sched.Cancel(c.autoplay)
	c.autoplay = c.sched.Every(c.cfg.Interval, TagAutoplay)
}

// Paused reports whether autoplay is currently suppressed.
func (c *Controller) Paused() bool {
	if c.cfg.PauseMode == PauseShared {
		return c.sharedPaused
	}
	return c.reasons != 0
}

// Index returns the active slide.
func (c *Controller) Index() int { return c.index }

// Epoch returns the number of index changes so far.
func (c *Controller) Epoch() uint64 { return c.epoch }

// Deck returns the controller's slides.
func (c *Controller) Deck() Deck { return c.deck }

// Snapshot copies the current state.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Index:           c.index,
		Count:           c.deck.Len(),
		Epoch:           c.epoch,
		Paused:          c.Paused(),
		Reasons:         c.reasons,
		HoveringContent: c.hoveringContent,
		Tilt:            c.tilt,
		Closed:          c.closed,
	}
}
