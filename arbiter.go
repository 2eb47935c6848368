package carousel

import (
	"math"

	"go.uber.org/zap"
)

// Key is a navigation key as seen by the arbiter.
type Key int

const (
	KeyOther Key = iota
	KeyLeft
	KeyRight
)

// ControlKind identifies an on-screen control.
type ControlKind int

const (
	ControlPrev ControlKind = iota
	ControlNext
	ControlDot
)

// Control is a clickable element. Index is only meaningful for ControlDot.
type Control struct {
	Kind  ControlKind
	Index int
}

// Arbiter translates raw input into controller commands. It holds the
// in-progress gesture origin and nothing else; all rotation state lives in the
// Controller.
type Arbiter struct {
	ctrl      *Controller
	threshold float64
	maxTilt   float64
	logger    *zap.Logger

	touching bool
	touchX   float64
}

// NewArbiter binds an arbiter to ctrl using the gesture and tilt settings of cfg.
func NewArbiter(ctrl *Controller, cfg Config, logger *zap.Logger) *Arbiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Arbiter{
		ctrl:      ctrl,
		threshold: cfg.SwipeThreshold,
		maxTilt:   cfg.TiltMaxDegrees,
		logger:    logger,
	}
}

// Key handles a key press. Left retreats and right advances; every other key is
// ignored. It reports whether the key was consumed.
func (a *Arbiter) Key(k Key) (bool, error) {
	switch k {
	case KeyLeft:
		return true, a.ctrl.Navigate(Navigation{Command: CommandPrev})
	case KeyRight:
		return true, a.ctrl.Navigate(Navigation{Command: CommandNext})
	default:
		return false, nil
	}
}

// TouchStart records the horizontal origin of a gesture.
func (a *Arbiter) TouchStart(x float64) {
	a.touching = true
	a.touchX = x
}

// TouchMove reports whether a gesture is in progress, in which case the host's
// default handling of the move (scrolling, selection) must be suppressed.
func (a *Arbiter) TouchMove() bool {
	return a.touching
}

// Touching reports whether a gesture origin is recorded.
func (a *Arbiter) Touching() bool { return a.touching }

// TouchEnd completes a gesture at x. A horizontal travel strictly greater than
// the threshold navigates: rightward retreats, leftward advances. The origin is
// cleared either way. An end without a start is ignored.
func (a *Arbiter) TouchEnd(x float64) (bool, error) {
	if !a.touching {
		return false, nil
	}
	dx := x - a.touchX
	a.touching = false
	a.touchX = 0

	if math.Abs(dx) <= a.threshold {
		return false, nil
	}

	a.logger.Debug("swipe", zap.Float64("dx", dx))
	if dx > 0 {
		return true, a.ctrl.Navigate(Navigation{Command: CommandPrev})
	}
	return true, a.ctrl.Navigate(Navigation{Command: CommandNext})
}

// TouchCancel drops the recorded origin without navigating.
func (a *Arbiter) TouchCancel() {
	a.touching = false
	a.touchX = 0
}

// PointerEnterContainer starts the hover pause.
func (a *Arbiter) PointerEnterContainer() { a.ctrl.SetHover(true) }

// PointerLeaveContainer ends the hover pause.
func (a *Arbiter) PointerLeaveContainer() { a.ctrl.SetHover(false) }

// PointerEnterContent enables tilt tracking.
func (a *Arbiter) PointerEnterContent() { a.ctrl.SetContentHover(true) }

// PointerLeaveContent disables tilt tracking and eases back to neutral.
func (a *Arbiter) PointerLeaveContent() { a.ctrl.SetContentHover(false) }

// PointerMoveContent tilts the content toward p, given in the same units as region.
// It is ignored unless tracking is enabled.
func (a *Arbiter) PointerMoveContent(p Point, region Rect) bool {
	return a.ctrl.SetTilt(ComputeTilt(p, region, a.maxTilt))
}

// Click activates an on-screen control.
func (a *Arbiter) Click(c Control) error {
	switch c.Kind {
	case ControlPrev:
		return a.ctrl.Navigate(Navigation{Command: CommandPrev})
	case ControlNext:
		return a.ctrl.Navigate(Navigation{Command: CommandNext})
	default:
		return a.ctrl.Navigate(Navigation{Command: CommandJump, Index: c.Index})
	}
}
