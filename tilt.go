package carousel

import (
	"fmt"
	"time"
)

// Point is a pointer position in device-independent pixels.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned region. Units depend on use: cells for layout and hit
// testing, pixels for tilt geometry.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether p lies inside r (right and bottom edges exclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Scale multiplies every coordinate, converting between cells and pixels.
func (r Rect) Scale(sx, sy float64) Rect {
	return Rect{X: r.X * sx, Y: r.Y * sy, W: r.W * sx, H: r.H * sy}
}

// Transition describes how a visual change is animated.
type Transition struct {
	Duration time.Duration
	Easing   string
}

// Tilt is the 3D transform applied to the active slide's content.
type Tilt struct {
	RotateX    float64 // degrees, positive tips the top edge away
	RotateY    float64 // degrees, positive turns the right edge away
	TranslateZ float64 // pixels
	Scale      float64
	Transition Transition
}

const (
	tiltDepth       = -30
	tiltScale       = 0.98
	tiltPerspective = 1000
)

var (
	trackingTransition = Transition{Duration: 100 * time.Millisecond, Easing: "ease-out"}
	releaseTransition  = Transition{Duration: 500 * time.Millisecond, Easing: "cubic-bezier(0.23, 1, 0.32, 1)"}
)

// NeutralTilt is the resting transform, eased back into when the pointer leaves.
func NeutralTilt() Tilt {
	return Tilt{Scale: 1, Transition: releaseTransition}
}

// ComputeTilt maps a pointer position inside region to a tilt. The offset from the
// region's center is normalised by the half extents and scaled to maxDegrees, with
// the vertical axis inverted. A degenerate region produces no rotation.
func ComputeTilt(p Point, region Rect, maxDegrees float64) Tilt {
	t := Tilt{
		TranslateZ: tiltDepth,
		Scale:      tiltScale,
		Transition: trackingTransition,
	}

	centerX := region.W / 2
	centerY := region.H / 2
	if centerX > 0 {
		t.RotateY = ((p.X - region.X - centerX) / centerX) * maxDegrees
	}
	if centerY > 0 {
		t.RotateX = ((p.Y - region.Y - centerY) / centerY) * -maxDegrees
	}
	return t
}

// Neutral reports whether the tilt has no rotation, depth or scaling.
func (t Tilt) Neutral() bool {
	return t.RotateX == 0 && t.RotateY == 0 && t.TranslateZ == 0 && (t.Scale == 1 || t.Scale == 0)
}

// CSS renders the tilt as a CSS transform value.
func (t Tilt) CSS() string {
	scale := t.Scale
	if scale == 0 {
		scale = 1
	}
	depth := "0"
	if t.TranslateZ != 0 {
		depth = fmt.Sprintf("%gpx", t.TranslateZ)
	}
	return fmt.Sprintf("perspective(%dpx) rotateX(%gdeg) rotateY(%gdeg) translateZ(%s) scale(%g)",
		tiltPerspective, t.RotateX, t.RotateY, depth, scale)
}

// Offset converts the tilt into a whole-cell displacement for terminal rendering:
// up to two columns horizontally and one row vertically at full deflection.
func (t Tilt) Offset(maxDegrees float64) (dx, dy int) {
	if maxDegrees <= 0 {
		return 0, 0
	}
	dx = roundHalfAway(t.RotateY / maxDegrees * 2)
	dy = roundHalfAway(-t.RotateX / maxDegrees)
	return dx, dy
}

func roundHalfAway(v float64) int {
	if v < 0 {
		return -int(-v + 0.5)
	}
	return int(v + 0.5)
}
