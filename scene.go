package carousel

import (
	"fmt"
)

// Region labels.
const (
	SceneLabel           = "Full screen slider"
	SceneRoleDescription = "carousel"
)

// Layout is the terminal area the carousel occupies, in cells.
type Layout struct {
	Width, Height int
}

const (
	minWidth      = 24
	minHeight     = 8
	arrowWidth    = 3
	arrowHeight   = 3
	dotSpacing    = 3
	contentMaxW   = 64
	contentMaxH   = 9
	sideClearance = 7
)

// DefaultLayout is used before the terminal reports its size.
func DefaultLayout() Layout {
	return Layout{Width: 80, Height: 24}
}

func (l Layout) clamp() Layout {
	if l.Width < minWidth {
		l.Width = minWidth
	}
	if l.Height < minHeight {
		l.Height = minHeight
	}
	return l
}

// Rows, from the top: the slide stage, the dots row, the progress row and the
// help footer. The footer is outside the container.
func (l Layout) stageHeight() int { return l.Height - 3 }
func (l Layout) dotsRow() int     { return l.Height - 3 }
func (l Layout) progressRow() int { return l.Height - 2 }
func (l Layout) footerRow() int   { return l.Height - 1 }

// Container is the hover-sensitive area of the carousel.
func (l Layout) Container() Rect {
	l = l.clamp()
	return Rect{X: 0, Y: 0, W: float64(l.Width), H: float64(l.footerRow())}
}

// Content is the box holding the active slide's text.
func (l Layout) Content() Rect {
	l = l.clamp()
	w := l.Width - 2*sideClearance
	if w > contentMaxW {
		w = contentMaxW
	}
	if w < 8 {
		w = 8
	}
	h := l.stageHeight() - 2
	if h > contentMaxH {
		h = contentMaxH
	}
	if h < 1 {
		h = 1
	}
	x := (l.Width - w) / 2
	y := (l.stageHeight() - h) / 2
	return Rect{X: float64(x), Y: float64(y), W: float64(w), H: float64(h)}
}

// Prev is the previous-slide button.
func (l Layout) Prev() Rect {
	l = l.clamp()
	y := (l.stageHeight() - arrowHeight) / 2
	return Rect{X: 1, Y: float64(y), W: arrowWidth, H: arrowHeight}
}

// Next is the next-slide button.
func (l Layout) Next() Rect {
	l = l.clamp()
	y := (l.stageHeight() - arrowHeight) / 2
	return Rect{X: float64(l.Width - 1 - arrowWidth), Y: float64(y), W: arrowWidth, H: arrowHeight}
}

// Dot is the jump button for slide i of n.
func (l Layout) Dot(i, n int) Rect {
	l = l.clamp()
	span := dotSpacing*n - (dotSpacing - 1)
	start := (l.Width - span) / 2
	if start < 0 {
		start = 0
	}
	return Rect{X: float64(start + dotSpacing*i), Y: float64(l.dotsRow()), W: 1, H: 1}
}

// Progress is the progress bar row.
func (l Layout) Progress() Rect {
	l = l.clamp()
	return Rect{X: 2, Y: float64(l.progressRow()), W: float64(l.Width - 4), H: 1}
}

// SlideView is the visual state of one slide.
type SlideView struct {
	ID          string
	Label       string
	Title       string
	Subtitle    string
	Description string
	Background  string
	TextColor   string
	Font        string

	Active  bool
	Hidden  bool
	Opacity float64
	Scale   float64
}

// ControlView is one on-screen control with its accessible label and hit box.
type ControlView struct {
	Control
	Label   string
	Current bool
	Bounds  Rect
}

// ProgressView is the state of the interval indicator.
type ProgressView struct {
	Fraction float64
	Epoch    uint64
	Running  bool
}

// Scene is everything the view draws, derived from a Snapshot.
type Scene struct {
	Label           string
	RoleDescription string
	Layout          Layout

	Slides   []SlideView
	Controls []ControlView
	Progress ProgressView
	Tilt     Tilt

	Container Rect
	Content   Rect
}

// BuildScene maps a rotation snapshot to its visual output. It has no side effects.
func BuildScene(snap Snapshot, deck Deck, layout Layout, fraction float64) Scene {
	layout = layout.clamp()
	n := deck.Len()

	sc := Scene{
		Label:           SceneLabel,
		RoleDescription: SceneRoleDescription,
		Layout:          layout,
		Slides:          make([]SlideView, 0, n),
		Controls:        make([]ControlView, 0, n+2),
		Progress: ProgressView{
			Fraction: clampFraction(fraction),
			Epoch:    snap.Epoch,
			Running:  !snap.Paused && !snap.Closed,
		},
		Tilt:      snap.Tilt,
		Container: layout.Container(),
		Content:   layout.Content(),
	}

	for i, s := range deck.slides {
		active := i == snap.Index
		v := SlideView{
			ID:          s.ID,
			Label:       fmt.Sprintf("Slide %d of %d", i+1, n),
			Title:       s.Title,
			Subtitle:    s.Subtitle,
			Description: s.Description,
			Background:  s.Background,
			TextColor:   s.TextColor,
			Font:        s.Font,
			Active:      active,
			Hidden:      !active,
			Opacity:     0,
			Scale:       1.05,
		}
		if active {
			v.Opacity = 1
			v.Scale = 1
		}
		sc.Slides = append(sc.Slides, v)
	}

	sc.Controls = append(sc.Controls,
		ControlView{Control: Control{Kind: ControlPrev}, Label: "Previous slide", Bounds: layout.Prev()},
		ControlView{Control: Control{Kind: ControlNext}, Label: "Next slide", Bounds: layout.Next()},
	)
	for i := 0; i < n; i++ {
		sc.Controls = append(sc.Controls, ControlView{
			Control: Control{Kind: ControlDot, Index: i},
			Label:   fmt.Sprintf("Go to slide %d", i+1),
			Current: i == snap.Index,
			Bounds:  layout.Dot(i, n),
		})
	}

	return sc
}

// Active returns the view of the active slide.
func (sc Scene) Active() (SlideView, bool) {
	for _, s := range sc.Slides {
		if s.Active {
			return s, true
		}
	}
	return SlideView{}, false
}

// HitTest returns the control under cell position p.
func (sc Scene) HitTest(p Point) (ControlView, bool) {
	for _, c := range sc.Controls {
		if c.Bounds.Contains(p) {
			return c, true
		}
	}
	return ControlView{}, false
}

func clampFraction(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
