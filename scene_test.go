package carousel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildScene_Labels(t *testing.T) {
	deck := testDeck(t, 3)
	snap := Snapshot{Index: 1, Count: 3, Epoch: 4, Tilt: NeutralTilt()}

	sc := BuildScene(snap, deck, DefaultLayout(), 0.25)

	assert.Equal(t, "Full screen slider", sc.Label)
	assert.Equal(t, "carousel", sc.RoleDescription)

	type visible struct {
		Label   string
		Hidden  bool
		Opacity float64
	}
	var got []visible
	for _, s := range sc.Slides {
		got = append(got, visible{s.Label, s.Hidden, s.Opacity})
	}
	want := []visible{
		{"Slide 1 of 3", true, 0},
		{"Slide 2 of 3", false, 1},
		{"Slide 3 of 3", true, 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("slide views mismatch (-want +got):\n%s", diff)
	}

	var labels []string
	var current []bool
	for _, c := range sc.Controls {
		labels = append(labels, c.Label)
		current = append(current, c.Current)
	}
	if diff := cmp.Diff([]string{"Previous slide", "Next slide", "Go to slide 1", "Go to slide 2", "Go to slide 3"}, labels); diff != "" {
		t.Errorf("control labels mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []bool{false, false, false, true, false}, current)

	assert.Equal(t, ProgressView{Fraction: 0.25, Epoch: 4, Running: true}, sc.Progress)
}

func TestBuildScene_ActiveCarriesSlideText(t *testing.T) {
	deck := DefaultDeck()
	sc := BuildScene(Snapshot{Index: 2, Count: deck.Len()}, deck, DefaultLayout(), 0)

	active, ok := sc.Active()
	require.True(t, ok)
	assert.Equal(t, "Minimalist Living", active.Title)
	assert.Equal(t, "Simplicity in Every Detail", active.Subtitle)
	assert.Equal(t, "bg-emerald-900", active.Background)
	assert.Equal(t, "font-mono", active.Font)
	assert.Equal(t, 1.0, active.Scale)
	assert.Equal(t, 1.05, sc.Slides[0].Scale)
}

func TestBuildScene_PausedProgressStops(t *testing.T) {
	deck := testDeck(t, 2)

	sc := BuildScene(Snapshot{Paused: true}, deck, DefaultLayout(), 1.7)
	assert.False(t, sc.Progress.Running)
	assert.Equal(t, 1.0, sc.Progress.Fraction)

	sc = BuildScene(Snapshot{}, deck, DefaultLayout(), -1)
	assert.Equal(t, 0.0, sc.Progress.Fraction)
}

func TestBuildScene_IsPure(t *testing.T) {
	deck := testDeck(t, 4)
	snap := Snapshot{Index: 3, Count: 4, Epoch: 9, Reasons: PauseHover, Paused: true}

	a := BuildScene(snap, deck, Layout{Width: 100, Height: 30}, 0.5)
	b := BuildScene(snap, deck, Layout{Width: 100, Height: 30}, 0.5)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("scene not deterministic:\n%s", diff)
	}
}

func TestScene_HitTest(t *testing.T) {
	deck := testDeck(t, 6)
	layout := Layout{Width: 80, Height: 24}
	sc := BuildScene(Snapshot{Count: 6}, deck, layout, 0)

	prev := layout.Prev()
	c, ok := sc.HitTest(Point{X: prev.X + 1, Y: prev.Y + 1})
	require.True(t, ok)
	assert.Equal(t, ControlPrev, c.Kind)

	next := layout.Next()
	c, ok = sc.HitTest(Point{X: next.X, Y: next.Y})
	require.True(t, ok)
	assert.Equal(t, ControlNext, c.Kind)

	for i := 0; i < 6; i++ {
		dot := layout.Dot(i, 6)
		c, ok = sc.HitTest(Point{X: dot.X, Y: dot.Y})
		require.True(t, ok)
		assert.Equal(t, Control{Kind: ControlDot, Index: i}, c.Control)
	}

	_, ok = sc.HitTest(Point{X: 40, Y: 10})
	assert.False(t, ok, "the content box is not a control")
}

func TestLayout_Geometry(t *testing.T) {
	l := Layout{Width: 80, Height: 24}

	assert.Equal(t, Rect{X: 0, Y: 0, W: 80, H: 23}, l.Container())
	assert.Equal(t, Rect{X: 8, Y: 6, W: 64, H: 9}, l.Content())
	assert.Equal(t, Rect{X: 1, Y: 9, W: 3, H: 3}, l.Prev())
	assert.Equal(t, Rect{X: 76, Y: 9, W: 3, H: 3}, l.Next())
	// 6 dots spaced 3 apart span 16 cells
	assert.Equal(t, Rect{X: 32, Y: 21, W: 1, H: 1}, l.Dot(0, 6))
	assert.Equal(t, Rect{X: 47, Y: 21, W: 1, H: 1}, l.Dot(5, 6))
	assert.Equal(t, Rect{X: 2, Y: 22, W: 76, H: 1}, l.Progress())

	tiny := Layout{Width: 3, Height: 2}.Container()
	assert.Equal(t, Rect{X: 0, Y: 0, W: 24, H: 7}, tiny)
}
