package carousel

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/teranos/carousel/clock/clocktest"
)

func newTestModel(t *testing.T, deck Deck) (*Model, *clocktest.Clock) {
	t.Helper()
	clk := clocktest.New(epoch0)
	m, err := New(deck, WithClock(clk))
	require.NoError(t, err)
	m.Init()
	t.Cleanup(m.Close)
	return m, clk
}

// pump advances the clock and feeds fired timers through Update, as the
// bubbletea runtime would.
func pump(m *Model, clk *clocktest.Clock, d time.Duration) {
	const step = 10 * time.Millisecond
	for d > 0 {
		clk.Advance(step)
		for {
			f, ok := m.sched.Poll()
			if !ok {
				break
			}
			m.Update(f)
		}
		d -= step
	}
}

func mouse(x, y int, action tea.MouseAction) tea.MouseMsg {
	ev := tea.MouseEvent{X: x, Y: y, Action: action}
	if action == tea.MouseActionPress {
		ev.Button = tea.MouseButtonLeft
	}
	return tea.MouseMsg(ev)
}

func TestModel_Autoplay(t *testing.T) {
	m, clk := newTestModel(t, DefaultDeck())

	assert.Equal(t, 0, m.CurrentSlide())
	assert.Equal(t, "playing", m.CurrentMode())

	pump(m, clk, 5*time.Second)
	assert.Equal(t, 1, m.CurrentSlide())
	assert.Contains(t, m.View(), "Digital Horizons")
}

func TestModel_ArrowKeys(t *testing.T) {
	m, clk := newTestModel(t, DefaultDeck())

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.CurrentSlide())
	assert.Equal(t, "paused", m.CurrentMode())
	assert.True(t, m.CheckCondition("manual_pause"))

	pump(m, clk, 4900*time.Millisecond)
	assert.Equal(t, 1, m.CurrentSlide())

	pump(m, clk, 100*time.Millisecond)
	assert.Equal(t, "playing", m.CurrentMode())

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 5, m.CurrentSlide())

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 5, m.CurrentSlide(), "other keys are ignored")
}

func TestModel_HoverAndTilt(t *testing.T) {
	m, _ := newTestModel(t, DefaultDeck())

	m.Update(mouse(40, 10, tea.MouseActionMotion))
	assert.True(t, m.CheckCondition("hover"))
	assert.True(t, m.CheckCondition("hover_content"))
	assert.Equal(t, "paused", m.CurrentMode())
	assert.False(t, m.Snapshot().Tilt.Neutral())

	m.Update(mouse(40, 2, tea.MouseActionMotion))
	assert.True(t, m.CheckCondition("hover"))
	assert.False(t, m.CheckCondition("hover_content"))
	assert.True(t, m.Snapshot().Tilt.Neutral())

	m.Update(mouse(40, 23, tea.MouseActionMotion))
	assert.False(t, m.CheckCondition("hover"), "the footer is outside the container")
	assert.Equal(t, "playing", m.CurrentMode())

	m.Update(mouse(40, 10, tea.MouseActionMotion))
	m.Update(tea.BlurMsg{})
	assert.False(t, m.CheckCondition("hover"))
	assert.False(t, m.CheckCondition("hover_content"))
}

func TestModel_Drag(t *testing.T) {
	m, _ := newTestModel(t, DefaultDeck())

	m.Update(mouse(30, 2, tea.MouseActionPress))
	assert.True(t, m.CheckCondition("touching"))
	m.Update(mouse(25, 2, tea.MouseActionMotion))
	m.Update(mouse(20, 2, tea.MouseActionRelease))
	assert.Equal(t, 1, m.CurrentSlide(), "80px leftward drag advances")
	assert.False(t, m.CheckCondition("touching"))

	m.Update(mouse(30, 2, tea.MouseActionPress))
	m.Update(mouse(25, 2, tea.MouseActionRelease))
	assert.Equal(t, 1, m.CurrentSlide(), "40px is under the threshold")

	m.Update(mouse(30, 2, tea.MouseActionPress))
	m.Update(mouse(37, 2, tea.MouseActionRelease))
	assert.Equal(t, 0, m.CurrentSlide(), "56px rightward drag retreats")
}

func TestModel_Controls(t *testing.T) {
	m, _ := newTestModel(t, DefaultDeck())
	l := DefaultLayout()

	next := l.Next()
	m.Update(mouse(int(next.X)+1, int(next.Y)+1, tea.MouseActionPress))
	assert.Equal(t, 1, m.CurrentSlide())

	dot := l.Dot(4, 6)
	m.Update(mouse(int(dot.X), int(dot.Y), tea.MouseActionPress))
	assert.Equal(t, 4, m.CurrentSlide())

	prev := l.Prev()
	m.Update(mouse(int(prev.X), int(prev.Y), tea.MouseActionPress))
	assert.Equal(t, 3, m.CurrentSlide())
	assert.True(t, m.CheckCondition("manual_pause"))
	assert.False(t, m.Trips().HasStumbles())
}

func TestModel_View(t *testing.T) {
	m, _ := newTestModel(t, DefaultDeck())
	m.Update(tea.WindowSizeMsg{Width: 90, Height: 26})

	view := m.View()
	lines := strings.Split(view, "\n")
	require.Len(t, lines, 26)
	for i, line := range lines {
		assert.Equal(t, 90, ansi.StringWidth(line), "line %d", i)
	}

	plain := ansi.Strip(view)
	assert.Contains(t, plain, "Modern Architecture")
	assert.Contains(t, plain, "SLEEK & SUSTAINABLE DESIGNS")
	assert.Contains(t, plain, "Full screen slider  1/6")
	assert.Contains(t, plain, dotActive)
	assert.NotContains(t, plain, "Digital Horizons", "inactive slides are not drawn")

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Contains(t, ansi.Strip(m.View()), "❚❚ paused")
}

func TestModel_HelpToggle(t *testing.T) {
	m, _ := newTestModel(t, DefaultDeck())

	assert.Contains(t, ansi.Strip(m.View()), "quit")
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	assert.NotContains(t, ansi.Strip(m.View()), "quit")
}

func TestModel_ProgressResetsOnNavigation(t *testing.T) {
	m, clk := newTestModel(t, DefaultDeck())

	pump(m, clk, 2500*time.Millisecond)
	assert.InDelta(t, 0.5, m.Scene().Progress.Fraction, 0.03)

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 0.0, m.Scene().Progress.Fraction)
	assert.False(t, m.Scene().Progress.Running)

	pump(m, clk, 2*time.Second)
	assert.Equal(t, 0.0, m.Scene().Progress.Fraction, "the bar is frozen while paused")
}

func TestModel_Reload(t *testing.T) {
	m, clk := newTestModel(t, DefaultDeck())
	m.Update(tea.KeyMsg{Type: tea.KeyRight})

	m.Update(ReloadMsg{Deck: testDeck(t, 2)})
	assert.Equal(t, 0, m.CurrentSlide())
	assert.Equal(t, "playing", m.CurrentMode())
	assert.Len(t, m.Scene().Slides, 2)

	pump(m, clk, 5*time.Second)
	assert.Equal(t, 1, m.CurrentSlide())

	m.Update(ReloadMsg{})
	assert.Len(t, m.Scene().Slides, 2, "an empty deck is refused")
	assert.True(t, m.Trips().HasTrips())
	assert.True(t, m.Trips().ShouldContinue())
}

func TestModel_Quit(t *testing.T) {
	m, clk := newTestModel(t, DefaultDeck())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "closed", m.CurrentMode())
	assert.Empty(t, m.View())
	assert.Equal(t, 0, clk.Pending())
}

func TestModel_EmptyDeck(t *testing.T) {
	_, err := New(Deck{})
	assert.Error(t, err)
}

func TestModel_CloseReleasesListener(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := DefaultConfig()
	cfg.Interval = 20 * time.Millisecond
	m, err := New(DefaultDeck(), WithConfig(cfg))
	require.NoError(t, err)

	listen := m.Init()
	msgs := make(chan tea.Msg, 1)
	go func() { msgs <- listen() }()

	first := <-msgs
	_, ok := first.(Fired)
	require.True(t, ok)

	_, next := m.Update(first)
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Close()

	go func() { msgs <- next() }()
	select {
	case msg := <-msgs:
		assert.Nil(t, msg)
	case <-time.After(time.Second):
		t.Fatal("listener still blocked after Close")
	}
}

func TestStill(t *testing.T) {
	deck := DefaultDeck()
	out, err := Still(deck, DefaultConfig(), 4, Layout{Width: 80, Height: 24})
	require.NoError(t, err)
	assert.Contains(t, ansi.Strip(out), "Cosmic Wonders")

	_, err = Still(deck, DefaultConfig(), 6, DefaultLayout())
	assert.Error(t, err)
}
