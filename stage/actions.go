package stage

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const pollInterval = 10 * time.Millisecond

// sendMessage delivers msg and waits until the program has applied it.
func (d *Director) sendMessage(msg tea.Msg) {
	d.program.Send(msg)
	d.sync()
}

// sync blocks until every message sent so far has been processed.
func (d *Director) sync() {
	d.probe("")
}

// probe evaluates condition on the program goroutine. ok is false when the
// program is gone or the session timed out.
func (d *Director) probe(condition string) (result, ok bool) {
	reply := make(chan probeReply, 1)
	d.program.Send(probeMsg{condition: condition, reply: reply})

	var r probeReply
	select {
	case r = <-reply:
	case <-d.done:
		return false, false
	case <-d.ctx.Done():
		return false, false
	}

	for atomic.LoadInt64(&d.lastProcessedSeq) < r.sequence {
		select {
		case <-d.ctx.Done():
			return r.holds, false
		case <-time.After(time.Millisecond):
		}
	}
	return r.holds, true
}

func (d *Director) ready(action string) bool {
	if d.started && !d.HasFailed() {
		return true
	}
	d.t.Logf("skipping %s: director not running", action)
	return false
}

// PressKey sends a special key such as tea.KeyLeft or tea.KeyCtrlC.
func (d *Director) PressKey(key tea.KeyType) *Director {
	if !d.ready("PressKey") {
		return d
	}
	d.sendMessage(tea.KeyMsg{Type: key})
	d.recordAction("keypress", key.String())
	d.captureSnapshot()
	return d
}

// PressLeft shows the previous slide.
func (d *Director) PressLeft() *Director { return d.PressKey(tea.KeyLeft) }

// PressRight shows the next slide.
func (d *Director) PressRight() *Director { return d.PressKey(tea.KeyRight) }

// Type sends each rune of text as a key press.
func (d *Director) Type(text string) *Director {
	if !d.ready("Type") {
		return d
	}
	for _, r := range text {
		d.program.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		if d.config.TypingSpeed > 0 {
			time.Sleep(d.config.TypingSpeed)
		}
	}
	d.sync()
	d.recordAction("type", text)
	d.captureSnapshot()
	return d
}

func (d *Director) mouse(x, y int, action tea.MouseAction) {
	d.program.Send(tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft})
}

// Click presses and releases the left button on a cell.
func (d *Director) Click(x, y int) *Director {
	if !d.ready("Click") {
		return d
	}
	d.mouse(x, y, tea.MouseActionPress)
	d.mouse(x, y, tea.MouseActionRelease)
	d.sync()
	d.recordAction("mouse", fmt.Sprintf("click %d,%d", x, y))
	d.captureSnapshot()
	return d
}

// Drag presses at fromX, moves to toX and releases there, all on row y.
func (d *Director) Drag(fromX, toX, y int) *Director {
	if !d.ready("Drag") {
		return d
	}
	d.mouse(fromX, y, tea.MouseActionPress)
	d.mouse(toX, y, tea.MouseActionMotion)
	d.mouse(toX, y, tea.MouseActionRelease)
	d.sync()
	d.recordAction("mouse", fmt.Sprintf("drag %d->%d on row %d", fromX, toX, y))
	d.captureSnapshot()
	return d
}

// Hover moves the pointer to a cell without pressing.
func (d *Director) Hover(x, y int) *Director {
	if !d.ready("Hover") {
		return d
	}
	d.mouse(x, y, tea.MouseActionMotion)
	d.sync()
	d.recordAction("mouse", fmt.Sprintf("hover %d,%d", x, y))
	d.captureSnapshot()
	return d
}

// Blur reports that the terminal lost focus, which the carousel treats as the
// pointer leaving.
func (d *Director) Blur() *Director {
	return d.Send(tea.BlurMsg{})
}

// Resize sends a window size change.
func (d *Director) Resize(width, height int) *Director {
	return d.Send(tea.WindowSizeMsg{Width: width, Height: height})
}

// Send delivers an arbitrary message and waits for it to be applied.
func (d *Director) Send(msg tea.Msg) *Director {
	if !d.ready("Send") {
		return d
	}
	d.sendMessage(msg)
	d.recordAction("message", fmt.Sprintf("%T", msg))
	d.captureSnapshot()
	return d
}

// Wait sleeps for a fixed duration.
func (d *Director) Wait(duration time.Duration) *Director {
	if !d.ready("Wait") {
		return d
	}
	select {
	case <-time.After(duration):
	case <-d.ctx.Done():
	}
	d.recordAction("wait", duration.String())
	return d
}

// waitFor polls check until it holds, recording a trip on timeout.
func (d *Director) waitFor(kind, description string, check func() bool, context func() map[string]interface{}) *Director {
	if !d.ready(kind) {
		return d
	}

	deadline := time.NewTimer(d.config.Timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if check() {
			d.recordAction("wait", description)
			d.captureSnapshot()
			return d
		}
		select {
		case <-deadline.C:
			d.recordTrip(newStageTrip(kind+"_timeout", "timed out waiting for "+description, context()))
			return d
		case <-d.ctx.Done():
			d.recordTrip(newStageTrip(kind+"_cancelled", "session ended waiting for "+description, context()))
			return d
		case <-ticker.C:
		}
	}
}

// WaitForSlide waits until slide index is active.
func (d *Director) WaitForSlide(index int) *Director {
	return d.waitFor("wait_slide", fmt.Sprintf("slide %d", index),
		func() bool { d.sync(); return d.currentSlide() == index },
		func() map[string]interface{} {
			return map[string]interface{}{"expected_slide": index, "current_slide": d.currentSlide()}
		})
}

// WaitForText waits until the view contains text.
func (d *Director) WaitForText(text string) *Director {
	return d.waitFor("wait_text", fmt.Sprintf("text %q", text),
		func() bool { d.sync(); return strings.Contains(d.currentView(), text) },
		func() map[string]interface{} {
			return map[string]interface{}{"expected_text": text, "current_view": d.currentView()}
		})
}

// WaitForMode waits until the model reports mode.
func (d *Director) WaitForMode(mode string) *Director {
	return d.waitFor("wait_mode", fmt.Sprintf("mode %q", mode),
		func() bool { d.sync(); return d.currentMode() == mode },
		func() map[string]interface{} {
			return map[string]interface{}{"expected_mode": mode, "current_mode": d.currentMode()}
		})
}

// WaitForCondition waits until the model's named condition holds.
func (d *Director) WaitForCondition(condition string) *Director {
	return d.waitFor("wait_condition", fmt.Sprintf("condition %q", condition),
		func() bool { ok, _ := d.probe(condition); return ok },
		func() map[string]interface{} {
			return map[string]interface{}{"condition": condition}
		})
}

func (d *Director) assert(description string, pass bool, context map[string]interface{}) *Director {
	if !d.ready("assertion") {
		return d
	}
	d.recordAction("assertion", description)
	if !pass {
		d.recordTrip(newStageTrip("assertion_failed", "assertion failed: "+description, context))
	}
	return d
}

// AssertSlide checks the active slide index.
func (d *Director) AssertSlide(index int) *Director {
	if d.started {
		d.sync()
	}
	current := d.currentSlide()
	return d.assert(fmt.Sprintf("slide is %d", index), current == index, map[string]interface{}{
		"expected_slide": index,
		"current_slide":  current,
	})
}

// AssertViewContains checks that the view contains text.
func (d *Director) AssertViewContains(text string) *Director {
	if d.started {
		d.sync()
	}
	view := d.currentView()
	return d.assert(fmt.Sprintf("view contains %q", text), strings.Contains(view, text), map[string]interface{}{
		"expected_text": text,
		"current_view":  view,
	})
}

// AssertMode checks the model's reported mode.
func (d *Director) AssertMode(mode string) *Director {
	if d.started {
		d.sync()
	}
	current := d.currentMode()
	return d.assert(fmt.Sprintf("mode is %q", mode), current == mode, map[string]interface{}{
		"expected_mode": mode,
		"current_mode":  current,
	})
}

// AssertCondition checks one of the model's named conditions.
func (d *Director) AssertCondition(condition string) *Director {
	var holds bool
	if d.started {
		holds, _ = d.probe(condition)
	}
	return d.assert(fmt.Sprintf("condition %q holds", condition), holds, map[string]interface{}{
		"condition": condition,
	})
}
